// logfiles.go - Log directory fixtures for testing
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// Line formats one log line the way the applications write them.
func Line(ts, level, msg string) string {
	return fmt.Sprintf("%s [%s] %s", ts, level, msg)
}

// WriteLog writes lines to dir/name and returns the full path.
func WriteLog(t testing.TB, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(joinLines(lines)), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteGzipLog writes lines gzip-compressed to dir/name and returns the full path.
func WriteGzipLog(t testing.TB, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(joinLines(lines))); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
	return path
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
