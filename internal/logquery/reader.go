package logquery

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// maxLineSize bounds a single returned line. Longer lines are cut to this
// size and the remainder up to the next newline is discarded.
const maxLineSize = 1024 * 1024

const readBufferSize = 64 * 1024

// lineReader reads one log file line by line, decompressing *.gz files.
type lineReader struct {
	r         *bufio.Reader
	closers   []io.Closer
	buf       []byte
	readErr   error
	truncated int
}

func openLineReader(path string) (*lineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	lr := &lineReader{closers: []io.Closer{f}}
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		lr.closers = append([]io.Closer{zr}, lr.closers...)
		r = zr
	}

	lr.r = bufio.NewReaderSize(r, readBufferSize)
	return lr, nil
}

// next returns the next line without its line terminator. A line longer
// than maxLineSize is returned truncated.
func (lr *lineReader) next() (string, bool) {
	if lr.readErr != nil {
		return "", false
	}

	lr.buf = lr.buf[:0]
	read, cut := 0, false
	for {
		chunk, err := lr.r.ReadSlice('\n')
		read += len(chunk)
		if room := maxLineSize - len(lr.buf); len(chunk) > room {
			lr.buf = append(lr.buf, chunk[:room]...)
			if len(trimEOL(chunk[room:])) > 0 {
				cut = true
			}
		} else {
			lr.buf = append(lr.buf, chunk...)
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil {
			lr.readErr = err
			if read == 0 || !errors.Is(err, io.EOF) {
				return "", false
			}
		}
		break
	}

	if cut {
		lr.truncated++
	}
	return string(trimEOL(lr.buf)), true
}

func trimEOL(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return b
}

// err returns the first non-EOF read error.
func (lr *lineReader) err() error {
	if errors.Is(lr.readErr, io.EOF) {
		return nil
	}
	return lr.readErr
}

// truncatedLines counts the lines cut to maxLineSize so far.
func (lr *lineReader) truncatedLines() int {
	return lr.truncated
}

func (lr *lineReader) Close() error {
	var first error
	for _, c := range lr.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
