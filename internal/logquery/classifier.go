package logquery

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/logplatform/backend/internal/models"
)

const (
	infoSuffix  = "-info"
	errorSuffix = "-error"

	activeSuffix     = ".log"
	compressedSuffix = ".log.gz"
)

// ErrorPrefix derives the error stream prefix from an info prefix by
// replacing a trailing "-info" with "-error". A prefix without the "-info"
// marker has no separate error stream and is returned unchanged, which
// makes Info and Error queries equivalent for it.
func ErrorPrefix(prefix string) string {
	if strings.HasSuffix(prefix, infoSuffix) {
		return strings.TrimSuffix(prefix, infoSuffix) + errorSuffix
	}
	return prefix
}

// StreamPrefixes returns the distinct file prefixes read for a log type.
func StreamPrefixes(prefix string, logType models.LogType) []string {
	switch logType {
	case models.LogTypeInfo:
		return []string{prefix}
	case models.LogTypeError:
		return []string{ErrorPrefix(prefix)}
	default:
		errPrefix := ErrorPrefix(prefix)
		if errPrefix == prefix {
			return []string{prefix}
		}
		return []string{prefix, errPrefix}
	}
}

// Classifier decides which files of a log directory belong to a query.
type Classifier struct {
	// ReadCompressed also accepts gzip-compressed rotated files (*.log.gz).
	ReadCompressed bool
}

// ClassifyRequest holds the inputs of one classification.
type ClassifyRequest struct {
	RootDir  string
	Prefix   string
	Date     string
	LogType  models.LogType
	FileName string
	Today    string
}

// Classify lists the candidate files in req.RootDir (non-recursive).
// A missing or unreadable root yields an empty, non-nil result.
func (c Classifier) Classify(req ClassifyRequest) []models.LogFileDescriptor {
	result := make([]models.LogFileDescriptor, 0)
	prefixes := StreamPrefixes(req.Prefix, req.LogType)

	if req.FileName != "" {
		if d, ok := c.lookupFile(req.RootDir, req.FileName, prefixes); ok {
			result = append(result, d)
		}
		return result
	}

	entries, err := os.ReadDir(req.RootDir)
	if err != nil {
		return result
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(req.RootDir, name)
		if !isRegularFile(entry, path) {
			continue
		}
		for _, p := range prefixes {
			if active, ok := c.matches(name, p, req.Date, req.Today); ok {
				result = append(result, models.LogFileDescriptor{Name: name, Path: path, IsActive: active})
				break
			}
		}
	}
	return result
}

// matches applies the per-prefix predicate and reports whether name is the active file.
func (c Classifier) matches(name, prefix, date, today string) (active bool, ok bool) {
	if name == prefix+activeSuffix {
		return true, date == today
	}
	return false, strings.HasPrefix(name, prefix) &&
		strings.Contains(name, date) &&
		c.hasRotationSuffix(name)
}

func (c Classifier) hasRotationSuffix(name string) bool {
	if strings.HasSuffix(name, activeSuffix) {
		return true
	}
	return c.ReadCompressed && strings.HasSuffix(name, compressedSuffix)
}

// lookupFile resolves an explicitly requested file name inside root.
func (c Classifier) lookupFile(root, name string, prefixes []string) (models.LogFileDescriptor, bool) {
	if name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return models.LogFileDescriptor{}, false
	}
	path := filepath.Join(root, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return models.LogFileDescriptor{}, false
	}
	active := false
	for _, p := range prefixes {
		if name == p+activeSuffix {
			active = true
		}
	}
	return models.LogFileDescriptor{Name: name, Path: path, IsActive: active}, true
}

func isRegularFile(entry os.DirEntry, path string) bool {
	if entry.IsDir() {
		return false
	}
	if entry.Type()&os.ModeSymlink != 0 {
		info, err := os.Stat(path)
		return err == nil && info.Mode().IsRegular()
	}
	return entry.Type().IsRegular()
}
