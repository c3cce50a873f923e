package logquery

import (
	"context"
	"fmt"
	"strings"

	"github.com/logplatform/backend/internal/models"
	"go.uber.org/zap"
)

// Default result caps.
const (
	DefaultPerFileLimit = 2000
	DefaultTotalLimit   = 5000
)

// Limits caps the number of lines a query returns.
type Limits struct {
	PerFile int
	Total   int
}

// DefaultLimits returns the default caps.
func DefaultLimits() Limits {
	return Limits{PerFile: DefaultPerFileLimit, Total: DefaultTotalLimit}
}

func (l Limits) withDefaults() Limits {
	if l.PerFile <= 0 {
		l.PerFile = DefaultPerFileLimit
	}
	if l.Total <= 0 {
		l.Total = DefaultTotalLimit
	}
	return l
}

// LineStream lazily yields the lines of an ordered file list that match a
// query. At most one file is open at a time. Lines are emitted in file order
// and, within a file, in on-disk order; files are not merged by timestamp, so
// overlapping files (e.g. during rotation) can produce duplicates.
//
// A LineStream is not safe for concurrent use and cannot be restarted.
type LineStream struct {
	ctx      context.Context
	files    []models.LogFileDescriptor
	start    string
	end      string
	keyword  string
	limits   Limits
	logger   *zap.Logger
	next     int
	cur      *lineReader
	curName  string
	perFile  int
	total    int
	capped   bool
	done     bool
	warnings []string
}

// NewLineStream creates a stream over files for the given criteria.
func NewLineStream(ctx context.Context, files []models.LogFileDescriptor, criteria models.QueryCriteria, limits Limits, logger *zap.Logger) *LineStream {
	if logger == nil {
		logger = zap.NewNop()
	}
	criteria = criteria.WithDefaults()
	return &LineStream{
		ctx:     ctx,
		files:   files,
		start:   criteria.StartTime,
		end:     criteria.EndTime,
		keyword: strings.ToLower(criteria.Keyword),
		limits:  limits.withDefaults(),
		logger:  logger,
	}
}

// Next returns the next matching line. It returns false once every file is
// consumed, the global cap is reached or the context is done. The context
// is checked before every line read.
func (s *LineStream) Next() (string, bool) {
	for !s.done {
		if s.stopped() {
			break
		}
		if s.total >= s.limits.Total {
			s.capped = true
			s.finish()
			break
		}
		if s.cur == nil && !s.openNext() {
			s.finish()
			break
		}
		if s.perFile >= s.limits.PerFile {
			s.closeCurrent()
			continue
		}

		line, ok := s.cur.next()
		if !ok {
			if err := s.cur.err(); err != nil {
				s.warn(fmt.Sprintf("reading %s: %v", s.curName, err))
			}
			s.closeCurrent()
			continue
		}
		if s.match(line) {
			s.perFile++
			s.total++
			return line, true
		}
	}
	return "", false
}

// match applies the time-window and keyword predicates to one line.
func (s *LineStream) match(line string) bool {
	if !TimeInRange(line, s.start, s.end) {
		return false
	}
	return s.keyword == "" || strings.Contains(strings.ToLower(line), s.keyword)
}

// openNext opens the next readable file, skipping unreadable ones.
func (s *LineStream) openNext() bool {
	for s.next < len(s.files) {
		if err := s.ctx.Err(); err != nil {
			s.warn(fmt.Sprintf("query stopped: %v", err))
			return false
		}
		f := s.files[s.next]
		s.next++

		lr, err := openLineReader(f.Path)
		if err != nil {
			s.warn(fmt.Sprintf("skipping %s: %v", f.Name, err))
			continue
		}
		s.logger.Debug("scanning log file", zap.String("file", f.Name), zap.Bool("active", f.IsActive))
		s.cur = lr
		s.curName = f.Name
		s.perFile = 0
		return true
	}
	return false
}

// stopped ends the stream once the context is done.
func (s *LineStream) stopped() bool {
	select {
	case <-s.ctx.Done():
		s.warn(fmt.Sprintf("query stopped: %v", s.ctx.Err()))
		s.finish()
		return true
	default:
		return false
	}
}

func (s *LineStream) closeCurrent() {
	if s.cur == nil {
		return
	}
	if n := s.cur.truncatedLines(); n > 0 {
		s.warn(fmt.Sprintf("%s: %d line(s) longer than %d bytes were truncated", s.curName, n, maxLineSize))
	}
	if err := s.cur.Close(); err != nil {
		s.warn(fmt.Sprintf("closing %s: %v", s.curName, err))
	}
	s.cur = nil
	s.curName = ""
}

func (s *LineStream) finish() {
	s.closeCurrent()
	s.done = true
}

func (s *LineStream) warn(msg string) {
	s.warnings = append(s.warnings, msg)
	s.logger.Warn(msg)
}

// Close releases the open file, if any. It is safe to call more than once.
func (s *LineStream) Close() error {
	s.finish()
	return nil
}

// Warnings returns the non-fatal problems met so far.
func (s *LineStream) Warnings() []string {
	return s.warnings
}

// Capped reports whether the global cap stopped the stream.
func (s *LineStream) Capped() bool {
	return s.capped
}

// Collect drains the stream into a slice and closes it.
func Collect(s *LineStream) []string {
	defer s.Close()
	lines := make([]string, 0)
	for {
		line, ok := s.Next()
		if !ok {
			return lines
		}
		lines = append(lines, line)
	}
}
