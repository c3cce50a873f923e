package logquery

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/logplatform/backend/internal/models"
	"github.com/logplatform/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(path string) models.LogFileDescriptor {
	return models.LogFileDescriptor{Name: filepath.Base(path), Path: path}
}

func wholeDay(keyword string) models.QueryCriteria {
	return models.QueryCriteria{Date: "2026-01-17", Keyword: keyword}
}

func TestLineStream_KeywordIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteLog(t, dir, "a.log",
		"2026-01-17 10:00:00 [WARN] connection TIMEOUT",
		"2026-01-17 10:00:01 [INFO] ok",
		"2026-01-17 10:00:02 [WARN] read timeout",
	)

	s := NewLineStream(context.Background(), []models.LogFileDescriptor{descriptor(path)}, wholeDay("TimeOut"), DefaultLimits(), nil)
	lines := Collect(s)

	assert.Equal(t, []string{
		"2026-01-17 10:00:00 [WARN] connection TIMEOUT",
		"2026-01-17 10:00:02 [WARN] read timeout",
	}, lines)
}

func TestLineStream_TimeWindow(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteLog(t, dir, "a.log",
		"2026-01-17 09:59:59 [INFO] before",
		"2026-01-17 10:00:00 [INFO] start",
		"2026-01-17 10:30:00 [ERROR] failed",
		"    at com.example.Worker.run(Worker.java:42)",
		"2026-01-17 10:30:59 [INFO] last second",
		"2026-01-17 10:31:00 [INFO] after",
	)
	criteria := models.QueryCriteria{Date: "2026-01-17", StartTime: "10:00:00", EndTime: "10:30:59"}

	lines := Collect(NewLineStream(context.Background(), []models.LogFileDescriptor{descriptor(path)}, criteria, DefaultLimits(), nil))

	assert.Equal(t, []string{
		"2026-01-17 10:00:00 [INFO] start",
		"2026-01-17 10:30:00 [ERROR] failed",
		"    at com.example.Worker.run(Worker.java:42)",
		"2026-01-17 10:30:59 [INFO] last second",
	}, lines)
}

func TestLineStream_PerFileCap(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLog(t, dir, "a.log", "a1", "a2", "a3")
	b := testutil.WriteLog(t, dir, "b.log", "b1", "b2", "b3")

	s := NewLineStream(context.Background(), []models.LogFileDescriptor{descriptor(a), descriptor(b)}, wholeDay(""), Limits{PerFile: 2, Total: 10}, nil)
	lines := Collect(s)

	assert.Equal(t, []string{"a1", "a2", "b1", "b2"}, lines)
	assert.False(t, s.Capped())
}

func TestLineStream_TotalCap(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLog(t, dir, "a.log", "a1", "a2")
	b := testutil.WriteLog(t, dir, "b.log", "b1", "b2")

	s := NewLineStream(context.Background(), []models.LogFileDescriptor{descriptor(a), descriptor(b)}, wholeDay(""), Limits{PerFile: 10, Total: 3}, nil)
	lines := Collect(s)

	assert.Equal(t, []string{"a1", "a2", "b1"}, lines)
	assert.True(t, s.Capped())
}

func TestLineStream_DefaultCaps(t *testing.T) {
	dir := t.TempDir()
	big := make([]string, DefaultPerFileLimit+10)
	for i := range big {
		big[i] = "2026-01-17 10:00:00 [INFO] line"
	}
	var files []models.LogFileDescriptor
	for _, name := range []string{"a.log", "b.log", "c.log"} {
		files = append(files, descriptor(testutil.WriteLog(t, dir, name, big...)))
	}

	s := NewLineStream(context.Background(), files, wholeDay(""), Limits{}, nil)
	lines := Collect(s)

	assert.Len(t, lines, DefaultTotalLimit)
	assert.True(t, s.Capped())
}

func TestLineStream_SkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLog(t, dir, "a.log", "a1")
	c := testutil.WriteLog(t, dir, "c.log", "c1")
	missing := filepath.Join(dir, "b.log")

	s := NewLineStream(context.Background(), []models.LogFileDescriptor{descriptor(a), descriptor(missing), descriptor(c)}, wholeDay(""), DefaultLimits(), nil)
	lines := Collect(s)

	assert.Equal(t, []string{"a1", "c1"}, lines)
	require.Len(t, s.Warnings(), 1)
	assert.Contains(t, s.Warnings()[0], "b.log")
}

func TestLineStream_ReadsCompressedFiles(t *testing.T) {
	dir := t.TempDir()
	gz := testutil.WriteGzipLog(t, dir, "a.2026-01-17.1.log.gz", "2026-01-17 10:00:00 [INFO] zipped")
	plain := testutil.WriteLog(t, dir, "a.log", "2026-01-17 11:00:00 [INFO] plain")

	lines := Collect(NewLineStream(context.Background(), []models.LogFileDescriptor{descriptor(gz), descriptor(plain)}, wholeDay(""), DefaultLimits(), nil))

	assert.Equal(t, []string{"2026-01-17 10:00:00 [INFO] zipped", "2026-01-17 11:00:00 [INFO] plain"}, lines)
}

func TestLineStream_TrimsCarriageReturns(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteLog(t, dir, "a.log", "2026-01-17 10:00:00 [INFO] windows\r")

	lines := Collect(NewLineStream(context.Background(), []models.LogFileDescriptor{descriptor(path)}, wholeDay("windows"), DefaultLimits(), nil))

	assert.Equal(t, []string{"2026-01-17 10:00:00 [INFO] windows"}, lines)
}

func TestLineStream_OversizedLineIsTruncated(t *testing.T) {
	dir := t.TempDir()
	long := "2026-01-17 11:00:00 [INFO] payload " + strings.Repeat("x", 2*maxLineSize)
	a := testutil.WriteLog(t, dir, "a.log",
		"2026-01-17 10:00:00 [INFO] before",
		long,
		"2026-01-17 12:00:00 [INFO] after",
	)
	b := testutil.WriteLog(t, dir, "b.log", "2026-01-17 13:00:00 [INFO] next file")

	s := NewLineStream(context.Background(), []models.LogFileDescriptor{descriptor(a), descriptor(b)}, wholeDay(""), DefaultLimits(), nil)
	lines := Collect(s)

	require.Len(t, lines, 4)
	assert.Equal(t, "2026-01-17 10:00:00 [INFO] before", lines[0])
	assert.Len(t, lines[1], maxLineSize)
	assert.Equal(t, long[:maxLineSize], lines[1])
	assert.Equal(t, "2026-01-17 12:00:00 [INFO] after", lines[2])
	assert.Equal(t, "2026-01-17 13:00:00 [INFO] next file", lines[3])
	require.Len(t, s.Warnings(), 1)
	assert.Contains(t, s.Warnings()[0], "truncated")
}

func TestLineStream_KeywordAfterOversizedLine(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteLog(t, dir, "task-center-info.2026-01-17.1.log",
		"2026-01-17 10:00:00 [INFO] before",
		"2026-01-17 11:00:00 [INFO] payload "+strings.Repeat("x", 2*maxLineSize),
		"2026-01-17 12:00:00 [INFO] after",
	)

	lines := Collect(NewLineStream(context.Background(), []models.LogFileDescriptor{descriptor(path)}, wholeDay("after"), DefaultLimits(), nil))

	assert.Equal(t, []string{"2026-01-17 12:00:00 [INFO] after"}, lines)
}

func TestLineStream_LineOfExactlyMaxSize(t *testing.T) {
	dir := t.TempDir()
	exact := strings.Repeat("y", maxLineSize)
	path := testutil.WriteLog(t, dir, "a.log", exact+"\r", "tail")

	s := NewLineStream(context.Background(), []models.LogFileDescriptor{descriptor(path)}, wholeDay(""), DefaultLimits(), nil)
	lines := Collect(s)

	assert.Equal(t, []string{exact, "tail"}, lines)
	assert.Empty(t, s.Warnings())
}

func TestLineStream_LastLineWithoutNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.log")
	require.NoError(t, os.WriteFile(path, []byte("a1\na2"), 0644))

	lines := Collect(NewLineStream(context.Background(), []models.LogFileDescriptor{descriptor(path)}, wholeDay(""), DefaultLimits(), nil))

	assert.Equal(t, []string{"a1", "a2"}, lines)
}

func TestLineStream_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLog(t, dir, "a.log", "a1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewLineStream(ctx, []models.LogFileDescriptor{descriptor(a)}, wholeDay(""), DefaultLimits(), nil)
	lines := Collect(s)

	assert.Empty(t, lines)
	assert.NotEmpty(t, s.Warnings())
}

func TestLineStream_CancelledMidFile(t *testing.T) {
	dir := t.TempDir()
	big := make([]string, 1000)
	for i := range big {
		big[i] = "2026-01-17 10:00:00 [INFO] line"
	}
	a := testutil.WriteLog(t, dir, "a.log", big...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewLineStream(ctx, []models.LogFileDescriptor{descriptor(a)}, wholeDay(""), DefaultLimits(), nil)

	_, ok := s.Next()
	require.True(t, ok)
	cancel()

	rest := Collect(s)
	assert.Empty(t, rest)
	require.Len(t, s.Warnings(), 1)
	assert.Contains(t, s.Warnings()[0], "query stopped")
}

func TestCollect_NoFiles(t *testing.T) {
	lines := Collect(NewLineStream(context.Background(), nil, wholeDay(""), DefaultLimits(), nil))
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}

func TestLineStream_CloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLog(t, dir, "a.log", "a1", "a2")

	s := NewLineStream(context.Background(), []models.LogFileDescriptor{descriptor(a)}, wholeDay(""), DefaultLimits(), nil)
	line, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, "a1", line)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	_, ok = s.Next()
	assert.False(t, ok)
}
