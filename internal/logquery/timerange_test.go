package logquery

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/logplatform/backend/internal/models"
	"github.com/logplatform/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeTimeRange(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteLog(t, dir, "task-center-info.2026-01-17.1.log",
		"2026-01-17 10:05:00 [INFO] second",
		"2026-01-17 09:00:00 [INFO] written late",
		"    at com.example.Worker.run",
		"2026-13-45 99:99:99 not a real timestamp",
		"2026-01-17 11:00:00 [INFO] last",
	)

	r, err := AnalyzeTimeRange(descriptor(path))
	require.NoError(t, err)

	assert.Equal(t, "task-center-info.2026-01-17.1.log", r.FileName)
	require.NotNil(t, r.EarliestTime)
	require.NotNil(t, r.LatestTime)
	assert.Equal(t, "2026-01-17 09:00:00", r.EarliestTime.String())
	assert.Equal(t, "2026-01-17 11:00:00", r.LatestTime.String())
}

func TestAnalyzeTimeRange_NoTimestamps(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteLog(t, dir, "a.log", "banner", "", "    at x")

	r, err := AnalyzeTimeRange(descriptor(path))
	require.NoError(t, err)
	assert.Equal(t, "a.log", r.FileName)
	assert.Nil(t, r.EarliestTime)
	assert.Nil(t, r.LatestTime)
}

func TestAnalyzeTimeRange_OversizedLine(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteLog(t, dir, "task-center-info.2026-01-17.1.log",
		"2026-01-17 10:00:00 [INFO] before",
		"2026-01-17 13:00:00 [INFO] payload "+strings.Repeat("x", 2*maxLineSize),
		"2026-01-17 12:00:00 [INFO] after",
	)

	r, err := AnalyzeTimeRange(descriptor(path))
	require.NoError(t, err)
	require.NotNil(t, r.EarliestTime)
	require.NotNil(t, r.LatestTime)
	assert.Equal(t, "2026-01-17 10:00:00", r.EarliestTime.String())
	assert.Equal(t, "2026-01-17 13:00:00", r.LatestTime.String())
}

func TestAnalyzeTimeRange_MissingFile(t *testing.T) {
	r, err := AnalyzeTimeRange(descriptor(filepath.Join(t.TempDir(), "gone.log")))
	assert.Error(t, err)
	assert.Equal(t, "gone.log", r.FileName)
}

func TestFileTimeRange_JSON(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteLog(t, dir, "a.log", "2026-01-17 09:00:00 x")
	r, err := AnalyzeTimeRange(descriptor(path))
	require.NoError(t, err)

	data, err := json.Marshal([]models.FileTimeRange{r, {FileName: "empty.log"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"fileName":"a.log","earliestTime":"2026-01-17 09:00:00","latestTime":"2026-01-17 09:00:00"},
		{"fileName":"empty.log","earliestTime":null,"latestTime":null}
	]`, string(data))
}
