package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogType(t *testing.T) {
	tests := []struct {
		in      string
		want    LogType
		wantErr bool
	}{
		{"", LogTypeAll, false},
		{"all", LogTypeAll, false},
		{"INFO", LogTypeInfo, false},
		{" error ", LogTypeError, false},
		{"debug", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLogType(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestQueryCriteria_WithDefaults(t *testing.T) {
	q := QueryCriteria{Date: "2026-01-17"}.WithDefaults()
	assert.Equal(t, DayStart, q.StartTime)
	assert.Equal(t, DayEnd, q.EndTime)
	assert.Equal(t, LogTypeAll, q.LogType)
	assert.False(t, q.IsRemote())

	kept := QueryCriteria{StartTime: "10:00:00", EndTime: "11:00:00", LogType: LogTypeError}.WithDefaults()
	assert.Equal(t, "10:00:00", kept.StartTime)
	assert.Equal(t, "11:00:00", kept.EndTime)
	assert.Equal(t, LogTypeError, kept.LogType)
}
