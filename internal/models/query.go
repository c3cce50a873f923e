package models

import (
	"fmt"
	"strings"
)

// LogType selects the log stream(s) a query reads.
type LogType string

const (
	LogTypeInfo  LogType = "info"
	LogTypeError LogType = "error"
	LogTypeAll   LogType = "all"
)

// ParseLogType converts a request value to a LogType. Empty means all.
func ParseLogType(s string) (LogType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return LogTypeAll, nil
	case "info":
		return LogTypeInfo, nil
	case "error":
		return LogTypeError, nil
	default:
		return "", fmt.Errorf("unknown log type: %q", s)
	}
}

// Default query window bounds.
const (
	DayStart = "00:00:00"
	DayEnd   = "23:59:59"
)

// QueryCriteria describes one log query. Optional fields are empty when absent.
// StartTime and EndTime are always HH:MM:SS.
type QueryCriteria struct {
	Date      string  `json:"date"`
	Keyword   string  `json:"keyword,omitempty"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	FileName  string  `json:"file,omitempty"`
	AppID     string  `json:"appId,omitempty"`
	ServerID  string  `json:"serverId,omitempty"`
	LogType   LogType `json:"logType"`
}

// WithDefaults returns a copy with unset window bounds and log type filled in.
func (q QueryCriteria) WithDefaults() QueryCriteria {
	if q.StartTime == "" {
		q.StartTime = DayStart
	}
	if q.EndTime == "" {
		q.EndTime = DayEnd
	}
	if q.LogType == "" {
		q.LogType = LogTypeAll
	}
	return q
}

// IsRemote reports whether the query targets a peer server.
func (q QueryCriteria) IsRemote() bool {
	return q.ServerID != ""
}
