package logquery

import (
	"errors"
	"fmt"

	"github.com/logplatform/backend/internal/models"
)

var (
	// ErrInvalidDate is returned for a date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidTime is returned for a window bound that is not HH:MM or HH:MM:SS.
	ErrInvalidTime = errors.New("invalid time")
)

// QueryParams is the raw, string-typed query input of the HTTP and CLI surfaces.
type QueryParams struct {
	Date      string
	Keyword   string
	StartTime string
	EndTime   string
	FileName  string
	AppID     string
	ServerID  string
	LogType   string
}

// BuildCriteria validates raw parameters and produces query criteria.
// Minute-granularity bounds are widened to the full minute: HH:MM becomes
// HH:MM:00 for the start and HH:MM:59 for the end.
func BuildCriteria(p QueryParams) (models.QueryCriteria, error) {
	if !ValidDate(p.Date) {
		return models.QueryCriteria{}, fmt.Errorf("%w: %q", ErrInvalidDate, p.Date)
	}
	start, err := ExpandClock(p.StartTime, false)
	if err != nil {
		return models.QueryCriteria{}, err
	}
	end, err := ExpandClock(p.EndTime, true)
	if err != nil {
		return models.QueryCriteria{}, err
	}
	logType, err := models.ParseLogType(p.LogType)
	if err != nil {
		return models.QueryCriteria{}, err
	}

	return models.QueryCriteria{
		Date:      p.Date,
		Keyword:   p.Keyword,
		StartTime: start,
		EndTime:   end,
		FileName:  p.FileName,
		AppID:     p.AppID,
		ServerID:  p.ServerID,
		LogType:   logType,
	}, nil
}

// ExpandClock normalizes a window bound to HH:MM:SS. An empty bound is the
// start or end of the day.
func ExpandClock(s string, isEnd bool) (string, error) {
	switch len(s) {
	case 0:
		if isEnd {
			return models.DayEnd, nil
		}
		return models.DayStart, nil
	case 5:
		if isEnd {
			s += ":59"
		} else {
			s += ":00"
		}
	case 8:
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	h, m, sec := parseInt2(s[0:2]), parseInt2(s[3:5]), parseInt2(s[6:8])
	if s[2] != ':' || s[5] != ':' || h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return s, nil
}
