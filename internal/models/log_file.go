package models

import (
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// TimestampLayout is the fixed timestamp format found in log lines.
const TimestampLayout = "2006-01-02 15:04:05"

// LogFileDescriptor identifies one file that belongs to a query.
type LogFileDescriptor struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	IsActive bool   `json:"isActive"` // currently written file, no date/sequence suffix
}

// Timestamp is a log timestamp that serializes in the log's own layout.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// String returns the timestamp in TimestampLayout.
func (t Timestamp) String() string {
	return t.Format(TimestampLayout)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder so both encodings carry
// the same string form.
func (t *Timestamp) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(t.String())
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (t *Timestamp) DecodeMsgpack(dec *msgpack.Decoder) error {
	s, err := dec.DecodeString()
	if err != nil {
		return err
	}
	parsed, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// FileTimeRange summarizes the timestamps observed in one file.
// Both bounds are nil when no line carried a parseable timestamp.
type FileTimeRange struct {
	FileName     string     `json:"fileName" msgpack:"fileName"`
	EarliestTime *Timestamp `json:"earliestTime" msgpack:"earliestTime"`
	LatestTime   *Timestamp `json:"latestTime" msgpack:"latestTime"`
}

// DateLayout is the calendar date format used in queries and rotated file names.
const DateLayout = "2006-01-02"
