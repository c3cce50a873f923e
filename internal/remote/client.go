// Package remote queries peer log platform instances over HTTP.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/logplatform/backend/internal/models"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"
)

// Status classifies the outcome of one peer call.
type Status string

const (
	// StatusOK means the peer answered success=true.
	StatusOK Status = "ok"
	// StatusRejected means the peer answered success=false.
	StatusRejected Status = "rejected"
	// StatusUnreachable covers transport errors and non-2xx responses.
	StatusUnreachable Status = "unreachable"
	// StatusInvalid means the peer's body was not a valid envelope.
	StatusInvalid Status = "invalid"
)

// DefaultTimeout bounds each peer call.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a peer response is read.
const maxBodySize = 64 << 20

// Peer API paths, relative to the peer's base URL.
const (
	QueryPath = "/api/logs/query"
	DatesPath = "/api/logs/dates"
	FilesPath = "/api/logs/files/"
)

// Result is the normalized answer of a remote line query. Lines is never
// nil; it is empty for any status other than StatusOK.
type Result struct {
	Status  Status   `json:"status"`
	Message string   `json:"message,omitempty"`
	Lines   []string `json:"lines"`
}

// DatesResult is the normalized answer of a remote dates query.
type DatesResult struct {
	Status  Status
	Message string
	Dates   []string
}

// FilesResult is the normalized answer of a remote date-files query.
type FilesResult struct {
	Status  Status
	Message string
	Files   []models.FileTimeRange
}

// Client performs single best-effort calls against peers: no retries and
// no circuit breaking, one deadline per call.
type Client struct {
	httpClient *http.Client
	parsers    fastjson.ParserPool
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient creates a peer client. A non-positive timeout selects DefaultTimeout.
func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{},
		timeout:    timeout,
		logger:     logger.Named("remote"),
	}
}

// BaseURL returns the peer's root URL. A virtual path (reverse proxy mount)
// replaces the port.
func BaseURL(server models.ServerBinding) string {
	var b strings.Builder
	b.WriteString("http://")
	b.WriteString(server.Host)
	if v := strings.Trim(server.Virtual, "/"); v != "" {
		b.WriteString("/")
		b.WriteString(v)
	} else if server.Port > 0 {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(server.Port))
	}
	return b.String()
}

// Query runs criteria against the peer's own query endpoint and trusts the
// peer's caps and ordering.
func (c *Client) Query(ctx context.Context, server models.ServerBinding, criteria models.QueryCriteria) Result {
	criteria = criteria.WithDefaults()
	params := url.Values{}
	params.Set("date", criteria.Date)
	params.Set("startTime", peerClock(criteria.StartTime, false))
	params.Set("endTime", peerClock(criteria.EndTime, true))
	if criteria.Keyword != "" {
		params.Set("keyword", criteria.Keyword)
	}
	if criteria.FileName != "" {
		params.Set("file", criteria.FileName)
	}

	result := Result{Lines: make([]string, 0)}
	result.Status, result.Message = c.fetch(ctx, server, QueryPath, params, func(data *fastjson.Value) error {
		lines, err := stringArray(data)
		if err != nil {
			return err
		}
		result.Lines = lines
		return nil
	})
	if result.Status != StatusOK {
		result.Lines = make([]string, 0)
	}
	return result
}

// peerClock sends a whole-minute bound (HH:MM:00 as start, HH:MM:59 as end)
// as HH:MM. Every peer generation widens HH:MM to the same second, while
// some append the seconds unconditionally and cannot take HH:MM:SS.
func peerClock(s string, isEnd bool) string {
	if len(s) != len("15:04:05") {
		return s
	}
	if (!isEnd && s[5:] == ":00") || (isEnd && s[5:] == ":59") {
		return s[:5]
	}
	return s
}

// Dates fetches the peer's available dates.
func (c *Client) Dates(ctx context.Context, server models.ServerBinding) DatesResult {
	result := DatesResult{Dates: make([]string, 0)}
	result.Status, result.Message = c.fetch(ctx, server, DatesPath, nil, func(data *fastjson.Value) error {
		dates, err := stringArray(data)
		if err != nil {
			return err
		}
		result.Dates = dates
		return nil
	})
	if result.Status != StatusOK {
		result.Dates = make([]string, 0)
	}
	return result
}

// DateFiles fetches the peer's files for date with their time ranges.
func (c *Client) DateFiles(ctx context.Context, server models.ServerBinding, date string) FilesResult {
	result := FilesResult{Files: make([]models.FileTimeRange, 0)}
	result.Status, result.Message = c.fetch(ctx, server, FilesPath+url.PathEscape(date), nil, func(data *fastjson.Value) error {
		files, err := fileRanges(data)
		if err != nil {
			return err
		}
		result.Files = files
		return nil
	})
	if result.Status != StatusOK {
		result.Files = make([]models.FileTimeRange, 0)
	}
	return result
}

// fetch performs one GET and hands the envelope's data to decode. The
// fastjson value is only valid inside decode.
func (c *Client) fetch(ctx context.Context, server models.ServerBinding, path string, params url.Values, decode func(*fastjson.Value) error) (Status, string) {
	endpoint := BaseURL(server) + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	log := c.logger.With(zap.String("server", server.ID), zap.String("url", endpoint))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Warn("building peer request failed", zap.Error(err))
		return StatusUnreachable, fmt.Sprintf("building request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("peer call failed", zap.Error(err))
		return StatusUnreachable, fmt.Sprintf("calling peer: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Warn("reading peer response failed", zap.Error(err))
		return StatusUnreachable, fmt.Sprintf("reading response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("peer returned error status", zap.Int("status", resp.StatusCode))
		return StatusUnreachable, fmt.Sprintf("peer returned status %d", resp.StatusCode)
	}

	p := c.parsers.Get()
	defer c.parsers.Put(p)
	v, err := p.ParseBytes(body)
	if err != nil {
		log.Warn("peer response is not JSON", zap.Error(err))
		return StatusInvalid, fmt.Sprintf("malformed response: %v", err)
	}
	success := v.Get("success")
	if success == nil || (success.Type() != fastjson.TypeTrue && success.Type() != fastjson.TypeFalse) {
		log.Warn("peer response has no success flag")
		return StatusInvalid, "malformed response: missing success flag"
	}
	message := string(v.GetStringBytes("message"))
	if success.Type() == fastjson.TypeFalse {
		log.Warn("peer rejected request", zap.String("message", message))
		return StatusRejected, message
	}
	if err := decode(v.Get("data")); err != nil {
		log.Warn("peer data is malformed", zap.Error(err))
		return StatusInvalid, fmt.Sprintf("malformed data: %v", err)
	}

	log.Debug("peer call done", zap.Duration("elapsed", time.Since(start)))
	return StatusOK, message
}

// stringArray decodes a JSON array of strings. A missing or null value is empty.
func stringArray(v *fastjson.Value) ([]string, error) {
	out := make([]string, 0)
	if v == nil || v.Type() == fastjson.TypeNull {
		return out, nil
	}
	items, err := v.Array()
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		b, err := item.StringBytes()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, string(b))
	}
	return out, nil
}

// fileRanges decodes a JSON array of {fileName, earliestTime, latestTime}.
// Bounds that are null or not a timestamp (older peers send a placeholder
// string) decode as nil.
func fileRanges(v *fastjson.Value) ([]models.FileTimeRange, error) {
	out := make([]models.FileTimeRange, 0)
	if v == nil || v.Type() == fastjson.TypeNull {
		return out, nil
	}
	items, err := v.Array()
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		if item.Type() != fastjson.TypeObject {
			return nil, fmt.Errorf("item %d: expected object", i)
		}
		out = append(out, models.FileTimeRange{
			FileName:     string(item.GetStringBytes("fileName")),
			EarliestTime: timestampField(item, "earliestTime"),
			LatestTime:   timestampField(item, "latestTime"),
		})
	}
	return out, nil
}

func timestampField(v *fastjson.Value, key string) *models.Timestamp {
	s := string(v.GetStringBytes(key))
	if len(s) < len(models.TimestampLayout) {
		return nil
	}
	t, err := time.Parse(models.TimestampLayout, s[:len(models.TimestampLayout)])
	if err != nil {
		return nil
	}
	return models.NewTimestamp(t)
}
