// Package logquery locates, orders and filters rotated log files.
package logquery

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/logplatform/backend/internal/models"
	"github.com/logplatform/backend/internal/remote"
	"go.uber.org/zap"
)

// Resolver resolves server and app ids to their bindings.
type Resolver interface {
	ResolveApp(id string) (models.AppBinding, bool)
	ResolveServer(id string) (models.ServerBinding, bool)
	ListServers() []models.ServerBinding
	ListAppsForServer(serverID string) []models.AppBinding
}

// PeerQuerier runs a query on a peer instance.
type PeerQuerier interface {
	Query(ctx context.Context, server models.ServerBinding, criteria models.QueryCriteria) remote.Result
}

// Options configures an Engine.
type Options struct {
	// DefaultRoot and DefaultPrefix locate the log stream used when a query names no app.
	DefaultRoot    string
	DefaultPrefix  string
	Limits         Limits
	ReadCompressed bool
	// Now is the clock used to decide which date the active file belongs to.
	Now func() time.Time
}

// Result is the outcome of one query.
type Result struct {
	Lines    []string
	Warnings []string
	// Files is the number of files classified for a local query.
	Files int
	// Capped reports that the global cap cut the result short.
	Capped bool
	// Peer is set when the query was delegated to a peer.
	Peer *remote.Result
}

// Engine answers log queries. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	opts       Options
	resolver   Resolver
	peers      PeerQuerier
	classifier Classifier
	logger     *zap.Logger
}

// NewEngine creates a query engine.
func NewEngine(opts Options, resolver Resolver, peers PeerQuerier, logger *zap.Logger) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Limits = opts.Limits.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		opts:       opts,
		resolver:   resolver,
		peers:      peers,
		classifier: Classifier{ReadCompressed: opts.ReadCompressed},
		logger:     logger.Named("logquery"),
	}
}

// location is a resolved log directory and stream prefix.
type location struct {
	root   string
	prefix string
}

// Query runs one query. A criteria with a server id is delegated to that
// peer without touching local disk. Not-found conditions produce an empty
// result with a warning, never an error.
func (e *Engine) Query(ctx context.Context, criteria models.QueryCriteria) *Result {
	criteria = criteria.WithDefaults()
	log := e.logger.With(
		zap.String("date", criteria.Date),
		zap.String("keyword", criteria.Keyword),
		zap.String("start", criteria.StartTime),
		zap.String("end", criteria.EndTime),
		zap.String("file", criteria.FileName),
		zap.String("appId", criteria.AppID),
		zap.String("logType", string(criteria.LogType)))

	if criteria.IsRemote() {
		return e.queryRemote(ctx, criteria, log)
	}

	loc, ok := e.locate(criteria.AppID)
	if !ok {
		log.Warn("app not found")
		return emptyResult("app not found: " + criteria.AppID)
	}

	files := e.classifier.Classify(ClassifyRequest{
		RootDir:  loc.root,
		Prefix:   loc.prefix,
		Date:     criteria.Date,
		LogType:  criteria.LogType,
		FileName: criteria.FileName,
		Today:    e.today(),
	})
	if len(files) == 0 {
		log.Info("no matching log files", zap.String("root", loc.root), zap.String("prefix", loc.prefix))
		return emptyResult()
	}
	NewSequencer(StreamPrefixes(loc.prefix, criteria.LogType)...).Sort(files)

	stream := NewLineStream(ctx, files, criteria, e.opts.Limits, log)
	lines := Collect(stream)
	log.Info("query done", zap.Int("files", len(files)), zap.Int("lines", len(lines)), zap.Bool("capped", stream.Capped()))

	return &Result{
		Lines:    lines,
		Warnings: stream.Warnings(),
		Files:    len(files),
		Capped:   stream.Capped(),
	}
}

func (e *Engine) queryRemote(ctx context.Context, criteria models.QueryCriteria, log *zap.Logger) *Result {
	log = log.With(zap.String("serverId", criteria.ServerID))
	if e.resolver == nil {
		return emptyResult("server not found: " + criteria.ServerID)
	}
	server, ok := e.resolver.ResolveServer(criteria.ServerID)
	if !ok {
		log.Warn("server not found")
		return emptyResult("server not found: " + criteria.ServerID)
	}
	if e.peers == nil {
		return emptyResult("remote queries are not configured")
	}

	peer := e.peers.Query(ctx, server, criteria)
	res := &Result{Lines: peer.Lines, Warnings: make([]string, 0), Peer: &peer}
	if peer.Status != remote.StatusOK {
		res.Warnings = append(res.Warnings, string(peer.Status)+": "+peer.Message)
	}
	log.Info("remote query done", zap.String("status", string(peer.Status)), zap.Int("lines", len(peer.Lines)))
	return res
}

// AvailableDates lists the dates for which the stream(s) have files, in
// ascending order. Rotated files contribute their embedded date and the
// active file contributes today.
func (e *Engine) AvailableDates(ctx context.Context, appID string, logType models.LogType) []string {
	dates := make([]string, 0)
	loc, ok := e.locate(appID)
	if !ok {
		e.logger.Warn("app not found", zap.String("appId", appID))
		return dates
	}
	if logType == "" {
		logType = models.LogTypeAll
	}

	entries, err := os.ReadDir(loc.root)
	if err != nil {
		e.logger.Info("log directory not readable", zap.String("root", loc.root), zap.Error(err))
		return dates
	}

	prefixes := StreamPrefixes(loc.prefix, logType)
	seq := NewSequencer(prefixes...)
	today := e.today()
	seen := make(map[string]struct{})
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		name := entry.Name()
		if !isRegularFile(entry, filepath.Join(loc.root, name)) {
			continue
		}
		if key := seq.Key(name); key.OK {
			if e.classifier.hasRotationSuffix(name) {
				seen[key.Date] = struct{}{}
			}
			continue
		}
		for _, p := range prefixes {
			if name == p+activeSuffix {
				seen[today] = struct{}{}
			}
		}
	}

	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// DateFiles lists the files of date in query order together with the time
// range each one covers. A file that cannot be read is still listed, with
// no range.
func (e *Engine) DateFiles(ctx context.Context, date, appID string, logType models.LogType) []models.FileTimeRange {
	ranges := make([]models.FileTimeRange, 0)
	loc, ok := e.locate(appID)
	if !ok {
		e.logger.Warn("app not found", zap.String("appId", appID))
		return ranges
	}
	if logType == "" {
		logType = models.LogTypeAll
	}

	files := e.classifier.Classify(ClassifyRequest{
		RootDir: loc.root,
		Prefix:  loc.prefix,
		Date:    date,
		LogType: logType,
		Today:   e.today(),
	})
	NewSequencer(StreamPrefixes(loc.prefix, logType)...).Sort(files)

	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		r, err := AnalyzeTimeRange(f)
		if err != nil {
			e.logger.Warn("analyzing file failed", zap.String("file", f.Name), zap.Error(err))
			r = models.FileTimeRange{FileName: f.Name}
		}
		ranges = append(ranges, r)
	}
	return ranges
}

// locate resolves an app id to its log directory; an empty id selects the
// default stream.
func (e *Engine) locate(appID string) (location, bool) {
	if appID == "" {
		return location{root: e.opts.DefaultRoot, prefix: e.opts.DefaultPrefix}, true
	}
	if e.resolver == nil {
		return location{}, false
	}
	app, ok := e.resolver.ResolveApp(appID)
	if !ok {
		return location{}, false
	}
	return location{root: app.LogPath, prefix: app.LogPrefix}, true
}

func (e *Engine) today() string {
	return e.opts.Now().Format(models.DateLayout)
}

func emptyResult(warnings ...string) *Result {
	if warnings == nil {
		warnings = make([]string, 0)
	}
	return &Result{Lines: make([]string, 0), Warnings: warnings}
}
