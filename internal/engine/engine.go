package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lazypower/pulse/internal/advice"
	"github.com/lazypower/pulse/internal/cache"
	"github.com/lazypower/pulse/internal/causal"
	"github.com/lazypower/pulse/internal/composite"
	"github.com/lazypower/pulse/internal/corpus"
	perrors "github.com/lazypower/pulse/internal/errors"
	"github.com/lazypower/pulse/internal/lexicon"
	"github.com/lazypower/pulse/internal/signal"
)

// Corpus is the read side of the message store the engine analyzes.
type Corpus interface {
	FetchWindow(ctx context.Context, start, end time.Time, sender corpus.Sender) ([]corpus.Message, error)
}

// Options configures an Engine. Zero values select the built-in defaults.
type Options struct {
	Lexicons lexicon.Set
	// Descriptors are used as given. When nil, the built-in descriptors
	// take their vocabulary from Lexicons.
	Descriptors           map[string]composite.Descriptor
	SignificanceThreshold float64
	Severity              signal.SeverityThresholds
	Trend                 signal.TrendThresholds
	CauseDomains          map[string][]string
	Rules                 []advice.Rule
	Cache                 *cache.ProfileCache
	Location              *time.Location
	TimeframeDays         int
	MinMessages           int
	// Sender restricts which side of the conversation is analyzed.
	Sender corpus.Sender
	Now    func() time.Time
	Logger *zap.Logger
}

// Engine orchestrates windowed fetches, scoring, ranking and caching.
// It holds no mutable analysis state; every Run method works on its own
// snapshot of the corpus.
type Engine struct {
	corpus      Corpus
	lexicons    lexicon.Set
	descriptors map[string]composite.Descriptor
	comparator  signal.Comparator
	severity    signal.SeverityThresholds
	trend       signal.TrendThresholds
	ranker      *causal.Ranker
	advice      *advice.Engine
	cache       *cache.ProfileCache
	loc         *time.Location
	timeframe   int
	minMessages int
	sender      corpus.Sender
	now         func() time.Time
	logger      *zap.Logger

	cron *cron.Cron
	jobs sync.WaitGroup
}

// New creates an Engine reading from c.
func New(c Corpus, opts Options) *Engine {
	e := &Engine{
		corpus:      c,
		lexicons:    opts.Lexicons,
		descriptors: opts.Descriptors,
		comparator:  signal.NewComparator(opts.SignificanceThreshold),
		severity:    opts.Severity,
		trend:       opts.Trend,
		advice:      advice.New(opts.Rules),
		cache:       opts.Cache,
		loc:         opts.Location,
		timeframe:   opts.TimeframeDays,
		minMessages: opts.MinMessages,
		sender:      opts.Sender,
		now:         opts.Now,
		logger:      opts.Logger,
	}
	if e.lexicons == nil {
		e.lexicons = lexicon.Defaults()
	}
	if e.descriptors == nil {
		e.descriptors = composite.Defaults()
		for domain, d := range e.descriptors {
			e.descriptors[domain] = d.WithLexicon(e.lexicons.Get(domain))
		}
	}
	if e.severity == (signal.SeverityThresholds{}) {
		e.severity = signal.DefaultSeverityThresholds()
	}
	if e.trend == (signal.TrendThresholds{}) {
		e.trend = signal.DefaultTrendThresholds()
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.timeframe <= 0 {
		e.timeframe = causal.DefaultTimeframeDays
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.ranker = causal.NewRanker(opts.CauseDomains, e.loc)
	return e
}

// Domains returns the composite domains the engine can score, in sweep order.
func (e *Engine) Domains() []string {
	var out []string
	for _, d := range sweepOrder {
		if _, ok := e.descriptors[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Advice exposes the recommendation engine.
func (e *Engine) Advice() *advice.Engine {
	return e.advice
}

// resolveDays applies the default timeframe to 0 and rejects negatives.
func (e *Engine) resolveDays(days int) (int, error) {
	if days < 0 {
		return 0, perrors.NewValidation("timeframe_days", fmt.Sprintf("must not be negative, got %d", days))
	}
	if days == 0 {
		return e.timeframe, nil
	}
	return days, nil
}

// run carries the identity of one invocation through logs and results.
type run struct {
	id     string
	now    time.Time
	logger *zap.Logger
}

func (e *Engine) newRun(kind string) run {
	id := uuid.NewString()
	return run{
		id:     id,
		now:    e.now(),
		logger: e.logger.With(zap.String("run_id", id), zap.String("analysis", kind)),
	}
}

// fetch reads w for the configured sender. Errors are already coded by the accessor.
func (e *Engine) fetch(ctx context.Context, w corpus.Window) ([]corpus.Message, error) {
	return e.corpus.FetchWindow(ctx, w.Start, w.End, e.sender)
}
