package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lazypower/pulse/internal/advice"
	"github.com/lazypower/pulse/internal/lexicon"
)

// QuerySelfProfile is the cache query type of the self-profile.
const QuerySelfProfile = "self-profile"

var sweepOrder = []string{
	lexicon.DomainFatigue,
	lexicon.DomainSleep,
	lexicon.DomainCognitive,
	lexicon.DomainEmotion,
	lexicon.DomainWork,
}

// SweepResult holds every domain analysis run together. A failing domain is
// reported in Errors and leaves the others untouched.
type SweepResult struct {
	RunID           string                   `json:"run_id"`
	GeneratedAt     time.Time                `json:"generated_at"`
	TimeframeDays   int                      `json:"timeframe_days"`
	Stress          *StressReport            `json:"stress,omitempty"`
	Domains         map[string]*DomainReport `json:"domains"`
	Errors          map[string]string        `json:"errors"`
	Recommendations []string                 `json:"recommendations"`
}

// RunFullSweep runs the stress analysis and every composite domain in
// parallel. Failures are isolated per domain; only an invalid timeframe fails
// the sweep as a whole.
func (e *Engine) RunFullSweep(ctx context.Context, days int) (*SweepResult, error) {
	days, err := e.resolveDays(days)
	if err != nil {
		return nil, err
	}
	r := e.newRun("sweep")

	domains := e.Domains()
	var (
		g       errgroup.Group
		mu      sync.Mutex
		stress  *StressReport
		reports = make(map[string]*DomainReport, len(domains))
		errs    = make(map[string]string)
	)
	record := func(domain string, err error) {
		r.logger.Warn("sweep domain failed", zap.String("domain", domain), zap.Error(err))
		mu.Lock()
		errs[domain] = err.Error()
		mu.Unlock()
	}

	g.Go(func() error {
		defer recoverInto(lexicon.DomainStress, record)
		rep, err := e.RunStressTriggerAnalysis(ctx, days)
		if err != nil {
			record(lexicon.DomainStress, err)
			return nil
		}
		mu.Lock()
		stress = rep
		mu.Unlock()
		return nil
	})
	for _, domain := range domains {
		g.Go(func() error {
			defer recoverInto(domain, record)
			rep, err := e.RunDomainAnalysis(ctx, domain, days)
			if err != nil {
				record(domain, err)
				return nil
			}
			mu.Lock()
			reports[domain] = rep
			mu.Unlock()
			return nil
		})
	}
	// Goroutines never return an error; failures live in errs.
	_ = g.Wait()

	res := &SweepResult{
		RunID:         r.id,
		GeneratedAt:   r.now,
		TimeframeDays: days,
		Stress:        stress,
		Domains:       reports,
		Errors:        errs,
	}
	res.Recommendations = e.advice.RecommendAll(res.states())

	r.logger.Info("full sweep complete",
		zap.Int("domains", len(reports)),
		zap.Int("errors", len(errs)))
	return res, nil
}

// states lists the classified state of every successful analysis, stress first.
func (s *SweepResult) states() []advice.State {
	var out []advice.State
	if s.Stress != nil {
		out = append(out, s.Stress.State())
	}
	for _, d := range sweepOrder {
		if rep, ok := s.Domains[d]; ok {
			out = append(out, rep.State())
		}
	}
	return out
}

func recoverInto(domain string, record func(string, error)) {
	if v := recover(); v != nil {
		record(domain, fmt.Errorf("panic: %v", v))
	}
}

// Profile is the cached aggregate view of the user.
type Profile struct {
	RunID                string            `json:"run_id"`
	GeneratedAt          time.Time         `json:"generated_at"`
	TimeframeDays        int               `json:"timeframe_days"`
	Summary              string            `json:"summary"`
	StressLevel          int               `json:"stress_level"`
	StressClassification string            `json:"stress_classification"`
	TopTriggers          []string          `json:"top_triggers"`
	Scores               map[string]int    `json:"scores"`
	Labels               map[string]string `json:"labels"`
	Recommendations      []string          `json:"recommendations"`
	Errors               map[string]string `json:"errors,omitempty"`
	Cached               bool              `json:"cached"`
}

// RunSelfProfile returns the cached self-profile, or computes it from a full
// sweep and caches it. refresh skips the cache read.
func (e *Engine) RunSelfProfile(ctx context.Context, refresh bool) (*Profile, error) {
	if !refresh {
		if p, ok := e.CachedProfile(ctx); ok {
			return p, nil
		}
	}

	sweep, err := e.RunFullSweep(ctx, 0)
	if err != nil {
		return nil, err
	}
	p := profileFrom(sweep)

	if e.cache != nil && len(p.Errors) == 0 {
		if _, err := e.cache.Put(ctx, QuerySelfProfile, nil, p, 0); err != nil {
			e.logger.Warn("cache self-profile", zap.String("run_id", p.RunID), zap.Error(err))
		}
	}
	return p, nil
}

// CachedProfile returns the live cached self-profile without computing one.
// Cache failures count as a miss.
func (e *Engine) CachedProfile(ctx context.Context) (*Profile, bool) {
	if e.cache == nil {
		return nil, false
	}
	var p Profile
	ok, err := e.cache.Load(ctx, QuerySelfProfile, nil, &p)
	if err != nil {
		e.logger.Warn("read cached self-profile", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	p.Cached = true
	return &p, true
}

func profileFrom(s *SweepResult) *Profile {
	p := &Profile{
		RunID:           s.RunID,
		GeneratedAt:     s.GeneratedAt,
		TimeframeDays:   s.TimeframeDays,
		TopTriggers:     []string{},
		Scores:          make(map[string]int, len(s.Domains)),
		Labels:          make(map[string]string, len(s.Domains)),
		Recommendations: s.Recommendations,
		Errors:          s.Errors,
	}
	if s.Stress != nil {
		p.StressLevel = s.Stress.OverallStressLevel
		p.StressClassification = s.Stress.Classification
		for _, t := range s.Stress.TopTriggers {
			p.TopTriggers = append(p.TopTriggers, t.Keyword)
		}
	}
	for d, rep := range s.Domains {
		p.Scores[d] = rep.Score.Value
		p.Labels[d] = rep.Score.Classification
	}
	p.Summary = summarize(p)
	return p
}

// summarize renders the profile as a short paragraph.
func summarize(p *Profile) string {
	var b strings.Builder
	if p.StressClassification != "" {
		fmt.Fprintf(&b, "Stress is %s (%d/100).", p.StressClassification, p.StressLevel)
	}

	var parts []string
	for _, d := range sweepOrder {
		if label, ok := p.Labels[d]; ok {
			parts = append(parts, fmt.Sprintf("%s %s (%d)", d, label, p.Scores[d]))
		}
	}
	if len(parts) > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("Domains: " + strings.Join(parts, ", ") + ".")
	}

	if len(p.TopTriggers) > 0 {
		b.WriteString(" Top triggers: " + strings.Join(p.TopTriggers, ", ") + ".")
	}
	if len(p.Errors) > 0 {
		failed := make([]string, 0, len(p.Errors))
		for d := range p.Errors {
			failed = append(failed, d)
		}
		sort.Strings(failed)
		b.WriteString(" Unavailable: " + strings.Join(failed, ", ") + ".")
	}
	return strings.TrimSpace(b.String())
}
