package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lazypower/pulse/internal/advice"
	"github.com/lazypower/pulse/internal/causal"
	"github.com/lazypower/pulse/internal/composite"
	"github.com/lazypower/pulse/internal/corpus"
	perrors "github.com/lazypower/pulse/internal/errors"
	"github.com/lazypower/pulse/internal/lexicon"
	"github.com/lazypower/pulse/internal/signal"
)

// CauseReport is the result of a cause analysis.
type CauseReport struct {
	RunID            string                `json:"run_id"`
	GeneratedAt      time.Time             `json:"generated_at"`
	Question         string                `json:"question"`
	TimeframeDays    int                   `json:"timeframe_days"`
	Window           corpus.Window         `json:"window"`
	Baseline         corpus.Window         `json:"baseline"`
	RecentMessages   int                   `json:"recent_messages"`
	BaselineMessages int                   `json:"baseline_messages"`
	Changes          []signal.ChangeRecord `json:"changes"`
	Hypotheses       []causal.Hypothesis   `json:"hypotheses"`
	Summary          string                `json:"summary"`
}

// RunCauseAnalysis compares the last days against the equally long window
// before them and ranks the stress topics that changed as likely causes of
// what the question asks about. An empty corpus yields an empty result.
func (e *Engine) RunCauseAnalysis(ctx context.Context, question string, days int) (*CauseReport, error) {
	if _, err := causal.Validate(question, days); err != nil {
		return nil, err
	}
	days, err := e.resolveDays(days)
	if err != nil {
		return nil, err
	}
	r := e.newRun("cause")

	window, err := corpus.LastDays(r.now, days)
	if err != nil {
		return nil, err
	}
	baselineWindow := window.Preceding()

	recent, err := e.fetch(ctx, window)
	if err != nil {
		return nil, err
	}
	baseline, err := e.fetch(ctx, baselineWindow)
	if err != nil {
		return nil, err
	}

	changes := e.comparator.DetectChanges(recent, baseline, triggerKeywords(e.lexicons.Stress()))
	if changes == nil {
		changes = []signal.ChangeRecord{}
	}
	hyps := e.ranker.Rank(question, changes, recent)
	if hyps == nil {
		hyps = []causal.Hypothesis{}
	}

	report := &CauseReport{
		RunID:            r.id,
		GeneratedAt:      r.now,
		Question:         question,
		TimeframeDays:    days,
		Window:           window,
		Baseline:         baselineWindow,
		RecentMessages:   len(recent),
		BaselineMessages: len(baseline),
		Changes:          changes,
		Hypotheses:       hyps,
		Summary:          causal.Summarize(hyps),
	}

	r.logger.Info("cause analysis complete",
		zap.Int("recent", report.RecentMessages),
		zap.Int("baseline", report.BaselineMessages),
		zap.Int("changes", len(changes)),
		zap.Int("hypotheses", len(hyps)))
	return report, nil
}

// DomainReport is the result of one composite domain analysis.
type DomainReport struct {
	RunID         string        `json:"run_id"`
	Domain        string        `json:"domain"`
	GeneratedAt   time.Time     `json:"generated_at"`
	TimeframeDays int           `json:"timeframe_days"`
	Window        corpus.Window `json:"window"`
	composite.Result
	Recommendations []string `json:"recommendations"`
}

// State returns the classified state the recommendation engine consumes.
func (r *DomainReport) State() advice.State {
	return advice.State{
		Domain:  r.Domain,
		Score:   r.Score.Value,
		Label:   r.Score.Classification,
		SubType: r.SubType,
		Flags:   r.Flags,
	}
}

// RunDomainAnalysis scores one composite domain over the last days.
func (e *Engine) RunDomainAnalysis(ctx context.Context, domain string, days int) (*DomainReport, error) {
	d, ok := e.descriptors[domain]
	if !ok {
		return nil, perrors.NewValidation("domain", fmt.Sprintf("unknown domain %q", domain))
	}
	days, err := e.resolveDays(days)
	if err != nil {
		return nil, err
	}
	r := e.newRun(domain)

	window, err := corpus.LastDays(r.now, days)
	if err != nil {
		return nil, err
	}
	msgs, err := e.fetch(ctx, window)
	if err != nil {
		return nil, err
	}

	report := &DomainReport{
		RunID:         r.id,
		Domain:        domain,
		GeneratedAt:   r.now,
		TimeframeDays: days,
		Window:        window,
		Result: d.Analyze(msgs, days, composite.Options{
			Location:    e.loc,
			MinMessages: e.minMessages,
		}),
	}
	report.Recommendations = e.advice.Recommend(report.State())

	r.logger.Info("domain analysis complete",
		zap.Int("messages", report.Inputs.TotalMessages),
		zap.Int("score", report.Score.Value),
		zap.String("classification", report.Score.Classification),
		zap.String("sub_type", report.SubType))
	return report, nil
}

// RunFatigueAnalysis scores fatigue over the last days.
func (e *Engine) RunFatigueAnalysis(ctx context.Context, days int) (*DomainReport, error) {
	return e.RunDomainAnalysis(ctx, lexicon.DomainFatigue, days)
}

// RunSleepAnalysis scores sleep disruption over the last days.
func (e *Engine) RunSleepAnalysis(ctx context.Context, days int) (*DomainReport, error) {
	return e.RunDomainAnalysis(ctx, lexicon.DomainSleep, days)
}

// RunCognitiveAnalysis scores cognitive strain over the last days.
func (e *Engine) RunCognitiveAnalysis(ctx context.Context, days int) (*DomainReport, error) {
	return e.RunDomainAnalysis(ctx, lexicon.DomainCognitive, days)
}

// RunEmotionAnalysis scores emotional distress over the last days.
func (e *Engine) RunEmotionAnalysis(ctx context.Context, days int) (*DomainReport, error) {
	return e.RunDomainAnalysis(ctx, lexicon.DomainEmotion, days)
}

// RunWorkStressAnalysis scores work-related stress over the last days.
func (e *Engine) RunWorkStressAnalysis(ctx context.Context, days int) (*DomainReport, error) {
	return e.RunDomainAnalysis(ctx, lexicon.DomainWork, days)
}
