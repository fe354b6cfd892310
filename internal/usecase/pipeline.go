package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"stockpulse/internal/domain"
	"stockpulse/internal/ports"
	"stockpulse/internal/state"
)

// PipelineDeps wires all collaborators into the orchestration pipeline.
type PipelineDeps struct {
	Source      ports.PostSource
	Analyzer    ports.Analyzer
	Validator   ports.Validator
	Pacer       ports.Pacer
	Dedup       *state.Dedup
	Store       *state.Store
	Frequencies *state.Frequencies
	Logger      *slog.Logger
	Now         func() time.Time
}

// Pipeline runs one ingestion-and-analysis cycle at a time: fetch a batch,
// filter already-seen posts, pace sequential analyzer calls, validate each
// response, and fold accepted outcomes into the shared state.
type Pipeline struct {
	source      ports.PostSource
	analyzer    ports.Analyzer
	validator   ports.Validator
	pacer       ports.Pacer
	dedup       *state.Dedup
	store       *state.Store
	frequencies *state.Frequencies
	logger      *slog.Logger
	now         func() time.Time
}

// CycleSummary reports what one cycle did.
type CycleSummary struct {
	Fetched     int
	NewAccepted int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:      deps.Source,
		analyzer:    deps.Analyzer,
		validator:   deps.Validator,
		pacer:       deps.Pacer,
		dedup:       deps.Dedup,
		store:       deps.Store,
		frequencies: deps.Frequencies,
		logger:      logger,
		now:         now,
	}
}

// RunCycle executes one full fetch-filter-analyze-store pass. A fetch failure
// is logged and treated as an empty batch; failures on individual posts never
// stop the rest of the batch.
func (p *Pipeline) RunCycle(ctx context.Context, fetchLimit int) CycleSummary {
	var summary CycleSummary

	posts, err := p.source.FetchLatest(ctx, fetchLimit)
	if err != nil {
		p.logger.Warn("fetch failed, skipping cycle", "error", err)
		return summary
	}
	summary.Fetched = len(posts)

	if len(posts) == 0 {
		p.logger.Info("no posts fetched in this cycle")
		return summary
	}

	firstUnseen := true
	for _, post := range posts {
		if p.dedup.Seen(post.ID) {
			p.logger.Debug("post already processed, skipping", "id", post.ID)
			continue
		}

		// The delay exists only to respect the analyzer's per-minute
		// quota, so the first call of a cycle goes out immediately.
		if !firstUnseen {
			if err := p.pacer.Wait(ctx); err != nil {
				p.logger.Warn("cycle interrupted while pacing", "error", err)
				return summary
			}
		}
		firstUnseen = false

		p.processPost(ctx, post, &summary)
	}

	p.logger.Info("analysis cycle complete",
		"fetched", summary.Fetched,
		"new_accepted", summary.NewAccepted,
		"processed_total", p.dedup.Len(),
		"stored_total", p.store.Count(),
	)
	return summary
}

func (p *Pipeline) processPost(ctx context.Context, post domain.Post, summary *CycleSummary) {
	// Whatever happens below, the post counts as processed: rejections are
	// permanent, and retrying unparseable posts forever helps nobody.
	defer p.dedup.MarkSeen(post.ID)

	text := analyzableText(post)
	if text == "" {
		p.logger.Warn("no text content found for post", "id", post.ID)
		return
	}

	outcome := p.analyzePost(ctx, text)
	if outcome.Kind != domain.OutcomeAccepted {
		p.logger.Debug("analysis not retained", "id", post.ID, "kind", outcome.Kind, "reason", outcome.Reason)
		return
	}

	p.store.Append(domain.Record{
		SourceID:    post.ID,
		SourceTitle: post.Title,
		SourceURL:   post.Permalink,
		Outcome:     outcome,
		Timestamp:   p.now().UTC(),
	})
	p.frequencies.RecordAccepted(outcome)
	summary.NewAccepted++
}

func (p *Pipeline) analyzePost(ctx context.Context, text string) domain.Outcome {
	raw, err := p.analyzer.Analyze(ctx, text)
	if err != nil {
		p.logger.Warn("analyzer call failed", "error", err)
		return domain.Rejected("analyzer call failed")
	}
	return p.validator.Validate(raw)
}

// analyzableText joins title and body with a newline, mirroring how the
// analyzer prompt expects the discussion to be presented.
func analyzableText(post domain.Post) string {
	parts := []string{post.Title}
	if post.Body != "" {
		parts = append(parts, post.Body)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
