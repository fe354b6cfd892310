package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"stockpulse/internal/analysis"
	"stockpulse/internal/domain"
	"stockpulse/internal/state"
)

type fakeSource struct {
	posts []domain.Post
	err   error
}

func (f *fakeSource) FetchLatest(ctx context.Context, limit int) ([]domain.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.posts) {
		return f.posts[:limit], nil
	}
	return f.posts, nil
}

type fakeAnalyzer struct {
	responses map[string]string
	err       error
	calls     []string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text string) (string, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return "", f.err
	}
	if raw, ok := f.responses[text]; ok {
		return raw, nil
	}
	return `{"analyzed_symbols":[],"topics":[],"companies":[]}`, nil
}

type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

type pipelineFixture struct {
	pipeline *Pipeline
	state    *state.State
	analyzer *fakeAnalyzer
	pacer    *countingPacer
}

func newFixture(t *testing.T, source *fakeSource, analyzer *fakeAnalyzer) pipelineFixture {
	t.Helper()

	validator, err := analysis.NewValidator(analysis.SchemaReport)
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}

	st := state.New()
	pacer := &countingPacer{}
	pipeline := NewPipeline(PipelineDeps{
		Source:      source,
		Analyzer:    analyzer,
		Validator:   validator,
		Pacer:       pacer,
		Dedup:       st.Dedup,
		Store:       st.Store,
		Frequencies: st.Frequencies,
	})

	return pipelineFixture{pipeline: pipeline, state: st, analyzer: analyzer, pacer: pacer}
}

func post(id, title string) domain.Post {
	return domain.Post{ID: id, Title: title, Body: "some body", Permalink: "https://example.org/" + id}
}

func acceptedRaw(symbol string) string {
	return fmt.Sprintf(`{"analyzed_symbols":[{"symbol":"%s","reason":"x","sentiment":"neutral"}]}`, symbol)
}

func TestRunCycleEmptyBatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeSource{}, &fakeAnalyzer{})

	summary := f.pipeline.RunCycle(context.Background(), 15)
	if summary.Fetched != 0 || summary.NewAccepted != 0 {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
	if f.state.Dedup.Len() != 0 || f.state.Store.Count() != 0 {
		t.Fatalf("empty batch must not mutate state")
	}
}

func TestRunCycleFetchFailureAbsorbed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeSource{err: errors.New("transport down")}, &fakeAnalyzer{})

	summary := f.pipeline.RunCycle(context.Background(), 15)
	if summary.Fetched != 0 || summary.NewAccepted != 0 {
		t.Fatalf("fetch failure must act as an empty batch, got %+v", summary)
	}
}

func TestRunCycleValidAnalysis(t *testing.T) {
	t.Parallel()

	source := &fakeSource{posts: []domain.Post{post("p1", "SPY thread")}}
	analyzer := &fakeAnalyzer{responses: map[string]string{
		"SPY thread\nsome body": `{"analyzed_symbols":[{"symbol":"spy","reason":"x","sentiment":"neutral"}],"topics":[],"companies":[]}`,
	}}
	f := newFixture(t, source, analyzer)

	summary := f.pipeline.RunCycle(context.Background(), 15)
	if summary.Fetched != 1 || summary.NewAccepted != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	records := f.state.Store.All()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].SourceID != "p1" || records[0].SourceURL != "https://example.org/p1" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
	if records[0].Timestamp.Location() != time.UTC {
		t.Fatalf("timestamps must be UTC")
	}

	if got := f.state.Frequencies.Snapshot().Symbols["SPY"]; got != 1 {
		t.Fatalf("expected SPY count 1, got %d", got)
	}
}

func TestRunCycleDuplicateSkip(t *testing.T) {
	t.Parallel()

	a, b, c := post("a", "A"), post("b", "B"), post("c", "C")
	source := &fakeSource{posts: []domain.Post{a, b}}
	analyzer := &fakeAnalyzer{responses: map[string]string{
		"A\nsome body": acceptedRaw("GME"),
		"B\nsome body": acceptedRaw("AMC"),
		"C\nsome body": acceptedRaw("BB"),
	}}
	f := newFixture(t, source, analyzer)

	first := f.pipeline.RunCycle(context.Background(), 15)
	if first.Fetched != 2 || first.NewAccepted != 2 {
		t.Fatalf("cycle 1: unexpected summary %+v", first)
	}

	source.posts = []domain.Post{a, b, c}
	second := f.pipeline.RunCycle(context.Background(), 15)
	if second.Fetched != 3 || second.NewAccepted != 1 {
		t.Fatalf("cycle 2: unexpected summary %+v", second)
	}

	if len(f.analyzer.calls) != 3 {
		t.Fatalf("cycle 2 must only analyze the new post, total calls %d", len(f.analyzer.calls))
	}
	if f.state.Store.Count() != 3 {
		t.Fatalf("expected 3 stored records, got %d", f.state.Store.Count())
	}
	if f.state.Dedup.Len() != 3 {
		t.Fatalf("expected 3 seen ids, got %d", f.state.Dedup.Len())
	}
	if got := f.state.Frequencies.Snapshot().Symbols["GME"]; got != 1 {
		t.Fatalf("reprocessing must not inflate counts, GME=%d", got)
	}
}

func TestRunCyclePacingAppliedBetweenUnseenItems(t *testing.T) {
	t.Parallel()

	source := &fakeSource{posts: []domain.Post{post("1", "one"), post("2", "two"), post("3", "three")}}
	f := newFixture(t, source, &fakeAnalyzer{})

	f.pipeline.RunCycle(context.Background(), 15)
	if f.pacer.waits != 2 {
		t.Fatalf("expected N-1=2 waits, got %d", f.pacer.waits)
	}

	// All items seen now: a second cycle has zero unseen items and no waits.
	f.pacer.waits = 0
	f.pipeline.RunCycle(context.Background(), 15)
	if f.pacer.waits != 0 {
		t.Fatalf("seen items must not be paced, got %d waits", f.pacer.waits)
	}
}

func TestRunCycleSingleUnseenItemNotPaced(t *testing.T) {
	t.Parallel()

	source := &fakeSource{posts: []domain.Post{post("only", "one post")}}
	f := newFixture(t, source, &fakeAnalyzer{})

	f.pipeline.RunCycle(context.Background(), 15)
	if f.pacer.waits != 0 {
		t.Fatalf("the first unseen item must never be paced, got %d waits", f.pacer.waits)
	}
}

func TestRunCycleAnalyzerErrorObject(t *testing.T) {
	t.Parallel()

	source := &fakeSource{posts: []domain.Post{post("d", "blocked thread")}}
	analyzer := &fakeAnalyzer{responses: map[string]string{
		"blocked thread\nsome body": `{"error": "blocked"}`,
	}}
	f := newFixture(t, source, analyzer)

	summary := f.pipeline.RunCycle(context.Background(), 15)
	if summary.NewAccepted != 0 {
		t.Fatalf("rejected outcome must not count as accepted: %+v", summary)
	}
	if !f.state.Dedup.Seen("d") {
		t.Fatalf("rejected posts are still marked seen")
	}
	if f.state.Store.Count() != 0 {
		t.Fatalf("rejected posts must not be stored")
	}
}

func TestRunCycleAnalyzerCallFailure(t *testing.T) {
	t.Parallel()

	source := &fakeSource{posts: []domain.Post{post("x", "X"), post("y", "Y")}}
	analyzer := &fakeAnalyzer{err: errors.New("timeout")}
	f := newFixture(t, source, analyzer)

	summary := f.pipeline.RunCycle(context.Background(), 15)
	if summary.NewAccepted != 0 {
		t.Fatalf("call failures must reject, got %+v", summary)
	}
	if len(analyzer.calls) != 2 {
		t.Fatalf("a failing call must not stop the batch, got %d calls", len(analyzer.calls))
	}
	if f.state.Dedup.Len() != 2 {
		t.Fatalf("both posts count as processed, got %d", f.state.Dedup.Len())
	}
}

func TestRunCycleSkipsEmptyText(t *testing.T) {
	t.Parallel()

	empty := domain.Post{ID: "empty", Title: "  ", Body: ""}
	source := &fakeSource{posts: []domain.Post{empty}}
	analyzer := &fakeAnalyzer{}
	f := newFixture(t, source, analyzer)

	f.pipeline.RunCycle(context.Background(), 15)
	if len(analyzer.calls) != 0 {
		t.Fatalf("posts without text must not reach the analyzer")
	}
	if !f.state.Dedup.Seen("empty") {
		t.Fatalf("skipped posts are still marked seen")
	}
	if f.state.Store.Count() != 0 {
		t.Fatalf("skipped posts must not be stored")
	}
}

func TestRunCycleStopsWhenContextCanceled(t *testing.T) {
	t.Parallel()

	source := &fakeSource{posts: []domain.Post{post("1", "one"), post("2", "two")}}
	f := newFixture(t, source, &fakeAnalyzer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The pacer surfaces cancellation before the second analyzer call.
	summary := f.pipeline.RunCycle(ctx, 15)
	if summary.Fetched != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(f.analyzer.calls) != 1 {
		t.Fatalf("cancellation mid-cycle must stop further calls, got %d", len(f.analyzer.calls))
	}
}
