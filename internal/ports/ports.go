package ports

import (
	"context"
	"time"

	"stockpulse/internal/domain"
)

// PostSource pulls fresh discussion posts from the upstream content provider.
// Implementations must preserve the provider's ordering and return at most
// limit posts.
type PostSource interface {
	FetchLatest(ctx context.Context, limit int) ([]domain.Post, error)
}

// Analyzer submits post text to the external text-analysis service and
// returns its raw, untrusted response.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (string, error)
}

// Validator turns a raw analyzer response into a structured outcome.
// Implementations must never panic; anything unexpected becomes a rejection.
type Validator interface {
	Validate(raw string) domain.Outcome
}

// Pacer enforces the inter-call delay owed to the analysis service's
// request-rate ceiling. Wait returns early only when ctx is canceled.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Scheduler drives repeated pipeline executions.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
