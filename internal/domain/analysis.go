package domain

import (
	"strings"
	"time"
)

// Sentiment classifies how a discussion talks about a symbol.
type Sentiment string

const (
	SentimentPositive    Sentiment = "positive"
	SentimentNegative    Sentiment = "negative"
	SentimentNeutral     Sentiment = "neutral"
	SentimentSpeculative Sentiment = "speculative"
	SentimentMixed       Sentiment = "mixed"
	SentimentUnknown     Sentiment = "unknown"
)

// ParseSentiment maps free-form analyzer output to a known sentiment value.
func ParseSentiment(value string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(value))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	case SentimentNeutral:
		return SentimentNeutral
	case SentimentSpeculative:
		return SentimentSpeculative
	case SentimentMixed:
		return SentimentMixed
	default:
		return SentimentUnknown
	}
}

// SymbolMention is one ticker the analyzer identified in a post.
type SymbolMention struct {
	Symbol    string    `json:"symbol"`
	Reason    string    `json:"reason"`
	Sentiment Sentiment `json:"sentiment"`
}

// OutcomeKind is the validator's classification of one analyzer response.
type OutcomeKind string

const (
	OutcomeAccepted OutcomeKind = "accepted"
	OutcomeRejected OutcomeKind = "rejected"
	OutcomeSkipped  OutcomeKind = "skipped"
)

// Outcome is the structured result of validating one analyzer response.
// Reason is only populated for rejections.
type Outcome struct {
	Kind      OutcomeKind     `json:"kind"`
	Reason    string          `json:"reason,omitempty"`
	Symbols   []SymbolMention `json:"symbols,omitempty"`
	Topics    []string        `json:"topics,omitempty"`
	Companies []string        `json:"companies,omitempty"`
	Summary   string          `json:"summary,omitempty"`
}

// Accepted builds a successful outcome with normalized fields.
func Accepted(symbols []SymbolMention, topics, companies []string, summary string) Outcome {
	return Outcome{
		Kind:      OutcomeAccepted,
		Symbols:   symbols,
		Topics:    topics,
		Companies: companies,
		Summary:   summary,
	}
}

// Rejected builds a failed outcome carrying the rejection reason.
func Rejected(reason string) Outcome {
	return Outcome{Kind: OutcomeRejected, Reason: reason}
}

// Skipped marks a post that carried no analyzable text.
func Skipped() Outcome {
	return Outcome{Kind: OutcomeSkipped}
}

// Record is one accepted analysis retained in the result store.
type Record struct {
	SourceID    string    `json:"source_id"`
	SourceTitle string    `json:"source_title"`
	SourceURL   string    `json:"source_url"`
	Outcome     Outcome   `json:"outcome"`
	Timestamp   time.Time `json:"timestamp"`
}
