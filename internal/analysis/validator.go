package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"stockpulse/internal/domain"
	"stockpulse/internal/ports"
)

// Schema selects which analyzer-response shape a deployment treats as
// canonical. The analyzer prompt changed shape over time; exactly one
// variant is active per deployment, chosen by configuration.
type Schema string

const (
	// SchemaReport expects a JSON object with analyzed_symbols, topics,
	// companies and summary fields. This is the canonical variant.
	SchemaReport Schema = "report"
	// SchemaSymbolList expects a bare JSON array of symbol mentions.
	SchemaSymbolList Schema = "symbol_list"
	// SchemaSummary expects plain summary text rather than JSON.
	SchemaSummary Schema = "summary"
)

const (
	reasonMalformed      = "malformed payload"
	reasonUpstreamError  = "upstream analysis error"
	reasonSchemaMismatch = "schema mismatch"
	reasonEmptyResponse  = "empty response"
)

// NewValidator returns the validator for the configured schema variant.
func NewValidator(schema Schema) (ports.Validator, error) {
	switch schema {
	case SchemaReport, "":
		return reportValidator{}, nil
	case SchemaSymbolList:
		return symbolListValidator{}, nil
	case SchemaSummary:
		return summaryValidator{}, nil
	default:
		return nil, fmt.Errorf("unknown analyzer schema %q", schema)
	}
}

// reportValidator validates the object-shaped response:
// {"analyzed_symbols": [...], "topics": [...], "companies": [...], "summary": "..."}.
type reportValidator struct{}

var _ ports.Validator = reportValidator{}

func (reportValidator) Validate(raw string) domain.Outcome {
	payload := stripFences(raw)

	var parsed any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return domain.Rejected(reasonMalformed)
	}

	if isErrorObject(parsed) {
		return domain.Rejected(reasonUpstreamError)
	}

	fields, ok := parsed.(map[string]any)
	if !ok {
		return domain.Rejected(reasonSchemaMismatch)
	}

	// Wrong-typed subfields degrade to empty rather than rejecting the
	// whole payload; only a wrong top-level shape is fatal.
	symbols := symbolMentions(fields["analyzed_symbols"])
	topics := stringList(fields["topics"])
	companies := stringList(fields["companies"])
	summary, _ := fields["summary"].(string)

	return domain.Accepted(symbols, topics, companies, strings.TrimSpace(summary))
}

// symbolListValidator validates the array-shaped response:
// [{"symbol": "...", "reason": "...", "sentiment": "..."}, ...].
type symbolListValidator struct{}

var _ ports.Validator = symbolListValidator{}

func (symbolListValidator) Validate(raw string) domain.Outcome {
	payload := stripFences(raw)

	var parsed any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return domain.Rejected(reasonMalformed)
	}

	if isErrorObject(parsed) {
		return domain.Rejected(reasonUpstreamError)
	}

	list, ok := parsed.([]any)
	if !ok {
		return domain.Rejected(reasonSchemaMismatch)
	}

	// An empty list is a valid outcome: the post simply mentioned nothing.
	return domain.Accepted(symbolMentions(list), nil, nil, "")
}

// summaryValidator validates the plain-text response variant. The analyzer
// still signals failures as a JSON error object, which must be recognized.
type summaryValidator struct{}

var _ ports.Validator = summaryValidator{}

// noSummaryMarker is the sentinel the summarization prompt returns for
// posts it considers irrelevant.
const noSummaryMarker = "NO_SUMMARY_AVAILABLE"

func (summaryValidator) Validate(raw string) domain.Outcome {
	text := strings.TrimSpace(stripFences(raw))
	if text == "" {
		return domain.Rejected(reasonEmptyResponse)
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil && isErrorObject(parsed) {
		return domain.Rejected(reasonUpstreamError)
	}

	if text == noSummaryMarker {
		return domain.Accepted(nil, nil, nil, "")
	}
	return domain.Accepted(nil, nil, nil, text)
}

// isErrorObject recognizes the {"error": ...} sentinel the analyzer client
// emits when the upstream call was blocked or produced nothing.
func isErrorObject(parsed any) bool {
	fields, ok := parsed.(map[string]any)
	if !ok {
		return false
	}
	_, ok = fields["error"]
	return ok
}

// symbolMentions leniently extracts mentions from an untyped list. Elements
// that are not objects, or that carry no symbol, are dropped silently.
func symbolMentions(value any) []domain.SymbolMention {
	list, ok := value.([]any)
	if !ok {
		return nil
	}

	mentions := make([]domain.SymbolMention, 0, len(list))
	for _, element := range list {
		fields, ok := element.(map[string]any)
		if !ok {
			continue
		}

		symbol, _ := fields["symbol"].(string)
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}

		reason, _ := fields["reason"].(string)
		sentiment, _ := fields["sentiment"].(string)

		mentions = append(mentions, domain.SymbolMention{
			Symbol:    symbol,
			Reason:    strings.TrimSpace(reason),
			Sentiment: domain.ParseSentiment(sentiment),
		})
	}

	if len(mentions) == 0 {
		return nil
	}
	return mentions
}

// stringList extracts a list of non-empty strings, dropping anything else.
func stringList(value any) []string {
	list, ok := value.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(list))
	for _, element := range list {
		text, ok := element.(string)
		if !ok {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		out = append(out, text)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// stripFences removes a Markdown code fence the model sometimes wraps its
// JSON in, despite being told not to.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
