package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stockpulse/internal/config"
	"stockpulse/internal/ports"
)

// GeminiClient implements ports.Analyzer against the Gemini generateContent
// API. It returns the model's raw text untouched; turning that text into a
// trusted outcome is the validator's job, not this client's.
type GeminiClient struct {
	endpoint   string
	model      string
	apiKey     string
	prompt     string
	httpClient *http.Client
}

var _ ports.Analyzer = (*GeminiClient)(nil)

const defaultPrompt = `Analyze the following text from a social media discussion about finance.
Identify any stock tickers (e.g., GME, AAPL, TSLA) or ETF symbols (e.g., SPY, QQQ) mentioned.

Your response MUST be a single JSON object with the following fields:
- "analyzed_symbols": an array of objects, each with "symbol" (string), "reason" (string), and "sentiment" (one of "positive", "negative", "neutral", "speculative", "mixed", "unknown").
- "topics": an array of short topic strings covered by the discussion.
- "companies": an array of company names mentioned without a ticker.
- "summary": a one-sentence summary of the discussion.

If no specific stocks or ETFs are clearly discussed, return empty arrays.
Do not include any explanations or text outside of the JSON object.

Text for analysis:
---
%s
---
JSON Output:`

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.AnalyzerConfig) *GeminiClient {
	return &GeminiClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		prompt:   cfg.Prompt,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType"`
}

// generateRequest is the subset of the generateContent body this client uses.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// generateResponse is the subset of the generateContent reply this client uses.
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Analyze submits the post text and returns the raw model output. When the
// model blocks the prompt or produces no candidates, a JSON error object is
// returned instead, which the validator recognizes and rejects; only
// transport-level failures surface as Go errors.
func (c *GeminiClient) Analyze(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("gemini client misconfigured")
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: c.buildPrompt(text)}}}},
		GenerationConfig: generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimSuffix(c.endpoint, "/"), c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("analyze text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.Candidates) > 0 && len(parsed.Candidates[0].Content.Parts) > 0 {
		var out strings.Builder
		for _, p := range parsed.Candidates[0].Content.Parts {
			out.WriteString(p.Text)
		}
		return out.String(), nil
	}

	if parsed.PromptFeedback != nil {
		return errorSentinel("analysis blocked", parsed.PromptFeedback.BlockReason), nil
	}

	return errorSentinel("no analysis result", ""), nil
}

func (c *GeminiClient) buildPrompt(text string) string {
	prompt := c.prompt
	if prompt == "" {
		prompt = defaultPrompt
	}
	if strings.Contains(prompt, "%s") {
		return fmt.Sprintf(prompt, text)
	}
	return prompt + "\n\n" + text
}

// errorSentinel produces the JSON error object the validator treats as an
// upstream failure, keeping non-transport problems on the data path.
func errorSentinel(message, details string) string {
	payload := map[string]string{"error": message}
	if details != "" {
		payload["details"] = details
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return `{"error": "analysis failed"}`
	}
	return string(raw)
}
