package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"stockpulse/internal/config"
	"stockpulse/internal/domain"
	"stockpulse/internal/ports"
)

// Client fetches subreddit posts through Reddit's public JSON listings.
type Client struct {
	baseURL   string
	subreddit string
	userAgent string
	client    *http.Client
}

var _ ports.PostSource = (*Client)(nil)

// listing mirrors the envelope Reddit wraps around every listing response.
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID        string `json:"id"`
				Title     string `json:"title"`
				SelfText  string `json:"selftext"`
				Permalink string `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// NewClient builds a client for the configured subreddit.
func NewClient(cfg config.RedditConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		subreddit: cfg.Subreddit,
		userAgent: cfg.UserAgent,
		client:    httpClient,
	}
}

// FetchLatest returns up to limit hot posts in the order Reddit lists them.
func (c *Client) FetchLatest(ctx context.Context, limit int) ([]domain.Post, error) {
	if limit <= 0 {
		limit = 25
	}

	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%s&raw_json=1",
		c.baseURL, c.subreddit, strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	// Reddit throttles requests without a descriptive User-Agent.
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned %s", resp.Status)
	}

	var parsed listing
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	posts := make([]domain.Post, 0, len(parsed.Data.Children))
	for _, child := range parsed.Data.Children {
		if child.Data.ID == "" {
			continue
		}
		posts = append(posts, domain.Post{
			ID:        child.Data.ID,
			Title:     child.Data.Title,
			Body:      child.Data.SelfText,
			Permalink: c.baseURL + child.Data.Permalink,
		})
		if len(posts) == limit {
			break
		}
	}

	return posts, nil
}
