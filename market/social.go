package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const DefaultTwitterURL = "https://api.twitter.com"

// SocialClient runs Twitter v2 recent search queries.
type SocialClient struct {
	baseURL    string
	configured bool
	http       *http.Client
}

// NewSocialClient authenticates every request with the bearer token.
func NewSocialClient(ctx context.Context, baseURL, bearerToken string) *SocialClient {
	if baseURL == "" {
		baseURL = DefaultTwitterURL
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{
			TokenType:   "Bearer",
			AccessToken: bearerToken,
		},
	)
	return &SocialClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		configured: bearerToken != "",
		http:       oauth2.NewClient(ctx, ts),
	}
}

type searchResponse struct {
	Data []struct {
		ID            string     `json:"id"`
		Text          string     `json:"text"`
		CreatedAt     time.Time  `json:"created_at"`
		PublicMetrics Engagement `json:"public_metrics"`
	} `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

// SearchRecent returns up to 100 posts from the last seven days matching query.
func (c *SocialClient) SearchRecent(ctx context.Context, query string) ([]Post, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	params := url.Values{
		"query":        {query},
		"tweet.fields": {"public_metrics,created_at"},
		"max_results":  {"100"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/2/tweets/search/recent?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitter API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding twitter response: %w", err)
	}

	posts := make([]Post, 0, len(out.Data))
	for _, t := range out.Data {
		posts = append(posts, Post{
			ID:         t.ID,
			Content:    t.Text,
			Engagement: t.PublicMetrics,
			CreatedAt:  t.CreatedAt,
		})
	}
	return posts, nil
}

// orQuery joins keywords into one search expression, quoting phrases.
func orQuery(keywords []string) string {
	parts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if strings.ContainsRune(k, ' ') {
			k = `"` + k + `"`
		}
		parts = append(parts, k)
	}
	return strings.Join(parts, " OR ")
}
