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
)

const DefaultNewsURL = "https://newsapi.org"

// NewsClient queries the NewsAPI everything endpoint.
type NewsClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewNewsClient(baseURL, apiKey string, client *http.Client) *NewsClient {
	if baseURL == "" {
		baseURL = DefaultNewsURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &NewsClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: client}
}

type newsResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// Search returns articles matching query published on or after from, most
// relevant first.
func (c *NewsClient) Search(ctx context.Context, query string, from time.Time) ([]Article, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{
		"q":      {query},
		"from":   {from.Format("2006-01-02")},
		"sortBy": {"relevancy"},
		"apiKey": {c.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read news response: %w", err)
	}

	var out newsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("news API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if resp.StatusCode != http.StatusOK || out.Status == "error" {
		return nil, fmt.Errorf("news API error %d: %s", resp.StatusCode, out.Message)
	}

	articles := make([]Article, 0, len(out.Articles))
	for _, a := range out.Articles {
		articles = append(articles, Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Source:      a.Source.Name,
		})
	}
	return articles, nil
}
