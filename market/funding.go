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

const DefaultCrunchbaseURL = "https://api.crunchbase.com/v3.1"

// FundingClient lists recent funding rounds from Crunchbase.
type FundingClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewFundingClient(baseURL, apiKey string, client *http.Client) *FundingClient {
	if baseURL == "" {
		baseURL = DefaultCrunchbaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &FundingClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: client}
}

type named struct {
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

type roundsResponse struct {
	Data struct {
		Items []struct {
			Properties struct {
				MoneyRaisedUSD float64 `json:"money_raised_usd"`
				Series         string  `json:"series"`
				AnnouncedOn    string  `json:"announced_on"`
			} `json:"properties"`
			Relationships struct {
				Organization named   `json:"organization"`
				Investors    []named `json:"investors"`
			} `json:"relationships"`
		} `json:"items"`
	} `json:"data"`
}

// RecentRounds returns rounds updated since the given time, newest first.
func (c *FundingClient) RecentRounds(ctx context.Context, since time.Time) ([]FundingRound, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{
		"updated_since": {since.Format("2006-01-02")},
		"sort_order":    {"created_at DESC"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/funding-rounds?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("funding request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read funding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crunchbase API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out roundsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding crunchbase response: %w", err)
	}

	rounds := make([]FundingRound, 0, len(out.Data.Items))
	for _, item := range out.Data.Items {
		investors := make([]string, 0, len(item.Relationships.Investors))
		for _, inv := range item.Relationships.Investors {
			investors = append(investors, inv.Properties.Name)
		}
		rounds = append(rounds, FundingRound{
			CompanyName: item.Relationships.Organization.Properties.Name,
			AmountUSD:   item.Properties.MoneyRaisedUSD,
			Series:      item.Properties.Series,
			AnnouncedOn: item.Properties.AnnouncedOn,
			Investors:   investors,
		})
	}
	return rounds, nil
}
