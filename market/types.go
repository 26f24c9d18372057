// Package market gathers news, social and funding signals and condenses them
// into sector trends and per-company context.
package market

import (
	"errors"
	"time"
)

// ErrNotConfigured is reported for a source that has no credentials.
var ErrNotConfigured = errors.New("source not configured")

// DefaultSectors are the monitored sectors and the search keywords for each.
func DefaultSectors() map[string][]string {
	return map[string][]string{
		"ai":         {"artificial intelligence", "machine learning", "deep learning", "AI"},
		"fintech":    {"financial technology", "payments", "banking", "defi"},
		"healthtech": {"digital health", "biotech", "healthcare", "medtech"},
		"climate":    {"climate tech", "clean energy", "sustainability", "carbon"},
	}
}

type Article struct {
	Sector      string    `json:"sector,omitempty"`
	Keyword     string    `json:"keyword,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
}

type Engagement struct {
	Retweets int `json:"retweet_count"`
	Replies  int `json:"reply_count"`
	Likes    int `json:"like_count"`
	Quotes   int `json:"quote_count"`
}

func (e Engagement) Total() int {
	return e.Retweets + e.Replies + e.Likes + e.Quotes
}

type Post struct {
	ID         string     `json:"id"`
	Sector     string     `json:"sector,omitempty"`
	Content    string     `json:"content"`
	Engagement Engagement `json:"engagement"`
	CreatedAt  time.Time  `json:"created_at"`
}

type FundingRound struct {
	CompanyName string   `json:"company_name"`
	AmountUSD   float64  `json:"amount"`
	Series      string   `json:"series"`
	AnnouncedOn string   `json:"announced_on"`
	Investors   []string `json:"investors"`
}

// Trend directions.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

type Momentum struct {
	NewsVolume int    `json:"news_volume"`
	Trend      string `json:"trend"`
}

type InvestmentPatterns struct {
	AverageRoundSize    float64        `json:"average_round_size"`
	MostActiveInvestors map[string]int `json:"most_active_investors"`
	StageDistribution   map[string]int `json:"stage_distribution"`
}

type Trends struct {
	SectorMomentum     map[string]Momentum `json:"sector_momentum"`
	InvestmentPatterns *InvestmentPatterns `json:"investment_patterns,omitempty"`
}

// Insights is one market scan. A failed source leaves its section empty and
// records the failure in Errors, keyed by source name.
type Insights struct {
	News         []Article         `json:"news"`
	SocialTrends []Post            `json:"social_trends"`
	FundingData  []FundingRound    `json:"funding_data"`
	MarketTrends Trends            `json:"market_trends"`
	Errors       map[string]string `json:"errors,omitempty"`
	GatheredAt   time.Time         `json:"gathered_at"`
}

type CompanyInsights struct {
	Company        string            `json:"company"`
	News           []Article         `json:"news"`
	SocialMentions []Post            `json:"social_mentions"`
	Errors         map[string]string `json:"errors,omitempty"`
}
