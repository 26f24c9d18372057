// Package crm stores incubators and their scored portfolio companies, either
// in Affinity or in the local database.
package crm

import (
	"context"
	"errors"
	"time"

	"github.com/tashasho/MCP-Server-BNV/scoring"
)

// ErrNotFound is returned when an incubator is unknown to the store.
var ErrNotFound = errors.New("not found")

type Incubator struct {
	Name         string   `json:"name"`
	PortfolioURL string   `json:"portfolio_url"`
	Location     string   `json:"location,omitempty"`
	FocusAreas   []string `json:"focus_areas,omitempty"`
	Status       string   `json:"status,omitempty"`
	// LastCrawledAt is set by the local store once a portfolio crawl was stored.
	LastCrawledAt *time.Time `json:"last_crawled_at,omitempty"`
}

// Company is a portfolio entry with its latest total score.
type Company struct {
	scoring.CompanyProfile
	TotalScore float64 `json:"total_score"`
}

// Store is the CRM surface used by the api and the crawler jobs.
type Store interface {
	ListIncubators(ctx context.Context) ([]Incubator, error)
	SaveIncubator(ctx context.Context, inc Incubator) error
	FindIncubator(ctx context.Context, name string) (Incubator, error)
	PortfolioCompanies(ctx context.Context, incubator string) ([]Company, error)
	UpsertPortfolio(ctx context.Context, incubator string, companies []Company) error
}

// PortfolioListName is the Affinity list that holds an incubator's portfolio.
func PortfolioListName(incubator string) string {
	return "Portfolio_" + incubator
}
