package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/tashasho/MCP-Server-BNV/config"
	"github.com/tashasho/MCP-Server-BNV/crawler"
	"github.com/tashasho/MCP-Server-BNV/crm"
	"github.com/tashasho/MCP-Server-BNV/dealflow"
	"github.com/tashasho/MCP-Server-BNV/market"
	"github.com/tashasho/MCP-Server-BNV/scoring"
)

const affinityTimeout = 30 * time.Second

func loadCatalog(cfg config.Scoring) (*scoring.Catalog, error) {
	if cfg.CatalogFile == "" {
		return scoring.DefaultCatalog(), nil
	}
	f, err := os.Open(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return scoring.LoadCatalog(f)
}

func newScorer(cfg config.Scoring, catalog *scoring.Catalog) *scoring.Scorer {
	opts := []scoring.Option{scoring.WithThesisCache(cfg.ThesisCacheTTL)}
	if cfg.WeightedDimensions {
		opts = append(opts, scoring.WithAggregation(scoring.WeightedMeanAggregation{}))
	}
	return scoring.NewScorer(catalog, opts...)
}

func screeningOptions(cfg config.Scoring) scoring.ScreeningOptions {
	return scoring.ScreeningOptions{
		MinimumScore: cfg.MinimumScoreThreshold,
		ThesisWeight: cfg.ThesisRelevanceWeight,
	}
}

func dealCriteria(cfg *config.Config) dealflow.Criteria {
	return dealflow.Criteria{
		WarmIntroBonus:  cfg.DealFlow.WarmIntroBonus,
		MinTeamSize:     cfg.DealFlow.MinTeamSize,
		PreferredStages: cfg.DealFlow.PreferredStages,
		FollowUpDelay:   time.Duration(cfg.DealFlow.FollowUpDelayDays) * 24 * time.Hour,
		Screening:       screeningOptions(cfg.Scoring),
	}
}

func newCrawler(cfg config.Crawler, catalog *scoring.Catalog, log *zap.Logger) *crawler.Crawler {
	return crawler.New(crawler.Config{
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
	}, nil, catalog.Sectors, log)
}

// newStore prefers Affinity when an api key is configured and falls back to
// the local database otherwise.
func newStore(ctx context.Context, cfg config.Affinity, db *gorm.DB, log *zap.Logger) (crm.Store, error) {
	key, err := cfg.Key()
	switch {
	case errors.Is(err, config.ErrMissingSecret):
		log.Info("affinity api key is not set, using the local crm store")
		return crm.NewLocalStore(db), nil
	case err != nil:
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: affinityTimeout})
	return crm.NewAffinityClient(ctx, crm.AffinityConfig{
		APIKey:           key,
		BaseURL:          cfg.BaseURL,
		IncubatorsListID: cfg.IncubatorsListID,
	}, log), nil
}

// monitoredSectors keeps the configured sectors that have a keyword list.
func monitoredSectors(names []string, log *zap.Logger) map[string][]string {
	all := market.DefaultSectors()
	if len(names) == 0 {
		return all
	}
	out := make(map[string][]string, len(names))
	for _, name := range names {
		kw, ok := all[name]
		if !ok {
			log.Warn("unknown monitored sector ignored", zap.String("sector", name))
			continue
		}
		out[name] = kw
	}
	return out
}

// newMarket wires every source that has credentials; the others are reported
// as not configured in each scan.
func newMarket(ctx context.Context, cfg config.Market, log *zap.Logger) *market.Service {
	client := &http.Client{Timeout: cfg.Timeout}

	var src market.Sources
	if cfg.NewsAPIKey != "" {
		src.News = market.NewNewsClient(cfg.NewsBaseURL, cfg.NewsAPIKey, client)
	}
	if cfg.TwitterBearerToken != "" {
		// the oauth2 transport wraps this client, keeping its timeout
		ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
		src.Social = market.NewSocialClient(ctx, cfg.TwitterBaseURL, cfg.TwitterBearerToken)
	}
	if cfg.CrunchbaseAPIKey != "" {
		src.Funding = market.NewFundingClient(cfg.CrunchbaseBaseURL, cfg.CrunchbaseAPIKey, client)
	}

	return market.NewService(src, market.Options{
		Sectors:             monitoredSectors(cfg.MonitoredSectors, log),
		MaxNewsAge:          time.Duration(cfg.MaxNewsAgeDays) * 24 * time.Hour,
		MinSocialEngagement: cfg.MinSocialEngagement,
		MinFundingUSD:       cfg.MinFundingUSD,
		FundingWindow:       time.Duration(cfg.FundingWindowDays) * 24 * time.Hour,
	}, log)
}
