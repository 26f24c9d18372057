// Package crawler extracts portfolio company profiles from incubator pages.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tashasho/MCP-Server-BNV/logger"
	"github.com/tashasho/MCP-Server-BNV/scoring"
)

// ErrNoCompanies is returned when a page holds no company card.
var ErrNoCompanies = errors.New("no company cards found")

const maxPageSize = 10 << 20

type Config struct {
	Timeout     time.Duration
	MaxRetries  uint64
	UserAgent   string
	Concurrency int
	// RetryInterval is the first wait between attempts; zero keeps the
	// backoff default.
	RetryInterval time.Duration
}

type Crawler struct {
	cfg     Config
	http    *http.Client
	sectors map[string][]string
	log     *zap.Logger
}

// New builds a crawler. sectors is the keyword table used to tag companies;
// a nil client means a plain http.Client with cfg.Timeout.
func New(cfg Config, client *http.Client, sectors map[string][]string, log *zap.Logger) *Crawler {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Crawler{
		cfg:     cfg,
		http:    client,
		sectors: sectors,
		log:     logger.OrNop(log),
	}
}

// Crawl fetches url and returns the company profiles found on it.
func (c *Crawler) Crawl(ctx context.Context, url string) ([]scoring.CompanyProfile, error) {
	var companies []scoring.CompanyProfile

	op := func() error {
		body, err := c.fetch(ctx, url)
		if err != nil {
			return err
		}
		defer body.Close()

		companies, err = Parse(io.LimitReader(body, maxPageSize), c.sectors)
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	if c.cfg.RetryInterval > 0 {
		exp.InitialInterval = c.cfg.RetryInterval
	}
	var b backoff.BackOff = backoff.WithMaxRetries(exp, c.cfg.MaxRetries)
	b = backoff.WithContext(b, ctx)

	notify := func(err error, wait time.Duration) {
		c.log.Warn("crawl attempt failed", zap.String("url", url), zap.Duration("retry_in", wait), zap.Error(err))
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, fmt.Errorf("crawling %s: %w", url, err)
	}

	c.log.Info("portfolio crawled", zap.String("url", url), zap.Int("companies", len(companies)))
	return companies, nil
}

func (c *Crawler) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		// client errors will not improve with a retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	return resp.Body, nil
}

// Target is one page to crawl.
type Target struct {
	Name string
	URL  string
}

// Result is the outcome of crawling one target.
type Result struct {
	Target    Target
	Companies []scoring.CompanyProfile
	Err       error
}

// CrawlAll crawls every target with bounded concurrency. Failures are reported
// per target and never abort the others. Results keep the input order.
func (c *Crawler) CrawlAll(ctx context.Context, targets []Target) []Result {
	results := make([]Result, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			companies, err := c.Crawl(ctx, t.URL)
			results[i] = Result{Target: t, Companies: companies, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
