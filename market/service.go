package market

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tashasho/MCP-Server-BNV/logger"
)

// Source names used as keys in Insights.Errors.
const (
	SourceNews    = "news"
	SourceSocial  = "social"
	SourceFunding = "funding"
)

type NewsSearcher interface {
	Search(ctx context.Context, query string, from time.Time) ([]Article, error)
}

type SocialSearcher interface {
	SearchRecent(ctx context.Context, query string) ([]Post, error)
}

type FundingSource interface {
	RecentRounds(ctx context.Context, since time.Time) ([]FundingRound, error)
}

// Sources bundles the fetchers. A nil source is reported as not configured.
type Sources struct {
	News    NewsSearcher
	Social  SocialSearcher
	Funding FundingSource
}

type Options struct {
	// Sectors maps a monitored sector to its search keywords.
	Sectors             map[string][]string
	MaxNewsAge          time.Duration
	MinSocialEngagement int
	MinFundingUSD       float64
	FundingWindow       time.Duration
}

func DefaultOptions() Options {
	return Options{
		Sectors:             DefaultSectors(),
		MaxNewsAge:          7 * 24 * time.Hour,
		MinSocialEngagement: 10,
		MinFundingUSD:       100000,
		FundingWindow:       7 * 24 * time.Hour,
	}
}

type Service struct {
	src  Sources
	opts Options
	log  *zap.Logger
	now  func() time.Time
}

func NewService(src Sources, opts Options, log *zap.Logger) *Service {
	if opts.Sectors == nil {
		opts.Sectors = DefaultSectors()
	}
	return &Service{src: src, opts: opts, log: logger.OrNop(log), now: time.Now}
}

// errorSet collects per-source failures from concurrent fetchers.
type errorSet struct {
	mu   sync.Mutex
	errs map[string]string
}

func (e *errorSet) add(source string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.errs == nil {
		e.errs = make(map[string]string)
	}
	if _, seen := e.errs[source]; !seen {
		e.errs[source] = err.Error()
	}
}

// GatherInsights scans every monitored sector on all three sources at once.
// Source failures never fail the scan; only a cancelled ctx does.
func (s *Service) GatherInsights(ctx context.Context) (Insights, error) {
	now := s.now()
	ins := Insights{GatheredAt: now}
	var errs errorSet

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ins.News = s.sectorNews(gctx, now, &errs)
		return nil
	})
	g.Go(func() error {
		ins.SocialTrends = s.sectorSocial(gctx, &errs)
		return nil
	})
	g.Go(func() error {
		ins.FundingData = s.funding(gctx, now, &errs)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Insights{}, err
	}

	ins.MarketTrends = AnalyzeTrends(ins.News, ins.FundingData, now, s.opts.MaxNewsAge)
	ins.Errors = errs.errs
	for source, msg := range ins.Errors {
		s.log.Warn("market source failed", zap.String("source", source), zap.String("error", msg))
	}
	return ins, nil
}

func (s *Service) sectorNews(ctx context.Context, now time.Time, errs *errorSet) []Article {
	news := []Article{}
	if s.src.News == nil {
		errs.add(SourceNews, ErrNotConfigured)
		return news
	}
	from := now.Add(-s.opts.MaxNewsAge)
	for _, sector := range sortedKeys(s.opts.Sectors) {
		for _, kw := range s.opts.Sectors[sector] {
			articles, err := s.src.News.Search(ctx, kw, from)
			if err != nil {
				errs.add(SourceNews, err)
				if errors.Is(err, ErrNotConfigured) || ctx.Err() != nil {
					return news
				}
				continue
			}
			for _, a := range articles {
				a.Sector, a.Keyword = sector, kw
				news = append(news, a)
			}
		}
	}
	return news
}

func (s *Service) sectorSocial(ctx context.Context, errs *errorSet) []Post {
	posts := []Post{}
	if s.src.Social == nil {
		errs.add(SourceSocial, ErrNotConfigured)
		return posts
	}
	for _, sector := range sortedKeys(s.opts.Sectors) {
		found, err := s.src.Social.SearchRecent(ctx, orQuery(s.opts.Sectors[sector]))
		if err != nil {
			errs.add(SourceSocial, err)
			if errors.Is(err, ErrNotConfigured) || ctx.Err() != nil {
				return posts
			}
			continue
		}
		for _, p := range found {
			if p.Engagement.Total() < s.opts.MinSocialEngagement {
				continue
			}
			p.Sector = sector
			posts = append(posts, p)
		}
	}
	return posts
}

func (s *Service) funding(ctx context.Context, now time.Time, errs *errorSet) []FundingRound {
	rounds := []FundingRound{}
	if s.src.Funding == nil {
		errs.add(SourceFunding, ErrNotConfigured)
		return rounds
	}
	found, err := s.src.Funding.RecentRounds(ctx, now.Add(-s.opts.FundingWindow))
	if err != nil {
		errs.add(SourceFunding, err)
		return rounds
	}
	for _, r := range found {
		if r.AmountUSD < s.opts.MinFundingUSD {
			continue
		}
		rounds = append(rounds, r)
	}
	return rounds
}

// CompanyInsights looks up news and social mentions of one company.
func (s *Service) CompanyInsights(ctx context.Context, company string) (CompanyInsights, error) {
	out := CompanyInsights{Company: company, News: []Article{}, SocialMentions: []Post{}}
	var errs errorSet
	query := strconv.Quote(company)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.src.News == nil {
			errs.add(SourceNews, ErrNotConfigured)
			return nil
		}
		news, err := s.src.News.Search(gctx, query, s.now().Add(-s.opts.MaxNewsAge))
		if err != nil {
			errs.add(SourceNews, err)
			return nil
		}
		out.News = news
		return nil
	})
	g.Go(func() error {
		if s.src.Social == nil {
			errs.add(SourceSocial, ErrNotConfigured)
			return nil
		}
		posts, err := s.src.Social.SearchRecent(gctx, query)
		if err != nil {
			errs.add(SourceSocial, err)
			return nil
		}
		out.SocialMentions = posts
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return CompanyInsights{}, err
	}
	out.Errors = errs.errs
	return out, nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
