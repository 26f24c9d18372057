package market

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tashasho/MCP-Server-BNV/scoring"
)

// EnrichedScore is a score with optional market context attached.
type EnrichedScore struct {
	scoring.ScoreBreakdown
	MarketContext *CompanyInsights `json:"market_context,omitempty"`
}

// Enrich attaches company insights to b. It waits at most timeout and never
// changes the score itself; on failure the breakdown is returned bare.
func (s *Service) Enrich(ctx context.Context, b scoring.ScoreBreakdown, company string, timeout time.Duration) EnrichedScore {
	out := EnrichedScore{ScoreBreakdown: b}
	if s == nil || company == "" {
		return out
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ins, err := s.CompanyInsights(ctx, company)
	if err != nil {
		s.log.Debug("market enrichment skipped", zap.String("company", company), zap.Error(err))
		return out
	}
	out.MarketContext = &ins
	return out
}
