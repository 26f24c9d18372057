package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tashasho/MCP-Server-BNV/market"
	"github.com/tashasho/MCP-Server-BNV/scoring"
)

func (a *API) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the startup screening API"})
}

func (a *API) Health(c *gin.Context) {
	status := gin.H{"status": "healthy"}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
			return
		}
		status["database"] = "ok"
	}
	c.JSON(http.StatusOK, status)
}

// ScoreResponse is the body returned by POST /score-company.
type ScoreResponse struct {
	scoring.ScoreBreakdown
	Sectors       []string                `json:"sectors,omitempty"`
	Screening     scoring.Screening       `json:"screening"`
	MarketContext *market.CompanyInsights `json:"market_context,omitempty"`
}

// ScoreCompany accepts either {"company": {...}, "thesis": {"thesis_text": "..."}}
// or a bare company object. Company fields of the wrong type are treated as
// empty rather than rejected.
func (a *API) ScoreCompany(c *gin.Context) {
	if a.Scorer == nil {
		unavailable(c, "scorer")
		return
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	companyRaw := body
	if nested, ok := body["company"].(map[string]any); ok {
		companyRaw = nested
	}
	profile := scoring.ProfileFromMap(companyRaw)

	b := a.Scorer.Score(profile)
	// a thesis object always yields a relevance, 0 for empty text
	if thesis, ok := thesisText(body["thesis"]); ok {
		r := a.Scorer.ThesisRelevance(profile, thesis)
		b.ThesisRelevance = &r
	}
	resp := ScoreResponse{
		ScoreBreakdown: b,
		Sectors:        scoring.ProfileSectors(profile, a.Scorer.Catalog().Sectors),
		Screening:      scoring.Screen(b, a.Screening),
	}

	if c.Query("enrich") == "true" && a.Market != nil && profile.Name != "" {
		enriched := a.Market.Enrich(c.Request.Context(), b, profile.Name, a.EnrichTimeout)
		resp.MarketContext = enriched.MarketContext
	}

	a.log().Debug("company scored",
		zap.String("company", profile.Name),
		zap.Float64("total_score", b.TotalScore),
	)
	c.JSON(http.StatusOK, resp)
}

// thesisText accepts {"thesis_text": "..."} or a plain string. ok reports
// whether a thesis was supplied at all.
func thesisText(v any) (text string, ok bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case map[string]any:
		s, _ := t["thesis_text"].(string)
		return s, true
	}
	return "", false
}
