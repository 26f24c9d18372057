package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tashasho/MCP-Server-BNV/dealflow"
)

const maxEmailSize = 5 << 20

// ExtractDeal reads a raw RFC 5322 email from the body and returns the
// prioritized deal, or 422 when the email is not about a startup.
func (a *API) ExtractDeal(c *gin.Context) {
	if a.Extractor == nil || a.Scorer == nil {
		unavailable(c, "deal flow")
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxEmailSize)
	deal, ok, err := a.Extractor.Extract(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no deal found in email"})
		return
	}

	p := dealflow.Prioritize(a.Scorer, deal, a.DealCriteria, time.Now())
	if a.DB != nil {
		if err := dealflow.SaveDeals(c.Request.Context(), a.DB, []dealflow.Prioritized{p}); err != nil {
			a.log().Error("storing deal failed", zap.String("company", deal.CompanyName), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, p)
}

// ListDeals returns the stored deals, highest priority first.
func (a *API) ListDeals(c *gin.Context) {
	if a.DB == nil {
		unavailable(c, "database")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	deals, err := dealflow.StoredDeals(c.Request.Context(), a.DB, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, deals)
}
