package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tashasho/MCP-Server-BNV/market"
)

// MarketInsights runs a market scan. Fetched items are stored as signals when
// a database is configured.
func (a *API) MarketInsights(c *gin.Context) {
	if a.Market == nil {
		unavailable(c, "market intelligence")
		return
	}

	ins, err := a.Market.GatherInsights(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}

	if a.DB != nil {
		if n, err := market.Persist(c.Request.Context(), a.DB, ins); err != nil {
			a.log().Error("storing market signals failed", zap.Error(err))
		} else {
			a.log().Debug("market signals stored", zap.Int("signals", n))
		}
	}
	c.JSON(http.StatusOK, ins)
}

func (a *API) CompanyInsights(c *gin.Context) {
	if a.Market == nil {
		unavailable(c, "market intelligence")
		return
	}

	ins, err := a.Market.CompanyInsights(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ins)
}
