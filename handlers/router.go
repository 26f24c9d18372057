package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tashasho/MCP-Server-BNV/logger"
)

type RouterConfig struct {
	CORSOrigins     []string
	RateLimitPerMin int
}

// NewRouter wires every route of the api.
func NewRouter(a *API, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(logger.GinMiddleware(a.Log))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if cfg.RateLimitPerMin > 0 {
		r.Use(RateLimit(cfg.RateLimitPerMin, time.Now))
	}

	r.GET("/", a.Root)
	r.GET("/health", a.Health)

	r.POST("/score-company", a.ScoreCompany)

	r.GET("/incubators", a.ListIncubators)
	r.POST("/incubators", a.SaveIncubator)
	r.POST("/crawl-portfolio/:incubator", a.CrawlPortfolio)
	r.GET("/portfolio/:incubator", a.GetPortfolio)

	r.POST("/dealflow/extract", a.ExtractDeal)
	r.GET("/dealflow/deals", a.ListDeals)

	m := r.Group("/market")
	{
		m.GET("/insights", a.MarketInsights)
		m.GET("/company/:name", a.CompanyInsights)
	}

	api := r.Group("/api")
	{
		api.GET("/signals", a.GetSignals)
		api.GET("/stats", a.GetStats)
		api.GET("/dashboard", a.Dashboard)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", requestIDHeader)
	cfg.ExposeHeaders = []string{requestIDHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
