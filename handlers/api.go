package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tashasho/MCP-Server-BNV/crm"
	"github.com/tashasho/MCP-Server-BNV/dealflow"
	"github.com/tashasho/MCP-Server-BNV/logger"
	"github.com/tashasho/MCP-Server-BNV/market"
	"github.com/tashasho/MCP-Server-BNV/scoring"
)

// PortfolioCrawler fetches the company profiles listed on a portfolio page.
type PortfolioCrawler interface {
	Crawl(ctx context.Context, url string) ([]scoring.CompanyProfile, error)
}

// API holds the collaborators behind the http handlers. Nil collaborators
// turn their routes into 503 responses.
type API struct {
	Scorer        *scoring.Scorer
	Screening     scoring.ScreeningOptions
	Store         crm.Store
	Crawler       PortfolioCrawler
	Market        *market.Service
	DB            *gorm.DB
	Extractor     *dealflow.Extractor
	DealCriteria  dealflow.Criteria
	EnrichTimeout time.Duration
	CrawlTimeout  time.Duration
	Log           *zap.Logger

	jobs sync.WaitGroup
}

func (a *API) log() *zap.Logger {
	return logger.OrNop(a.Log)
}

// Wait blocks until every background crawl started by the api is done.
func (a *API) Wait() {
	a.jobs.Wait()
}

func unavailable(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": what + " is not configured"})
}
