package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tashasho/MCP-Server-BNV/crm"
)

func (a *API) ListIncubators(c *gin.Context) {
	if a.Store == nil {
		unavailable(c, "crm store")
		return
	}

	incubators, err := a.Store.ListIncubators(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"incubators": incubators})
}

// IncubatorRequest is the body of POST /incubators.
type IncubatorRequest struct {
	Name         string   `json:"name" binding:"required"`
	PortfolioURL string   `json:"portfolio_url" binding:"omitempty,url"`
	Location     string   `json:"location"`
	FocusAreas   []string `json:"focus_areas"`
}

// SaveIncubator creates an incubator or updates the one with the same name.
func (a *API) SaveIncubator(c *gin.Context) {
	if a.Store == nil {
		unavailable(c, "crm store")
		return
	}

	var req IncubatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inc := crm.Incubator{
		Name:         strings.TrimSpace(req.Name),
		PortfolioURL: req.PortfolioURL,
		Location:     req.Location,
		FocusAreas:   req.FocusAreas,
	}
	if inc.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be blank"})
		return
	}
	if err := a.Store.SaveIncubator(c.Request.Context(), inc); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	a.log().Info("incubator saved", zap.String("incubator", inc.Name))
	c.JSON(http.StatusCreated, gin.H{"incubator": inc})
}

// CrawlPortfolio starts a crawl of the incubator's portfolio page in the
// background and answers right away.
func (a *API) CrawlPortfolio(c *gin.Context) {
	if a.Store == nil || a.Crawler == nil || a.Scorer == nil {
		unavailable(c, "portfolio crawling")
		return
	}

	name := c.Param("incubator")
	inc, err := a.Store.FindIncubator(c.Request.Context(), name)
	if errors.Is(err, crm.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Incubator not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if inc.PortfolioURL == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Incubator has no portfolio url"})
		return
	}

	a.jobs.Add(1)
	go func() {
		defer a.jobs.Done()
		a.crawlAndStore(inc)
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Started crawling portfolio for " + inc.Name})
}

func (a *API) crawlAndStore(inc crm.Incubator) {
	ctx := context.Background()
	if a.CrawlTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.CrawlTimeout)
		defer cancel()
	}

	log := a.log().With(zap.String("incubator", inc.Name), zap.String("url", inc.PortfolioURL))
	start := time.Now()

	profiles, err := a.Crawler.Crawl(ctx, inc.PortfolioURL)
	if err != nil {
		log.Error("portfolio crawl failed", zap.Error(err))
		return
	}

	companies := make([]crm.Company, 0, len(profiles))
	for _, p := range profiles {
		companies = append(companies, crm.Company{
			CompanyProfile: p,
			TotalScore:     a.Scorer.Score(p).TotalScore,
		})
	}

	if err := a.Store.UpsertPortfolio(ctx, inc.Name, companies); err != nil {
		log.Error("storing portfolio failed", zap.Error(err))
		return
	}
	log.Info("portfolio updated", zap.Int("companies", len(companies)), zap.Duration("took", time.Since(start)))
}

// GetPortfolio resolves the incubator the way CrawlPortfolio does, so any
// casing of the name reads the portfolio stored under the canonical one.
func (a *API) GetPortfolio(c *gin.Context) {
	if a.Store == nil {
		unavailable(c, "crm store")
		return
	}

	inc, err := a.Store.FindIncubator(c.Request.Context(), c.Param("incubator"))
	if errors.Is(err, crm.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Incubator not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	companies, err := a.Store.PortfolioCompanies(c.Request.Context(), inc.Name)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": companies})
}
