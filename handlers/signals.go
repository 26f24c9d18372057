package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tashasho/MCP-Server-BNV/models"
)

// FilterParams are the query filters shared by the signal endpoints.
type FilterParams struct {
	Sector        string     `json:"sector,omitempty"`
	Kind          string     `json:"kind,omitempty"`
	Company       string     `json:"company,omitempty"`
	MinEngagement int        `json:"min_engagement,omitempty"`
	DateFrom      *time.Time `json:"date_from,omitempty"`
}

func (f FilterParams) active() bool {
	return f.Sector != "" || f.Kind != "" || f.Company != "" || f.MinEngagement > 0 || f.DateFrom != nil
}

func (f FilterParams) apply(query *gorm.DB) *gorm.DB {
	if f.Sector != "" {
		query = query.Where("sector = ?", f.Sector)
	}
	if f.Kind != "" {
		query = query.Where("kind = ?", f.Kind)
	}
	if f.Company != "" {
		query = query.Where("company = ?", f.Company)
	}
	if f.MinEngagement > 0 {
		query = query.Where("engagement >= ?", f.MinEngagement)
	}
	if f.DateFrom != nil {
		query = query.Where("ts_published >= ?", *f.DateFrom)
	}
	return query
}

func parseFilters(c *gin.Context) (FilterParams, error) {
	f := FilterParams{
		Sector:  c.Query("sector"),
		Kind:    c.Query("kind"),
		Company: c.Query("company"),
	}
	f.MinEngagement, _ = strconv.Atoi(c.DefaultQuery("min_engagement", "0"))

	if raw := c.Query("date_from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			t, err = time.Parse("2006-01-02", raw)
		}
		if err != nil {
			return f, err
		}
		t = t.UTC()
		f.DateFrom = &t
	}
	return f, nil
}

func (a *API) GetSignals(c *gin.Context) {
	if a.DB == nil {
		unavailable(c, "database")
		return
	}

	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be RFC 3339 or YYYY-MM-DD"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	signals, err := a.loadSignals(c, filters, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, signals)
}

func (a *API) GetStats(c *gin.Context) {
	if a.DB == nil {
		unavailable(c, "database")
		return
	}

	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be RFC 3339 or YYYY-MM-DD"})
		return
	}

	stats, err := a.loadStats(c, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a *API) loadSignals(c *gin.Context, f FilterParams, limit int) ([]models.Signal, error) {
	query := f.apply(a.DB.WithContext(c.Request.Context()).Model(&models.Signal{}))

	signals := []models.Signal{}
	err := query.Order("ts_published DESC").Limit(limit).Find(&signals).Error
	return signals, err
}

type StatsData struct {
	Total         int64   `json:"total"`
	News          int64   `json:"news"`
	Social        int64   `json:"social"`
	Funding       int64   `json:"funding"`
	AvgEngagement float64 `json:"avg_engagement"`
	TotalFunding  float64 `json:"total_funding_usd"`
	Sectors       int64   `json:"sectors"`
}

func (a *API) loadStats(c *gin.Context, f FilterParams) (*StatsData, error) {
	db := a.DB.WithContext(c.Request.Context())
	base := func() *gorm.DB {
		return f.apply(db.Model(&models.Signal{}))
	}

	var stats StatsData
	steps := []*gorm.DB{
		base().Count(&stats.Total),
		base().Where("kind = ?", models.KindNews).Count(&stats.News),
		base().Where("kind = ?", models.KindSocial).Count(&stats.Social),
		base().Where("kind = ?", models.KindFunding).Count(&stats.Funding),
		base().Where("kind = ?", models.KindSocial).Select("COALESCE(AVG(engagement), 0)").Scan(&stats.AvgEngagement),
		base().Where("kind = ?", models.KindFunding).Select("COALESCE(SUM(amount_usd), 0)").Scan(&stats.TotalFunding),
		base().Where("sector <> ?", "").Distinct("sector").Count(&stats.Sectors),
	}
	for _, s := range steps {
		if s.Error != nil {
			return nil, s.Error
		}
	}
	return &stats, nil
}
