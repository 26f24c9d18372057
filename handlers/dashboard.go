package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tashasho/MCP-Server-BNV/models"
)

type DashboardData struct {
	Filters FilterParams    `json:"filters"`
	Signals []models.Signal `json:"signals"`
	Stats   *StatsData      `json:"stats,omitempty"`
}

// Dashboard returns the latest signals and, when any filter is set, the
// statistics for the filtered set.
func (a *API) Dashboard(c *gin.Context) {
	if a.DB == nil {
		unavailable(c, "database")
		return
	}

	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be RFC 3339 or YYYY-MM-DD"})
		return
	}

	signals, err := a.loadSignals(c, filters, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var stats *StatsData
	if filters.active() {
		if stats, err = a.loadStats(c, filters); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, DashboardData{
		Filters: filters,
		Signals: signals,
		Stats:   stats,
	})
}
