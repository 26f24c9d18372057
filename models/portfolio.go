package models

import (
	"strings"
	"time"

	"github.com/tashasho/MCP-Server-BNV/scoring"
)

type Incubator struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	Name          string     `json:"name" gorm:"uniqueIndex"`
	PortfolioURL  string     `json:"portfolio_url"`
	Location      string     `json:"location,omitempty"`
	FocusAreas    string     `json:"focus_areas,omitempty"`
	LastCrawledAt *time.Time `json:"last_crawled_at,omitempty"`
}

// PortfolioCompany is a crawled company together with its latest score.
type PortfolioCompany struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Incubator   string    `json:"incubator" gorm:"uniqueIndex:idx_incubator_company"`
	Name        string    `json:"name" gorm:"uniqueIndex:idx_incubator_company"`
	Description string    `json:"description"`
	Founders    string    `json:"founders"`
	Problem     string    `json:"problem"`
	Solution    string    `json:"solution"`
	USP         string    `json:"usp"`
	Sectors     string    `json:"sectors"`
	TotalScore  float64   `json:"total_score"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewPortfolioCompany flattens a profile for storage.
func NewPortfolioCompany(incubator string, p scoring.CompanyProfile, total float64) PortfolioCompany {
	return PortfolioCompany{
		Incubator:   incubator,
		Name:        p.Name,
		Description: p.Description,
		Founders:    p.Founders,
		Problem:     p.Problem,
		Solution:    p.Solution,
		USP:         p.USP,
		Sectors:     strings.Join(p.Sectors, ","),
		TotalScore:  total,
	}
}

func (pc PortfolioCompany) Profile() scoring.CompanyProfile {
	var sectors []string
	if pc.Sectors != "" {
		sectors = strings.Split(pc.Sectors, ",")
	}
	return scoring.CompanyProfile{
		Name:        pc.Name,
		Description: pc.Description,
		Founders:    pc.Founders,
		Problem:     pc.Problem,
		Solution:    pc.Solution,
		USP:         pc.USP,
		Sectors:     sectors,
	}
}
