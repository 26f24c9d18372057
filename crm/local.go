package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tashasho/MCP-Server-BNV/models"
)

// LocalStore keeps the CRM data in the application database.
type LocalStore struct {
	db *gorm.DB
}

func NewLocalStore(db *gorm.DB) *LocalStore {
	return &LocalStore{db: db}
}

// SaveIncubator creates an incubator or updates the one whose name matches
// regardless of case, keeping the spelling first saved.
func (s *LocalStore) SaveIncubator(ctx context.Context, inc Incubator) error {
	var existing models.Incubator
	err := s.db.WithContext(ctx).Where("lower(name) = ?", strings.ToLower(inc.Name)).Limit(1).Find(&existing).Error
	if err != nil {
		return fmt.Errorf("saving incubator %q: %w", inc.Name, err)
	}
	if existing.Name != "" {
		inc.Name = existing.Name
	}

	row := models.Incubator{
		Name:         inc.Name,
		PortfolioURL: inc.PortfolioURL,
		Location:     inc.Location,
		FocusAreas:   strings.Join(inc.FocusAreas, ","),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"portfolio_url", "location", "focus_areas"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving incubator %q: %w", inc.Name, err)
	}
	return nil
}

func (s *LocalStore) ListIncubators(ctx context.Context) ([]Incubator, error) {
	var rows []models.Incubator
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing incubators: %w", err)
	}
	out := make([]Incubator, 0, len(rows))
	for _, r := range rows {
		out = append(out, incubatorFromRow(r))
	}
	return out, nil
}

func (s *LocalStore) FindIncubator(ctx context.Context, name string) (Incubator, error) {
	var row models.Incubator
	err := s.db.WithContext(ctx).Where("lower(name) = ?", strings.ToLower(name)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Incubator{}, fmt.Errorf("incubator %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Incubator{}, fmt.Errorf("finding incubator %q: %w", name, err)
	}
	return incubatorFromRow(row), nil
}

// PortfolioCompanies matches the incubator name case-insensitively, like
// FindIncubator.
func (s *LocalStore) PortfolioCompanies(ctx context.Context, incubator string) ([]Company, error) {
	var rows []models.PortfolioCompany
	err := s.db.WithContext(ctx).
		Where("lower(incubator) = ?", strings.ToLower(incubator)).
		Order("total_score DESC, name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading portfolio of %q: %w", incubator, err)
	}
	out := make([]Company, 0, len(rows))
	for _, r := range rows {
		out = append(out, Company{CompanyProfile: r.Profile(), TotalScore: r.TotalScore})
	}
	return out, nil
}

// UpsertPortfolio writes every company in one transaction and stamps the
// incubator's crawl time when the incubator is known.
func (s *LocalStore) UpsertPortfolio(ctx context.Context, incubator string, companies []Company) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range companies {
			row := models.NewPortfolioCompany(incubator, c.CompanyProfile, c.TotalScore)
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "incubator"}, {Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"description", "founders", "problem", "solution", "usp",
					"sectors", "total_score", "updated_at",
				}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("saving %q for %q: %w", c.Name, incubator, err)
			}
		}

		now := time.Now().UTC()
		return tx.Model(&models.Incubator{}).
			Where("lower(name) = ?", strings.ToLower(incubator)).
			Update("last_crawled_at", &now).Error
	})
}

func incubatorFromRow(r models.Incubator) Incubator {
	inc := Incubator{
		Name:          r.Name,
		PortfolioURL:  r.PortfolioURL,
		Location:      r.Location,
		LastCrawledAt: r.LastCrawledAt,
	}
	if r.FocusAreas != "" {
		inc.FocusAreas = strings.Split(r.FocusAreas, ",")
	}
	return inc
}
