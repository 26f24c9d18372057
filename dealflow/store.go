package dealflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tashasho/MCP-Server-BNV/models"
)

// messageKey is the Message-ID, or a stable id derived from the content when
// the header is missing.
func messageKey(d Deal) string {
	if d.MessageID != "" {
		return d.MessageID
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(d.Sender+"|"+d.Subject+"|"+d.RawContent)).String()
}

func dealRow(p Prioritized) (models.Deal, error) {
	team, err := json.Marshal(p.Deal.Team)
	if err != nil {
		return models.Deal{}, fmt.Errorf("encoding team info: %w", err)
	}
	return models.Deal{
		MessageID:      messageKey(p.Deal),
		Sender:         p.Deal.Sender,
		Subject:        p.Deal.Subject,
		CompanyName:    p.Deal.CompanyName,
		FundingStage:   p.Deal.FundingStage,
		Sectors:        strings.Join(p.Deal.Sectors, ","),
		TeamInfo:       string(team),
		WarmIntro:      p.Deal.WarmIntro,
		Score:          p.Score.TotalScore,
		Priority:       p.Priority,
		PreferredStage: p.PreferredStage,
		ReceivedAt:     p.Deal.ReceivedAt.UTC(),
		FollowUpAt:     p.FollowUpAt.UTC(),
	}, nil
}

// SaveDeals stores prioritized deals keyed by message. A message seen again
// refreshes its score and priority.
func SaveDeals(ctx context.Context, db *gorm.DB, deals []Prioritized) error {
	if len(deals) == 0 {
		return nil
	}
	rows := make([]models.Deal, 0, len(deals))
	for _, p := range deals {
		row, err := dealRow(p)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "priority", "preferred_stage", "follow_up_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("saving deals: %w", err)
	}
	return nil
}

// StoredDeals returns up to limit stored deals, highest priority first.
func StoredDeals(ctx context.Context, db *gorm.DB, limit int) ([]models.Deal, error) {
	deals := []models.Deal{}
	err := db.WithContext(ctx).
		Order("priority DESC, preferred_stage DESC, received_at").
		Limit(limit).
		Find(&deals).Error
	if err != nil {
		return nil, fmt.Errorf("loading deals: %w", err)
	}
	return deals, nil
}
