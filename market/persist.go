package market

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tashasho/MCP-Server-BNV/models"
)

// Signals flattens a scan into storable signals. IDs are derived from the
// item's identity, so the same article stored twice keeps one row.
func Signals(ins Insights) []models.Signal {
	ingested := ins.GatheredAt
	if ingested.IsZero() {
		ingested = time.Now()
	}
	ingested = ingested.UTC()

	out := make([]models.Signal, 0, len(ins.News)+len(ins.SocialTrends)+len(ins.FundingData))
	for _, a := range ins.News {
		out = append(out, models.Signal{
			ID:           signalID(models.KindNews, a.URL),
			Kind:         models.KindNews,
			Sector:       a.Sector,
			SourceDomain: a.Source,
			URL:          a.URL,
			Title:        a.Title,
			Summary:      a.Description,
			TsPublished:  a.PublishedAt.UTC(),
			TsIngested:   ingested,
		})
	}
	for _, p := range ins.SocialTrends {
		out = append(out, models.Signal{
			ID:           signalID(models.KindSocial, p.ID+"|"+p.Content),
			Kind:         models.KindSocial,
			Sector:       p.Sector,
			SourceDomain: "twitter.com",
			Summary:      p.Content,
			Engagement:   p.Engagement.Total(),
			TsPublished:  p.CreatedAt.UTC(),
			TsIngested:   ingested,
		})
	}
	for _, r := range ins.FundingData {
		published, _ := time.Parse("2006-01-02", r.AnnouncedOn)
		out = append(out, models.Signal{
			ID:           signalID(models.KindFunding, r.CompanyName+"|"+r.Series+"|"+r.AnnouncedOn),
			Kind:         models.KindFunding,
			Company:      r.CompanyName,
			SourceDomain: "crunchbase.com",
			Title:        fundingTitle(r),
			AmountUSD:    r.AmountUSD,
			Stage:        r.Series,
			Investors:    strings.Join(r.Investors, ","),
			TsPublished:  published,
			TsIngested:   ingested,
		})
	}
	return out
}

// Persist stores the scan, skipping signals that already exist. It returns
// the number of signals handed to the database.
func Persist(ctx context.Context, db *gorm.DB, ins Insights) (int, error) {
	signals := Signals(ins)
	if len(signals) == 0 {
		return 0, nil
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&signals, 100).Error
	if err != nil {
		return 0, fmt.Errorf("storing market signals: %w", err)
	}
	return len(signals), nil
}

func signalID(kind, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(kind+":"+key)).String()
}

func fundingTitle(r FundingRound) string {
	title := r.CompanyName + " raised"
	if r.AmountUSD > 0 {
		title += " $" + strconv.FormatFloat(r.AmountUSD, 'f', 0, 64)
	}
	if r.Series != "" {
		title += " (" + r.Series + ")"
	}
	return title
}
