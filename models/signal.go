package models

import "time"

// Signal kinds.
const (
	KindNews    = "news"
	KindSocial  = "social"
	KindFunding = "funding"
)

// Signal is one market intelligence item: a news article, a social post or a
// funding round.
type Signal struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Kind         string    `json:"kind" gorm:"index"`
	Sector       string    `json:"sector" gorm:"index"`
	Company      string    `json:"company,omitempty" gorm:"index"`
	SourceDomain string    `json:"source_domain"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Engagement   int       `json:"engagement"`
	AmountUSD    float64   `json:"amount_usd,omitempty"`
	Stage        string    `json:"stage,omitempty"`
	Investors    string    `json:"investors,omitempty"`
	TsPublished  time.Time `json:"ts_published" gorm:"index"`
	TsIngested   time.Time `json:"ts_ingested"`
}
