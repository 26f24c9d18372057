package models

import "time"

// Deal is a prioritized deal-flow email.
type Deal struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	MessageID      string    `json:"message_id" gorm:"uniqueIndex"`
	Sender         string    `json:"sender"`
	Subject        string    `json:"subject"`
	CompanyName    string    `json:"company_name"`
	FundingStage   string    `json:"funding_stage"`
	Sectors        string    `json:"sectors"`
	TeamInfo       string    `json:"team_info"`
	WarmIntro      bool      `json:"warm_intro"`
	Score          float64   `json:"score"`
	Priority       float64   `json:"priority"`
	PreferredStage bool      `json:"preferred_stage"`
	ReceivedAt     time.Time `json:"received_at"`
	FollowUpAt     time.Time `json:"follow_up_at"`
}
