package dealflow

import (
	"sort"
	"strings"
	"time"

	"github.com/tashasho/MCP-Server-BNV/scoring"
)

// Criteria are the deal-flow screening rules.
type Criteria struct {
	WarmIntroBonus  float64
	MinTeamSize     int
	PreferredStages []string
	FollowUpDelay   time.Duration
	Thesis          string
	Screening       scoring.ScreeningOptions
}

// DefaultCriteria mirrors the built-in deal-flow settings.
func DefaultCriteria() Criteria {
	return Criteria{
		WarmIntroBonus:  0.2,
		MinTeamSize:     2,
		PreferredStages: []string{"seed", "series a"},
		FollowUpDelay:   48 * time.Hour,
		Screening:       scoring.DefaultScreeningOptions(),
	}
}

// Prioritized is a scored deal.
type Prioritized struct {
	Deal             Deal                   `json:"deal"`
	Score            scoring.ScoreBreakdown `json:"score"`
	Screening        scoring.Screening      `json:"screening"`
	Priority         float64                `json:"priority"`
	PreferredStage   bool                   `json:"preferred_stage"`
	TeamMeetsMinimum bool                   `json:"team_meets_minimum"`
	FollowUpAt       time.Time              `json:"follow_up_at"`
}

// Prioritize scores one deal. Priority is the screening score plus the warm
// intro bonus; the stage and team checks are reported, not folded in.
func Prioritize(s *scoring.Scorer, d Deal, c Criteria, now time.Time) Prioritized {
	b := s.ScoreWithThesis(d.Profile(), c.Thesis)
	screen := scoring.Screen(b, c.Screening)

	priority := screen.Combined
	if d.WarmIntro {
		priority += c.WarmIntroBonus
	}

	received := d.ReceivedAt
	if received.IsZero() {
		received = now
	}

	return Prioritized{
		Deal:             d,
		Score:            b,
		Screening:        screen,
		Priority:         priority,
		PreferredStage:   isPreferredStage(d.FundingStage, c.PreferredStages),
		TeamMeetsMinimum: d.Team.Size() >= c.MinTeamSize,
		FollowUpAt:       received.Add(c.FollowUpDelay),
	}
}

// PrioritizeAll scores every deal and orders them by priority, preferred
// stage first on ties, then by receipt time.
func PrioritizeAll(s *scoring.Scorer, deals []Deal, c Criteria, now time.Time) []Prioritized {
	out := make([]Prioritized, 0, len(deals))
	for _, d := range deals {
		out = append(out, Prioritize(s, d, c, now))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.PreferredStage != b.PreferredStage {
			return a.PreferredStage
		}
		return a.Deal.ReceivedAt.Before(b.Deal.ReceivedAt)
	})
	return out
}

func isPreferredStage(stage string, preferred []string) bool {
	for _, p := range preferred {
		if strings.EqualFold(stage, p) {
			return true
		}
	}
	return false
}
