package scoring

const (
	DefaultMinimumScore = 0.5
	DefaultThesisWeight = 0.4
)

// ScreeningOptions controls how a breakdown is turned into a pass/fail call.
type ScreeningOptions struct {
	MinimumScore float64 `json:"minimum_score"`
	ThesisWeight float64 `json:"thesis_weight"`
}

// Screening is the outcome of Screen.
type Screening struct {
	Combined  float64 `json:"combined_score" yaml:"combined_score"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Passed    bool    `json:"passed" yaml:"passed"`
}

// DefaultScreeningOptions returns the configured threshold and thesis weight.
func DefaultScreeningOptions() ScreeningOptions {
	return ScreeningOptions{
		MinimumScore: DefaultMinimumScore,
		ThesisWeight: DefaultThesisWeight,
	}
}

// Screen blends the total score with the thesis relevance, when present, and
// compares the result against the minimum score.
func Screen(b ScoreBreakdown, opts ScreeningOptions) Screening {
	w := clip(opts.ThesisWeight, 0, 1)
	combined := b.TotalScore
	if b.ThesisRelevance != nil {
		combined = (1-w)*b.TotalScore + w*(*b.ThesisRelevance)
	}
	return Screening{
		Combined:  combined,
		Threshold: opts.MinimumScore,
		Passed:    combined >= opts.MinimumScore,
	}
}
