package scoring

import "strings"

// MatchScore returns the share of indicator phrases found in text, capped at 1.
// Matching is a case-insensitive substring test; a phrase listed twice (in any
// casing) is counted once.
func MatchScore(text string, set IndicatorSet) float64 {
	if len(set.Indicators) == 0 {
		return 0
	}
	if text == "" {
		return 0
	}

	lowered := strings.ToLower(text)
	seen := make(map[string]struct{}, len(set.Indicators))
	matches := 0
	for _, ind := range set.Indicators {
		phrase := strings.ToLower(ind)
		if phrase == "" {
			continue
		}
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		if strings.Contains(lowered, phrase) {
			matches++
		}
	}

	return min(float64(matches)/float64(len(set.Indicators)), 1.0)
}

// Matched lists the distinct indicator phrases present in text, in catalog order.
func Matched(text string, set IndicatorSet) []string {
	lowered := strings.ToLower(text)
	seen := make(map[string]struct{}, len(set.Indicators))
	var out []string
	for _, ind := range set.Indicators {
		phrase := strings.ToLower(ind)
		if phrase == "" {
			continue
		}
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		if strings.Contains(lowered, phrase) {
			out = append(out, ind)
		}
	}
	return out
}
