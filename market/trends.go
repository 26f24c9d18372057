package market

import (
	"sort"
	"time"
)

const topInvestors = 5

// AnalyzeTrends derives sector momentum from news volume and investment
// patterns from funding rounds. The trend compares the newer half of the news
// window with the older half.
func AnalyzeTrends(news []Article, rounds []FundingRound, now time.Time, window time.Duration) Trends {
	t := Trends{SectorMomentum: map[string]Momentum{}}

	type halves struct{ recent, older int }
	counts := map[string]*halves{}
	mid := now.Add(-window / 2)
	for _, a := range news {
		h := counts[a.Sector]
		if h == nil {
			h = &halves{}
			counts[a.Sector] = h
		}
		if a.PublishedAt.After(mid) {
			h.recent++
		} else {
			h.older++
		}
	}
	for sector, h := range counts {
		t.SectorMomentum[sector] = Momentum{
			NewsVolume: h.recent + h.older,
			Trend:      trend(h.recent, h.older),
		}
	}

	if len(rounds) > 0 {
		t.InvestmentPatterns = investmentPatterns(rounds)
	}
	return t
}

func trend(recent, older int) string {
	switch {
	case float64(recent) > 1.25*float64(older):
		return TrendRising
	case float64(recent) < 0.8*float64(older):
		return TrendFalling
	}
	return TrendStable
}

func investmentPatterns(rounds []FundingRound) *InvestmentPatterns {
	p := &InvestmentPatterns{
		MostActiveInvestors: map[string]int{},
		StageDistribution:   map[string]int{},
	}

	total := 0.0
	investors := map[string]int{}
	for _, r := range rounds {
		total += r.AmountUSD
		for _, inv := range r.Investors {
			investors[inv]++
		}
		if r.Series != "" {
			p.StageDistribution[r.Series]++
		}
	}
	p.AverageRoundSize = total / float64(len(rounds))

	names := make([]string, 0, len(investors))
	for name := range investors {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if investors[names[i]] != investors[names[j]] {
			return investors[names[i]] > investors[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > topInvestors {
		names = names[:topInvestors]
	}
	for _, name := range names {
		p.MostActiveInvestors[name] = investors[name]
	}
	return p
}
