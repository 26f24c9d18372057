package scoring

// Aggregation folds sub-dimension scores into one criterion score.
type Aggregation interface {
	Aggregate(scores []float64, dims []IndicatorSet) float64
}

// MeanAggregation is the unweighted arithmetic mean. Dimension weights are
// ignored.
type MeanAggregation struct{}

func (MeanAggregation) Aggregate(scores []float64, _ []IndicatorSet) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return clip(sum/float64(len(scores)), 0, 1)
}

// WeightedMeanAggregation applies IndicatorSet.Weight. When every weight is
// zero it behaves like MeanAggregation.
type WeightedMeanAggregation struct{}

func (WeightedMeanAggregation) Aggregate(scores []float64, dims []IndicatorSet) float64 {
	totalWeight := 0.0
	weighted := 0.0
	for i, s := range scores {
		if i >= len(dims) {
			break
		}
		totalWeight += dims[i].Weight
		weighted += s * dims[i].Weight
	}
	if totalWeight == 0 {
		return MeanAggregation{}.Aggregate(scores, dims)
	}
	return clip(weighted/totalWeight, 0, 1)
}

// DimensionScores runs the matcher for every sub-dimension of c against the
// criterion's blob, preserving catalog order.
func DimensionScores(p CompanyProfile, c Criterion) []float64 {
	text := p.Text(c.Fields...)
	scores := make([]float64, len(c.Dimensions))
	for i, dim := range c.Dimensions {
		scores[i] = MatchScore(text, dim)
	}
	return scores
}

// ScoreCriterion scores a profile on one criterion with the given aggregation
// (MeanAggregation when agg is nil).
func ScoreCriterion(p CompanyProfile, c Criterion, agg Aggregation) float64 {
	if agg == nil {
		agg = MeanAggregation{}
	}
	return agg.Aggregate(DimensionScores(p, c), c.Dimensions)
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
