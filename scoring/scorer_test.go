package scoring

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreEmptyProfile(t *testing.T) {
	t.Parallel()

	b := NewScorer(nil).Score(CompanyProfile{})
	assert.Equal(t, 0.0, b.TotalScore)
	require.Len(t, b.ComponentScores, 4)
	for name, s := range b.ComponentScores {
		assert.Equal(t, 0.0, s, name)
	}
	assert.Nil(t, b.ThesisRelevance)
}

func TestScoreFoundersExample(t *testing.T) {
	t.Parallel()

	b := NewScorer(nil).Score(CompanyProfile{Founders: "IIT Bombay alum, founded three companies"})

	assert.Greater(t, b.DimensionScores[CriterionTeam]["education"], 0.0)
	assert.Greater(t, b.DimensionScores[CriterionTeam]["experience"], 0.0)
	assert.Equal(t, 0.0, b.DimensionScores[CriterionTeam]["skills"])
	assert.InDelta(t, (1.0/7+1.0/7)/3, b.ComponentScores[CriterionTeam], 1e-12)
}

func TestScoreClimateExample(t *testing.T) {
	t.Parallel()

	p := CompanyProfile{
		Description: "We are building a proprietary patent-pending AI platform for climate risk, led by former Google engineers",
		USP:         "10x better carbon modeling",
	}
	s := NewScorer(nil)
	b := s.Score(p)

	// technology reads solution+usp, so only "10x better" is visible to it
	assert.Greater(t, b.ComponentScores[CriterionTechnology], 0.0)
	assert.Greater(t, b.DimensionScores[CriterionTechnology]["competitive_advantage"], 0.0)
	assert.Equal(t, 0.0, b.DimensionScores[CriterionTechnology]["innovation"])

	tech, ok := s.Catalog().Criterion(CriterionTechnology)
	require.True(t, ok)
	assert.InDelta(t, 2.0/5, MatchScore(p.Description, tech.Dimensions[0]), 1e-12)

	assert.Greater(t, b.DimensionScores[CriterionTeam]["experience"], 0.0)
	assert.Equal(t, []string{"former", "led"}, Matched(p.Text(FieldFounders, FieldDescription), IndicatorSet{
		Indicators: DefaultCatalog().Criteria[0].Dimensions[1].Indicators,
	}))
}

func TestScoreTotalIsWeightedSum(t *testing.T) {
	t.Parallel()

	p := CompanyProfile{
		Name:        "Acme",
		Description: "A scalable platform with rapid growth and traction in a billion dollar, growing market. Ethical and sustainable.",
		Founders:    "Former Stanford researchers with technical expertise; serial entrepreneur who led two exits",
		Problem:     "Community welfare suffers from poor governance",
		Solution:    "A validated prototype built on proprietary novel technology",
		USP:         "Unique technology with a barrier to entry",
	}
	catalog := DefaultCatalog()
	b := NewScorer(catalog).Score(p)

	expected := 0.0
	for _, c := range catalog.Criteria {
		s := b.ComponentScores[c.Name]
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		expected += c.Weight * s
	}
	assert.InDelta(t, expected, b.TotalScore, 1e-12)
	assert.Greater(t, b.TotalScore, 0.0)
	assert.LessOrEqual(t, b.TotalScore, 1.0)
}

func TestScoreIsDeterministic(t *testing.T) {
	t.Parallel()

	p := CompanyProfile{
		Description: "Revolutionary, ESG-aligned payments platform",
		USP:         "superior, patent protected",
		Solution:    "production ready",
	}
	s := NewScorer(nil)
	assert.Equal(t, s.Score(p), s.Score(p))
}

func TestScoreConcurrentUse(t *testing.T) {
	t.Parallel()

	s := NewScorer(nil, WithThesisCache(time.Minute))
	p := CompanyProfile{Description: "climate software with rapid growth"}
	want := s.ScoreWithThesis(p, "climate software")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, s.ScoreWithThesis(p, "climate software"))
		}()
	}
	wg.Wait()
}

func TestWeightedMeanAggregation(t *testing.T) {
	t.Parallel()

	dims := []IndicatorSet{{Name: "a", Weight: 0.4}, {Name: "b", Weight: 0.3}, {Name: "c", Weight: 0.3}}
	scores := []float64{1, 0, 0.5}

	assert.InDelta(t, 0.5, MeanAggregation{}.Aggregate(scores, dims), 1e-12)
	assert.InDelta(t, 0.55, WeightedMeanAggregation{}.Aggregate(scores, dims), 1e-12)

	unweighted := []IndicatorSet{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	assert.InDelta(t, 0.5, WeightedMeanAggregation{}.Aggregate(scores, unweighted), 1e-12)
	assert.Equal(t, 0.0, MeanAggregation{}.Aggregate(nil, nil))
}

func TestScorerWithWeightedAggregation(t *testing.T) {
	t.Parallel()

	p := CompanyProfile{Founders: "Harvard MBA"}
	mean := NewScorer(nil).Score(p)
	weighted := NewScorer(nil, WithAggregation(WeightedMeanAggregation{})).Score(p)

	assert.InDelta(t, (1.0/7)/3, mean.ComponentScores[CriterionTeam], 1e-12)
	assert.InDelta(t, (1.0/7)*0.3, weighted.ComponentScores[CriterionTeam], 1e-12)
}

func TestScoreWithThesis(t *testing.T) {
	t.Parallel()

	s := NewScorer(nil)
	p := CompanyProfile{Description: "climate energy"}

	b := s.ScoreWithThesis(p, "climate carbon")
	require.NotNil(t, b.ThesisRelevance)
	assert.InDelta(t, 0.33609692727625745, *b.ThesisRelevance, 1e-9)

	assert.Nil(t, s.ScoreWithThesis(p, "").ThesisRelevance)
}

func TestScoreCriterionDefaultsToMean(t *testing.T) {
	t.Parallel()

	impact, ok := DefaultCatalog().Criterion(CriterionImpact)
	require.True(t, ok)

	p := CompanyProfile{Problem: "environmental damage", Solution: "ethical sourcing"}
	assert.InDelta(t, (1.0/5+1.0/5)/2, ScoreCriterion(p, impact, nil), 1e-12)
}
