package scoring

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ScoreBreakdown is the scoring result for one company.
type ScoreBreakdown struct {
	TotalScore      float64                       `json:"total_score" yaml:"total_score"`
	ComponentScores map[string]float64            `json:"component_scores" yaml:"component_scores"`
	DimensionScores map[string]map[string]float64 `json:"dimension_scores,omitempty" yaml:"dimension_scores,omitempty"`
	ThesisRelevance *float64                      `json:"thesis_relevance,omitempty" yaml:"thesis_relevance,omitempty"`
}

// Scorer evaluates company profiles against a catalog. It holds no mutable
// state besides the optional thesis cache, which is goroutine safe.
type Scorer struct {
	catalog *Catalog
	agg     Aggregation
	theses  *gocache.Cache
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithAggregation replaces the default unweighted mean.
func WithAggregation(agg Aggregation) Option {
	return func(s *Scorer) {
		if agg != nil {
			s.agg = agg
		}
	}
}

// WithThesisCache memoizes the term counts of each distinct thesis text for
// ttl. A non-positive ttl disables the cache.
func WithThesisCache(ttl time.Duration) Option {
	return func(s *Scorer) {
		if ttl <= 0 {
			s.theses = nil
			return
		}
		s.theses = gocache.New(ttl, 2*ttl)
	}
}

// NewScorer builds a scorer over catalog, or DefaultCatalog when nil.
func NewScorer(catalog *Catalog, opts ...Option) *Scorer {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	s := &Scorer{
		catalog: catalog,
		agg:     MeanAggregation{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the scorer was built with.
func (s *Scorer) Catalog() *Catalog {
	return s.catalog
}

// Score computes every criterion and the weighted total.
func (s *Scorer) Score(p CompanyProfile) ScoreBreakdown {
	b := ScoreBreakdown{
		ComponentScores: make(map[string]float64, len(s.catalog.Criteria)),
		DimensionScores: make(map[string]map[string]float64, len(s.catalog.Criteria)),
	}

	// sum in catalog order so repeated calls are bit-identical
	total := 0.0
	for _, c := range s.catalog.Criteria {
		dims := DimensionScores(p, c)
		score := s.agg.Aggregate(dims, c.Dimensions)

		perDim := make(map[string]float64, len(dims))
		for i, d := range c.Dimensions {
			perDim[d.Name] = dims[i]
		}

		b.ComponentScores[c.Name] = score
		b.DimensionScores[c.Name] = perDim
		total += c.Weight * score
	}
	b.TotalScore = total

	return b
}

// ScoreWithThesis scores p and, when thesis is non-empty, attaches the thesis
// relevance.
func (s *Scorer) ScoreWithThesis(p CompanyProfile, thesis string) ScoreBreakdown {
	b := s.Score(p)
	if thesis != "" {
		r := s.ThesisRelevance(p, thesis)
		b.ThesisRelevance = &r
	}
	return b
}

// ThesisRelevance returns the tf-idf cosine similarity between thesis and the
// company's description, problem, solution and usp.
func (s *Scorer) ThesisRelevance(p CompanyProfile, thesis string) float64 {
	company := p.Text(FieldDescription, FieldProblem, FieldSolution, FieldUSP)
	return relevance(s.thesisTerms(thesis), termCounts(company))
}

func (s *Scorer) thesisTerms(thesis string) map[string]float64 {
	if s.theses == nil {
		return termCounts(thesis)
	}
	if v, ok := s.theses.Get(thesis); ok {
		return v.(map[string]float64)
	}
	terms := termCounts(thesis)
	s.theses.SetDefault(thesis, terms)
	return terms
}
