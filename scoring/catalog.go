package scoring

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field names a CompanyProfile text field used to build a criterion blob.
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldFounders    Field = "founders"
	FieldProblem     Field = "problem"
	FieldSolution    Field = "solution"
	FieldUSP         Field = "usp"
)

const (
	CriterionTeam       = "team"
	CriterionBusiness   = "business"
	CriterionTechnology = "technology"
	CriterionImpact     = "impact"
)

// IndicatorSet is a named sub-dimension of a criterion.
type IndicatorSet struct {
	Name       string   `yaml:"name" json:"name"`
	Weight     float64  `yaml:"weight" json:"weight"`
	Indicators []string `yaml:"indicators" json:"indicators"`
}

// Criterion is one of the top-level evaluation axes.
type Criterion struct {
	Name       string         `yaml:"name" json:"name"`
	Weight     float64        `yaml:"weight" json:"weight"`
	Fields     []Field        `yaml:"fields" json:"fields"`
	Dimensions []IndicatorSet `yaml:"dimensions" json:"dimensions"`
}

// Catalog holds every criterion plus the sector keyword table. It is loaded
// once and shared read-only between goroutines.
type Catalog struct {
	Criteria []Criterion         `yaml:"criteria" json:"criteria"`
	Sectors  map[string][]string `yaml:"sectors" json:"sectors"`
}

// DefaultCatalog returns the built-in indicator lists and weights.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Criteria: []Criterion{
			{
				Name:   CriterionTeam,
				Weight: 0.35,
				Fields: []Field{FieldFounders, FieldDescription},
				Dimensions: []IndicatorSet{
					{Name: "education", Weight: 0.3, Indicators: []string{
						"IIT", "IIM", "Harvard", "Stanford", "MIT",
						"top university", "prestigious institution",
					}},
					{Name: "experience", Weight: 0.4, Indicators: []string{
						"years experience", "worked at", "former", "led",
						"founded", "serial entrepreneur", "leadership",
					}},
					{Name: "skills", Weight: 0.3, Indicators: []string{
						"technical expertise", "business acumen", "visionary",
						"communication skills", "team management",
					}},
				},
			},
			{
				Name:   CriterionBusiness,
				Weight: 0.30,
				Fields: []Field{FieldDescription, FieldUSP},
				Dimensions: []IndicatorSet{
					{Name: "market_size", Weight: 0.4, Indicators: []string{
						"large market", "billion dollar", "massive opportunity",
						"growing market", "scale", "expansion",
					}},
					{Name: "growth_potential", Weight: 0.3, Indicators: []string{
						"rapid growth", "scalable", "exponential", "traction",
						"revenue growth",
					}},
					{Name: "innovation", Weight: 0.3, Indicators: []string{
						"unique", "innovative", "disrupting", "revolutionary",
						"breakthrough",
					}},
				},
			},
			{
				Name:   CriterionTechnology,
				Weight: 0.20,
				Fields: []Field{FieldSolution, FieldUSP},
				Dimensions: []IndicatorSet{
					{Name: "innovation", Weight: 0.4, Indicators: []string{
						"patent", "proprietary", "novel technology",
						"breakthrough", "cutting edge",
					}},
					{Name: "feasibility", Weight: 0.3, Indicators: []string{
						"proven", "validated", "working product", "prototype",
						"production ready",
					}},
					{Name: "competitive_advantage", Weight: 0.3, Indicators: []string{
						"barrier to entry", "competitive advantage",
						"unique technology", "10x better", "superior",
					}},
				},
			},
			{
				Name:   CriterionImpact,
				Weight: 0.15,
				Fields: []Field{FieldDescription, FieldProblem, FieldSolution},
				Dimensions: []IndicatorSet{
					{Name: "social_impact", Weight: 0.5, Indicators: []string{
						"social impact", "sustainability", "environmental",
						"community", "welfare",
					}},
					{Name: "esg", Weight: 0.5, Indicators: []string{
						"ESG", "governance", "sustainable", "responsible",
						"ethical",
					}},
				},
			},
		},
		Sectors: map[string][]string{
			"climate_tech": {
				"climate", "renewable", "sustainability", "clean energy",
				"carbon", "environmental", "green tech",
			},
			"health_tech": {
				"healthcare", "medical", "biotech", "health", "pharma",
				"diagnostics", "telemedicine",
			},
			"ai": {
				"artificial intelligence", "machine learning", "deep learning",
				"neural network", "AI", "NLP", "computer vision",
			},
			"saas": {
				"software service", "cloud", "platform", "subscription",
				"enterprise software", "B2B software",
			},
			"fintech": {
				"financial technology", "payments", "banking", "insurance",
				"blockchain", "cryptocurrency",
			},
			"edtech": {
				"education technology", "learning platform", "e-learning",
				"online education", "educational",
			},
		},
	}
}

// LoadCatalog decodes a YAML catalog and validates it.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports structural problems. The criterion weights are not
// required to sum to 1.
func (c *Catalog) Validate() error {
	if c == nil || len(c.Criteria) == 0 {
		return errors.New("catalog has no criteria")
	}

	seen := make(map[string]struct{}, len(c.Criteria))
	for _, cr := range c.Criteria {
		name := strings.TrimSpace(cr.Name)
		if name == "" {
			return errors.New("criterion name is empty")
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("criterion %q defined twice", name)
		}
		seen[name] = struct{}{}

		if cr.Weight < 0 || math.IsNaN(cr.Weight) {
			return fmt.Errorf("criterion %q: invalid weight %v", name, cr.Weight)
		}
		if len(cr.Fields) == 0 {
			return fmt.Errorf("criterion %q: no profile fields", name)
		}
		for _, f := range cr.Fields {
			if !f.valid() {
				return fmt.Errorf("criterion %q: unknown field %q", name, f)
			}
		}
		if len(cr.Dimensions) == 0 {
			return fmt.Errorf("criterion %q: no dimensions", name)
		}
		for _, d := range cr.Dimensions {
			if strings.TrimSpace(d.Name) == "" {
				return fmt.Errorf("criterion %q: dimension name is empty", name)
			}
			if d.Weight < 0 || math.IsNaN(d.Weight) {
				return fmt.Errorf("%s.%s: invalid weight %v", name, d.Name, d.Weight)
			}
			if len(d.Indicators) == 0 {
				return fmt.Errorf("%s.%s: no indicators", name, d.Name)
			}
			for _, ind := range d.Indicators {
				if strings.TrimSpace(ind) == "" {
					return fmt.Errorf("%s.%s: empty indicator", name, d.Name)
				}
			}
		}
	}
	return nil
}

// WeightSum returns the sum of the top-level criterion weights.
func (c *Catalog) WeightSum() float64 {
	s := 0.0
	for _, cr := range c.Criteria {
		s += cr.Weight
	}
	return s
}

// Criterion looks up a criterion by name.
func (c *Catalog) Criterion(name string) (Criterion, bool) {
	for _, cr := range c.Criteria {
		if cr.Name == name {
			return cr, true
		}
	}
	return Criterion{}, false
}

func (f Field) valid() bool {
	switch f {
	case FieldName, FieldDescription, FieldFounders, FieldProblem, FieldSolution, FieldUSP:
		return true
	}
	return false
}
