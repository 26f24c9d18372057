package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	require.NoError(t, c.Validate())
	assert.InDelta(t, 1.0, c.WeightSum(), 1e-9)

	names := make([]string, 0, len(c.Criteria))
	for _, cr := range c.Criteria {
		names = append(names, cr.Name)
	}
	assert.Equal(t, []string{CriterionTeam, CriterionBusiness, CriterionTechnology, CriterionImpact}, names)

	team, ok := c.Criterion(CriterionTeam)
	require.True(t, ok)
	assert.Equal(t, []Field{FieldFounders, FieldDescription}, team.Fields)
	assert.Len(t, team.Dimensions, 3)

	_, ok = c.Criterion("unknown")
	assert.False(t, ok)
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	doc := `
criteria:
  - name: team
    weight: 0.6
    fields: [founders]
    dimensions:
      - name: education
        weight: 1
        indicators: [Oxford, Cambridge]
  - name: impact
    weight: 0.6
    fields: [description, problem]
    dimensions:
      - name: esg
        indicators: [ESG]
sectors:
  ai: [machine learning]
`
	c, err := LoadCatalog(strings.NewReader(doc))
	require.NoError(t, err)
	assert.InDelta(t, 1.2, c.WeightSum(), 1e-9)
	assert.Equal(t, []string{"machine learning"}, c.Sectors["ai"])

	b := NewScorer(c).Score(CompanyProfile{Founders: "oxford graduate"})
	assert.InDelta(t, 0.5, b.ComponentScores["team"], 1e-12)
	assert.InDelta(t, 0.3, b.TotalScore, 1e-12)
}

func TestCatalogValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Catalog {
		return &Catalog{Criteria: []Criterion{{
			Name:       "team",
			Weight:     1,
			Fields:     []Field{FieldFounders},
			Dimensions: []IndicatorSet{{Name: "education", Indicators: []string{"MIT"}}},
		}}}
	}

	tests := []struct {
		name   string
		mutate func(c *Catalog)
		errMsg string
	}{
		{name: "valid", mutate: func(*Catalog) {}},
		{name: "no criteria", mutate: func(c *Catalog) { c.Criteria = nil }, errMsg: "no criteria"},
		{name: "empty name", mutate: func(c *Catalog) { c.Criteria[0].Name = " " }, errMsg: "name is empty"},
		{name: "duplicate", mutate: func(c *Catalog) { c.Criteria = append(c.Criteria, c.Criteria[0]) }, errMsg: "defined twice"},
		{name: "negative weight", mutate: func(c *Catalog) { c.Criteria[0].Weight = -1 }, errMsg: "invalid weight"},
		{name: "no fields", mutate: func(c *Catalog) { c.Criteria[0].Fields = nil }, errMsg: "no profile fields"},
		{name: "unknown field", mutate: func(c *Catalog) { c.Criteria[0].Fields = []Field{"website"} }, errMsg: "unknown field"},
		{name: "no dimensions", mutate: func(c *Catalog) { c.Criteria[0].Dimensions = nil }, errMsg: "no dimensions"},
		{name: "no indicators", mutate: func(c *Catalog) { c.Criteria[0].Dimensions[0].Indicators = nil }, errMsg: "no indicators"},
		{name: "blank indicator", mutate: func(c *Catalog) { c.Criteria[0].Dimensions[0].Indicators = []string{""} }, errMsg: "empty indicator"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadCatalogRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := LoadCatalog(strings.NewReader("criteria: []"))
	assert.Error(t, err)

	_, err = LoadCatalog(strings.NewReader("criteria: ["))
	assert.Error(t, err)
}
