package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tashasho/MCP-Server-BNV/crm"
	"github.com/tashasho/MCP-Server-BNV/database"
	"github.com/tashasho/MCP-Server-BNV/dealflow"
	"github.com/tashasho/MCP-Server-BNV/market"
	"github.com/tashasho/MCP-Server-BNV/models"
	"github.com/tashasho/MCP-Server-BNV/scoring"
)

type fakeCrawler struct {
	mu       sync.Mutex
	urls     []string
	profiles []scoring.CompanyProfile
	err      error
}

func (f *fakeCrawler) Crawl(_ context.Context, url string) ([]scoring.CompanyProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	return f.profiles, f.err
}

type fakeNews struct{}

func (fakeNews) Search(_ context.Context, query string, _ time.Time) ([]market.Article, error) {
	return []market.Article{{Title: "about " + query, URL: "https://news/" + query, PublishedAt: time.Now()}}, nil
}

type testEnv struct {
	api     *API
	router  *gin.Engine
	store   *crm.LocalStore
	crawler *fakeCrawler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store := crm.NewLocalStore(db)
	fc := &fakeCrawler{}
	opts := market.DefaultOptions()
	opts.Sectors = map[string][]string{"climate": {"carbon"}}

	api := &API{
		Scorer:        scoring.NewScorer(nil),
		Screening:     scoring.DefaultScreeningOptions(),
		Store:         store,
		Crawler:       fc,
		Market:        market.NewService(market.Sources{News: fakeNews{}}, opts, nil),
		DB:            db,
		Extractor:     dealflow.NewExtractor(nil),
		DealCriteria:  dealflow.DefaultCriteria(),
		EnrichTimeout: time.Second,
	}
	return &testEnv{
		api:     api,
		router:  NewRouter(api, RouterConfig{}),
		store:   store,
		crawler: fc,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRootAndHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, w)["status"])
}

func TestScoreCompany(t *testing.T) {
	env := newTestEnv(t)

	body := `{"company":{"name":"Verdant","founders":"IIT Bombay alum, founded three companies","description":12},
		"thesis":{"thesis_text":"climate software"}}`
	w := env.do(t, http.MethodPost, "/score-company", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[ScoreResponse](t, w)
	assert.InDelta(t, 0.35*(2.0/7)/3, resp.TotalScore, 1e-12)
	assert.Len(t, resp.ComponentScores, 4)
	require.NotNil(t, resp.ThesisRelevance)
	assert.Equal(t, 0.0, *resp.ThesisRelevance)
	assert.False(t, resp.Screening.Passed)
	assert.Nil(t, resp.MarketContext)
}

func TestScoreCompanyBareProfileWithEnrichment(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/score-company?enrich=true", `{"name":"Verdant","description":"carbon platform"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[ScoreResponse](t, w)
	assert.Nil(t, resp.ThesisRelevance)
	assert.Equal(t, []string{"climate_tech", "saas"}, resp.Sectors)
	require.NotNil(t, resp.MarketContext)
	assert.Equal(t, "Verdant", resp.MarketContext.Company)
	assert.Len(t, resp.MarketContext.News, 1)
}

func TestScoreCompanyEmptyThesisObject(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/score-company",
		`{"company":{"name":"Verdant","description":"carbon platform"},"thesis":{"thesis_text":""}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Contains(t, raw, "thesis_relevance")
	assert.Equal(t, 0.0, raw["thesis_relevance"])
}

func TestScoreCompanyMergesCallerSectors(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/score-company",
		`{"name":"Verdant","description":"carbon platform","sectors":["FinTech"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"climate_tech", "fintech", "saas"}, decode[ScoreResponse](t, w).Sectors)
}

func TestScoreCompanyRejectsNonObject(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/score-company", `["not","an","object"]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type incubatorsEnvelope struct {
	Incubators []crm.Incubator `json:"incubators"`
}

type portfolioEnvelope struct {
	Portfolio []crm.Company `json:"portfolio"`
}

func TestIncubatorsAndPortfolio(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/incubators",
		`{"name":" Antler ","portfolio_url":"https://antler.example/portfolio","location":"Singapore","focus_areas":["fintech"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]crm.Incubator](t, w)["incubator"]
	assert.Equal(t, "Antler", created.Name)

	w = env.do(t, http.MethodPost, "/incubators", `{"name":"NoURL"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/incubators", "")
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[incubatorsEnvelope](t, w).Incubators
	require.Len(t, listed, 2)

	env.crawler.profiles = []scoring.CompanyProfile{
		{Name: "Verdant", Founders: "Stanford founders"},
		{Name: "Empty"},
	}

	w = env.do(t, http.MethodPost, "/crawl-portfolio/antler", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	env.api.Wait()
	assert.Equal(t, []string{"https://antler.example/portfolio"}, env.crawler.urls)

	for _, name := range []string{"Antler", "antler", "ANTLER"} {
		w = env.do(t, http.MethodGet, "/portfolio/"+name, "")
		require.Equal(t, http.StatusOK, w.Code, name)
		companies := decode[portfolioEnvelope](t, w).Portfolio
		require.Len(t, companies, 2, name)
		assert.Equal(t, "Verdant", companies[0].Name)
		assert.Greater(t, companies[0].TotalScore, 0.0)
	}

	inc, err := env.store.FindIncubator(context.Background(), "antler")
	require.NoError(t, err)
	assert.NotNil(t, inc.LastCrawledAt)

	w = env.do(t, http.MethodGet, "/portfolio/Unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/crawl-portfolio/Unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/crawl-portfolio/NoURL", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSaveIncubatorValidation(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"portfolio_url":"https://x.example"}`,
		`{"name":"   "}`,
		`{"name":"Antler","portfolio_url":"not a url"}`,
		`not json`,
	} {
		w := env.do(t, http.MethodPost, "/incubators", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w := env.do(t, http.MethodGet, "/incubators", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[incubatorsEnvelope](t, w).Incubators)
}

func TestCrawlFailureKeepsPortfolio(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.SaveIncubator(ctx, crm.Incubator{Name: "Antler", PortfolioURL: "https://x"}))
	env.crawler.err = errors.New("timeout")

	w := env.do(t, http.MethodPost, "/crawl-portfolio/antler", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	env.api.Wait()

	w = env.do(t, http.MethodGet, "/portfolio/Antler", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[portfolioEnvelope](t, w).Portfolio)
}

func TestExtractDeal(t *testing.T) {
	env := newTestEnv(t)

	email := "From: a@b.example\r\nSubject: Intro\r\n\r\nintroducing you to Kite, a seed startup. Mutual connection.\r\n"
	w := env.do(t, http.MethodPost, "/dealflow/extract", email)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p := decode[dealflow.Prioritized](t, w)
	assert.Equal(t, "Kite", p.Deal.CompanyName)
	assert.True(t, p.Deal.WarmIntro)
	assert.True(t, p.PreferredStage)
	assert.InDelta(t, 0.2, p.Priority, 1e-12)

	w = env.do(t, http.MethodPost, "/dealflow/extract", "Subject: lunch\r\n\r\nsee you at noon\r\n")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodGet, "/dealflow/deals", "")
	require.Equal(t, http.StatusOK, w.Code)
	stored := decode[[]models.Deal](t, w)
	require.Len(t, stored, 1)
	assert.Equal(t, "Kite", stored[0].CompanyName)
	assert.Equal(t, "a@b.example", stored[0].Sender)
}

func TestMarketEndpointsAndSignals(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/market/insights", "")
	require.Equal(t, http.StatusOK, w.Code)
	ins := decode[market.Insights](t, w)
	assert.Len(t, ins.News, 1)
	assert.Contains(t, ins.Errors, market.SourceSocial)

	w = env.do(t, http.MethodGet, "/market/company/Verdant", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Verdant", decode[market.CompanyInsights](t, w).Company)

	w = env.do(t, http.MethodGet, "/api/signals?kind=news", "")
	require.Equal(t, http.StatusOK, w.Code)
	signals := decode[[]models.Signal](t, w)
	require.Len(t, signals, 1)
	assert.Equal(t, "climate", signals[0].Sector)

	w = env.do(t, http.MethodGet, "/api/signals?date_from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[StatsData](t, w)
	assert.EqualValues(t, 1, stats.Total)
	assert.EqualValues(t, 1, stats.News)
	assert.EqualValues(t, 1, stats.Sectors)

	w = env.do(t, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[DashboardData](t, w)
	assert.Len(t, dash.Signals, 1)
	assert.Nil(t, dash.Stats)

	w = env.do(t, http.MethodGet, "/api/dashboard?sector=ai", "")
	dash = decode[DashboardData](t, w)
	assert.Empty(t, dash.Signals)
	require.NotNil(t, dash.Stats)
	assert.EqualValues(t, 0, dash.Stats.Total)
}

func TestUnconfiguredCollaborators(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(&API{}, RouterConfig{})

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/score-company"},
		{http.MethodGet, "/incubators"},
		{http.MethodPost, "/incubators"},
		{http.MethodGet, "/market/insights"},
		{http.MethodGet, "/api/signals"},
		{http.MethodPost, "/dealflow/extract"},
		{http.MethodGet, "/dealflow/deals"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, tc.path)
	}
}
