package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsClientSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/everything", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "clean energy", q.Get("q"))
		assert.Equal(t, "2025-05-26", q.Get("from"))
		assert.Equal(t, "relevancy", q.Get("sortBy"))
		assert.Equal(t, "news-key", q.Get("apiKey"))
		_, _ = w.Write([]byte(`{"status":"ok","articles":[
			{"source":{"name":"Reuters"},"title":"Solar surge","description":"d","url":"https://r/1","publishedAt":"2025-06-01T10:00:00Z"}
		]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewNewsClient(srv.URL, "news-key", srv.Client())
	articles, err := c.Search(context.Background(), "clean energy", time.Date(2025, 5, 26, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, Article{
		Title:       "Solar surge",
		Description: "d",
		URL:         "https://r/1",
		PublishedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Source:      "Reuters",
	}, articles[0])
}

func TestNewsClientErrors(t *testing.T) {
	t.Parallel()

	_, err := NewNewsClient("", "", nil).Search(context.Background(), "x", time.Now())
	assert.ErrorIs(t, err, ErrNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid"}`))
	}))
	t.Cleanup(srv.Close)

	_, err = NewNewsClient(srv.URL, "bad", srv.Client()).Search(context.Background(), "x", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Your API key is invalid")
}

func TestSocialClientSearchRecent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tw-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/2/tweets/search/recent", r.URL.Path)
		assert.Equal(t, `"clean energy" OR carbon`, r.URL.Query().Get("query"))
		assert.Equal(t, "100", r.URL.Query().Get("max_results"))
		_, _ = w.Write([]byte(`{"data":[{"id":"1","text":"carbon!","created_at":"2025-06-01T00:00:00Z",
			"public_metrics":{"retweet_count":1,"reply_count":2,"like_count":3,"quote_count":4}}],
			"meta":{"result_count":1}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewSocialClient(context.Background(), srv.URL, "tw-token")
	posts, err := c.SearchRecent(context.Background(), orQuery([]string{"clean energy", "carbon"}))
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "carbon!", posts[0].Content)
	assert.Equal(t, 10, posts[0].Engagement.Total())

	_, err = NewSocialClient(context.Background(), srv.URL, "").SearchRecent(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFundingClientRecentRounds(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer cb-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/funding-rounds", r.URL.Path)
		assert.Equal(t, "2025-05-25", r.URL.Query().Get("updated_since"))
		_, _ = w.Write([]byte(`{"data":{"items":[{
			"properties":{"money_raised_usd":2500000,"series":"A","announced_on":"2025-05-30"},
			"relationships":{"organization":{"properties":{"name":"Verdant"}},
				"investors":[{"properties":{"name":"Acme Ventures"}},{"properties":{"name":"Seedcamp"}}]}
		}]}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewFundingClient(srv.URL, "cb-key", srv.Client())
	rounds, err := c.RecentRounds(context.Background(), time.Date(2025, 5, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []FundingRound{{
		CompanyName: "Verdant",
		AmountUSD:   2500000,
		Series:      "A",
		AnnouncedOn: "2025-05-30",
		Investors:   []string{"Acme Ventures", "Seedcamp"},
	}}, rounds)
}
