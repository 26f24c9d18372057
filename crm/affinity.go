package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/tashasho/MCP-Server-BNV/logger"
	"github.com/tashasho/MCP-Server-BNV/scoring"
)

const DefaultAffinityURL = "https://api.affinity.co/api/v1"

// AffinityConfig holds the Affinity connection settings.
type AffinityConfig struct {
	APIKey           string
	BaseURL          string
	IncubatorsListID string
}

// AffinityClient talks to the Affinity REST api. Incubators live in a fixed
// list; each incubator's portfolio lives in a list named Portfolio_<name>.
type AffinityClient struct {
	cfg  AffinityConfig
	http *http.Client
	log  *zap.Logger
}

// NewAffinityClient builds a client authenticating with a static bearer token.
func NewAffinityClient(ctx context.Context, cfg AffinityConfig, log *zap.Logger) *AffinityClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAffinityURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{
			TokenType:   "Bearer",
			AccessToken: cfg.APIKey,
		},
	)

	return &AffinityClient{
		cfg:  cfg,
		http: oauth2.NewClient(ctx, ts),
		log:  logger.OrNop(log),
	}
}

// entityID accepts both numeric and string ids.
type entityID string

func (id *entityID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = entityID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("affinity id %s: %w", b, err)
	}
	*id = entityID(n.String())
	return nil
}

type affinityList struct {
	ID   entityID `json:"id"`
	Name string   `json:"name"`
}

type listEntry struct {
	ID     entityID       `json:"id"`
	Name   string         `json:"name"`
	Status string         `json:"status"`
	Fields map[string]any `json:"fields"`
}

func (e listEntry) field(name string) string {
	switch v := e.Fields[name].(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	}
	return ""
}

func (e listEntry) list(name string) []string {
	raw := e.field(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type entryPayload struct {
	Name   string         `json:"name"`
	Fields map[string]any `json:"fields"`
}

func (c *AffinityClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("affinity %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading affinity response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("affinity %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding affinity response: %w", err)
	}
	return nil
}

func (c *AffinityClient) entries(ctx context.Context, listID string, query url.Values) ([]listEntry, error) {
	var entries []listEntry
	err := c.do(ctx, http.MethodGet, "/lists/"+url.PathEscape(listID)+"/list-entries", query, nil, &entries)
	return entries, err
}

func (c *AffinityClient) ListIncubators(ctx context.Context) ([]Incubator, error) {
	if c.cfg.IncubatorsListID == "" {
		return nil, fmt.Errorf("affinity incubators list id is not configured")
	}
	entries, err := c.entries(ctx, c.cfg.IncubatorsListID, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching incubators: %w", err)
	}
	out := make([]Incubator, 0, len(entries))
	for _, e := range entries {
		out = append(out, Incubator{
			Name:         e.Name,
			PortfolioURL: e.field("portfolio_url"),
			Location:     e.field("location"),
			FocusAreas:   e.list("focus_areas"),
			Status:       e.Status,
		})
	}
	return out, nil
}

// SaveIncubator creates or updates the incubator's entry in the incubators
// list, matched by name.
func (c *AffinityClient) SaveIncubator(ctx context.Context, inc Incubator) error {
	if c.cfg.IncubatorsListID == "" {
		return fmt.Errorf("affinity incubators list id is not configured")
	}
	fields := map[string]any{
		"portfolio_url": inc.PortfolioURL,
		"location":      inc.Location,
		"focus_areas":   nonNil(inc.FocusAreas),
	}
	if err := c.upsertEntry(ctx, c.cfg.IncubatorsListID, inc.Name, fields); err != nil {
		return fmt.Errorf("saving incubator %q: %w", inc.Name, err)
	}
	return nil
}

func (c *AffinityClient) FindIncubator(ctx context.Context, name string) (Incubator, error) {
	all, err := c.ListIncubators(ctx)
	if err != nil {
		return Incubator{}, err
	}
	for _, inc := range all {
		if strings.EqualFold(inc.Name, name) {
			return inc, nil
		}
	}
	return Incubator{}, fmt.Errorf("incubator %q: %w", name, ErrNotFound)
}

// PortfolioCompanies returns an empty slice when the incubator has no
// portfolio list yet.
func (c *AffinityClient) PortfolioCompanies(ctx context.Context, incubator string) ([]Company, error) {
	listID, err := c.listID(ctx, PortfolioListName(incubator))
	if err != nil {
		return nil, fmt.Errorf("fetching portfolio of %q: %w", incubator, err)
	}
	if listID == "" {
		return []Company{}, nil
	}

	entries, err := c.entries(ctx, listID, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching portfolio of %q: %w", incubator, err)
	}
	out := make([]Company, 0, len(entries))
	for _, e := range entries {
		out = append(out, Company{
			CompanyProfile: scoring.CompanyProfile{
				Name:        e.Name,
				Description: e.field("description"),
				Founders:    e.field("founders"),
				Problem:     e.field("problem"),
				Solution:    e.field("solution"),
				USP:         e.field("usp"),
				Sectors:     e.list("sectors"),
			},
			TotalScore: numberField(e.Fields["total_score"]),
		})
	}
	return out, nil
}

// UpsertPortfolio creates the portfolio list if needed and creates or updates
// one entry per company, matched by name.
func (c *AffinityClient) UpsertPortfolio(ctx context.Context, incubator string, companies []Company) error {
	listID, err := c.getOrCreateList(ctx, PortfolioListName(incubator))
	if err != nil {
		return fmt.Errorf("portfolio list for %q: %w", incubator, err)
	}

	for _, company := range companies {
		if err := c.upsertEntry(ctx, listID, company.Name, companyFields(company)); err != nil {
			return fmt.Errorf("updating %q in %q: %w", company.Name, incubator, err)
		}
		c.log.Debug("affinity entry updated",
			zap.String("incubator", incubator),
			zap.String("company", company.Name),
		)
	}
	return nil
}

func (c *AffinityClient) listID(ctx context.Context, name string) (string, error) {
	var lists []affinityList
	if err := c.do(ctx, http.MethodGet, "/lists", nil, nil, &lists); err != nil {
		return "", err
	}
	for _, l := range lists {
		if l.Name == name {
			return string(l.ID), nil
		}
	}
	return "", nil
}

func (c *AffinityClient) getOrCreateList(ctx context.Context, name string) (string, error) {
	id, err := c.listID(ctx, name)
	if err != nil || id != "" {
		return id, err
	}

	var created affinityList
	if err := c.do(ctx, http.MethodPost, "/lists", nil, map[string]string{"name": name}, &created); err != nil {
		return "", err
	}
	c.log.Info("affinity list created", zap.String("list", name), zap.String("id", string(created.ID)))
	return string(created.ID), nil
}

func companyFields(company Company) map[string]any {
	return map[string]any{
		"description": company.Description,
		"founders":    company.Founders,
		"problem":     company.Problem,
		"solution":    company.Solution,
		"usp":         company.USP,
		"sectors":     nonNil(company.Sectors),
		"total_score": company.TotalScore,
	}
}

// upsertEntry updates the entry named name in the list, or creates it.
func (c *AffinityClient) upsertEntry(ctx context.Context, listID, name string, fields map[string]any) error {
	existing, err := c.entries(ctx, listID, url.Values{"term": {name}})
	if err != nil {
		return err
	}

	payload := entryPayload{Name: name, Fields: fields}

	path := "/lists/" + url.PathEscape(listID) + "/list-entries"
	for _, e := range existing {
		if strings.EqualFold(e.Name, name) {
			return c.do(ctx, http.MethodPut, path+"/"+url.PathEscape(string(e.ID)), nil, payload, nil)
		}
	}
	return c.do(ctx, http.MethodPost, path, nil, payload, nil)
}

func numberField(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
