package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment override, e.g.
	// MCP_AFFINITY_API_KEY.
	EnvPrefix = "MCP"

	// FileName is the config file looked up in the working directory.
	FileName = "mcp-server.yaml"
)

type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Affinity Affinity `mapstructure:"affinity"`
	Email    Email    `mapstructure:"email"`
	Market   Market   `mapstructure:"market"`
	Crawler  Crawler  `mapstructure:"crawler"`
	Scoring  Scoring  `mapstructure:"scoring"`
	DealFlow DealFlow `mapstructure:"dealflow"`
}

type Server struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	RateLimitPerMin int      `mapstructure:"rate-limit-per-min"`
	CORSOrigins     []string `mapstructure:"cors-origins"`
}

// Addr is the listen address for the http server.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type Database struct {
	Path string `mapstructure:"path"`
}

type Affinity struct {
	APIKey           string `mapstructure:"api-key"`
	APIKeyFile       string `mapstructure:"api-key-file"`
	BaseURL          string `mapstructure:"base-url"`
	IncubatorsListID string `mapstructure:"incubators-list-id"`
}

type Email struct {
	Server       string        `mapstructure:"server"`
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	PasswordFile string        `mapstructure:"password-file"`
	Mailbox      string        `mapstructure:"mailbox"`
	Lookback     time.Duration `mapstructure:"lookback"`
}

type Market struct {
	NewsAPIKey          string        `mapstructure:"news-api-key"`
	NewsBaseURL         string        `mapstructure:"news-base-url"`
	TwitterBearerToken  string        `mapstructure:"twitter-bearer-token"`
	TwitterBaseURL      string        `mapstructure:"twitter-base-url"`
	CrunchbaseAPIKey    string        `mapstructure:"crunchbase-api-key"`
	CrunchbaseBaseURL   string        `mapstructure:"crunchbase-base-url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxNewsAgeDays      int           `mapstructure:"max-news-age-days"`
	MinSocialEngagement int           `mapstructure:"min-social-engagement"`
	MinFundingUSD       float64       `mapstructure:"min-funding-usd"`
	FundingWindowDays   int           `mapstructure:"funding-window-days"`
	EnrichTimeout       time.Duration `mapstructure:"enrich-timeout"`
	MonitoredSectors    []string      `mapstructure:"monitored-sectors"`
}

type Crawler struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries uint64        `mapstructure:"max-retries"`
	UserAgent  string        `mapstructure:"user-agent"`
}

type Scoring struct {
	CatalogFile           string        `mapstructure:"catalog-file"`
	MinimumScoreThreshold float64       `mapstructure:"minimum-score-threshold"`
	ThesisRelevanceWeight float64       `mapstructure:"thesis-relevance-weight"`
	WeightedDimensions    bool          `mapstructure:"weighted-dimensions"`
	ThesisCacheTTL        time.Duration `mapstructure:"thesis-cache-ttl"`
}

type DealFlow struct {
	WarmIntroBonus    float64  `mapstructure:"warm-intro-bonus"`
	MinTeamSize       int      `mapstructure:"min-team-size"`
	PreferredStages   []string `mapstructure:"preferred-stages"`
	FollowUpDelayDays int      `mapstructure:"follow-up-delay-days"`
}

// Default returns the built-in settings used when neither a file nor an
// environment variable overrides them.
func Default() Config {
	return Config{
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8000,
			RateLimitPerMin: 120,
			CORSOrigins:     []string{"*"},
		},
		Database: Database{Path: "mcp-server.db"},
		Affinity: Affinity{BaseURL: "https://api.affinity.co/api/v1"},
		Email: Email{
			Server:   "imap.gmail.com:993",
			Mailbox:  "INBOX",
			Lookback: 24 * time.Hour,
		},
		Market: Market{
			NewsBaseURL:         "https://newsapi.org",
			TwitterBaseURL:      "https://api.twitter.com",
			CrunchbaseBaseURL:   "https://api.crunchbase.com/v3.1",
			Timeout:             10 * time.Second,
			MaxNewsAgeDays:      7,
			MinSocialEngagement: 10,
			MinFundingUSD:       100000,
			FundingWindowDays:   7,
			EnrichTimeout:       3 * time.Second,
			MonitoredSectors:    []string{"ai", "fintech", "healthtech", "climate"},
		},
		Crawler: Crawler{
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			UserAgent:  "mcp-server-crawler/1.0",
		},
		Scoring: Scoring{
			MinimumScoreThreshold: 0.5,
			ThesisRelevanceWeight: 0.4,
			ThesisCacheTTL:        10 * time.Minute,
		},
		DealFlow: DealFlow{
			WarmIntroBonus:    0.2,
			MinTeamSize:       2,
			PreferredStages:   []string{"seed", "series a"},
			FollowUpDelayDays: 2,
		},
	}
}

// SetDefaults registers every value of Default with v so that environment
// variables can override keys that never appear in a config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	defaults := map[string]any{
		"server.host":                     d.Server.Host,
		"server.port":                     d.Server.Port,
		"server.rate-limit-per-min":       d.Server.RateLimitPerMin,
		"server.cors-origins":             d.Server.CORSOrigins,
		"database.path":                   d.Database.Path,
		"affinity.api-key":                "",
		"affinity.api-key-file":           "",
		"affinity.base-url":               d.Affinity.BaseURL,
		"affinity.incubators-list-id":     "",
		"email.server":                    d.Email.Server,
		"email.address":                   "",
		"email.password":                  "",
		"email.password-file":             "",
		"email.mailbox":                   d.Email.Mailbox,
		"email.lookback":                  d.Email.Lookback,
		"market.news-api-key":             "",
		"market.news-base-url":            d.Market.NewsBaseURL,
		"market.twitter-bearer-token":     "",
		"market.twitter-base-url":         d.Market.TwitterBaseURL,
		"market.crunchbase-api-key":       "",
		"market.crunchbase-base-url":      d.Market.CrunchbaseBaseURL,
		"market.timeout":                  d.Market.Timeout,
		"market.max-news-age-days":        d.Market.MaxNewsAgeDays,
		"market.min-social-engagement":    d.Market.MinSocialEngagement,
		"market.min-funding-usd":          d.Market.MinFundingUSD,
		"market.funding-window-days":      d.Market.FundingWindowDays,
		"market.enrich-timeout":           d.Market.EnrichTimeout,
		"market.monitored-sectors":        d.Market.MonitoredSectors,
		"crawler.timeout":                 d.Crawler.Timeout,
		"crawler.max-retries":             d.Crawler.MaxRetries,
		"crawler.user-agent":              d.Crawler.UserAgent,
		"scoring.catalog-file":            "",
		"scoring.minimum-score-threshold": d.Scoring.MinimumScoreThreshold,
		"scoring.thesis-relevance-weight": d.Scoring.ThesisRelevanceWeight,
		"scoring.weighted-dimensions":     d.Scoring.WeightedDimensions,
		"scoring.thesis-cache-ttl":        d.Scoring.ThesisCacheTTL,
		"dealflow.warm-intro-bonus":       d.DealFlow.WarmIntroBonus,
		"dealflow.min-team-size":          d.DealFlow.MinTeamSize,
		"dealflow.preferred-stages":       d.DealFlow.PreferredStages,
		"dealflow.follow-up-delay-days":   d.DealFlow.FollowUpDelayDays,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Load reads file (or FileName in the working directory when file is empty)
// and applies MCP_ environment overrides. A missing default file is not an
// error; a missing explicit file is.
func Load(v *viper.Viper, file string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}
