// Package config resolves credentials and pipeline settings once at process start.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SourceRSS     = "rss"
	SourceNewsAPI = "newsapi"

	maxNewsAPIPageSize = 20
)

var (
	ErrMissingCredential = errors.New("missing required credentials")
	ErrInvalidSource     = errors.New("invalid source mode")
)

var defaultSensitiveKeywords = []string{
	"politics", "election", "war", "crime", "death", "racism", "trump", "biden", "murder",
}

var defaultPaywallDomains = []string{
	"nytimes.com",
	"wsj.com",
	"www.ft.com",
	"://ft.com",
	"bloomberg.com",
	"washingtonpost.com",
	"economist.com",
	"theatlantic.com",
	"businessinsider.com",
	"newyorker.com",
	"thetimes.co.uk",
}

// Credentials are the static secrets taken from the environment.
type Credentials struct {
	NewsAPIKey     string
	SenderEmail    string
	SenderPassword string // app-specific password
	ReceiverEmail  string
}

type Config struct {
	Credentials Credentials

	// Source settings
	SourceMode      string // "rss" or "newsapi"
	FeedURL         string
	NewsAPIEndpoint string
	NewsAPIQuery    string
	NewsAPIPageSize int
	NewsAPILanguage string
	NewsAPIWindow   time.Duration

	// Filter settings
	FiltersConfigPath string
	SensitiveKeywords []string
	PaywallDomains    []string

	// Mail settings
	SMTPHost string
	SMTPPort int

	// Draft AI settings
	AIDraft      bool
	GeminiAPIKey string
	GeminiModel  string

	// App settings
	Debug          bool
	RequestTimeout time.Duration
}

// FiltersFile is the optional YAML override for the filter lists.
//
//	sensitive_keywords: [politics, war]
//	paywall_domains: [nytimes.com]
type FiltersFile struct {
	SensitiveKeywords []string `yaml:"sensitive_keywords"`
	PaywallDomains    []string `yaml:"paywall_domains"`
}

// Default returns the configuration used when the environment sets nothing.
func Default() Config {
	return Config{
		SourceMode:        SourceRSS,
		FeedURL:           "http://feeds.feedburner.com/TechCrunch/",
		NewsAPIEndpoint:   "https://newsapi.org/v2/everything",
		NewsAPIQuery:      "technology",
		NewsAPIPageSize:   maxNewsAPIPageSize,
		NewsAPILanguage:   "en",
		NewsAPIWindow:     24 * time.Hour,
		SensitiveKeywords: append([]string(nil), defaultSensitiveKeywords...),
		PaywallDomains:    append([]string(nil), defaultPaywallDomains...),
		SMTPHost:          "smtp.gmail.com",
		SMTPPort:          465,
		GeminiModel:       "gemini-1.5-flash",
		RequestTimeout:    30 * time.Second,
	}
}

// Load reads an optional .env file and the process environment. It does not
// validate credentials; callers run Validate after applying command-line overrides.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	cfg.Credentials = Credentials{
		NewsAPIKey:     strings.TrimSpace(os.Getenv("NEWS_API_KEY")),
		SenderEmail:    strings.TrimSpace(os.Getenv("SENDER_EMAIL")),
		SenderPassword: os.Getenv("SENDER_PASSWORD"),
		ReceiverEmail:  strings.TrimSpace(os.Getenv("RECEIVER_EMAIL")),
	}

	cfg.SourceMode = strings.ToLower(getEnvOrDefault("SOURCE_MODE", cfg.SourceMode))
	cfg.FeedURL = getEnvOrDefault("RSS_FEED_URL", cfg.FeedURL)
	cfg.NewsAPIEndpoint = getEnvOrDefault("NEWS_API_ENDPOINT", cfg.NewsAPIEndpoint)
	cfg.NewsAPIQuery = getEnvOrDefault("NEWS_API_QUERY", cfg.NewsAPIQuery)
	pageSize, err := getEnvIntOrDefault("NEWS_API_PAGE_SIZE", cfg.NewsAPIPageSize)
	if err != nil {
		return cfg, err
	}
	cfg.NewsAPIPageSize = ClampPageSize(pageSize)

	cfg.SMTPHost = getEnvOrDefault("SMTP_HOST", cfg.SMTPHost)
	if cfg.SMTPPort, err = getEnvPositiveInt("SMTP_PORT", cfg.SMTPPort); err != nil {
		return cfg, err
	}

	timeout, err := getEnvPositiveInt("REQUEST_TIMEOUT_SECONDS", int(cfg.RequestTimeout/time.Second))
	if err != nil {
		return cfg, err
	}
	cfg.RequestTimeout = time.Duration(timeout) * time.Second

	cfg.AIDraft = os.Getenv("DRAFT_AI") == "true"
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	if path := os.Getenv("FILTERS_CONFIG_PATH"); path != "" {
		if err := cfg.ApplyFiltersFile(path); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// ApplyFiltersFile replaces the filter lists with the non-empty lists found in path.
func (c *Config) ApplyFiltersFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filters config: %w", err)
	}
	defer f.Close()

	var file FiltersFile
	if err := yaml.NewDecoder(f).Decode(&file); err != nil {
		return fmt.Errorf("parse filters config %s: %w", path, err)
	}

	if len(file.SensitiveKeywords) > 0 {
		c.SensitiveKeywords = file.SensitiveKeywords
	}
	if len(file.PaywallDomains) > 0 {
		c.PaywallDomains = file.PaywallDomains
	}
	c.FiltersConfigPath = path
	return nil
}

// UseAIDraft reports whether the Gemini pitch writer should be wired.
func (c Config) UseAIDraft() bool {
	return c.AIDraft && c.GeminiAPIKey != ""
}

// Validate checks the mandatory credentials and the source mode.
func (c Config) Validate() error {
	var missing []string
	if c.Credentials.SenderEmail == "" {
		missing = append(missing, "SENDER_EMAIL")
	}
	if c.Credentials.SenderPassword == "" {
		missing = append(missing, "SENDER_PASSWORD")
	}
	if c.Credentials.ReceiverEmail == "" {
		missing = append(missing, "RECEIVER_EMAIL")
	}

	switch c.SourceMode {
	case SourceRSS:
	case SourceNewsAPI:
		if c.Credentials.NewsAPIKey == "" {
			missing = append(missing, "NEWS_API_KEY")
		}
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidSource, c.SourceMode, SourceRSS, SourceNewsAPI)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredential, strings.Join(missing, ", "))
	}
	return nil
}

// ClampPageSize keeps the search page size within 1..20.
func ClampPageSize(n int) int {
	if n <= 0 || n > maxNewsAPIPageSize {
		return maxNewsAPIPageSize
	}
	return n
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return intValue, nil
}

func getEnvPositiveInt(key string, defaultValue int) (int, error) {
	v, err := getEnvIntOrDefault(key, defaultValue)
	if err != nil {
		return defaultValue, err
	}
	if v <= 0 {
		return defaultValue, fmt.Errorf("%s must be a positive integer, got %d", key, v)
	}
	return v, nil
}
