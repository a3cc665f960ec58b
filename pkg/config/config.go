package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the company-page scraper service
type Config struct {
	// Target credentials and session persistence
	Target TargetConfig `yaml:"target" json:"target"`

	// Browser engine settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Scrape behavior settings
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Persistent store settings
	Mongo MongoConfig `yaml:"mongo" json:"mongo"`

	// Shared key-value store settings (cache + rate limiter)
	Redis RedisConfig `yaml:"redis" json:"redis"`

	// Inbound rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Snapshot cache configuration
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Secondary structured-data source (optional enrichment)
	Enrichment EnrichmentConfig `yaml:"enrichment" json:"enrichment"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TargetConfig holds credentials and session persistence for the scraped site
type TargetConfig struct {
	Email      string `yaml:"email" json:"email"`
	Password   string `yaml:"password" json:"password"`
	CookieFile string `yaml:"cookie_file" json:"cookie_file"`
	BaseURL    string `yaml:"base_url" json:"base_url"`
}

// BrowserConfig holds browser engine configuration
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	Locale            string        `yaml:"locale" json:"locale"`
	Timezone          string        `yaml:"timezone" json:"timezone"`
	ViewportWidth     int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight    int           `yaml:"viewport_height" json:"viewport_height"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	ContentTimeout    time.Duration `yaml:"content_timeout" json:"content_timeout"`
	ChallengeWait     time.Duration `yaml:"challenge_wait" json:"challenge_wait"`
	ChallengePoll     time.Duration `yaml:"challenge_poll" json:"challenge_poll"`
}

// ScrapeConfig holds scrape behavior limits
type ScrapeConfig struct {
	MaxPosts           int  `yaml:"max_posts" json:"max_posts"`
	MaxPeople          int  `yaml:"max_people" json:"max_people"`
	MaxCommentsPerPost int  `yaml:"max_comments_per_post" json:"max_comments_per_post"`
	MaxScrollRounds    int  `yaml:"max_scroll_rounds" json:"max_scroll_rounds"`
	MaxProfileVisits   int  `yaml:"max_profile_visits" json:"max_profile_visits"`
	EnrichPeople       bool `yaml:"enrich_people" json:"enrich_people"`
	RetryAttempts      int  `yaml:"retry_attempts" json:"retry_attempts"`
}

// MongoConfig holds persistent store configuration
type MongoConfig struct {
	URI            string        `yaml:"uri" json:"uri"`
	Database       string        `yaml:"database" json:"database"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
}

// RedisConfig holds shared key-value store configuration
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute" json:"per_minute"`
	PerHour   int `yaml:"per_hour" json:"per_hour"`
}

// CacheConfig holds snapshot cache configuration
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" json:"ttl"`
}

// EnrichmentConfig holds the optional secondary data source configuration
type EnrichmentConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	BaseURL string        `yaml:"base_url" json:"base_url"`
	APIKey  string        `yaml:"api_key" json:"api_key"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			CookieFile: "linkedin_auth.json",
			BaseURL:    "https://www.linkedin.com",
		},
		Browser: BrowserConfig{
			Headless:          true,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Locale:            "en-US",
			Timezone:          "America/New_York",
			ViewportWidth:     1920,
			ViewportHeight:    1080,
			NavigationTimeout: 30 * time.Second,
			ContentTimeout:    10 * time.Second,
			ChallengeWait:     120 * time.Second,
			ChallengePoll:     3 * time.Second,
		},
		Scrape: ScrapeConfig{
			MaxPosts:           20,
			MaxPeople:          30,
			MaxCommentsPerPost: 10,
			MaxScrollRounds:    15,
			MaxProfileVisits:   20,
			EnrichPeople:       false,
			RetryAttempts:      3,
		},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "liscraper",
			ConnectTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			DB:   0,
		},
		RateLimit: RateLimitConfig{
			PerMinute: 30,
			PerHour:   500,
		},
		Cache: CacheConfig{
			TTL: 1 * time.Hour,
		},
		Enrichment: EnrichmentConfig{
			Enabled: false,
			Timeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Target credentials
	if email := os.Getenv("LISCRAPER_EMAIL"); email != "" {
		c.Target.Email = email
	}
	if password := os.Getenv("LISCRAPER_PASSWORD"); password != "" {
		c.Target.Password = password
	}
	if cookieFile := os.Getenv("LISCRAPER_COOKIE_FILE"); cookieFile != "" {
		c.Target.CookieFile = cookieFile
	}

	// Browser
	if headless := os.Getenv("LISCRAPER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if userAgent := os.Getenv("LISCRAPER_USER_AGENT"); userAgent != "" {
		c.Browser.UserAgent = userAgent
	}

	// Stores
	if uri := os.Getenv("LISCRAPER_MONGO_URI"); uri != "" {
		c.Mongo.URI = uri
	}
	if db := os.Getenv("LISCRAPER_MONGO_DATABASE"); db != "" {
		c.Mongo.Database = db
	}
	if addr := os.Getenv("LISCRAPER_REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	if password := os.Getenv("LISCRAPER_REDIS_PASSWORD"); password != "" {
		c.Redis.Password = password
	}

	// Rate limiting
	if rpm := os.Getenv("LISCRAPER_RATE_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.PerMinute = val
		}
	}
	if rph := os.Getenv("LISCRAPER_RATE_PER_HOUR"); rph != "" {
		var val int
		fmt.Sscanf(rph, "%d", &val)
		if val > 0 {
			c.RateLimit.PerHour = val
		}
	}

	// Enrichment
	if apiKey := os.Getenv("LISCRAPER_ENRICHMENT_API_KEY"); apiKey != "" {
		c.Enrichment.APIKey = apiKey
		c.Enrichment.Enabled = true
	}

	// Logging level
	if logLevel := os.Getenv("LISCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".liscraper.yaml",
		".liscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "liscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "liscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".liscraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".liscraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Credentials are optional: public-data scraping works without them,
	// but partially. Both or neither must be set.
	if (c.Target.Email == "") != (c.Target.Password == "") {
		errs = append(errs, errors.New("target email and password must be set together"))
	}
	if c.Target.CookieFile == "" {
		errs = append(errs, errors.New("cookie file path is required"))
	}

	// Validate browser settings
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		errs = append(errs, errors.New("viewport dimensions must be positive"))
	}
	if c.Browser.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}
	if c.Browser.ChallengePoll <= 0 || c.Browser.ChallengeWait < c.Browser.ChallengePoll {
		errs = append(errs, errors.New("challenge wait must be at least one poll interval"))
	}

	// Validate scrape limits
	if c.Scrape.MaxPosts <= 0 {
		errs = append(errs, errors.New("max posts must be positive"))
	}
	if c.Scrape.MaxScrollRounds <= 0 {
		errs = append(errs, errors.New("max scroll rounds must be positive"))
	}
	if c.Scrape.MaxProfileVisits < 0 {
		errs = append(errs, errors.New("max profile visits cannot be negative"))
	}
	if c.Scrape.RetryAttempts < 0 {
		errs = append(errs, errors.New("retry attempts cannot be negative"))
	}

	// Validate store settings
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo URI is required"))
	}
	if c.Mongo.Database == "" {
		errs = append(errs, errors.New("mongo database name is required"))
	}

	// Validate rate limiting
	if c.RateLimit.PerMinute <= 0 {
		errs = append(errs, errors.New("per-minute rate ceiling must be positive"))
	}
	if c.RateLimit.PerHour <= 0 {
		errs = append(errs, errors.New("per-hour rate ceiling must be positive"))
	}

	// Validate cache
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache TTL must be positive"))
	}

	// Validate enrichment
	if c.Enrichment.Enabled && c.Enrichment.BaseURL == "" {
		errs = append(errs, errors.New("enrichment base URL is required when enrichment is enabled"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if email, ok := flags["email"].(string); ok && email != "" {
		c.Target.Email = email
	}
	if password, ok := flags["password"].(string); ok && password != "" {
		c.Target.Password = password
	}
	if cookieFile, ok := flags["cookie-file"].(string); ok && cookieFile != "" {
		c.Target.CookieFile = cookieFile
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if maxPosts, ok := flags["max-posts"].(int); ok && maxPosts > 0 {
		c.Scrape.MaxPosts = maxPosts
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".liscraper.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
