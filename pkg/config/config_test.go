package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	// Test default values
	if config.RateLimit.PerMinute != 30 {
		t.Errorf("Expected default per-minute ceiling to be 30, got %d", config.RateLimit.PerMinute)
	}

	if config.Scrape.MaxPosts != 20 {
		t.Errorf("Expected default max posts to be 20, got %d", config.Scrape.MaxPosts)
	}

	if config.Target.CookieFile != "linkedin_auth.json" {
		t.Errorf("Expected default cookie file to be linkedin_auth.json, got %s", config.Target.CookieFile)
	}

	if !config.Browser.Headless {
		t.Error("Expected browser to default to headless")
	}

	if config.Cache.TTL != time.Hour {
		t.Errorf("Expected default cache TTL to be 1h, got %v", config.Cache.TTL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	// Set test environment variables
	os.Setenv("LISCRAPER_EMAIL", "scraper@example.com")
	os.Setenv("LISCRAPER_PASSWORD", "test-password")
	os.Setenv("LISCRAPER_COOKIE_FILE", "/tmp/test-cookies.json")
	os.Setenv("LISCRAPER_MONGO_URI", "mongodb://testhost:27017")
	os.Setenv("LISCRAPER_REDIS_ADDR", "testhost:6379")
	os.Setenv("LISCRAPER_RATE_PER_MINUTE", "10")
	os.Setenv("LISCRAPER_HEADLESS", "false")
	os.Setenv("LISCRAPER_LOG_LEVEL", "debug")

	defer func() {
		// Clean up environment variables
		os.Unsetenv("LISCRAPER_EMAIL")
		os.Unsetenv("LISCRAPER_PASSWORD")
		os.Unsetenv("LISCRAPER_COOKIE_FILE")
		os.Unsetenv("LISCRAPER_MONGO_URI")
		os.Unsetenv("LISCRAPER_REDIS_ADDR")
		os.Unsetenv("LISCRAPER_RATE_PER_MINUTE")
		os.Unsetenv("LISCRAPER_HEADLESS")
		os.Unsetenv("LISCRAPER_LOG_LEVEL")
	}()

	config := DefaultConfig()
	err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	// Test loaded values
	if config.Target.Email != "scraper@example.com" {
		t.Errorf("Expected email to be scraper@example.com, got %s", config.Target.Email)
	}

	if config.Target.CookieFile != "/tmp/test-cookies.json" {
		t.Errorf("Expected cookie file to be /tmp/test-cookies.json, got %s", config.Target.CookieFile)
	}

	if config.Mongo.URI != "mongodb://testhost:27017" {
		t.Errorf("Expected mongo URI to be mongodb://testhost:27017, got %s", config.Mongo.URI)
	}

	if config.Redis.Addr != "testhost:6379" {
		t.Errorf("Expected redis addr to be testhost:6379, got %s", config.Redis.Addr)
	}

	if config.RateLimit.PerMinute != 10 {
		t.Errorf("Expected per-minute ceiling to be 10, got %d", config.RateLimit.PerMinute)
	}

	if config.Browser.Headless {
		t.Error("Expected headless to be disabled")
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := DefaultConfig()
		c.Target.Email = "scraper@example.com"
		c.Target.Password = "secret"
		return c
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "valid without credentials",
			mutate:    func(c *Config) { c.Target.Email = ""; c.Target.Password = "" },
			wantError: false,
		},
		{
			name:      "email without password",
			mutate:    func(c *Config) { c.Target.Password = "" },
			wantError: true,
		},
		{
			name:      "missing cookie file",
			mutate:    func(c *Config) { c.Target.CookieFile = "" },
			wantError: true,
		},
		{
			name:      "zero viewport",
			mutate:    func(c *Config) { c.Browser.ViewportWidth = 0 },
			wantError: true,
		},
		{
			name:      "challenge wait below poll interval",
			mutate:    func(c *Config) { c.Browser.ChallengeWait = time.Second },
			wantError: true,
		},
		{
			name:      "zero rate ceiling",
			mutate:    func(c *Config) { c.RateLimit.PerMinute = 0 },
			wantError: true,
		},
		{
			name:      "missing mongo URI",
			mutate:    func(c *Config) { c.Mongo.URI = "" },
			wantError: true,
		},
		{
			name:      "enrichment enabled without base URL",
			mutate:    func(c *Config) { c.Enrichment.Enabled = true },
			wantError: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "invalid" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"email":       "flag@example.com",
		"password":    "flag-password",
		"cookie-file": "/flag/cookies.json",
		"max-posts":   7,
		"log-level":   "error",
	}

	config.MergeCommandLineFlags(flags)

	// Test merged values
	if config.Target.Email != "flag@example.com" {
		t.Errorf("Expected email to be flag@example.com, got %s", config.Target.Email)
	}

	if config.Target.CookieFile != "/flag/cookies.json" {
		t.Errorf("Expected cookie file to be /flag/cookies.json, got %s", config.Target.CookieFile)
	}

	if config.Scrape.MaxPosts != 7 {
		t.Errorf("Expected max posts to be 7, got %d", config.Scrape.MaxPosts)
	}

	if config.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", config.Logging.Level)
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	// Create temporary directory for testing
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	// Create a config and save it
	config := DefaultConfig()
	config.Target.Email = "save-test@example.com"
	config.Mongo.Database = "save_test"
	config.Scrape.MaxPosts = 8

	err := config.Save(configPath)
	if err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	// Load the saved config
	loadedConfig := DefaultConfig()
	err = loadedConfig.LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify loaded values
	if loadedConfig.Target.Email != "save-test@example.com" {
		t.Errorf("Expected loaded email to be save-test@example.com, got %s", loadedConfig.Target.Email)
	}

	if loadedConfig.Mongo.Database != "save_test" {
		t.Errorf("Expected loaded database to be save_test, got %s", loadedConfig.Mongo.Database)
	}

	if loadedConfig.Scrape.MaxPosts != 8 {
		t.Errorf("Expected loaded max posts to be 8, got %d", loadedConfig.Scrape.MaxPosts)
	}
}
