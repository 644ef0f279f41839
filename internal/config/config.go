package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Scraper     ScraperConfig
	Browser     BrowserConfig
	Translation TranslationConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type ScraperConfig struct {
	PageLoadWait     time.Duration
	ElementWait      time.Duration
	RequestDelay     time.Duration
	ScrollPause      time.Duration
	MaxScrolls       int
	MaxImages        int
	OptionItemLimit  int
	ChallengeTimeout time.Duration
	ChallengePoll    time.Duration
	DebugDir         string
	DebugOnErrorOnly bool
	OutputDir        string
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	UserAgent      string
}

type TranslationConfig struct {
	Enabled    bool
	SourceLang string
	TargetLang string
	Timeout    time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 5*time.Minute),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Scraper: ScraperConfig{
			PageLoadWait:     getDurationOrDefault("SCRAPER_PAGE_LOAD_WAIT", 3*time.Second),
			ElementWait:      getDurationOrDefault("SCRAPER_ELEMENT_WAIT", 15*time.Second),
			RequestDelay:     getDurationOrDefault("SCRAPER_REQUEST_DELAY", 2*time.Second),
			ScrollPause:      getDurationOrDefault("SCRAPER_SCROLL_PAUSE", 2*time.Second),
			MaxScrolls:       getIntOrDefault("SCRAPER_MAX_SCROLLS", 2),
			MaxImages:        getIntOrDefault("SCRAPER_MAX_IMAGES", 10),
			OptionItemLimit:  getIntOrDefault("SCRAPER_OPTION_ITEM_LIMIT", 53),
			ChallengeTimeout: getDurationOrDefault("SCRAPER_CHALLENGE_TIMEOUT", 120*time.Second),
			ChallengePoll:    getDurationOrDefault("SCRAPER_CHALLENGE_POLL", 2*time.Second),
			DebugDir:         getEnvOrDefault("SCRAPER_DEBUG_DIR", "debug"),
			DebugOnErrorOnly: getBoolOrDefault("SCRAPER_DEBUG_ON_ERROR_ONLY", true),
			OutputDir:        getEnvOrDefault("SCRAPER_OUTPUT_DIR", "output"),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 15*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "ko-KR,ko;q=0.9,en;q=0.8"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "Asia/Seoul"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "ko-KR"),
			UserAgent: getEnvOrDefault("BROWSER_USER_AGENT",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		},
		Translation: TranslationConfig{
			Enabled:    getBoolOrDefault("TRANSLATION_ENABLED", true),
			SourceLang: getEnvOrDefault("TRANSLATION_SOURCE_LANG", "ko"),
			TargetLang: getEnvOrDefault("TRANSLATION_TARGET_LANG", "en"),
			Timeout:    getDurationOrDefault("TRANSLATION_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolOrDefault("DB_ENABLED", false),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "encar_scraper"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getBoolOrDefault("REDIS_ENABLED", false),
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scraper.MaxImages < 0 {
		return fmt.Errorf("SCRAPER_MAX_IMAGES cannot be negative")
	}

	if c.Scraper.OptionItemLimit < 1 {
		return fmt.Errorf("SCRAPER_OPTION_ITEM_LIMIT must be at least 1")
	}

	if c.Scraper.ChallengePoll <= 0 {
		return fmt.Errorf("SCRAPER_CHALLENGE_POLL must be positive")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
