// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"go-upwork-automation/internal/retry"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type BaserowConfig struct {
	APIKey    string `yaml:"-"`
	TableID   string `yaml:"table_id"`
	BaseURL   string `yaml:"base_url"`
	PageSize  int    `yaml:"page_size"`
	BatchSize int    `yaml:"batch_size"`
	//DelayMs is the pause between paginated requests and between row
	//deletes, to stay under the API rate limit
	DelayMs int `yaml:"delay_ms"`
}

type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMs int `yaml:"base_delay_ms"`
	MaxDelayMs  int `yaml:"max_delay_ms"`
}

func (r RetryConfig) Policy() retry.Policy {
	return retry.Policy{
		MaxAttempts: r.MaxAttempts,
		BaseDelay:   time.Duration(r.BaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(r.MaxDelayMs) * time.Millisecond,
	}
}

type Config struct {
	//Upwork credentials (env only, never yaml)
	UpworkEmail    string `yaml:"-"`
	UpworkPassword string `yaml:"-"`
	SecurityAnswer string `yaml:"-"`

	//Session / browser
	CookiesPath      string `yaml:"cookies_path"`
	CookieMaxAgeDays int    `yaml:"cookie_max_age_days"`
	Headless         bool   `yaml:"headless"`

	//Search
	SearchBaseURL string `yaml:"search_base_url"`
	SortBy        string `yaml:"sort_by"`
	PageDelayMs   int    `yaml:"page_delay_ms"`
	NavTimeoutMs  int    `yaml:"nav_timeout_ms"`

	//Paths
	OutputDir string `yaml:"output_dir"`

	//Remote store & retention
	Baserow       BaserowConfig `yaml:"baserow"`
	Retry         RetryConfig   `yaml:"retry"`
	RetentionDays int           `yaml:"retention_days"`

	//Optional run summary over Telegram
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

func Load() *Config {
	_ = godotenv.Load()

	//Load yaml config
	cfg := &Config{Headless: true}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Printf("Warning: Could not read config.yaml: %v", err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Error parsing config.yaml: %v", err)
		}
	}

	//Override with env vars
	cfg.UpworkEmail = os.Getenv("UPWORK_EMAIL")
	cfg.UpworkPassword = os.Getenv("UPWORK_PASSWORD")
	cfg.SecurityAnswer = os.Getenv("UPWORK_SECURITY_ANSWER")
	cfg.Baserow.APIKey = os.Getenv("BASEROW_API_KEY")

	if tableID := os.Getenv("BASEROW_TABLE_ID"); tableID != "" {
		cfg.Baserow.TableID = tableID
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.TelegramChatID = id
	}

	ApplyDefaults(cfg)

	//Validate required fields
	if cfg.UpworkEmail == "" || cfg.UpworkPassword == "" {
		log.Fatal("UPWORK_EMAIL and UPWORK_PASSWORD are required")
	}

	return cfg
}

// ApplyDefaults fills every unset limit and path. Exposed so tests can
// build a Config without going through the environment.
func ApplyDefaults(cfg *Config) {
	if cfg.CookiesPath == "" {
		cfg.CookiesPath = ".cookies"
	}
	if cfg.CookieMaxAgeDays <= 0 {
		cfg.CookieMaxAgeDays = 7
	}
	if cfg.SearchBaseURL == "" {
		cfg.SearchBaseURL = "https://www.upwork.com"
	}
	if cfg.SortBy == "" {
		cfg.SortBy = "recency"
	}
	if cfg.PageDelayMs <= 0 {
		cfg.PageDelayMs = 2000
	}
	if cfg.NavTimeoutMs <= 0 {
		cfg.NavTimeoutMs = 30000
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "jobs"
	}
	if cfg.Baserow.BaseURL == "" {
		cfg.Baserow.BaseURL = "https://api.baserow.io/api/database/rows/table"
	}
	if cfg.Baserow.PageSize <= 0 {
		cfg.Baserow.PageSize = 100
	}
	if cfg.Baserow.BatchSize <= 0 {
		cfg.Baserow.BatchSize = 200
	}
	if cfg.Baserow.DelayMs == 0 {
		cfg.Baserow.DelayMs = 500
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.BaseDelayMs <= 0 {
		cfg.Retry.BaseDelayMs = 1000
	}
	if cfg.Retry.MaxDelayMs <= 0 {
		cfg.Retry.MaxDelayMs = 30000
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
}
