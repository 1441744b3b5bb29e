package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Household   HouseholdConfig `mapstructure:"household"`
	AI          AIConfig        `mapstructure:"ai"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Scraping    ScrapingConfig  `mapstructure:"scraping"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Image       ImageConfig     `mapstructure:"image"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodySize    int64         `mapstructure:"max_body_size"`
}

// DatabaseConfig SQLite 設定
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// HouseholdConfig 家庭設定
type HouseholdConfig struct {
	DefaultID int64 `mapstructure:"default_id"`
}

// AIConfig OpenAI 相容服務（LM Studio 等）設定
type AIConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	MaxTokens           int           `mapstructure:"max_tokens"`
	Temperature         float64       `mapstructure:"temperature"`
	Timeout             time.Duration `mapstructure:"timeout"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 二級快取設定
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScrapingConfig 食譜抓取設定
type ScrapingConfig struct {
	UserAgent       string        `mapstructure:"user_agent"`
	Delay           time.Duration `mapstructure:"delay"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxHTMLBytes    int64         `mapstructure:"max_html_bytes"`
	SitesFile       string        `mapstructure:"sites_file"`
	RespectRobots   bool          `mapstructure:"respect_robots"`
	BulkConcurrency int           `mapstructure:"bulk_concurrency"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64  `mapstructure:"max_size_bytes"`
	Dir          string `mapstructure:"dir"`
	MaxDimension int    `mapstructure:"max_dimension"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 為選用
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 常用環境變數別名
	_ = viper.BindEnv("database.path", "DATABASE_PATH")
	_ = viper.BindEnv("ai.enabled", "AI_ENABLED")
	_ = viper.BindEnv("ai.base_url", "LM_STUDIO_URL")
	_ = viper.BindEnv("ai.api_key", "AI_API_KEY")
	_ = viper.BindEnv("ai.model", "AI_MODEL")
	_ = viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = viper.BindEnv("scraping.delay", "SCRAPING_DELAY")
	_ = viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "pantry-cookbook")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.request_timeout", "90s")
	viper.SetDefault("server.max_body_size", 10<<20)

	// 資料庫與家庭
	viper.SetDefault("database.path", "data/pantry.db")
	viper.SetDefault("household.default_id", 1)

	// AI 設定
	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.base_url", "http://localhost:1234/v1")
	viper.SetDefault("ai.model", "local-model")
	viper.SetDefault("ai.max_tokens", 1000)
	viper.SetDefault("ai.temperature", 0.3)
	viper.SetDefault("ai.timeout", "30s")
	viper.SetDefault("ai.health_check_interval", "5m")

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	// 抓取設定
	viper.SetDefault("scraping.user_agent", "PansCookbook/1.0 (+https://panscookbook.com/bot)")
	viper.SetDefault("scraping.delay", "5s")
	viper.SetDefault("scraping.timeout", "30s")
	viper.SetDefault("scraping.max_html_bytes", 5<<20)
	viper.SetDefault("scraping.sites_file", "configs/sites.yaml")
	viper.SetDefault("scraping.respect_robots", true)
	viper.SetDefault("scraping.bulk_concurrency", 2)

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 圖片設定
	viper.SetDefault("image.max_size_bytes", 10*1024*1024)
	viper.SetDefault("image.dir", "data/images")
	viper.SetDefault("image.max_dimension", 1200)

	viper.SetDefault("dedup_window", "1s")
	viper.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if config.Household.DefaultID <= 0 {
		return fmt.Errorf("invalid default household id")
	}

	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.AI.Enabled && config.AI.BaseURL == "" {
		return fmt.Errorf("ai base url is required when ai is enabled")
	}

	if config.Scraping.Delay < 0 {
		return fmt.Errorf("invalid scraping delay")
	}
	if config.Scraping.BulkConcurrency <= 0 {
		return fmt.Errorf("invalid scraping bulk concurrency")
	}

	return nil
}
