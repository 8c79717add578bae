package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	NATS        NATSConfig
	Fetch       FetchConfig
	Analysis    AnalysisConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds the run-archive database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// RedisConfig holds the run-result cache configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	EventsTopic    string
}

// FetchConfig holds platform fetcher configuration
type FetchConfig struct {
	MaxItemsPerPlatform int
	PerPlatformTimeout  time.Duration
	OverallTimeout      time.Duration
	TwitterBearerToken  string
	YouTubeAPIKey       string
	UserAgent           string
}

// AnalysisConfig holds the tunable constants of the analysis pipeline.
// The defaults follow the documented precedent but are deliberately not
// hard-coded as guaranteed-correct.
type AnalysisConfig struct {
	MinPlatforms       int
	TopKeywords        int
	KeywordThreshold   float64
	TitleThreshold     float64
	MinQualityScore    float64
	SearchWeight       float64
	VideoWeight        float64
	ForumWeight        float64
	MicroblogWeight    float64
	BreadthWeight      float64
	EngagementWeight   float64
	ItemCountWeight    float64
	EngagementDivisor  float64
	ItemCountDivisor   float64
	GrowthCap          float64
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "trendscope"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("CACHE_TTL", 6*time.Hour),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			EventsTopic:    getEnv("TREND_EVENTS_TOPIC", "trend"),
		},
		Fetch: FetchConfig{
			MaxItemsPerPlatform: getEnvAsInt("FETCH_MAX_ITEMS_PER_PLATFORM", 25),
			PerPlatformTimeout:  getEnvAsDuration("FETCH_PER_PLATFORM_TIMEOUT", 15*time.Second),
			OverallTimeout:      getEnvAsDuration("FETCH_OVERALL_TIMEOUT", 60*time.Second),
			TwitterBearerToken:  getEnv("TWITTER_BEARER_TOKEN", ""),
			YouTubeAPIKey:       getEnv("YOUTUBE_API_KEY", ""),
			UserAgent:           getEnv("FETCH_USER_AGENT", "trendscope/1.0 (content research)"),
		},
		Analysis: AnalysisConfig{
			MinPlatforms:      getEnvAsInt("ANALYSIS_MIN_PLATFORMS", 2),
			TopKeywords:       getEnvAsInt("ANALYSIS_TOP_KEYWORDS", 8),
			KeywordThreshold:  getEnvAsFloat("ANALYSIS_KEYWORD_THRESHOLD", 0.3),
			TitleThreshold:    getEnvAsFloat("ANALYSIS_TITLE_THRESHOLD", 0.4),
			MinQualityScore:   getEnvAsFloat("ANALYSIS_MIN_QUALITY_SCORE", 0.0),
			SearchWeight:      getEnvAsFloat("ANALYSIS_SEARCH_WEIGHT", 1.2),
			VideoWeight:       getEnvAsFloat("ANALYSIS_VIDEO_WEIGHT", 1.5),
			ForumWeight:       getEnvAsFloat("ANALYSIS_FORUM_WEIGHT", 1.3),
			MicroblogWeight:   getEnvAsFloat("ANALYSIS_MICROBLOG_WEIGHT", 1.0),
			BreadthWeight:     getEnvAsFloat("ANALYSIS_BREADTH_WEIGHT", 0.5),
			EngagementWeight:  getEnvAsFloat("ANALYSIS_ENGAGEMENT_WEIGHT", 0.3),
			ItemCountWeight:   getEnvAsFloat("ANALYSIS_ITEM_COUNT_WEIGHT", 0.2),
			EngagementDivisor: getEnvAsFloat("ANALYSIS_ENGAGEMENT_DIVISOR", 1000),
			ItemCountDivisor:  getEnvAsFloat("ANALYSIS_ITEM_COUNT_DIVISOR", 20),
			GrowthCap:         getEnvAsFloat("ANALYSIS_GROWTH_CAP", 5),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Analysis.MinPlatforms < 1 {
		return fmt.Errorf("ANALYSIS_MIN_PLATFORMS must be at least 1")
	}

	if config.Fetch.OverallTimeout <= config.Fetch.PerPlatformTimeout {
		return fmt.Errorf("FETCH_OVERALL_TIMEOUT must exceed FETCH_PER_PLATFORM_TIMEOUT")
	}

	if config.Redis.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
