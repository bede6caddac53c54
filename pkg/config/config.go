package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Typesense  TypesenseConfig
	OTEL       OTELConfig
	Normalizer NormalizerConfig
	Ranking    RankingConfig
	Pool       PoolConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// NormalizerConfig holds the record-repair constants. The fee and rating
// synthesis rules are heuristic business rules carried over from the source
// dataset cleanup; they are configuration, not invariants.
type NormalizerConfig struct {
	// Raw field bounds: observed fees outside this range are clamped to it.
	FeeMin int
	FeeMax int
	// Synthesized fees use a narrower band, reflecting lower confidence.
	SynthFeeMin int
	SynthFeeMax int
	// Experience premium: per-year amount and its cap.
	FeePerExperienceYear int
	FeeExperienceCap     int
	// Rating premium per point above the neutral 3.0 rating.
	FeePerRatingPoint int

	ExperienceMin     int
	ExperienceMax     int
	DefaultExperience int

	DefaultRating float64
	DefaultFee    int
	DefaultDegree string

	// Metro bounding box for serviceable coordinates.
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
	// City-center default substituted for out-of-range coordinates.
	DefaultLatitude  float64
	DefaultLongitude float64
	DefaultCity      string
}

// RankingConfig holds ranking engine configuration
type RankingConfig struct {
	MaxResults  int
	DefaultSort string
}

// PoolConfig holds doctor pool refresh configuration
type PoolConfig struct {
	RefreshInterval time.Duration
	CacheTTLSeconds int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "doctor_discovery"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "doctor-discovery"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Normalizer: DefaultNormalizerConfig(),
		Ranking: RankingConfig{
			MaxResults:  getEnvAsInt("RANKING_MAX_RESULTS", 10),
			DefaultSort: getEnv("RANKING_DEFAULT_SORT", "rating"),
		},
		Pool: PoolConfig{
			RefreshInterval: time.Duration(getEnvAsInt("POOL_REFRESH_MINUTES", 60)) * time.Minute,
			CacheTTLSeconds: getEnvAsInt("POOL_CACHE_TTL_SECONDS", 300),
		},
	}, nil
}

// DefaultNormalizerConfig returns the repair constants for the Bangalore
// deployment.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		FeeMin:               getEnvAsInt("NORM_FEE_MIN", 100),
		FeeMax:               getEnvAsInt("NORM_FEE_MAX", 5000),
		SynthFeeMin:          getEnvAsInt("NORM_SYNTH_FEE_MIN", 200),
		SynthFeeMax:          getEnvAsInt("NORM_SYNTH_FEE_MAX", 2500),
		FeePerExperienceYear: getEnvAsInt("NORM_FEE_PER_EXP_YEAR", 20),
		FeeExperienceCap:     getEnvAsInt("NORM_FEE_EXP_CAP", 400),
		FeePerRatingPoint:    getEnvAsInt("NORM_FEE_PER_RATING_POINT", 100),
		ExperienceMin:        0,
		ExperienceMax:        getEnvAsInt("NORM_EXPERIENCE_MAX", 60),
		DefaultExperience:    getEnvAsInt("NORM_DEFAULT_EXPERIENCE", 0),
		DefaultRating:        getEnvAsFloat("NORM_DEFAULT_RATING", 3.5),
		DefaultFee:           getEnvAsInt("NORM_DEFAULT_FEE", 400),
		DefaultDegree:        getEnv("NORM_DEFAULT_DEGREE", "MBBS"),
		MinLatitude:          getEnvAsFloat("NORM_MIN_LATITUDE", 12.5),
		MaxLatitude:          getEnvAsFloat("NORM_MAX_LATITUDE", 13.5),
		MinLongitude:         getEnvAsFloat("NORM_MIN_LONGITUDE", 77.0),
		MaxLongitude:         getEnvAsFloat("NORM_MAX_LONGITUDE", 78.0),
		DefaultLatitude:      getEnvAsFloat("NORM_DEFAULT_LATITUDE", 12.9716),
		DefaultLongitude:     getEnvAsFloat("NORM_DEFAULT_LONGITUDE", 77.5946),
		DefaultCity:          getEnv("NORM_DEFAULT_CITY", "Bangalore"),
	}
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
