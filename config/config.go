package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Index     IndexConfig     `mapstructure:"index"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Storage   StorageConfig   `mapstructure:"storage"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name      string `mapstructure:"name"`
	Debug     bool   `mapstructure:"debug"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	URL      string `mapstructure:"url"`
}

// AuthConfig contains JWT configuration
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// EmbeddingConfig controls the embedding provider
type EmbeddingConfig struct {
	Dimension int           `mapstructure:"dimension"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// IndexConfig selects and configures the vector index backend.
// Backend is "flat" (in-memory, snapshot persisted to SnapshotPath or S3)
// or "pgvector".
type IndexConfig struct {
	Backend       string        `mapstructure:"backend"`
	SnapshotPath  string        `mapstructure:"snapshot_path"`
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
}

// ScoringConfig holds the retrieval and ranking constants
type ScoringConfig struct {
	Strategy                 string  `mapstructure:"strategy"`
	TopK                     int     `mapstructure:"top_k"`
	MaxCandidatesForScoring  int     `mapstructure:"max_candidates_for_scoring"`
	RecencyPenalty           float64 `mapstructure:"recency_penalty"`
	PrepTimeFlexibility      float64 `mapstructure:"prep_time_flexibility"`
	SkillPenaltyPerLevel     float64 `mapstructure:"skill_penalty_per_level"`
	PreferenceBoostLiked     float64 `mapstructure:"preference_boost_liked"`
	PreferencePenaltyDislike float64 `mapstructure:"preference_penalty_disliked"`
	RegionalBoost            float64 `mapstructure:"regional_boost"`
}

// PlannerConfig holds plan assembly and validation settings
type PlannerConfig struct {
	MinDailyCalories   float64       `mapstructure:"min_daily_calories"`
	MaxRecipeRepeats   int           `mapstructure:"max_recipe_repeats"`
	PreferenceTTL      time.Duration `mapstructure:"preference_cache_ttl"`
	SafetyTolerance    float64       `mapstructure:"safety_tolerance"`
	TopPickProbability float64       `mapstructure:"top_pick_probability"`
}

// Load reads configuration from defaults, an optional YAML file, the
// environment (MEALPLANNER_ prefix) and Docker secrets, in that order.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("MEALPLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Defaults are enough to run without a file
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applySecrets(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mealplanner")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "mealplanner")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.sqlite_path", "mealplanner.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.migrations_dir", "migrations")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.url", "")

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("embedding.dimension", 384)
	v.SetDefault("embedding.timeout", "2s")
	v.SetDefault("embedding.cache_ttl", "24h")

	v.SetDefault("index.backend", "flat")
	v.SetDefault("index.snapshot_path", "./data/vector_index.json")
	v.SetDefault("index.search_timeout", "2s")

	v.SetDefault("scoring.strategy", "advanced")
	v.SetDefault("scoring.top_k", 3)
	v.SetDefault("scoring.max_candidates_for_scoring", 30)
	v.SetDefault("scoring.recency_penalty", 0.3)
	v.SetDefault("scoring.prep_time_flexibility", 1.5)
	v.SetDefault("scoring.skill_penalty_per_level", 0.3)
	v.SetDefault("scoring.preference_boost_liked", 0.2)
	v.SetDefault("scoring.preference_penalty_disliked", 0.5)
	v.SetDefault("scoring.regional_boost", 0.3)

	v.SetDefault("planner.min_daily_calories", 1200.0)
	v.SetDefault("planner.max_recipe_repeats", 2)
	v.SetDefault("planner.preference_cache_ttl", "300s")
	v.SetDefault("planner.safety_tolerance", 0.1)
	v.SetDefault("planner.top_pick_probability", 0.7)

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.snapshot_key", "indexes/vector_index.json")
}

// applySecrets overrides sensitive values with Docker secrets when present
func applySecrets(cfg *Config) {
	if s := readSecret("db_password"); s != "" {
		cfg.Database.Password = s
	}
	if s := readSecret("db_user"); s != "" {
		cfg.Database.User = s
	}
	if s := readSecret("jwt_secret"); s != "" {
		cfg.Auth.JWTSecret = s
	}
	if s := readSecret("redis_password"); s != "" {
		cfg.Redis.Password = s
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
