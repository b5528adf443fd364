package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Quiz      QuizConfig      `mapstructure:"quiz"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
	// ExposeErrors adds error detail and stack traces to 500 responses.
	ExposeErrors bool `mapstructure:"expose_errors"`
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool   `mapstructure:"parse_time"`
	SSLMode   string `mapstructure:"sslmode"`
	Path      string // sqlite file
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

type QuizConfig struct {
	// ExposeCorrectAnswers restores the historical learner payload that
	// carried correct option indices during a live attempt.
	ExposeCorrectAnswers bool `mapstructure:"expose_correct_answers"`
	LockTTLSeconds       int  `mapstructure:"lock_ttl_seconds"`
}

func (c *Config) IsRelease() bool {
	return c.Server.Mode == "release"
}

func (q QuizConfig) LockTTL() time.Duration {
	if q.LockTTLSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(q.LockTTLSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("rate_limit.max_requests", 100000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("quiz.lock_ttl_seconds", 5)
}

func LoadConfig(path string) (*Config, error) {
	// .env 文件可选
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LEARNHUB")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "LEARNHUB_DATABASE_DRIVER")
	v.BindEnv("database.host", "LEARNHUB_DATABASE_HOST")
	v.BindEnv("database.port", "LEARNHUB_DATABASE_PORT")
	v.BindEnv("database.user", "LEARNHUB_DATABASE_USER")
	v.BindEnv("database.password", "LEARNHUB_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "LEARNHUB_DATABASE_NAME")
	v.BindEnv("database.path", "LEARNHUB_DATABASE_PATH")

	// JWT
	v.BindEnv("jwt.secret", "LEARNHUB_JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "LEARNHUB_REDIS_ENABLED")
	v.BindEnv("redis.host", "LEARNHUB_REDIS_HOST")
	v.BindEnv("redis.port", "LEARNHUB_REDIS_PORT")
	v.BindEnv("redis.password", "LEARNHUB_REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "LEARNHUB_SERVER_MODE")
	v.BindEnv("server.port", "LEARNHUB_SERVER_PORT")
	v.BindEnv("server.expose_errors", "LEARNHUB_SERVER_EXPOSE_ERRORS")

	// Tracing
	v.BindEnv("tracing.enabled", "LEARNHUB_TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "LEARNHUB_TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if cfg.IsRelease() && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}
	if cfg.IsRelease() && cfg.Server.ExposeErrors {
		return nil, fmt.Errorf("server.expose_errors must be disabled in release mode")
	}

	return &cfg, nil
}
