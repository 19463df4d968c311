package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Auth      AuthConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NATSConfig configures the event broker. An empty URL disables eventing
// entirely; the API runs fine without it.
type NATSConfig struct {
	URL string
}

type AuthConfig struct {
	// JWTSecret verifies tokens minted by the identity provider.
	JWTSecret string
}

// AIConfig configures the model endpoint and the retry policy around it.
type AIConfig struct {
	Endpoint       string
	APIKey         string
	ModelID        string
	MaxAttempts    int
	BackoffBase    time.Duration
	RetryPause     time.Duration
	RequestTimeout time.Duration
	MaxTokens      int
	Temperature    float64
	// FallbackOriginal degrades a correction-time model outage into an
	// uncorrected echo of the original text instead of an error.
	FallbackOriginal bool
}

type RateLimitConfig struct {
	// AIMaxRequests per AIWindowSec seconds, per client IP, on AI routes.
	AIMaxRequests int
	AIWindowSec   int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		Auth: AuthConfig{
			JWTSecret: k.String("jwt.secret"),
		},
		AI: AIConfig{
			Endpoint:         k.String("ai.endpoint"),
			APIKey:           k.String("ai.api.key"),
			ModelID:          k.String("ai.model.id"),
			MaxAttempts:      k.Int("ai.max.attempts"),
			MaxTokens:        k.Int("ai.max.tokens"),
			Temperature:      k.Float64("ai.temperature"),
			FallbackOriginal: k.Bool("ai.fallback.original"),
		},
		RateLimit: RateLimitConfig{
			AIMaxRequests: k.Int("ratelimit.ai.max.requests"),
			AIWindowSec:   k.Int("ratelimit.ai.window.sec"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	if origins := k.String("cors.allowed.origins"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
			}
		}
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "writediary"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "writediary"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.AI.ModelID == "" {
		cfg.AI.ModelID = "amazon.nova-lite-v1:0"
	}
	if cfg.AI.MaxAttempts == 0 {
		cfg.AI.MaxAttempts = 3
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 4096
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.3
	}
	if cfg.RateLimit.AIMaxRequests == 0 {
		cfg.RateLimit.AIMaxRequests = 20
	}
	if cfg.RateLimit.AIWindowSec == 0 {
		cfg.RateLimit.AIWindowSec = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	cfg.AI.BackoffBase, err = parseDuration(k.String("ai.backoff.base"), "1s")
	if err != nil {
		return nil, fmt.Errorf("parsing ai backoff base: %w", err)
	}
	cfg.AI.RetryPause, err = parseDuration(k.String("ai.retry.pause"), "500ms")
	if err != nil {
		return nil, fmt.Errorf("parsing ai retry pause: %w", err)
	}
	cfg.AI.RequestTimeout, err = parseDuration(k.String("ai.request.timeout"), "30s")
	if err != nil {
		return nil, fmt.Errorf("parsing ai request timeout: %w", err)
	}

	return cfg, nil
}

func parseDuration(s, def string) (time.Duration, error) {
	if s == "" {
		s = def
	}
	return time.ParseDuration(s)
}
