// Package config loads every runtime setting from environment variables once
// at process start; business logic never reads the environment directly.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates all service configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	AI       AIConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Database: DatabaseConfig{Path: getEnvOrDefault("DATABASE_PATH", "legal-consultant.db")},
		Auth:     auth,
		AI:       ai,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3001"
	}

	if strings.Contains(port, ":") {
		// Accept ":3001" or "127.0.0.1:3001" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string
}

// AuthConfig carries token-signing and admin-seeding settings.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	BcryptCost    int
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func loadAuthConfig() (AuthConfig, error) {
	ttl := 15 * time.Minute
	if raw := strings.TrimSpace(os.Getenv("AUTH_TOKEN_TTL")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return AuthConfig{}, fmt.Errorf("invalid AUTH_TOKEN_TTL value %q: %w", raw, err)
		}
		ttl = parsed
	}

	cost := 0
	if override, err := parseOptionalIntEnv("AUTH_BCRYPT_COST"); err != nil {
		return AuthConfig{}, err
	} else if override != nil {
		cost = *override
	}

	return AuthConfig{
		JWTSecret:     getEnvOrDefault("JWT_SECRET", "default-jwt-secret-change-in-production"),
		TokenTTL:      ttl,
		BcryptCost:    cost,
		AdminEmail:    strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnvOrDefault("ADMIN_NAME", "Administrator"),
	}, nil
}

// AIConfig describes the upstream model and gateway policy.
type AIConfig struct {
	APIKey         string
	AccessKey      string
	SecretKey      string
	Model          string
	BaseURL        string
	Region         string
	Temperature    *float64
	TopP           *float64
	MaxTokens      *int
	CacheTTL       time.Duration
	CacheKeyPrefix int
}

// Enabled reports whether the required upstream credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds the upstream chat model from this configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("missing upstream credentials: set AI_API_KEY + AI_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("AI_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("AI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	cacheTTL := time.Hour
	if raw := strings.TrimSpace(os.Getenv("AI_CACHE_TTL")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return AIConfig{}, fmt.Errorf("invalid AI_CACHE_TTL value %q: %w", raw, err)
		}
		cacheTTL = parsed
	}

	prefix := 200
	if override, err := parseOptionalIntEnv("AI_CACHE_KEY_PREFIX"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override > 0 {
		prefix = *override
	}

	return AIConfig{
		APIKey:         strings.TrimSpace(os.Getenv("AI_API_KEY")),
		AccessKey:      strings.TrimSpace(os.Getenv("AI_ACCESS_KEY")),
		SecretKey:      strings.TrimSpace(os.Getenv("AI_SECRET_KEY")),
		Model:          strings.TrimSpace(os.Getenv("AI_MODEL")),
		BaseURL:        getEnvOrDefault("AI_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:         getEnvOrDefault("AI_REGION", "cn-beijing"),
		Temperature:    temperature,
		TopP:           topP,
		MaxTokens:      maxTokens,
		CacheTTL:       cacheTTL,
		CacheKeyPrefix: prefix,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
