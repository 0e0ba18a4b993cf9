// Package config handles loading and validating the voicebot configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for the voicebot daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Persona    PersonaConfig    `mapstructure:"persona"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each inbound transport.
type TransportsConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	GRPC GRPCConfig `mapstructure:"grpc"`
}

// HTTPConfig configures the HTTP transport serving /api/text and /api/voice.
type HTTPConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	Port      int  `mapstructure:"port"`
	RateLimit int  `mapstructure:"rate_limit"` // requests per minute per client, 0 disables

	// TrustProxyHeaders keys rate limiting on X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that sets those headers itself.
	TrustProxyHeaders bool `mapstructure:"trust_proxy_headers"`
}

// GRPCConfig configures the gRPC health endpoint.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// ProviderConfig holds the generative-language provider settings.
type ProviderConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"` // 0 means no client timeout
}

// PersonaConfig describes the character the bot answers as.
type PersonaConfig struct {
	Name        string `mapstructure:"name"`
	VoiceTraits string `mapstructure:"voice_traits"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from a .env file, the config file,
// environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./voicebot.yaml, ./configs/voicebot.yaml, /etc/voicebot/voicebot.yaml.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.http.rate_limit", 30)
	v.SetDefault("transports.http.trust_proxy_headers", false)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.model", "gemini-2.5-flash")
	v.SetDefault("provider.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("provider.timeout", 0)
	v.SetDefault("persona.name", "Venu")
	v.SetDefault("persona.voice_traits", "Friendly, confident, concise.")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("voicebot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/voicebot")
	}

	// Environment variables: VOICEBOT_PROVIDER_MODEL, VOICEBOT_PERSONA_NAME, etc.
	v.SetEnvPrefix("VOICEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The demo's historical variable names keep working.
	_ = v.BindEnv("provider.api_key", "VOICEBOT_PROVIDER_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("provider.model", "VOICEBOT_PROVIDER_MODEL", "GEMINI_MODEL")
	_ = v.BindEnv("persona.name", "VOICEBOT_PERSONA_NAME", "CANDIDATE_NAME")

	// Read config file (optional, env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${GEMINI_API_KEY}")
	cfg.Provider.APIKey = resolveEnvRef(cfg.Provider.APIKey)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Provider.Model == "" {
		return fmt.Errorf("provider.model must not be empty")
	}
	if c.Persona.Name == "" {
		return fmt.Errorf("persona.name must not be empty")
	}
	if c.Transports.HTTP.RateLimit < 0 {
		return fmt.Errorf("transports.http.rate_limit must be >= 0, got %d", c.Transports.HTTP.RateLimit)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		return os.Getenv(envKey)
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
