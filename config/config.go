package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported embedding and generation provider names
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Providers     ProvidersConfig
	RAG           RAGConfig
	Embedder      EmbedderConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	TLS             struct {
		Enabled  bool
		CertFile string
		KeyFile  string
	}
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	// ConnectTimeout bounds the startup ping retries before the store is declared unreachable.
	ConnectTimeout time.Duration
}

// ProvidersConfig selects and configures the embedding and generation providers
type ProvidersConfig struct {
	EmbeddingProvider  string
	GenerationProvider string
	Gemini             GeminiConfig
	OpenAI             OpenAIConfig
}

// GeminiConfig holds Google Generative Language API configuration
type GeminiConfig struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
}

// OpenAIConfig holds configuration for an OpenAI-compatible API
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
}

// RAGConfig holds retrieval and context assembly settings
type RAGConfig struct {
	Dimensions      int
	TopK            int
	MaxTopK         int
	ContextMaxChars int
}

// EmbedderConfig holds batch embedding job settings
type EmbedderConfig struct {
	RequestInterval time.Duration
	CountJoinSkips  bool
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or text
	MetricsEnabled bool
	MetricsPort    int
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			TLS: struct {
				Enabled  bool
				CertFile string
				KeyFile  string
			}{
				Enabled:  getEnvAsBool("TLS_ENABLED", false),
				CertFile: getEnv("TLS_CERT_FILE", "certs/cert.pem"),
				KeyFile:  getEnv("TLS_KEY_FILE", "certs/key.pem"),
			},
		},
		Database: loadDatabaseConfig(),
		Providers: ProvidersConfig{
			EmbeddingProvider:  strings.ToLower(getEnv("EMBEDDING_PROVIDER", ProviderGemini)),
			GenerationProvider: strings.ToLower(getEnv("GENERATION_PROVIDER", ProviderGemini)),
			Gemini: GeminiConfig{
				APIKey:         getEnv("GEMINI_API_KEY", ""),
				BaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
				EmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
				ChatModel:      getEnv("GEMINI_CHAT_MODEL", "gemini-2.0-flash"),
				Timeout:        getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
			},
			OpenAI: OpenAIConfig{
				APIKey:         getEnv("OPENAI_API_KEY", ""),
				BaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
				ChatModel:      getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
				Timeout:        getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
			},
		},
		RAG: RAGConfig{
			Dimensions:      getEnvAsInt("RAG_EMBEDDING_DIMENSIONS", 768),
			TopK:            getEnvAsInt("RAG_TOP_K", 5),
			MaxTopK:         getEnvAsInt("RAG_MAX_TOP_K", 50),
			ContextMaxChars: getEnvAsInt("RAG_CONTEXT_MAX_CHARS", 12000),
		},
		Embedder: EmbedderConfig{
			RequestInterval: getEnvAsDuration("EMBEDDER_REQUEST_INTERVAL", time.Second),
			CountJoinSkips:  getEnvAsBool("EMBEDDER_COUNT_JOIN_SKIPS", false),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
	}
	if c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	if !isKnownProvider(c.Providers.EmbeddingProvider) {
		return fmt.Errorf("unknown embedding provider %q", c.Providers.EmbeddingProvider)
	}
	if !isKnownProvider(c.Providers.GenerationProvider) {
		return fmt.Errorf("unknown generation provider %q", c.Providers.GenerationProvider)
	}

	if c.RAG.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive")
	}
	if c.RAG.TopK <= 0 {
		return fmt.Errorf("top-k must be positive")
	}
	if c.RAG.MaxTopK < c.RAG.TopK {
		return fmt.Errorf("max top-k (%d) must not be lower than top-k (%d)", c.RAG.MaxTopK, c.RAG.TopK)
	}
	if c.Embedder.RequestInterval < 0 {
		return fmt.Errorf("embedder request interval must not be negative")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// RequireProviderCredentials checks that the selected providers have API keys.
// Commands that never call a provider (migrate) skip this check.
func (c *Config) RequireProviderCredentials() error {
	for _, name := range []string{c.Providers.EmbeddingProvider, c.Providers.GenerationProvider} {
		if c.Providers.APIKey(name) == "" {
			return fmt.Errorf("%s API key is required", name)
		}
	}
	return nil
}

// APIKey returns the configured API key for the named provider
func (p *ProvidersConfig) APIKey(name string) string {
	switch name {
	case ProviderGemini:
		return p.Gemini.APIKey
	case ProviderOpenAI:
		return p.OpenAI.APIKey
	default:
		return ""
	}
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password)
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil && u.Host != "" {
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, strings.TrimPrefix(u.Path, "/"))
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

func loadDatabaseConfig() DatabaseConfig {
	cfg := DatabaseConfig{
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnectTimeout:  getEnvAsDuration("DB_CONNECT_TIMEOUT", 15*time.Second),
	}
	if dbURL := getEnv("DATABASE_URL", ""); dbURL != "" {
		cfg.ConnectionString = dbURL
		return cfg
	}
	cfg.Host = getEnv("DB_HOST", "localhost")
	cfg.Port = getEnvAsInt("DB_PORT", 5432)
	cfg.User = getEnv("DB_USER", "placements")
	cfg.Password = getEnv("DB_PASSWORD", "")
	cfg.Database = getEnv("DB_NAME", "placements")
	cfg.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func isKnownProvider(name string) bool {
	return name == ProviderGemini || name == ProviderOpenAI
}

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 3002)
func getPort() int {
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if value := os.Getenv(key); value != "" {
			if p, err := strconv.Atoi(value); err == nil {
				return p
			}
		}
	}
	return 3002
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated variable, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
