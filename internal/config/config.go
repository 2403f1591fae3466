package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds settings for the local DocuMind backend.
type ServerConfig struct {
	ListenAddr     string
	Database       DatabaseConfig
	JWT            JWTConfig
	UploadDir      string
	MaxUploadBytes int64
	RedisAddr      string
	RedisPassword  string
	AllowedOrigins []string
	RequestTimeout time.Duration
	SeedDemo       bool
	LogLevel       string
}

// ClientConfig holds settings for the terminal client.
type ClientConfig struct {
	ServerURL      string
	CommandPrefix  rune
	RequestTimeout time.Duration
	LogFile        string
}

// DatabaseConfig captures storage configuration.
type DatabaseConfig struct {
	Path string
}

// JWTConfig defines token issuance parameters.
type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// LoadServerConfig builds the server configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func LoadServerConfig() ServerConfig {
	_ = godotenv.Load()
	return ServerConfig{
		ListenAddr:     envOrDefault("DOCUMIND_LISTEN_ADDR", ":8000"),
		Database:       DatabaseConfig{Path: envOrDefault("DOCUMIND_DB_PATH", "documind.db")},
		JWT:            loadJWTConfig(),
		UploadDir:      envOrDefault("DOCUMIND_UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(envInt("DOCUMIND_MAX_UPLOAD_BYTES", 32<<20)),
		RedisAddr:      envOrDefault("DOCUMIND_REDIS_ADDR", ""),
		RedisPassword:  envOrDefault("DOCUMIND_REDIS_PASSWORD", ""),
		AllowedOrigins: envList("DOCUMIND_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RequestTimeout: envDuration("DOCUMIND_SERVER_TIMEOUT", 60*time.Second),
		SeedDemo:       envBool("DOCUMIND_SEED_DEMO", true),
		LogLevel:       envOrDefault("DOCUMIND_LOG_LEVEL", "info"),
	}
}

// LoadClientConfig builds the client configuration from environment variables.
func LoadClientConfig() ClientConfig {
	_ = godotenv.Load()
	prefix := envOrDefault("DOCUMIND_COMMAND_PREFIX", "/")
	runes := []rune(prefix)
	commandPrefix := '/'
	if len(runes) > 0 {
		commandPrefix = runes[0]
	}
	return ClientConfig{
		ServerURL:      envOrDefault("DOCUMIND_SERVER_URL", "http://localhost:8000"),
		CommandPrefix:  commandPrefix,
		RequestTimeout: envDuration("DOCUMIND_REQUEST_TIMEOUT", 30*time.Second),
		LogFile:        envOrDefault("DOCUMIND_CLIENT_LOG", ""),
	}
}

func loadJWTConfig() JWTConfig {
	expiration := envDuration("DOCUMIND_JWT_EXPIRATION", 24*time.Hour)
	return JWTConfig{
		Secret:     envOrDefault("DOCUMIND_JWT_SECRET", "replace-me"),
		Issuer:     envOrDefault("DOCUMIND_JWT_ISSUER", "documind"),
		Expiration: expiration,
	}
}

func envOrDefault(key, value string) string {
	if env, ok := os.LookupEnv(key); ok {
		return env
	}
	return value
}

func envDuration(key string, def time.Duration) time.Duration {
	if env, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(env); err == nil {
			return parsed
		}
	}
	return def
}

func envInt(key string, def int) int {
	if env, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(env); err == nil {
			return parsed
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if env, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(env); err == nil {
			return parsed
		}
	}
	return def
}

func envList(key string, def []string) []string {
	env, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	var out []string
	for _, item := range strings.Split(env, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
