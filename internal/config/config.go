package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	AuthCookieSecure bool
	SessionSecret    string
	SessionTTL       time.Duration

	OTLPEndpoint string

	Discord DiscordConfig
	Grant   GrantConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RetentionDays int
}

// DiscordConfig carries the OAuth application and bot credentials.
type DiscordConfig struct {
	APIBase      string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	GuildID      string
	RoleID       string
	BotToken     string
}

// GrantConfig controls role-grant retry behavior inside the bot runtime.
type GrantConfig struct {
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	return Config{
		AppName:          getenv("APP_SERVICE", "guildgate"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      environment,
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		AuthCookieSecure: authCookieSecure,
		SessionSecret:    strings.TrimSpace(getenv("SECRET_KEY", "")),
		SessionTTL:       getenvDuration("SESSION_TTL", 7*24*time.Hour),
		OTLPEndpoint:     getenv("OTLP_ENDPOINT", "localhost:4317"),
		Discord: DiscordConfig{
			APIBase:      strings.TrimRight(getenv("DISCORD_API_BASE", "https://discord.com/api"), "/"),
			ClientID:     strings.TrimSpace(getenv("CLIENT_ID", "")),
			ClientSecret: strings.TrimSpace(getenv("CLIENT_SECRET", "")),
			RedirectURI:  strings.TrimSpace(getenv("REDIRECT_URI", "")),
			GuildID:      strings.TrimSpace(getenv("GUILD_ID", "")),
			RoleID:       strings.TrimSpace(getenv("ROLE_ID", "")),
			BotToken:     strings.TrimSpace(getenv("DISCORD_BOT_TOKEN", "")),
		},
		Grant: GrantConfig{
			QueueSize:   getenvInt("GRANT_QUEUE_SIZE", 64),
			MaxAttempts: getenvInt("GRANT_MAX_ATTEMPTS", 3),
			RetryDelay:  getenvDuration("GRANT_RETRY_DELAY", 5*time.Second),
		},
		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "guildgate"),
		DBUser:            getenv("DATABASE_USER", "guildgate"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		RedisAddr:         strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RetentionDays:     getenvInt("RETENTION_DAYS", 90),
	}
}

// Validate rejects configurations that cannot drive the verification
// pipeline. Called at startup so a missing credential fails the process
// instead of the first request.
func (c Config) Validate() error {
	missing := []string{}
	if c.Discord.ClientID == "" {
		missing = append(missing, "CLIENT_ID")
	}
	if c.Discord.ClientSecret == "" {
		missing = append(missing, "CLIENT_SECRET")
	}
	if c.Discord.RedirectURI == "" {
		missing = append(missing, "REDIRECT_URI")
	}
	if c.Discord.GuildID == "" {
		missing = append(missing, "GUILD_ID")
	}
	if c.Discord.RoleID == "" {
		missing = append(missing, "ROLE_ID")
	}
	if c.Discord.BotToken == "" {
		missing = append(missing, "DISCORD_BOT_TOKEN")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getenv(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

func getenvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return value
}

func getenvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}

func getenvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return value
}
