package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// The application config. Populated from the environment (and an optional
// .env file in the working directory) when the program starts.
var Config QAConfig

func init() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	Config = FromEnv(os.Getenv)
}

const (
	DefaultModerationEndpoint = "https://api.openai.com/v1/moderations"
	DefaultModerationModel    = "omni-moderation-latest"
)

var DefaultCampusDomains = []string{"columbia.edu", "barnard.edu"}

// Builds a config from an environment lookup function. Unset or unparseable
// values fall back to development defaults.
func FromEnv(getenv func(string) string) QAConfig {
	env := func(name, def string) string {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v
		}
		return def
	}

	campusDomains := ParseList(getenv("CAMPUS_DOMAINS"))
	if len(campusDomains) == 0 {
		campusDomains = DefaultCampusDomains
	}

	return QAConfig{
		Env:         Environment(env("CAMPUSQA_ENV", string(Dev))),
		Addr:        env("CAMPUSQA_ADDR", ":9001"),
		PrivateAddr: env("CAMPUSQA_PRIVATE_ADDR", ":9002"),
		BaseUrl:     env("CAMPUSQA_BASE_URL", "http://localhost:9001"),
		LogLevel:    parseLogLevel(getenv("CAMPUSQA_LOG_LEVEL"), zerolog.InfoLevel),
		Postgres: PostgresConfig{
			User:     env("POSTGRES_USER", "campusqa"),
			Password: env("POSTGRES_PASSWORD", "password"),
			Hostname: env("POSTGRES_HOST", "localhost"),
			Port:     parseInt(getenv("POSTGRES_PORT"), 5432),
			DbName:   env("POSTGRES_DB", "campusqa"),
			LogLevel: parsePgLogLevel(getenv("POSTGRES_LOG_LEVEL"), tracelog.LogLevelWarn),
			MinConn:  int32(parseInt(getenv("POSTGRES_MIN_CONN"), 2)),
			MaxConn:  int32(parseInt(getenv("POSTGRES_MAX_CONN"), 10)),
		},
		Moderation: ModerationConfig{
			Endpoint:        env("MODERATION_ENDPOINT", DefaultModerationEndpoint),
			APIKey:          getenv("OPENAI_API_KEY"),
			Model:           env("MODERATION_MODEL", DefaultModerationModel),
			Timeout:         parseDuration(getenv("MODERATION_TIMEOUT"), 5*time.Second),
			HTTPRetryMax:    parseInt(getenv("MODERATION_HTTP_RETRY_MAX"), 1),
			FailurePolicy:   parseFailurePolicy(getenv("MODERATION_FAILURE_POLICY")),
			RetryAttempts:   parseInt(getenv("MODERATION_RETRY_ATTEMPTS"), 3),
			ModeratorEmails: ParseEmailList(getenv("MODERATOR_EMAILS")),
		},
		Auth: AuthConfig{
			AllowedLoginEmails: ParseEmailList(getenv("ALLOWED_LOGIN_EMAILS")),
			CampusDomains:      campusDomains,
			CookieDomain:       getenv("CAMPUSQA_COOKIE_DOMAIN"),
			CookieSecure:       parseBool(getenv("CAMPUSQA_COOKIE_SECURE"), false),
		},
	}
}

// Splits a comma-separated list, trimming whitespace and dropping empty
// entries.
func ParseList(raw string) []string {
	var result []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		result = append(result, part)
	}
	return result
}

// Like ParseList, but lower-cases every entry so lookups can be
// case-insensitive.
func ParseEmailList(raw string) []string {
	list := ParseList(raw)
	for i := range list {
		list[i] = strings.ToLower(list[i])
	}
	return list
}

func parseInt(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

func parseBool(raw string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

func parseDuration(raw string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func parseLogLevel(raw string, def zerolog.Level) zerolog.Level {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return def
	}
	return level
}

func parsePgLogLevel(raw string, def tracelog.LogLevel) tracelog.LogLevel {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	level, err := tracelog.LogLevelFromString(raw)
	if err != nil {
		return def
	}
	return level
}

func parseFailurePolicy(raw string) ModerationFailurePolicy {
	switch p := ModerationFailurePolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case FailureReject, FailureAllow, FailureRetry:
		return p
	default:
		return FailureReject
	}
}
