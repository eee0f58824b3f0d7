package config

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func envFrom(vals map[string]string) func(string) string {
	return func(name string) string {
		return vals[name]
	}
}

func TestParseEmailList(t *testing.T) {
	assert.Nil(t, ParseEmailList(""))
	assert.Nil(t, ParseEmailList(" , ,"))
	assert.Equal(t,
		[]string{"grader@columbia.edu", "ta@barnard.edu"},
		ParseEmailList(" Grader@Columbia.edu,, ta@barnard.edu ,"),
	)
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv(envFrom(nil))

	assert.Equal(t, Dev, cfg.Env)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, tracelog.LogLevelWarn, cfg.Postgres.LogLevel)
	assert.Equal(t, DefaultModerationEndpoint, cfg.Moderation.Endpoint)
	assert.Equal(t, DefaultModerationModel, cfg.Moderation.Model)
	assert.Equal(t, 5*time.Second, cfg.Moderation.Timeout)
	assert.Equal(t, FailureReject, cfg.Moderation.FailurePolicy)
	assert.Empty(t, cfg.Moderation.ModeratorEmails)
	assert.Equal(t, DefaultCampusDomains, cfg.Auth.CampusDomains)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg := FromEnv(envFrom(map[string]string{
		"CAMPUSQA_ENV":              "production",
		"CAMPUSQA_LOG_LEVEL":        "debug",
		"POSTGRES_PORT":             "6543",
		"POSTGRES_LOG_LEVEL":        "info",
		"MODERATION_TIMEOUT":        "750ms",
		"MODERATION_FAILURE_POLICY": "Allow",
		"MODERATOR_EMAILS":          "mod@columbia.edu, TA@barnard.edu",
		"ALLOWED_LOGIN_EMAILS":      "visitor@gmail.com",
		"CAMPUS_DOMAINS":            "columbia.edu",
	}))

	assert.Equal(t, Production, cfg.Env)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 6543, cfg.Postgres.Port)
	assert.Equal(t, tracelog.LogLevelInfo, cfg.Postgres.LogLevel)
	assert.Equal(t, 750*time.Millisecond, cfg.Moderation.Timeout)
	assert.Equal(t, FailureAllow, cfg.Moderation.FailurePolicy)
	assert.Equal(t, []string{"mod@columbia.edu", "ta@barnard.edu"}, cfg.Moderation.ModeratorEmails)
	assert.Equal(t, []string{"visitor@gmail.com"}, cfg.Auth.AllowedLoginEmails)
	assert.Equal(t, []string{"columbia.edu"}, cfg.Auth.CampusDomains)
}

func TestFromEnvBadValuesFallBack(t *testing.T) {
	cfg := FromEnv(envFrom(map[string]string{
		"POSTGRES_PORT":             "not a port",
		"MODERATION_TIMEOUT":        "-3s",
		"MODERATION_FAILURE_POLICY": "shrug",
		"CAMPUSQA_LOG_LEVEL":        "loud",
	}))

	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, 5*time.Second, cfg.Moderation.Timeout)
	assert.Equal(t, FailureReject, cfg.Moderation.FailurePolicy)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
}

func TestDSN(t *testing.T) {
	cfg := PostgresConfig{User: "qa", Password: "p@ss", Hostname: "db", Port: 5432, DbName: "campusqa"}
	assert.Equal(t, "postgres://qa:p%40ss@db:5432/campusqa", cfg.DSN())
}
