package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

type Environment string

const (
	Production Environment = "production"
	Staging    Environment = "staging"
	Dev        Environment = "dev"
)

type QAConfig struct {
	Env         Environment
	Addr        string
	PrivateAddr string
	BaseUrl     string
	LogLevel    zerolog.Level
	Postgres    PostgresConfig
	Moderation  ModerationConfig
	Auth        AuthConfig
}

type PostgresConfig struct {
	User     string
	Password string
	Hostname string
	Port     int
	DbName   string
	LogLevel tracelog.LogLevel
	MinConn  int32
	MaxConn  int32
}

func (info PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(info.User, info.Password),
		Host:   fmt.Sprintf("%s:%d", info.Hostname, info.Port),
		Path:   info.DbName,
	}
	return u.String()
}

// What to do with a submission when the classifier cannot be reached.
type ModerationFailurePolicy string

const (
	// Fail closed: the submission is rejected with ModerationUnavailable.
	FailureReject ModerationFailurePolicy = "reject"
	// Fail open: the submission is stored but flagged for moderator review.
	FailureAllow ModerationFailurePolicy = "allow"
	// Retry the classifier a few times with backoff, then reject.
	FailureRetry ModerationFailurePolicy = "retry"
)

type ModerationConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration

	// Transport-level retries inside one classifier call.
	HTTPRetryMax int

	FailurePolicy ModerationFailurePolicy
	// Only consulted by FailureRetry.
	RetryAttempts int

	// Lower-cased addresses that skip classification entirely.
	ModeratorEmails []string
}

type AuthConfig struct {
	// Lower-cased addresses allowed to sign in regardless of domain. Consumed by
	// the identity collaborator through auth.LoginPolicy.
	AllowedLoginEmails []string
	CampusDomains      []string

	CookieDomain string
	CookieSecure bool
}
