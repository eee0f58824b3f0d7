package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/config"
	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/jobs"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/oops"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const SessionCookieName = "CampusQASession"

const sessionDuration = time.Hour * 24 * 14

var ErrNoSession = errors.New("no session found")

// Returns the session with the given id, or ErrNoSession if it does not exist
// or has expired.
func GetSession(ctx context.Context, conn db.ConnOrTx, id string) (*models.Session, error) {
	sess, err := db.QueryOne[models.Session](ctx, conn,
		`
		---- Get session
		SELECT $columns
		FROM session
		WHERE id = $1 AND expires_at > CURRENT_TIMESTAMP
		`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, ErrNoSession
		}
		return nil, oops.New(err, "failed to get session")
	}
	return sess, nil
}

func CreateSession(ctx context.Context, conn db.ConnOrTx, userID int) (*models.Session, error) {
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(sessionDuration),
	}

	_, err := conn.Exec(ctx,
		`
		---- Create session
		INSERT INTO session (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		`,
		session.ID, session.UserID, session.ExpiresAt,
	)
	if err != nil {
		return nil, oops.New(err, "failed to persist session")
	}

	return &session, nil
}

// Deletes a session by id. If no session with that id exists, no
// error is returned.
func DeleteSession(ctx context.Context, conn db.ConnOrTx, id string) error {
	_, err := conn.Exec(ctx,
		`
		---- Delete session
		DELETE FROM session WHERE id = $1
		`,
		id,
	)
	if err != nil {
		return oops.New(err, "failed to delete session")
	}

	return nil
}

func NewSessionCookie(session *models.Session) *http.Cookie {
	return &http.Cookie{
		Name:  SessionCookieName,
		Value: session.ID,
		Path:  "/",

		Domain:  config.Config.Auth.CookieDomain,
		Expires: session.ExpiresAt,

		Secure:   config.Config.Auth.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

var DeleteSessionCookie = &http.Cookie{
	Name:   SessionCookieName,
	Path:   "/",
	Domain: config.Config.Auth.CookieDomain,
	MaxAge: -1,
}

func DeleteExpiredSessions(ctx context.Context, conn db.ConnOrTx) (int64, error) {
	tag, err := conn.Exec(ctx,
		`
		---- Delete expired sessions
		DELETE FROM session WHERE expires_at <= CURRENT_TIMESTAMP
		`,
	)
	if err != nil {
		return 0, oops.New(err, "failed to delete expired sessions")
	}

	return tag.RowsAffected(), nil
}

func PeriodicallyDeleteExpiredSessions(conn db.ConnOrTx) *jobs.Job {
	return jobs.Every("delete expired sessions", time.Minute, func(ctx context.Context, logger *zerolog.Logger) error {
		n, err := DeleteExpiredSessions(ctx, conn)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info().Int64("num deleted sessions", n).Msg("Deleted expired sessions")
		}
		return nil
	})
}
