package auth

import (
	"context"
	"errors"
	"strings"

	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/oops"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
)

func GetUserByID(ctx context.Context, conn db.ConnOrTx, id int) (*models.User, error) {
	user, err := db.QueryOne[models.User](ctx, conn,
		`
		---- Get user by id
		SELECT $columns FROM qa_user WHERE id = $1
		`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, qaerr.NotFound("user", id)
		}
		return nil, oops.New(err, "failed to fetch user %d", id)
	}
	return user, nil
}

// Returns the user with the given email, or db.NotFound. Emails are matched
// case-insensitively.
func GetUserByEmail(ctx context.Context, conn db.ConnOrTx, email string) (*models.User, error) {
	user, err := db.QueryOne[models.User](ctx, conn,
		`
		---- Get user by email
		SELECT $columns FROM qa_user WHERE email = $1
		`,
		normalizeEmail(email),
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch user by email")
	}
	return user, nil
}

// Creates the user for a verified email, or updates their name if they already
// exist. An empty name leaves an existing name alone.
func UpsertUser(ctx context.Context, conn db.ConnOrTx, email, name string) (*models.User, error) {
	user, err := db.QueryOne[models.User](ctx, conn,
		`
		---- Upsert user
		INSERT INTO qa_user (email, name)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE
			SET name = COALESCE(NULLIF(EXCLUDED.name, ''), qa_user.name)
		RETURNING $columns
		`,
		normalizeEmail(email),
		strings.TrimSpace(name),
	)
	if err != nil {
		return nil, oops.New(err, "failed to upsert user")
	}
	return user, nil
}

func SetModerator(ctx context.Context, conn db.ConnOrTx, userID int, moderator bool) error {
	tag, err := conn.Exec(ctx,
		`
		---- Set moderator
		UPDATE qa_user SET is_moderator = $2 WHERE id = $1
		`,
		userID,
		moderator,
	)
	if err != nil {
		return oops.New(err, "failed to update moderator flag")
	}
	if tag.RowsAffected() == 0 {
		return qaerr.NotFound("user", userID)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
