/*
Package qadata holds the write flows for posts and answers and the helpers that
read them back. Each write runs in a single transaction. Moderation runs before
the transaction opens, so a slow or failing classifier never holds a row lock.

Locks are always taken post first, then answer, to avoid deadlocks between
flows that touch both.
*/
package qadata

import (
	"context"
	"strings"

	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/moderation"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
)

// Screens content before it is stored. Implemented by *moderation.Gate.
type Moderator interface {
	Screen(ctx context.Context, content, email string) (moderation.Screening, error)
}

func requireActor(actor *models.User) error {
	if actor == nil || actor.ID == 0 {
		return qaerr.ErrUnauthenticated
	}
	return nil
}

func validateBody(field, body string) error {
	if strings.TrimSpace(body) == "" {
		return qaerr.Validation(field, "can't be blank")
	}
	return nil
}
