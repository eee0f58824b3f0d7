// Package threadlock holds the state transitions that lock and unlock a post.
// A post is locked exactly when it has an accepted answer; the acceptance
// package is the only caller of ApplyLock, ApplyUnlock and Save.
package threadlock

import (
	"context"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/oops"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
)

func IsLocked(post *models.Post) bool {
	return post.LockedAt != nil
}

// Returns ErrThreadLocked if answers can no longer be added to or edited on
// the post.
func EnsureOpen(post *models.Post) error {
	if IsLocked(post) {
		return qaerr.ErrThreadLocked
	}
	return nil
}

func ApplyLock(post *models.Post, now time.Time) {
	lockedAt := now.UTC()
	post.LockedAt = &lockedAt
	post.Status = models.PostStatusSolved
}

func ApplyUnlock(post *models.Post) {
	post.LockedAt = nil
	post.Status = models.PostStatusOpen
}

// Reports whether the accepted answer, status, and lock of the post agree.
func Consistent(post *models.Post) bool {
	hasAnswer := post.AcceptedAnswerID != nil
	switch post.Status {
	case models.PostStatusSolved:
		return hasAnswer && post.LockedAt != nil
	case models.PostStatusOpen:
		return !hasAnswer && post.LockedAt == nil
	}
	return false
}

// Writes the post's accepted answer, status, and lock in one statement. The
// caller should hold the post's row lock.
func Save(ctx context.Context, tx db.ConnOrTx, post *models.Post) error {
	if !Consistent(post) {
		return oops.New(nil, "refusing to save post %d in an inconsistent lock state (status %s)", post.ID, post.Status)
	}

	tag, err := tx.Exec(ctx,
		`
		---- Save post lock state
		UPDATE post
		SET
			status = $2,
			locked_at = $3,
			accepted_answer_id = $4
		WHERE id = $1
		`,
		post.ID,
		post.Status,
		post.LockedAt,
		post.AcceptedAnswerID,
	)
	if err != nil {
		return oops.New(err, "failed to save lock state for post %d", post.ID)
	}
	if tag.RowsAffected() == 0 {
		return qaerr.NotFound("post", post.ID)
	}
	return nil
}
