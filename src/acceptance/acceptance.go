// Package acceptance coordinates which answer, if any, is accepted on a post.
// Accepting an answer locks the thread and unaccepting reopens it; the two
// always change together, under the post's row lock.
package acceptance

import (
	"context"
	"errors"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/logging"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/oops"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
	"git.campusqa.org/campusqa/campusqa/src/threadlock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campusqa_acceptance_transitions_total",
	Help: "Accepted-answer changes, by kind",
}, []string{"kind"})

// Overridden in tests.
var now = time.Now

/*
Marks answerID as the accepted answer of postID and locks the thread. Only the
post's author may accept, and answers held for moderator review cannot be
accepted.

Accepting the answer that is already accepted changes nothing. Accepting a
different answer on a solved post moves the acceptance and re-locks the thread.
*/
func Accept(ctx context.Context, conn db.ConnOrTx, postID, answerID, actorID int) (*models.Post, error) {
	if actorID == 0 {
		return nil, qaerr.ErrUnauthenticated
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	post, err := lockPost(ctx, tx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, qaerr.ErrForbidden
	}

	if post.AcceptedAnswerID != nil && *post.AcceptedAnswerID == answerID {
		return post, nil
	}

	type answerRef struct {
		PostID  int  `db:"post_id"`
		Flagged bool `db:"flagged"`
	}
	answer, err := db.QueryOne[answerRef](ctx, tx,
		`
		---- Load answer for acceptance
		SELECT $columns
		FROM answer
		WHERE id = $1
		FOR SHARE
		`,
		answerID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, qaerr.NotFound("answer", answerID)
		}
		return nil, oops.New(err, "failed to load answer %d", answerID)
	}
	if answer.PostID != post.ID {
		return nil, qaerr.Validation("answer_id", "answer %d does not belong to post %d", answerID, post.ID)
	}
	if answer.Flagged {
		return nil, qaerr.Validation("answer_id", "answer %d is waiting for moderator review", answerID)
	}

	kind := "accept"
	if post.AcceptedAnswerID != nil {
		kind = "switch"
	}

	post.AcceptedAnswerID = &answerID
	threadlock.ApplyLock(post, now())
	if err := threadlock.Save(ctx, tx, post); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, oops.New(err, "failed to commit acceptance")
	}

	transitions.WithLabelValues(kind).Inc()
	logging.ExtractLogger(ctx).Info().
		Int("post_id", post.ID).
		Int("answer_id", answerID).
		Str("kind", kind).
		Msg("answer accepted")

	return post, nil
}

// Clears the accepted answer of postID and reopens the thread. Only the post's
// author may unaccept. Unaccepting an open post changes nothing.
func Unaccept(ctx context.Context, conn db.ConnOrTx, postID, actorID int) (*models.Post, error) {
	if actorID == 0 {
		return nil, qaerr.ErrUnauthenticated
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	post, err := lockPost(ctx, tx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, qaerr.ErrForbidden
	}
	if post.AcceptedAnswerID == nil {
		return post, nil
	}

	if err := unaccept(ctx, tx, post); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, oops.New(err, "failed to commit unacceptance")
	}

	transitions.WithLabelValues("unaccept").Inc()
	logging.ExtractLogger(ctx).Info().Int("post_id", post.ID).Msg("answer unaccepted")

	return post, nil
}

/*
Must be called inside the transaction that deletes answer, before the delete.
If answer is the accepted answer of its post, the post is unaccepted and
reopened. Reports whether that happened.
*/
func OnAnswerDestroyed(ctx context.Context, tx db.ConnOrTx, answer *models.Answer) (bool, error) {
	post, err := lockPost(ctx, tx, answer.PostID)
	if err != nil {
		return false, err
	}

	if post.AcceptedAnswerID == nil || *post.AcceptedAnswerID != answer.ID {
		return false, nil
	}

	if err := unaccept(ctx, tx, post); err != nil {
		return false, err
	}

	transitions.WithLabelValues("destroyed").Inc()
	logging.ExtractLogger(ctx).Info().
		Int("post_id", post.ID).
		Int("answer_id", answer.ID).
		Msg("accepted answer destroyed; thread reopened")

	return true, nil
}

func unaccept(ctx context.Context, tx db.ConnOrTx, post *models.Post) error {
	post.AcceptedAnswerID = nil
	threadlock.ApplyUnlock(post)
	return threadlock.Save(ctx, tx, post)
}

func lockPost(ctx context.Context, tx db.ConnOrTx, postID int) (*models.Post, error) {
	post, err := db.QueryOne[models.Post](ctx, tx,
		`
		---- Lock post for acceptance
		SELECT $columns
		FROM post
		WHERE id = $1
		FOR UPDATE
		`,
		postID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, qaerr.NotFound("post", postID)
		}
		return nil, oops.New(err, "failed to lock post %d", postID)
	}
	return post, nil
}
