package qadata

import (
	"context"
	"errors"

	"git.campusqa.org/campusqa/campusqa/src/acceptance"
	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/logging"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/oops"
	"git.campusqa.org/campusqa/campusqa/src/perf"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
	"git.campusqa.org/campusqa/campusqa/src/redaction"
	"git.campusqa.org/campusqa/campusqa/src/revisions"
	"git.campusqa.org/campusqa/campusqa/src/threadlock"
)

/*
Adds an answer to an open post.

The body is screened before anything is written. If the classifier was
unavailable and the gate let the answer through anyway, it is stored flagged
for review. The lock state is checked again under a shared lock on the post,
so an answer cannot slip in after the post is accepted.
*/
func CreateAnswer(
	ctx context.Context,
	conn db.ConnOrTx,
	mod Moderator,
	actor *models.User,
	postID int,
	body string,
) (*models.Answer, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validateBody("body", body); err != nil {
		return nil, err
	}

	// Fail fast on missing or locked posts before paying for a classifier call.
	post, err := FetchPost(ctx, conn, actor, postID)
	if err != nil {
		return nil, err
	}
	if err := threadlock.EnsureOpen(post); err != nil {
		return nil, err
	}

	screening, err := mod.Screen(ctx, body, actor.Email)
	if err != nil {
		return nil, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	post, err = sharePost(ctx, tx, postID)
	if err != nil {
		return nil, err
	}
	if err := threadlock.EnsureOpen(post); err != nil {
		return nil, err
	}

	answer, err := db.QueryOne[models.Answer](ctx, tx,
		`
		---- Create answer
		INSERT INTO answer (post_id, user_id, body, flagged)
		VALUES ($1, $2, $3, $4)
		RETURNING $columns
		`,
		post.ID,
		actor.ID,
		body,
		screening.NeedsReview,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create answer")
	}

	if err := EnsureThreadIdentity(ctx, tx, actor.ID, post.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, oops.New(err, "failed to commit answer")
	}

	logging.ExtractLogger(ctx).Info().
		Int("post_id", post.ID).
		Int("answer_id", answer.ID).
		Bool("needs_review", screening.NeedsReview).
		Msg("answer created")

	return answer, nil
}

/*
Replaces the body of an answer. Only the author may edit, and only while the
post is open. A revision holding the old body is recorded when the body
actually changed.
*/
func EditAnswer(
	ctx context.Context,
	conn db.ConnOrTx,
	mod Moderator,
	actor *models.User,
	answerID int,
	body string,
) (*models.Answer, revisions.Outcome, error) {
	if err := requireActor(actor); err != nil {
		return nil, "", err
	}
	if err := validateBody("body", body); err != nil {
		return nil, "", err
	}

	existing, err := FetchAnswer(ctx, conn, answerID)
	if err != nil {
		return nil, "", err
	}
	if existing.UserID != actor.ID {
		return nil, "", qaerr.ErrForbidden
	}

	screening, err := mod.Screen(ctx, body, actor.Email)
	if err != nil {
		return nil, "", err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, "", oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	post, err := sharePost(ctx, tx, existing.PostID)
	if err != nil {
		return nil, "", err
	}
	if err := threadlock.EnsureOpen(post); err != nil {
		return nil, "", err
	}

	answer, err := lockAnswer(ctx, tx, answerID)
	if err != nil {
		return nil, "", err
	}

	previousBody := answer.Body
	if revisions.Decide(previousBody, body) == revisions.Recorded {
		answer, err = db.QueryOne[models.Answer](ctx, tx,
			`
			---- Update answer body
			UPDATE answer
			SET
				body = $2,
				flagged = flagged OR $3,
				updated_at = NOW()
			WHERE id = $1
			RETURNING $columns
			`,
			answer.ID,
			body,
			screening.NeedsReview,
		)
		if err != nil {
			return nil, "", oops.New(err, "failed to update answer %d", answerID)
		}
	}

	outcome, _, err := revisions.RecordRevision(ctx, tx, answer, actor.ID, previousBody)
	if err != nil {
		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", oops.New(err, "failed to commit answer edit")
	}

	logging.ExtractLogger(ctx).Info().
		Int("answer_id", answer.ID).
		Str("revision", string(outcome)).
		Msg("answer edited")

	return answer, outcome, nil
}

/*
Deletes an answer. The author and moderators may do this. If it was the
accepted answer, the post is reopened in the same transaction; the returned
bool reports whether that happened.
*/
func DestroyAnswer(ctx context.Context, conn db.ConnOrTx, actor *models.User, answerID int) (bool, error) {
	if err := requireActor(actor); err != nil {
		return false, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	existing, err := FetchAnswer(ctx, tx, answerID)
	if err != nil {
		return false, err
	}
	if existing.UserID != actor.ID && !actor.IsModerator {
		return false, qaerr.ErrForbidden
	}

	reopened, err := acceptance.OnAnswerDestroyed(ctx, tx, existing)
	if err != nil {
		return false, err
	}

	if _, err := lockAnswer(ctx, tx, answerID); err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx,
		`
		---- Delete answer
		DELETE FROM answer WHERE id = $1
		`,
		answerID,
	)
	if err != nil {
		return false, oops.New(err, "failed to delete answer %d", answerID)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, oops.New(err, "failed to commit answer deletion")
	}

	logging.ExtractLogger(ctx).Info().
		Int("answer_id", answerID).
		Int("post_id", existing.PostID).
		Bool("reopened", reopened).
		Msg("answer destroyed")

	return reopened, nil
}

/*
Redacts an answer or makes it visible again. Only moderators may do this.

The new state is applied to a copy of the locked row first; nothing is written
unless that succeeds, so a redaction without a replacement body leaves the
answer exactly as it was.
*/
func SetRedaction(
	ctx context.Context,
	conn db.ConnOrTx,
	actor *models.User,
	answerID int,
	state models.RedactionState,
	redactedBody *string,
) (*models.Answer, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsModerator {
		return nil, qaerr.ErrForbidden
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	locked, err := lockAnswer(ctx, tx, answerID)
	if err != nil {
		return nil, err
	}

	next := *locked
	if err := redaction.SetRedactionState(&next, state, redactedBody); err != nil {
		return nil, err
	}

	answer, err := db.QueryOne[models.Answer](ctx, tx,
		`
		---- Set answer redaction
		UPDATE answer
		SET
			redaction_state = $2,
			redacted_body = $3,
			updated_at = NOW()
		WHERE id = $1
		RETURNING $columns
		`,
		next.ID,
		next.RedactionState,
		next.RedactedBody,
	)
	if err != nil {
		return nil, oops.New(err, "failed to save redaction of answer %d", answerID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, oops.New(err, "failed to commit redaction")
	}

	logging.ExtractLogger(ctx).Info().
		Int("answer_id", answer.ID).
		Int("moderator_id", actor.ID).
		Str("state", string(answer.RedactionState)).
		Msg("answer redaction changed")

	return answer, nil
}

func FetchAnswer(ctx context.Context, conn db.ConnOrTx, answerID int) (*models.Answer, error) {
	answer, err := db.QueryOne[models.Answer](ctx, conn,
		`
		---- Fetch answer
		SELECT $columns FROM answer WHERE id = $1
		`,
		answerID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, qaerr.NotFound("answer", answerID)
		}
		return nil, oops.New(err, "failed to fetch answer %d", answerID)
	}
	return answer, nil
}

/*
Fetches the answers on a post, oldest first. Answers waiting for moderator
review are only shown to moderators and to their authors. viewer may be nil.
*/
func FetchAnswersForPost(ctx context.Context, conn db.ConnOrTx, viewer *models.User, postID int) ([]*models.Answer, error) {
	p := perf.ExtractPerf(ctx)
	p.StartBlock("SQL", "Fetch answers")
	defer p.EndBlock()

	var qb db.QueryBuilder
	qb.Add(
		`
		---- Fetch answers for post
		SELECT $columns
		FROM answer
		WHERE post_id = $?
		`,
		postID,
	)
	switch {
	case viewer == nil:
		qb.Add(`AND NOT flagged`)
	case !viewer.IsModerator:
		qb.Add(`AND (NOT flagged OR user_id = $?)`, viewer.ID)
	}
	qb.Add(`ORDER BY created_at ASC, id ASC`)

	answers, err := db.Query[models.Answer](ctx, conn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch answers for post %d", postID)
	}
	return answers, nil
}

func lockAnswer(ctx context.Context, tx db.ConnOrTx, answerID int) (*models.Answer, error) {
	answer, err := db.QueryOne[models.Answer](ctx, tx,
		`
		---- Lock answer
		SELECT $columns FROM answer WHERE id = $1 FOR UPDATE
		`,
		answerID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, qaerr.NotFound("answer", answerID)
		}
		return nil, oops.New(err, "failed to lock answer %d", answerID)
	}
	return answer, nil
}
