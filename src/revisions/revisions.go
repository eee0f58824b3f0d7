// Package revisions keeps the edit history of answers. A revision stores the
// body as it was before an edit, and is written only when the edit actually
// changed the body.
package revisions

import (
	"context"

	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/oops"
)

type Outcome string

const (
	Skipped  Outcome = "skipped"
	Recorded Outcome = "recorded"
)

// Decides whether an edit from previousBody to currentBody needs a revision.
// Bodies are compared byte for byte.
func Decide(previousBody, currentBody string) Outcome {
	if previousBody == currentBody {
		return Skipped
	}
	return Recorded
}

/*
Records a revision of answer if its current body differs from previousBody.

previousBody must be the body as it was read inside the same transaction that
writes the new body, with the answer row locked. Otherwise two concurrent edits
can both compare against a stale body.
*/
func RecordRevision(
	ctx context.Context,
	tx db.ConnOrTx,
	answer *models.Answer,
	editorID int,
	previousBody string,
) (Outcome, *models.AnswerRevision, error) {
	if Decide(previousBody, answer.Body) == Skipped {
		return Skipped, nil, nil
	}

	revision, err := db.QueryOne[models.AnswerRevision](ctx, tx,
		`
		---- Record answer revision
		INSERT INTO answer_revision (answer_id, editor_id, previous_body)
		VALUES ($1, $2, $3)
		RETURNING $columns
		`,
		answer.ID,
		editorID,
		previousBody,
	)
	if err != nil {
		return "", nil, oops.New(err, "failed to record revision for answer %d", answer.ID)
	}

	return Recorded, revision, nil
}

// Returns the revisions of an answer, newest first.
func ListRevisions(ctx context.Context, conn db.ConnOrTx, answerID int) ([]*models.AnswerRevision, error) {
	revs, err := db.Query[models.AnswerRevision](ctx, conn,
		`
		---- List answer revisions
		SELECT $columns
		FROM answer_revision
		WHERE answer_id = $1
		ORDER BY created_at DESC, id DESC
		`,
		answerID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch revisions for answer %d", answerID)
	}
	return revs, nil
}
