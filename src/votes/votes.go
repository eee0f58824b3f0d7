// Package votes is the ledger of up and down votes on posts. Each user holds at
// most one vote per post; casting the direction you already hold takes the vote
// back, and casting the other direction flips it in place. Counts are always
// computed from the ledger rows.
package votes

import (
	"context"
	"errors"
	"fmt"

	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/logging"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/oops"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
)

type Outcome string

const (
	Created  Outcome = "created"
	Removed  Outcome = "removed"
	Switched Outcome = "switched"

	// RemoveVote found nothing to remove.
	Absent Outcome = "absent"
)

const likeUniqueConstraint = "post_like_post_id_user_id_key"

type Result struct {
	Outcome Outcome
	// The vote as it stands after the cast. Nil when the vote was removed.
	Like *models.Like
}

// Decides what casting a vote in direction requested does, given the
// direction the user currently holds (nil for no vote). Either direction
// outside the enum is an error.
func Decide(existing *models.VoteType, requested models.VoteType) (Outcome, error) {
	if existing == nil {
		switch requested {
		case models.VoteUp, models.VoteDown:
			return Created, nil
		}
		return "", fmt.Errorf("unknown requested vote type %q", requested)
	}

	switch *existing {
	case models.VoteUp:
		switch requested {
		case models.VoteUp:
			return Removed, nil
		case models.VoteDown:
			return Switched, nil
		}
	case models.VoteDown:
		switch requested {
		case models.VoteDown:
			return Removed, nil
		case models.VoteUp:
			return Switched, nil
		}
	}
	return "", fmt.Errorf("unhandled vote transition from %q to %q", *existing, requested)
}

func validateDirection(direction models.VoteType) error {
	if _, err := models.ParseVoteType(string(direction)); err != nil {
		return qaerr.Validation("vote_type", "must be %s or %s", models.VoteUp, models.VoteDown)
	}
	return nil
}

/*
Casts userID's vote on postID in the given direction, creating, removing, or
switching the existing vote.

If a concurrent request from the same user creates the row first, the insert
trips the (post_id, user_id) unique constraint. The cast is then retried once
and takes the remove or switch path against the committed row.
*/
func CastVote(ctx context.Context, conn db.ConnOrTx, postID, userID int, direction models.VoteType) (Result, error) {
	if userID == 0 {
		return Result{}, qaerr.ErrUnauthenticated
	}
	if err := validateDirection(direction); err != nil {
		return Result{}, err
	}

	for attempt := 0; ; attempt++ {
		result, err := castVoteOnce(ctx, conn, postID, userID, direction)
		if err != nil && attempt == 0 && db.IsUniqueViolation(err, likeUniqueConstraint) {
			logging.ExtractLogger(ctx).Debug().
				Int("post_id", postID).
				Int("user_id", userID).
				Msg("vote was created concurrently; retrying against the committed row")
			continue
		}
		if err != nil {
			return Result{}, err
		}

		votesCast.WithLabelValues(string(result.Outcome)).Inc()
		logging.ExtractLogger(ctx).Info().
			Int("post_id", postID).
			Int("user_id", userID).
			Str("direction", string(direction)).
			Str("outcome", string(result.Outcome)).
			Msg("vote cast")
		return result, nil
	}
}

func castVoteOnce(ctx context.Context, conn db.ConnOrTx, postID, userID int, direction models.VoteType) (Result, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return Result{}, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if err := ensurePostExists(ctx, tx, postID); err != nil {
		return Result{}, err
	}

	existing, err := db.QueryOne[models.Like](ctx, tx,
		`
		---- Lock existing vote
		SELECT $columns
		FROM post_like
		WHERE post_id = $1 AND user_id = $2
		FOR UPDATE
		`,
		postID,
		userID,
	)
	if err != nil && !errors.Is(err, db.NotFound) {
		return Result{}, oops.New(err, "failed to look up existing vote")
	}

	var existingType *models.VoteType
	if existing != nil {
		existingType = &existing.VoteType
	}

	outcome, err := Decide(existingType, direction)
	if err != nil {
		return Result{}, oops.New(err, "cannot cast vote on post %d", postID)
	}

	result := Result{Outcome: outcome}
	switch result.Outcome {
	case Created:
		result.Like, err = db.QueryOne[models.Like](ctx, tx,
			`
			---- Create vote
			INSERT INTO post_like (post_id, user_id, vote_type)
			VALUES ($1, $2, $3)
			RETURNING $columns
			`,
			postID,
			userID,
			direction,
		)
		if err != nil {
			return Result{}, oops.New(err, "failed to create vote")
		}
	case Removed:
		_, err = tx.Exec(ctx,
			`
			---- Remove vote
			DELETE FROM post_like WHERE id = $1
			`,
			existing.ID,
		)
		if err != nil {
			return Result{}, oops.New(err, "failed to remove vote")
		}
	case Switched:
		result.Like, err = db.QueryOne[models.Like](ctx, tx,
			`
			---- Switch vote
			UPDATE post_like
			SET vote_type = $2
			WHERE id = $1
			RETURNING $columns
			`,
			existing.ID,
			direction,
		)
		if err != nil {
			return Result{}, oops.New(err, "failed to switch vote")
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return Result{}, oops.New(err, "failed to commit vote")
	}

	return result, nil
}

// Removes userID's vote on postID, whatever its direction. Removing a vote
// that is already gone is not an error; the outcome is Absent.
func RemoveVote(ctx context.Context, conn db.ConnOrTx, postID, userID int) (Outcome, error) {
	if userID == 0 {
		return "", qaerr.ErrUnauthenticated
	}
	if err := ensurePostExists(ctx, conn, postID); err != nil {
		return "", err
	}

	tag, err := conn.Exec(ctx,
		`
		---- Remove vote
		DELETE FROM post_like
		WHERE post_id = $1 AND user_id = $2
		`,
		postID,
		userID,
	)
	if err != nil {
		return "", oops.New(err, "failed to remove vote")
	}

	outcome := Absent
	if tag.RowsAffected() > 0 {
		outcome = Removed
	}
	votesCast.WithLabelValues(string(outcome)).Inc()
	return outcome, nil
}

// Live count of the votes on postID in one direction.
func CountByType(ctx context.Context, conn db.ConnOrTx, postID int, direction models.VoteType) (int, error) {
	if err := validateDirection(direction); err != nil {
		return 0, err
	}

	count, err := db.QueryOneScalar[int](ctx, conn,
		`
		---- Count votes
		SELECT COUNT(*)
		FROM post_like
		WHERE post_id = $1 AND vote_type = $2
		`,
		postID,
		direction,
	)
	if err != nil {
		return 0, oops.New(err, "failed to count %s votes on post %d", direction, postID)
	}
	return count, nil
}

type Tally struct {
	Upvotes   int `db:"upvotes" json:"upvotes"`
	Downvotes int `db:"downvotes" json:"downvotes"`
}

func (t Tally) Score() int {
	return t.Upvotes - t.Downvotes
}

// Both counts for postID, read in a single query.
func TallyFor(ctx context.Context, conn db.ConnOrTx, postID int) (Tally, error) {
	tally, err := db.QueryOne[Tally](ctx, conn,
		`
		---- Tally votes
		SELECT
			COUNT(*) FILTER (WHERE vote_type = $2) AS upvotes,
			COUNT(*) FILTER (WHERE vote_type = $3) AS downvotes
		FROM post_like
		WHERE post_id = $1
		`,
		postID,
		models.VoteUp,
		models.VoteDown,
	)
	if err != nil {
		return Tally{}, oops.New(err, "failed to tally votes on post %d", postID)
	}
	return *tally, nil
}

// Returns userID's vote on postID, or db.NotFound if there is none.
func FindVote(ctx context.Context, conn db.ConnOrTx, postID, userID int) (*models.Like, error) {
	like, err := db.QueryOne[models.Like](ctx, conn,
		`
		---- Find vote
		SELECT $columns
		FROM post_like
		WHERE post_id = $1 AND user_id = $2
		`,
		postID,
		userID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to find vote")
	}
	return like, nil
}

// Reports whether userID holds any vote on postID.
func LikedBy(ctx context.Context, conn db.ConnOrTx, postID, userID int) (bool, error) {
	_, err := FindVote(ctx, conn, postID, userID)
	if errors.Is(err, db.NotFound) {
		return false, nil
	}
	return err == nil, err
}

func ensurePostExists(ctx context.Context, conn db.ConnOrTx, postID int) error {
	_, err := db.QueryOneScalar[int](ctx, conn,
		`
		---- Check post exists
		SELECT id FROM post WHERE id = $1
		`,
		postID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return qaerr.NotFound("post", postID)
		}
		return oops.New(err, "failed to look up post %d", postID)
	}
	return nil
}
