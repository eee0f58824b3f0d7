package qadata

import (
	"context"

	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/oops"
)

// Records that userID has taken part in postID's thread. Calling it again for
// the same pair does nothing.
func EnsureThreadIdentity(ctx context.Context, tx db.ConnOrTx, userID, postID int) error {
	_, err := tx.Exec(ctx,
		`
		---- Ensure thread identity
		INSERT INTO thread_identity (user_id, post_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT thread_identity_user_id_post_id_key DO NOTHING
		`,
		userID,
		postID,
	)
	if err != nil {
		return oops.New(err, "failed to record thread identity for user %d on post %d", userID, postID)
	}
	return nil
}

func HasParticipated(ctx context.Context, conn db.ConnOrTx, userID, postID int) (bool, error) {
	exists, err := db.QueryOneScalar[bool](ctx, conn,
		`
		---- Check thread identity
		SELECT EXISTS (
			SELECT 1 FROM thread_identity WHERE user_id = $1 AND post_id = $2
		)
		`,
		userID,
		postID,
	)
	if err != nil {
		return false, oops.New(err, "failed to check thread identity")
	}
	return exists, nil
}
