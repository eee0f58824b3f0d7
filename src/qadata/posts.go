package qadata

import (
	"context"
	"errors"
	"strings"

	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/logging"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/oops"
	"git.campusqa.org/campusqa/campusqa/src/perf"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
)

const maxTitleLength = 255

// Creates an open, unlocked post. The title and body are screened together.
func CreatePost(
	ctx context.Context,
	conn db.ConnOrTx,
	mod Moderator,
	actor *models.User,
	title, body string,
) (*models.Post, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if err := validateBody("title", title); err != nil {
		return nil, err
	}
	if len(title) > maxTitleLength {
		return nil, qaerr.Validation("title", "is too long (maximum is %d characters)", maxTitleLength)
	}
	if err := validateBody("body", body); err != nil {
		return nil, err
	}

	screening, err := mod.Screen(ctx, title+"\n\n"+body, actor.Email)
	if err != nil {
		return nil, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	post, err := db.QueryOne[models.Post](ctx, tx,
		`
		---- Create post
		INSERT INTO post (author_id, title, body, flagged)
		VALUES ($1, $2, $3, $4)
		RETURNING $columns
		`,
		actor.ID,
		title,
		body,
		screening.NeedsReview,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create post")
	}

	if err := EnsureThreadIdentity(ctx, tx, actor.ID, post.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, oops.New(err, "failed to commit post")
	}

	logging.ExtractLogger(ctx).Info().
		Int("post_id", post.ID).
		Int("author_id", actor.ID).
		Bool("needs_review", post.Flagged).
		Msg("post created")
	return post, nil
}

// Fetches a post as viewer sees it. Flagged posts are only visible to
// moderators and their author; everyone else gets ErrNotFound.
func FetchPost(ctx context.Context, conn db.ConnOrTx, viewer *models.User, postID int) (*models.Post, error) {
	p := perf.ExtractPerf(ctx)
	p.StartBlock("SQL", "Fetch post")
	defer p.EndBlock()

	var qb db.QueryBuilder
	qb.Add(
		`
		---- Fetch post
		SELECT $columns
		FROM post
		WHERE id = $?
		`,
		postID,
	)
	switch {
	case viewer == nil:
		qb.Add(`AND NOT flagged`)
	case !viewer.IsModerator:
		qb.Add(`AND (NOT flagged OR author_id = $?)`, viewer.ID)
	}

	post, err := db.QueryOne[models.Post](ctx, conn, qb.String(), qb.Args()...)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, qaerr.NotFound("post", postID)
		}
		return nil, oops.New(err, "failed to fetch post %d", postID)
	}
	return post, nil
}

// Takes a shared lock on the post, so that it cannot be accepted or unaccepted
// until the transaction ends.
func sharePost(ctx context.Context, tx db.ConnOrTx, postID int) (*models.Post, error) {
	post, err := db.QueryOne[models.Post](ctx, tx,
		`
		---- Share-lock post
		SELECT $columns FROM post WHERE id = $1 FOR SHARE
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
