package models

import "time"

// Records that a user has taken part in a post's thread. At most one per
// (user, post).
type ThreadIdentity struct {
	ID        int       `db:"id"`
	UserID    int       `db:"user_id"`
	PostID    int       `db:"post_id"`
	CreatedAt time.Time `db:"created_at"`
}
