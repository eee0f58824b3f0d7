package models

import (
	"time"
)

type PostStatus string

const (
	PostStatusOpen   PostStatus = "open"
	PostStatusSolved PostStatus = "solved"
)

// A question. AcceptedAnswerID, Status and LockedAt always move together: a post
// is either open with neither of the others set, or solved with both set.
type Post struct {
	ID       int    `db:"id"`
	AuthorID int    `db:"author_id"`
	Title    string `db:"title"`
	Body     string `db:"body"`

	Status           PostStatus `db:"status"`
	LockedAt         *time.Time `db:"locked_at"`
	AcceptedAnswerID *int       `db:"accepted_answer_id"`

	// Held for moderator review; hidden from everyone but moderators and the author.
	Flagged bool `db:"flagged"`

	CreatedAt time.Time `db:"created_at"`
}

func (p *Post) IsSolved() bool {
	return p.Status == PostStatusSolved
}
