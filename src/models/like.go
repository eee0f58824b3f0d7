package models

import (
	"fmt"
	"time"
)

type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

func ParseVoteType(s string) (VoteType, error) {
	switch VoteType(s) {
	case VoteUp:
		return VoteUp, nil
	case VoteDown:
		return VoteDown, nil
	}
	return "", fmt.Errorf("unknown vote type %q", s)
}

// One user's vote on one post. (post_id, user_id) is unique.
type Like struct {
	ID        int       `db:"id"`
	PostID    int       `db:"post_id"`
	UserID    int       `db:"user_id"`
	VoteType  VoteType  `db:"vote_type"`
	CreatedAt time.Time `db:"created_at"`
}

func (l *Like) IsUpvote() bool {
	return l.VoteType == VoteUp
}

func (l *Like) IsDownvote() bool {
	return l.VoteType == VoteDown
}
