package models

import "time"

type RedactionState string

const (
	RedactionVisible  RedactionState = "visible"
	RedactionRedacted RedactionState = "redacted"
)

func (s RedactionState) Valid() bool {
	switch s {
	case RedactionVisible, RedactionRedacted:
		return true
	}
	return false
}

// Body is the author's text and is kept even when the answer is redacted.
// Anything shown to readers must go through redaction.RenderedBody.
type Answer struct {
	ID     int `db:"id"`
	PostID int `db:"post_id"`
	UserID int `db:"user_id"`

	Body           string         `db:"body"`
	RedactionState RedactionState `db:"redaction_state"`
	RedactedBody   *string        `db:"redacted_body"`

	// Set when the answer went in without a moderation verdict and is waiting
	// for a moderator to look at it.
	Flagged bool `db:"flagged"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type AnswerRevision struct {
	ID           int       `db:"id"`
	AnswerID     int       `db:"answer_id"`
	EditorID     int       `db:"editor_id"`
	PreviousBody string    `db:"previous_body"`
	CreatedAt    time.Time `db:"created_at"`
}
