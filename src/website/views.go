package website

import (
	"time"

	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/parsing"
	"git.campusqa.org/campusqa/campusqa/src/qaurl"
	"git.campusqa.org/campusqa/campusqa/src/redaction"
	"git.campusqa.org/campusqa/campusqa/src/threadlock"
	"git.campusqa.org/campusqa/campusqa/src/votes"
)

const excerptLength = 200

type postJSON struct {
	ID               int        `json:"id"`
	Url              string     `json:"url"`
	AuthorID         int        `json:"author_id"`
	Title            string     `json:"title"`
	BodyHTML         string     `json:"body_html"`
	Excerpt          string     `json:"excerpt"`
	Status           string     `json:"status"`
	Locked           bool       `json:"locked"`
	LockedAt         *time.Time `json:"locked_at"`
	AcceptedAnswerID *int       `json:"accepted_answer_id"`
	NeedsReview      bool       `json:"needs_review"`
	CreatedAt        time.Time  `json:"created_at"`

	Votes   *votes.Tally `json:"votes,omitempty"`
	MyVote  *string      `json:"my_vote,omitempty"`
	Answers []answerJSON `json:"answers,omitempty"`
}

type answerJSON struct {
	ID             int       `json:"id"`
	PostID         int       `json:"post_id"`
	UserID         int       `json:"user_id"`
	Body           string    `json:"body"`
	BodyHTML       string    `json:"body_html"`
	RedactionState string    `json:"redaction_state"`
	NeedsReview    bool      `json:"needs_review"`
	Accepted       bool      `json:"accepted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type revisionJSON struct {
	ID           int       `json:"id"`
	EditorID     int       `json:"editor_id"`
	PreviousBody string    `json:"previous_body"`
	CreatedAt    time.Time `json:"created_at"`
}

type voteJSON struct {
	Outcome  string      `json:"outcome"`
	VoteType *string     `json:"vote_type"`
	Votes    votes.Tally `json:"votes"`
}

func postToJSON(post *models.Post) postJSON {
	return postJSON{
		ID:               post.ID,
		Url:              qaurl.BuildPost(post.ID),
		AuthorID:         post.AuthorID,
		Title:            post.Title,
		BodyHTML:         parsing.ParseMarkdown(post.Body, parsing.ForumMarkdown),
		Excerpt:          parsing.Excerpt(post.Body, excerptLength),
		Status:           string(post.Status),
		Locked:           threadlock.IsLocked(post),
		LockedAt:         post.LockedAt,
		AcceptedAnswerID: post.AcceptedAnswerID,
		NeedsReview:      post.Flagged,
		CreatedAt:        post.CreatedAt,
	}
}

// Bodies always go through the redaction gate; the original text of a
// redacted answer is never serialized.
func answerToJSON(answer *models.Answer, post *models.Post) answerJSON {
	accepted := post != nil && post.AcceptedAnswerID != nil && *post.AcceptedAnswerID == answer.ID
	return answerJSON{
		ID:             answer.ID,
		PostID:         answer.PostID,
		UserID:         answer.UserID,
		Body:           redaction.RenderedBody(answer),
		BodyHTML:       parsing.RenderAnswer(answer),
		RedactionState: string(answer.RedactionState),
		NeedsReview:    answer.Flagged,
		Accepted:       accepted,
		CreatedAt:      answer.CreatedAt,
		UpdatedAt:      answer.UpdatedAt,
	}
}

func revisionToJSON(rev *models.AnswerRevision) revisionJSON {
	return revisionJSON{
		ID:           rev.ID,
		EditorID:     rev.EditorID,
		PreviousBody: rev.PreviousBody,
		CreatedAt:    rev.CreatedAt,
	}
}
