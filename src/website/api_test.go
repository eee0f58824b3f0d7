package website

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"git.campusqa.org/campusqa/campusqa/src/auth"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/moderation"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
	"git.campusqa.org/campusqa/campusqa/src/testutils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
)

type stubModerator struct {
	needsReview bool
	err         error
}

func (m *stubModerator) Screen(ctx context.Context, content, email string) (moderation.Screening, error) {
	return moderation.Screening{NeedsReview: m.needsReview}, m.err
}

type APISuite struct {
	suite.Suite
	conn *pgxpool.Pool
	mod  *stubModerator
	srv  *httptest.Server

	asker     *models.User
	answerer  *models.User
	moderator *models.User
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.conn = testutils.OpenDB(s.T())
	s.mod = &stubModerator{}
	s.srv = httptest.NewServer(NewWebsiteRoutes(s.conn, s.mod))
	s.T().Cleanup(s.srv.Close)

	s.asker = testutils.CreateUser(s.T(), s.conn, "asker@columbia.edu", false)
	s.answerer = testutils.CreateUser(s.T(), s.conn, "answerer@barnard.edu", false)
	s.moderator = testutils.CreateUser(s.T(), s.conn, "mod@columbia.edu", true)
}

// Sends a request as user (anonymous when nil) and decodes the JSON response
// into dest, if given.
func (s *APISuite) do(user *models.User, method, path, payload string, dest any) int {
	req, err := http.NewRequest(method, s.srv.URL+path, strings.NewReader(payload))
	s.Require().NoError(err)
	if user != nil {
		session, err := auth.CreateSession(context.Background(), s.conn, user.ID)
		s.Require().NoError(err)
		req.AddCookie(auth.NewSessionCookie(session))
	}

	res, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	s.Require().NoError(err)
	if dest != nil {
		s.Require().NoError(json.Unmarshal(body, dest), string(body))
	}
	return res.StatusCode
}

func (s *APISuite) createPost() postJSON {
	var post postJSON
	status := s.do(s.asker, http.MethodPost, "/posts", `{"title":"How do I read a file?","body":"In **Go**, please."}`, &post)
	s.Require().Equal(http.StatusCreated, status)
	return post
}

func (s *APISuite) createAnswer(postID int, user *models.User, body string) answerJSON {
	var answer answerJSON
	payload, _ := json.Marshal(map[string]string{"body": body})
	status := s.do(user, http.MethodPost, fmt.Sprintf("/posts/%d/answers", postID), string(payload), &answer)
	s.Require().Equal(http.StatusCreated, status)
	return answer
}

func (s *APISuite) TestAnswerAcceptAndLock() {
	post := s.createPost()
	s.Equal("open", post.Status)
	s.Contains(post.BodyHTML, "<strong>Go</strong>")

	answer := s.createAnswer(post.ID, s.answerer, "Use `os.ReadFile`.")
	s.Contains(answer.BodyHTML, "<code>os.ReadFile</code>")

	// Only the asker may accept.
	var errBody ErrorBody
	status := s.do(s.answerer, http.MethodPost, fmt.Sprintf("/posts/%d/answers/%d/accept", post.ID, answer.ID), "", &errBody)
	s.Equal(http.StatusForbidden, status)

	var accepted postJSON
	status = s.do(s.asker, http.MethodPost, fmt.Sprintf("/posts/%d/answers/%d/accept", post.ID, answer.ID), "", &accepted)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("solved", accepted.Status)
	s.True(accepted.Locked)
	s.Require().NotNil(accepted.AcceptedAnswerID)
	s.Equal(answer.ID, *accepted.AcceptedAnswerID)

	status = s.do(s.moderator, http.MethodPost, fmt.Sprintf("/posts/%d/answers", post.ID), `{"body":"late"}`, &errBody)
	s.Equal(http.StatusConflict, status)
	s.Equal(qaerr.ErrThreadLocked.Error(), errBody.Error)

	var shown postJSON
	status = s.do(nil, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), "", &shown)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Len(shown.Answers, 1)
	s.True(shown.Answers[0].Accepted)

	var reopened postJSON
	status = s.do(s.asker, http.MethodPost, fmt.Sprintf("/posts/%d/unaccept", post.ID), "", &reopened)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("open", reopened.Status)
	s.False(reopened.Locked)
	s.Nil(reopened.AcceptedAnswerID)
}

func (s *APISuite) TestVoting() {
	post := s.createPost()
	path := fmt.Sprintf("/posts/%d", post.ID)

	var vote voteJSON
	s.Require().Equal(http.StatusOK, s.do(s.answerer, http.MethodPost, path+"/upvote", "", &vote))
	s.Equal("created", vote.Outcome)
	s.Equal(1, vote.Votes.Upvotes)

	s.Require().Equal(http.StatusOK, s.do(s.answerer, http.MethodPost, path+"/downvote", "", &vote))
	s.Equal("switched", vote.Outcome)
	s.Equal(0, vote.Votes.Upvotes)
	s.Equal(1, vote.Votes.Downvotes)

	s.Require().Equal(http.StatusOK, s.do(s.moderator, http.MethodPost, path+"/likes", "", &vote))
	s.Equal("created", vote.Outcome)
	s.Require().NotNil(vote.VoteType)
	s.Equal("upvote", *vote.VoteType)

	var shown postJSON
	s.Require().Equal(http.StatusOK, s.do(s.answerer, http.MethodGet, path, "", &shown))
	s.Require().NotNil(shown.Votes)
	s.Equal(1, shown.Votes.Upvotes)
	s.Equal(1, shown.Votes.Downvotes)
	s.Require().NotNil(shown.MyVote)
	s.Equal("downvote", *shown.MyVote)

	s.Require().Equal(http.StatusOK, s.do(s.answerer, http.MethodDelete, path+"/likes", "", &vote))
	s.Equal("removed", vote.Outcome)
	s.Require().Equal(http.StatusOK, s.do(s.answerer, http.MethodDelete, path+"/likes", "", &vote))
	s.Equal("absent", vote.Outcome)

	var errBody ErrorBody
	s.Equal(http.StatusUnprocessableEntity, s.do(s.answerer, http.MethodPost, path+"/likes", `{"vote_type":"sideways"}`, &errBody))
	s.Equal("vote_type", errBody.Field)
	s.Equal(http.StatusNotFound, s.do(s.answerer, http.MethodPost, "/posts/99999/upvote", "", &errBody))
}

func (s *APISuite) TestModerationFailures() {
	post := s.createPost()

	var errBody ErrorBody
	s.mod.err = &qaerr.FlaggedError{Categories: []string{"harassment"}}
	s.Equal(http.StatusUnprocessableEntity, s.do(s.answerer, http.MethodPost, fmt.Sprintf("/posts/%d/answers", post.ID), `{"body":"mean"}`, &errBody))
	s.Equal([]string{"harassment"}, errBody.Categories)

	s.mod.err = &qaerr.UnavailableError{}
	s.Equal(http.StatusServiceUnavailable, s.do(s.answerer, http.MethodPost, fmt.Sprintf("/posts/%d/answers", post.ID), `{"body":"fine"}`, &errBody))

	var shown postJSON
	s.Require().Equal(http.StatusOK, s.do(nil, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), "", &shown))
	s.Empty(shown.Answers)
}

func (s *APISuite) TestNeedsReviewPostIsHidden() {
	s.mod.needsReview = true
	post := s.createPost()
	s.True(post.NeedsReview)
	path := fmt.Sprintf("/posts/%d", post.ID)

	s.Equal(http.StatusNotFound, s.do(nil, http.MethodGet, path, "", nil))
	s.Equal(http.StatusNotFound, s.do(s.answerer, http.MethodGet, path, "", nil))

	var shown postJSON
	s.Require().Equal(http.StatusOK, s.do(s.asker, http.MethodGet, path, "", &shown))
	s.True(shown.NeedsReview)
	s.Require().Equal(http.StatusOK, s.do(s.moderator, http.MethodGet, path, "", &shown))
	s.True(shown.NeedsReview)
}

func (s *APISuite) TestEditRedactAndRevisions() {
	post := s.createPost()
	answer := s.createAnswer(post.ID, s.answerer, "first draft")
	base := fmt.Sprintf("/posts/%d/answers/%d", post.ID, answer.ID)

	var edited struct {
		answerJSON
		Revision string `json:"revision"`
	}
	s.Require().Equal(http.StatusOK, s.do(s.answerer, http.MethodPost, base+"/edit", `{"body":"second draft"}`, &edited))
	s.Equal("second draft", edited.Body)
	s.Equal("recorded", edited.Revision)

	s.Require().Equal(http.StatusOK, s.do(s.answerer, http.MethodPost, base+"/edit", `{"body":"second draft"}`, &edited))
	s.Equal("skipped", edited.Revision)

	var errBody ErrorBody
	s.Equal(http.StatusForbidden, s.do(s.asker, http.MethodPost, base+"/edit", `{"body":"hijack"}`, &errBody))
	s.Equal(http.StatusForbidden, s.do(s.asker, http.MethodGet, base+"/revisions", "", &errBody))

	var revs []revisionJSON
	s.Require().Equal(http.StatusOK, s.do(s.answerer, http.MethodGet, base+"/revisions", "", &revs))
	s.Require().Len(revs, 1)
	s.Equal("first draft", revs[0].PreviousBody)

	s.Equal(http.StatusForbidden, s.do(s.answerer, http.MethodPost, base+"/redaction", `{"redaction_state":"redacted","redacted_body":"gone"}`, &errBody))
	s.Equal(http.StatusUnprocessableEntity, s.do(s.moderator, http.MethodPost, base+"/redaction", `{"redaction_state":"redacted"}`, &errBody))
	s.Equal("redacted_body", errBody.Field)

	var redacted answerJSON
	s.Require().Equal(http.StatusOK, s.do(s.moderator, http.MethodPost, base+"/redaction", `{"redaction_state":"redacted","redacted_body":"[removed by a moderator]"}`, &redacted))
	s.Equal("redacted", redacted.RedactionState)
	s.Equal("[removed by a moderator]", redacted.Body)
	s.NotContains(redacted.BodyHTML, "second draft")

	// The answer must belong to the post in the path.
	other := s.createPost()
	s.Equal(http.StatusNotFound, s.do(s.answerer, http.MethodPost, fmt.Sprintf("/posts/%d/answers/%d/edit", other.ID, answer.ID), `{"body":"x"}`, &errBody))
}

func (s *APISuite) TestDeleteAcceptedAnswerReopens() {
	post := s.createPost()
	answer := s.createAnswer(post.ID, s.answerer, "answer")
	s.Require().Equal(http.StatusOK, s.do(s.asker, http.MethodPost, fmt.Sprintf("/posts/%d/answers/%d/accept", post.ID, answer.ID), "", nil))

	var deleted struct {
		Deleted  int  `json:"deleted"`
		Reopened bool `json:"reopened"`
	}
	s.Require().Equal(http.StatusOK, s.do(s.answerer, http.MethodPost, fmt.Sprintf("/posts/%d/answers/%d/delete", post.ID, answer.ID), "", &deleted))
	s.Equal(answer.ID, deleted.Deleted)
	s.True(deleted.Reopened)

	var shown postJSON
	s.Require().Equal(http.StatusOK, s.do(nil, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), "", &shown))
	s.Equal("open", shown.Status)
	s.Empty(shown.Answers)
}
