package qaurl

import (
	"fmt"
	"regexp"
)

var RegexPostCreate = regexp.MustCompile(`^/posts$`)

func BuildPostCreate() string {
	return Url("/posts", nil)
}

var RegexPost = regexp.MustCompile(`^/posts/(?P<postid>\d+)$`)

func BuildPost(postID int) string {
	return Url(fmt.Sprintf("/posts/%d", postID), nil)
}

var RegexPostUpvote = regexp.MustCompile(`^/posts/(?P<postid>\d+)/upvote$`)

func BuildPostUpvote(postID int) string {
	return Url(fmt.Sprintf("/posts/%d/upvote", postID), nil)
}

var RegexPostDownvote = regexp.MustCompile(`^/posts/(?P<postid>\d+)/downvote$`)

func BuildPostDownvote(postID int) string {
	return Url(fmt.Sprintf("/posts/%d/downvote", postID), nil)
}

var RegexPostLikes = regexp.MustCompile(`^/posts/(?P<postid>\d+)/likes$`)

func BuildPostLikes(postID int) string {
	return Url(fmt.Sprintf("/posts/%d/likes", postID), nil)
}

var RegexPostUnaccept = regexp.MustCompile(`^/posts/(?P<postid>\d+)/unaccept$`)

func BuildPostUnaccept(postID int) string {
	return Url(fmt.Sprintf("/posts/%d/unaccept", postID), nil)
}

var RegexAnswerCreate = regexp.MustCompile(`^/posts/(?P<postid>\d+)/answers$`)

func BuildAnswerCreate(postID int) string {
	return Url(fmt.Sprintf("/posts/%d/answers", postID), nil)
}

var RegexAnswerEdit = regexp.MustCompile(`^/posts/(?P<postid>\d+)/answers/(?P<answerid>\d+)/edit$`)

func BuildAnswerEdit(postID, answerID int) string {
	return Url(fmt.Sprintf("/posts/%d/answers/%d/edit", postID, answerID), nil)
}

var RegexAnswerDelete = regexp.MustCompile(`^/posts/(?P<postid>\d+)/answers/(?P<answerid>\d+)/delete$`)

func BuildAnswerDelete(postID, answerID int) string {
	return Url(fmt.Sprintf("/posts/%d/answers/%d/delete", postID, answerID), nil)
}

var RegexAnswerAccept = regexp.MustCompile(`^/posts/(?P<postid>\d+)/answers/(?P<answerid>\d+)/accept$`)

func BuildAnswerAccept(postID, answerID int) string {
	return Url(fmt.Sprintf("/posts/%d/answers/%d/accept", postID, answerID), nil)
}

var RegexAnswerRedaction = regexp.MustCompile(`^/posts/(?P<postid>\d+)/answers/(?P<answerid>\d+)/redaction$`)

func BuildAnswerRedaction(postID, answerID int) string {
	return Url(fmt.Sprintf("/posts/%d/answers/%d/redaction", postID, answerID), nil)
}

var RegexAnswerRevisions = regexp.MustCompile(`^/posts/(?P<postid>\d+)/answers/(?P<answerid>\d+)/revisions$`)

func BuildAnswerRevisions(postID, answerID int) string {
	return Url(fmt.Sprintf("/posts/%d/answers/%d/revisions", postID, answerID), nil)
}

var RegexCatchAll = regexp.MustCompile(`^`)
