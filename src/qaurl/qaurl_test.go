package qaurl

import (
	"net/url"
	"regexp"
	"testing"

	"git.campusqa.org/campusqa/campusqa/src/config"
	"github.com/stretchr/testify/assert"
)

func TestUrl(t *testing.T) {
	defer SetGlobalBaseUrl(config.Config.BaseUrl)
	SetGlobalBaseUrl("http://campusqa.test/")

	t.Run("no query", func(t *testing.T) {
		assert.Equal(t, "http://campusqa.test/posts/3", Url("/posts/3", nil))
	})
	t.Run("yes query", func(t *testing.T) {
		result := Url("posts", []Q{{"sort", "new"}, {"q&a", "why?"}})
		assert.Equal(t, "http://campusqa.test/posts?q%26a=why%3F&sort=new", result)
	})
}

func TestPosts(t *testing.T) {
	AssertRegexMatch(t, BuildPostCreate(), RegexPostCreate, nil)
	AssertRegexMatch(t, BuildPost(12), RegexPost, map[string]string{"postid": "12"})
	AssertRegexMatch(t, BuildPostUpvote(12), RegexPostUpvote, map[string]string{"postid": "12"})
	AssertRegexMatch(t, BuildPostDownvote(12), RegexPostDownvote, map[string]string{"postid": "12"})
	AssertRegexMatch(t, BuildPostLikes(12), RegexPostLikes, map[string]string{"postid": "12"})
	AssertRegexMatch(t, BuildPostUnaccept(12), RegexPostUnaccept, map[string]string{"postid": "12"})
	AssertNoRegexMatch(t, "/posts/abc", RegexPost)
	AssertNoRegexMatch(t, "/posts/12/upvote", RegexPost)
}

func TestAnswers(t *testing.T) {
	params := map[string]string{"postid": "4", "answerid": "9"}
	AssertRegexMatch(t, BuildAnswerCreate(4), RegexAnswerCreate, map[string]string{"postid": "4"})
	AssertRegexMatch(t, BuildAnswerEdit(4, 9), RegexAnswerEdit, copyParams(params))
	AssertRegexMatch(t, BuildAnswerDelete(4, 9), RegexAnswerDelete, copyParams(params))
	AssertRegexMatch(t, BuildAnswerAccept(4, 9), RegexAnswerAccept, copyParams(params))
	AssertRegexMatch(t, BuildAnswerRedaction(4, 9), RegexAnswerRedaction, copyParams(params))
	AssertRegexMatch(t, BuildAnswerRevisions(4, 9), RegexAnswerRevisions, copyParams(params))
}

func copyParams(p map[string]string) map[string]string {
	res := make(map[string]string, len(p))
	for k, v := range p {
		res[k] = v
	}
	return res
}

func AssertRegexMatch(t *testing.T, fullUrl string, regex *regexp.Regexp, paramsToVerify map[string]string) {
	t.Helper()

	parsed, err := url.Parse(fullUrl)
	if !assert.Nilf(t, err, "Full url could not be parsed: %s", fullUrl) {
		return
	}

	requestPath := parsed.Path
	if len(requestPath) == 0 {
		requestPath = "/"
	}
	match := regex.FindStringSubmatch(requestPath)
	if !assert.NotNilf(t, match, "Url did not match regex: [%s] vs [%s]", requestPath, regex.String()) {
		return
	}

	for i, name := range regex.SubexpNames() {
		expected, ok := paramsToVerify[name]
		if ok {
			assert.Equalf(t, expected, match[i], "Param mismatch for [%s]", name)
			delete(paramsToVerify, name)
		}
	}
	assert.Empty(t, paramsToVerify, "Expected match groups not found")
}

func AssertNoRegexMatch(t *testing.T, path string, regex *regexp.Regexp) {
	t.Helper()
	assert.Nilf(t, regex.FindStringSubmatch(path), "Url should not have matched: [%s] vs [%s]", path, regex.String())
}
