package threadlock

import (
	"context"
	"testing"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
	"git.campusqa.org/campusqa/campusqa/src/utils"
	"github.com/stretchr/testify/assert"
)

func openPost() *models.Post {
	return &models.Post{ID: 1, Status: models.PostStatusOpen}
}

func TestLockAndUnlock(t *testing.T) {
	post := openPost()
	assert.False(t, IsLocked(post))
	assert.Nil(t, EnsureOpen(post))

	now := time.Date(2026, 10, 3, 14, 0, 0, 0, time.FixedZone("EST", -5*60*60))
	post.AcceptedAnswerID = utils.P(7)
	ApplyLock(post, now)

	assert.True(t, IsLocked(post))
	assert.Equal(t, models.PostStatusSolved, post.Status)
	if assert.NotNil(t, post.LockedAt) {
		assert.True(t, now.Equal(*post.LockedAt))
		assert.Equal(t, time.UTC, post.LockedAt.Location())
	}
	assert.ErrorIs(t, EnsureOpen(post), qaerr.ErrThreadLocked)
	assert.True(t, Consistent(post))

	post.AcceptedAnswerID = nil
	ApplyUnlock(post)
	assert.False(t, IsLocked(post))
	assert.Equal(t, models.PostStatusOpen, post.Status)
	assert.Nil(t, post.LockedAt)
	assert.True(t, Consistent(post))
}

func TestConsistent(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		post models.Post
		want bool
	}{
		{"open", models.Post{Status: models.PostStatusOpen}, true},
		{"solved", models.Post{Status: models.PostStatusSolved, AcceptedAnswerID: utils.P(3), LockedAt: &now}, true},
		{"locked with no accepted answer", models.Post{Status: models.PostStatusSolved, LockedAt: &now}, false},
		{"accepted but open", models.Post{Status: models.PostStatusOpen, AcceptedAnswerID: utils.P(3)}, false},
		{"solved but unlocked", models.Post{Status: models.PostStatusSolved, AcceptedAnswerID: utils.P(3)}, false},
		{"open but locked", models.Post{Status: models.PostStatusOpen, LockedAt: &now}, false},
		{"unknown status", models.Post{Status: "archived"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Consistent(&c.post))
		})
	}
}

func TestSaveRefusesInconsistentPost(t *testing.T) {
	post := openPost()
	post.AcceptedAnswerID = utils.P(7)

	// nil connection: the check has to happen before any query is attempted
	err := Save(context.Background(), nil, post)
	assert.NotNil(t, err)
}
