package auth

import (
	"context"
	"testing"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/config"
	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPolicy(t *testing.T) {
	p := NewLoginPolicy(config.AuthConfig{
		CampusDomains:      []string{"columbia.edu", "@Barnard.edu"},
		AllowedLoginEmails: config.ParseEmailList(" Visitor@Gmail.com, ,"),
	})

	assert.True(t, p.Allows("ab1234@columbia.edu"))
	assert.True(t, p.Allows("AB1234@COLUMBIA.EDU"))
	assert.True(t, p.Allows("someone@barnard.edu"))
	assert.True(t, p.Allows("visitor@gmail.com"))

	assert.False(t, p.Allows("other@gmail.com"))
	assert.False(t, p.Allows("someone@evilcolumbia.edu"))
	assert.False(t, p.Allows("someone@columbia.edu.evil.com"))
	assert.False(t, p.Allows("@columbia.edu"))
	assert.False(t, p.Allows("columbia.edu"))
	assert.False(t, p.Allows(""))
}

func TestSessionCookie(t *testing.T) {
	c := NewSessionCookie(&sessionFixture)
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, sessionFixture.ID, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, -1, DeleteSessionCookie.MaxAge)
}

func TestSessionsAndUsers(t *testing.T) {
	conn := testutils.OpenDB(t)
	ctx := context.Background()

	user, err := UpsertUser(ctx, conn, " Student@Columbia.edu ", "Stu")
	require.NoError(t, err)
	assert.Equal(t, "student@columbia.edu", user.Email)

	again, err := UpsertUser(ctx, conn, "student@columbia.edu", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "Stu", again.Name)

	require.NoError(t, SetModerator(ctx, conn, user.ID, true))
	byEmail, err := GetUserByEmail(ctx, conn, "STUDENT@columbia.edu")
	require.NoError(t, err)
	assert.True(t, byEmail.IsModerator)

	_, err = GetUserByEmail(ctx, conn, "nobody@columbia.edu")
	assert.ErrorIs(t, err, db.NotFound)

	sess, err := CreateSession(ctx, conn, user.ID)
	require.NoError(t, err)
	got, err := GetSession(ctx, conn, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	_, err = conn.Exec(ctx, `UPDATE session SET expires_at = $2 WHERE id = $1`, sess.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = GetSession(ctx, conn, sess.ID)
	assert.ErrorIs(t, err, ErrNoSession)

	n, err := DeleteExpiredSessions(ctx, conn)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, DeleteSession(ctx, conn, "already-gone"))
}

var sessionFixture = models.Session{
	ID:        "3b0c3c8e-52b3-4d4e-9a57-2f1f3c1c7f10",
	UserID:    1,
	ExpiresAt: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
}
