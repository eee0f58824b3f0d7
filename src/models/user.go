package models

import (
	"strings"
	"time"
)

type User struct {
	ID    int    `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`

	IsModerator bool `db:"is_moderator"`

	CreatedAt time.Time `db:"created_at"`
}

func (u *User) BestName() string {
	if u.Name != "" {
		return u.Name
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}
