package db

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

type testRow struct {
	ID        int        `db:"id"`
	Body      string     `db:"body"`
	LockedAt  *time.Time `db:"locked_at"`
	Derived   string     `db:"-"`
	unexposed int
}

func TestCompileQuery(t *testing.T) {
	t.Run("no placeholder", func(t *testing.T) {
		q := "SELECT id FROM post WHERE id = $1"
		assert.Equal(t, q, compileQuery(q, reflect.TypeOf(testRow{})))
	})
	t.Run("plain columns", func(t *testing.T) {
		assert.Equal(t,
			"SELECT id, body, locked_at FROM post",
			compileQuery("SELECT $columns FROM post", reflect.TypeOf(testRow{})),
		)
	})
	t.Run("prefixed columns", func(t *testing.T) {
		assert.Equal(t,
			"SELECT p.id, p.body, p.locked_at FROM post AS p",
			compileQuery("SELECT $columns{p} FROM post AS p", reflect.TypeOf(testRow{})),
		)
	})
	t.Run("non-struct destination", func(t *testing.T) {
		assert.Panics(t, func() {
			compileQuery("SELECT $columns FROM post", reflect.TypeOf(0))
		})
	})
}

func TestGetQueryName(t *testing.T) {
	name, ok := GetQueryName("\n---- Lock post\nSELECT 1")
	assert.True(t, ok)
	assert.Equal(t, "Lock post", name)

	_, ok = GetQueryName("SELECT 1")
	assert.False(t, ok)
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "post_like_post_id_user_id_key"}
	wrapped := fmt.Errorf("insert failed: %w", pgErr)

	assert.True(t, IsUniqueViolation(wrapped, ""))
	assert.True(t, IsUniqueViolation(wrapped, "post_like_post_id_user_id_key"))
	assert.False(t, IsUniqueViolation(wrapped, "thread_identity_user_id_post_id_key"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("nope"), ""))
}

func TestQueryBuilder(t *testing.T) {
	var qb QueryBuilder
	qb.Add("SELECT $columns FROM answer WHERE post_id = $?", 4)
	qb.Add("AND user_id = $? AND flagged = $?", 9, false)
	qb.Add("ORDER BY created_at")

	assert.Equal(t,
		"SELECT $columns FROM answer WHERE post_id = $1\nAND user_id = $2 AND flagged = $3\nORDER BY created_at\n",
		qb.String(),
	)
	assert.Equal(t, []interface{}{4, 9, false}, qb.Args())

	assert.Panics(t, func() {
		qb.Add("AND id = $?")
	})
}
