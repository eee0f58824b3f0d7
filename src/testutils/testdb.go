// Package testutils sets up throwaway databases for tests that need Postgres.
// Tests using it are skipped unless CAMPUSQA_TEST_DB holds a connection string.
package testutils

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"testing"

	"git.campusqa.org/campusqa/campusqa/src/migration/migrations"
	"git.campusqa.org/campusqa/campusqa/src/migration/types"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const TestDBEnv = "CAMPUSQA_TEST_DB"

/*
Connects to the test database and migrates a fresh schema to the latest
version. The schema is dropped when the test finishes.
*/
func OpenDB(t testing.TB) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(TestDBEnv)
	if dsn == "" {
		t.Skipf("%s is not set", TestDBEnv)
	}

	ctx := context.Background()
	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema))
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_, err := admin.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
		if err != nil {
			t.Logf("failed to drop test schema %s: %v", schema, err)
		}
		admin.Close(context.Background())
	})

	migrate(t, pool)
	return pool
}

func migrate(t testing.TB, pool *pgxpool.Pool) {
	t.Helper()

	var versions []types.MigrationVersion
	for v := range migrations.All {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Before(versions[j])
	})

	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	for _, v := range versions {
		require.NoError(t, migrations.All[v].Up(ctx, tx), "migration %s", v)
	}
	require.NoError(t, tx.Commit(ctx))
}

func CreateUser(t testing.TB, conn *pgxpool.Pool, email string, moderator bool) *models.User {
	t.Helper()
	var user models.User
	err := conn.QueryRow(context.Background(),
		`
		INSERT INTO qa_user (email, name, is_moderator)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, is_moderator, created_at
		`,
		strings.ToLower(email), strings.Split(email, "@")[0], moderator,
	).Scan(&user.ID, &user.Email, &user.Name, &user.IsModerator, &user.CreatedAt)
	require.NoError(t, err)
	return &user
}

func CreatePost(t testing.TB, conn *pgxpool.Pool, authorID int) *models.Post {
	t.Helper()
	post := models.Post{AuthorID: authorID, Title: "How do I read a file?", Body: "I tried os.Open."}
	err := conn.QueryRow(context.Background(),
		`
		INSERT INTO post (author_id, title, body)
		VALUES ($1, $2, $3)
		RETURNING id, status, created_at
		`,
		post.AuthorID, post.Title, post.Body,
	).Scan(&post.ID, &post.Status, &post.CreatedAt)
	require.NoError(t, err)
	return &post
}

func CreateAnswer(t testing.TB, conn *pgxpool.Pool, postID, userID int, body string) *models.Answer {
	t.Helper()
	answer := models.Answer{PostID: postID, UserID: userID, Body: body}
	err := conn.QueryRow(context.Background(),
		`
		INSERT INTO answer (post_id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, redaction_state, flagged, created_at, updated_at
		`,
		postID, userID, body,
	).Scan(&answer.ID, &answer.RedactionState, &answer.Flagged, &answer.CreatedAt, &answer.UpdatedAt)
	require.NoError(t, err)
	return &answer
}
