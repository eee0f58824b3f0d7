/*
This package contains lowish-level APIs for making database queries to the forum's Postgres database. It maps query results onto Go structs while letting you write arbitrary SQL.

Query syntax

Arguments can be provided using placeholders like $1, $2, etc. All arguments will be safely escaped and mapped from their Go type to the correct Postgres type. (This is a direct proxy to pgx.)

	answerIDs, err := db.QueryScalar[int](ctx, conn,
		`
		SELECT id
		FROM answer
		WHERE post_id = ANY($1)
		`,
		[]int{4, 8},
	)

(If you want to use a slice in your query, use Postgres arrays instead of IN.)

To query multiple columns at once, use a struct type with `db:"column_name"` tags and the special $columns placeholder:

	type Like struct {
		ID       int      `db:"id"`
		PostID   int      `db:"post_id"`
		VoteType VoteType `db:"vote_type"`
	}
	likes, err := db.Query[Like](ctx, conn, `SELECT $columns FROM post_like`)
	// Resulting query:
	// SELECT id, post_id, vote_type FROM post_like

When a JOIN makes column names ambiguous, include a table prefix like $columns{prefix}:

	answers, err := db.Query[models.Answer](ctx, conn, `
		SELECT $columns{a}
		FROM answer AS a JOIN post AS p ON p.id = a.post_id
		WHERE p.author_id = $1
	`, userID)
	// Resulting query:
	// SELECT a.id, a.post_id, ... FROM ...

Every struct field without a `db:"-"` tag must be present in the result set.

Queries can be given a name for metrics with a leading comment line:

	---- Count votes
	SELECT COUNT(*) FROM post_like WHERE post_id = $1
*/
package db
