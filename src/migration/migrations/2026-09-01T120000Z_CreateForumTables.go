package migrations

import (
	"context"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(CreateForumTables{})
}

type CreateForumTables struct{}

func (m CreateForumTables) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
}

func (m CreateForumTables) Name() string {
	return "CreateForumTables"
}

func (m CreateForumTables) Description() string {
	return "Creates users, sessions, posts, answers, revisions, likes, and thread identities"
}

func (m CreateForumTables) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE TABLE qa_user (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			is_moderator BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CONSTRAINT qa_user_email_lowercase CHECK (email = LOWER(email))
		);
		CREATE UNIQUE INDEX qa_user_email_key ON qa_user (email);

		CREATE TABLE session (
			id VARCHAR(40) PRIMARY KEY,
			user_id INT NOT NULL REFERENCES qa_user (id) ON DELETE CASCADE,
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE TABLE post (
			id SERIAL PRIMARY KEY,
			author_id INT NOT NULL REFERENCES qa_user (id),
			title VARCHAR(255) NOT NULL,
			body TEXT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'open',
			locked_at TIMESTAMP WITH TIME ZONE,
			accepted_answer_id INT,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CONSTRAINT post_acceptance_consistent CHECK (
				(status = 'open' AND accepted_answer_id IS NULL AND locked_at IS NULL)
				OR (status = 'solved' AND accepted_answer_id IS NOT NULL AND locked_at IS NOT NULL)
			)
		);

		CREATE TABLE answer (
			id SERIAL PRIMARY KEY,
			post_id INT NOT NULL REFERENCES post (id) ON DELETE CASCADE,
			user_id INT NOT NULL REFERENCES qa_user (id),
			body TEXT NOT NULL,
			redaction_state VARCHAR(16) NOT NULL DEFAULT 'visible',
			redacted_body TEXT,
			flagged BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CONSTRAINT answer_body_present CHECK (body <> ''),
			CONSTRAINT answer_redaction_state_valid CHECK (redaction_state IN ('visible', 'redacted')),
			CONSTRAINT answer_redacted_body_present CHECK (
				redaction_state <> 'redacted' OR (redacted_body IS NOT NULL AND redacted_body <> '')
			),
			UNIQUE (id, post_id)
		);
		CREATE INDEX answer_post_id ON answer (post_id);

		-- The accepted answer must be an answer on this same post. No ON DELETE
		-- action: the accepted answer can only be deleted once the post has been
		-- reopened.
		ALTER TABLE post
			ADD CONSTRAINT post_accepted_answer_fkey
			FOREIGN KEY (accepted_answer_id, id) REFERENCES answer (id, post_id);

		CREATE TABLE answer_revision (
			id SERIAL PRIMARY KEY,
			answer_id INT NOT NULL REFERENCES answer (id) ON DELETE CASCADE,
			editor_id INT NOT NULL REFERENCES qa_user (id),
			previous_body TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
		CREATE INDEX answer_revision_answer_id ON answer_revision (answer_id);

		CREATE TABLE post_like (
			id SERIAL PRIMARY KEY,
			post_id INT NOT NULL REFERENCES post (id) ON DELETE CASCADE,
			user_id INT NOT NULL REFERENCES qa_user (id) ON DELETE CASCADE,
			vote_type VARCHAR(16) NOT NULL DEFAULT 'upvote',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CONSTRAINT post_like_vote_type_valid CHECK (vote_type IN ('upvote', 'downvote')),
			CONSTRAINT post_like_post_id_user_id_key UNIQUE (post_id, user_id)
		);

		CREATE TABLE thread_identity (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES qa_user (id) ON DELETE CASCADE,
			post_id INT NOT NULL REFERENCES post (id) ON DELETE CASCADE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CONSTRAINT thread_identity_user_id_post_id_key UNIQUE (user_id, post_id)
		);
	`)
	return err
}

func (m CreateForumTables) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE post DROP CONSTRAINT post_accepted_answer_fkey;
		DROP TABLE thread_identity;
		DROP TABLE post_like;
		DROP TABLE answer_revision;
		DROP TABLE answer;
		DROP TABLE post;
		DROP TABLE session;
		DROP TABLE qa_user;
	`)
	return err
}
