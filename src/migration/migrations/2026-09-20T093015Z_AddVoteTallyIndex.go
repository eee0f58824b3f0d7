package migrations

import (
	"context"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AddVoteTallyIndex{})
}

type AddVoteTallyIndex struct{}

func (m AddVoteTallyIndex) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2026, 9, 20, 9, 30, 15, 0, time.UTC))
}

func (m AddVoteTallyIndex) Name() string {
	return "AddVoteTallyIndex"
}

func (m AddVoteTallyIndex) Description() string {
	return "Index likes by post and direction for live vote counts, and expired sessions for cleanup"
}

func (m AddVoteTallyIndex) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE INDEX post_like_post_id_vote_type ON post_like (post_id, vote_type);
		CREATE INDEX session_expires_at ON session (expires_at);
	`)
	return err
}

func (m AddVoteTallyIndex) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP INDEX session_expires_at;
		DROP INDEX post_like_post_id_vote_type;
	`)
	return err
}
