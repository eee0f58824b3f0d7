package migrations

import (
	"context"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AddPostFlagged{})
}

type AddPostFlagged struct{}

func (m AddPostFlagged) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2026, 10, 14, 8, 12, 0, 0, time.UTC))
}

func (m AddPostFlagged) Name() string {
	return "AddPostFlagged"
}

func (m AddPostFlagged) Description() string {
	return "Hold posts the classifier wants reviewed, like answers"
}

func (m AddPostFlagged) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE post ADD COLUMN flagged BOOLEAN NOT NULL DEFAULT FALSE;
	`)
	return err
}

func (m AddPostFlagged) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE post DROP COLUMN flagged;
	`)
	return err
}
