package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the verdict store (SQLite).
var Migrations = migrate.NewGroup("verdict")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_decisions",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS verdict_decisions (
    id              TEXT PRIMARY KEY,
    policy          TEXT NOT NULL,
    rule            TEXT NOT NULL,
    namespace       TEXT NOT NULL DEFAULT '',
    value           INTEGER NOT NULL DEFAULT 0,
    actor           TEXT NOT NULL DEFAULT '',
    target_type     TEXT NOT NULL DEFAULT '',
    reasons         TEXT NOT NULL DEFAULT '{}',
    eval_time_ns    INTEGER NOT NULL DEFAULT 0,
    created_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_verdict_decisions_policy ON verdict_decisions (policy, rule);
CREATE INDEX IF NOT EXISTS idx_verdict_decisions_created ON verdict_decisions (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS verdict_decisions`)
				return err
			},
		},
	)
}
