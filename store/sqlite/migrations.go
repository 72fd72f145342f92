package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the token ledger store (SQLite).
var Migrations = migrate.NewGroup("tokenledger")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_token_meta",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS token_meta (
    id           INTEGER PRIMARY KEY,
    snapshot_id  TEXT NOT NULL DEFAULT '',
    name         TEXT NOT NULL DEFAULT '',
    symbol       TEXT NOT NULL DEFAULT '',
    decimals     INTEGER NOT NULL DEFAULT 18,
    owner        TEXT NOT NULL DEFAULT '',
    total_supply TEXT NOT NULL DEFAULT '0',
    seq          INTEGER NOT NULL DEFAULT 0,
    taken_at     TEXT NOT NULL DEFAULT (datetime('now'))
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS token_meta`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_token_balances",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS token_balances (
    address TEXT PRIMARY KEY,
    balance TEXT NOT NULL DEFAULT '0'
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS token_balances`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_token_allowances",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS token_allowances (
    owner   TEXT NOT NULL,
    spender TEXT NOT NULL,
    value   TEXT NOT NULL DEFAULT '0',
    PRIMARY KEY (owner, spender)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS token_allowances`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_token_mint_agents",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS token_mint_agents (
    address TEXT PRIMARY KEY
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS token_mint_agents`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_token_events",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS token_events (
    id        TEXT PRIMARY KEY,
    seq       INTEGER NOT NULL,
    type      TEXT NOT NULL DEFAULT '',
    from_addr TEXT NOT NULL DEFAULT '',
    to_addr   TEXT NOT NULL DEFAULT '',
    value     TEXT NOT NULL DEFAULT '0',
    enabled   INTEGER NOT NULL DEFAULT 0,
    timestamp TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_token_events_seq ON token_events (seq);
CREATE INDEX IF NOT EXISTS idx_token_events_type ON token_events (type, seq);
CREATE INDEX IF NOT EXISTS idx_token_events_from ON token_events (from_addr, seq);
CREATE INDEX IF NOT EXISTS idx_token_events_to ON token_events (to_addr, seq);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS token_events`)
				return err
			},
		},
	)
}
