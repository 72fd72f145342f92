package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	tokenledger "github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/state"
	tlstore "github.com/xraph/tokenledger/store"
)

// compile-time interface check
var _ tlstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("tokenledger/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("tokenledger/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Snapshot Store ====================

func (s *Store) LoadSnapshot(ctx context.Context) (*state.Snapshot, error) {
	meta := new(metaModel)
	err := s.pg.NewSelect(meta).
		Where("id = $1", 1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tokenledger.ErrSnapshotNotFound
		}
		return nil, err
	}

	var balances []balanceModel
	if err := s.pg.NewSelect(&balances).Scan(ctx); err != nil && !isNoRows(err) {
		return nil, err
	}

	var allowances []allowanceModel
	if err := s.pg.NewSelect(&allowances).Scan(ctx); err != nil && !isNoRows(err) {
		return nil, err
	}

	var agents []mintAgentModel
	if err := s.pg.NewSelect(&agents).Scan(ctx); err != nil && !isNoRows(err) {
		return nil, err
	}

	return fromSnapshotModels(meta, balances, allowances, agents)
}

// SaveSnapshot replaces the persisted state wholesale. The event journal
// is the source of truth; a snapshot torn by a crash mid-save is repaired
// by the next successful SaveSnapshot.
func (s *Store) SaveSnapshot(ctx context.Context, snap *state.Snapshot) error {
	meta, balances, allowances, agents := toSnapshotModels(snap)

	if _, err := s.pg.NewDelete((*balanceModel)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		return err
	}
	if _, err := s.pg.NewDelete((*allowanceModel)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		return err
	}
	if _, err := s.pg.NewDelete((*mintAgentModel)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		return err
	}

	for i := range balances {
		if _, err := s.pg.NewInsert(&balances[i]).Exec(ctx); err != nil {
			return err
		}
	}
	for i := range allowances {
		if _, err := s.pg.NewInsert(&allowances[i]).Exec(ctx); err != nil {
			return err
		}
	}
	for i := range agents {
		if _, err := s.pg.NewInsert(&agents[i]).Exec(ctx); err != nil {
			return err
		}
	}

	_, err := s.pg.NewInsert(meta).
		OnConflict("(id) DO UPDATE").
		Set("snapshot_id = EXCLUDED.snapshot_id").
		Set("name = EXCLUDED.name").
		Set("symbol = EXCLUDED.symbol").
		Set("decimals = EXCLUDED.decimals").
		Set("owner = EXCLUDED.owner").
		Set("total_supply = EXCLUDED.total_supply").
		Set("seq = EXCLUDED.seq").
		Set("taken_at = EXCLUDED.taken_at").
		Exec(ctx)
	return err
}

// ==================== Event Journal ====================

// AppendEvents persists a batch. On a partial failure the already written
// prefix is rolled back by sequence number, keeping the batch atomic.
func (s *Store) AppendEvents(ctx context.Context, events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}

	for i, e := range events {
		if _, err := s.pg.NewInsert(toEventModel(e)).Exec(ctx); err != nil {
			if i > 0 {
				// best-effort rollback of the written prefix
				_, _ = s.pg.NewDelete((*eventModel)(nil)).
					Where("seq >= $1", events[0].Seq).
					Exec(ctx)
			}
			return err
		}
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, opts event.QueryOpts) ([]*event.Event, error) {
	var models []eventModel
	q := s.pg.NewSelect(&models)

	arg := 0
	next := func() int { arg++; return arg }

	if opts.Type != "" {
		q = q.Where(fmt.Sprintf("type = $%d", next()), string(opts.Type))
	}
	if opts.Address != (common.Address{}) {
		a := next()
		b := next()
		q = q.Where(fmt.Sprintf("(from_addr = $%d OR to_addr = $%d)", a, b), opts.Address.Hex(), opts.Address.Hex())
	}
	if opts.AfterSeq > 0 {
		q = q.Where(fmt.Sprintf("seq > $%d", next()), opts.AfterSeq)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("seq ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*event.Event, len(models))
	for i := range models {
		e, err := fromEventModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

func (s *Store) PurgeEvents(ctx context.Context, beforeSeq uint64) (int64, error) {
	res, err := s.pg.NewDelete((*eventModel)(nil)).
		Where("seq < $1", beforeSeq).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ==================== Helpers ====================

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
