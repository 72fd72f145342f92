package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	tokenledger "github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/state"
	tlstore "github.com/xraph/tokenledger/store"
)

// Collection name constants.
const (
	colSnapshots = "token_snapshots"
	colEvents    = "token_events"
)

// compile-time interface check
var _ tlstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for the ledger collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("tokenledger/mongo: migrate %s indexes: %w", col, err)
		}
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
	var m snapshotModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": currentSnapshotID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tokenledger.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("tokenledger/mongo: load snapshot: %w", err)
	}
	return fromSnapshotModel(&m)
}

func (s *Store) SaveSnapshot(ctx context.Context, snap *state.Snapshot) error {
	m := toSnapshotModel(snap)

	// Whole-document replace keyed on the fixed _id.
	_, err := s.mdb.NewDelete((*snapshotModel)(nil)).
		Filter(bson.M{"_id": currentSnapshotID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tokenledger/mongo: clear snapshot: %w", err)
	}

	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("tokenledger/mongo: save snapshot: %w", err)
	}
	return nil
}

// ==================== Event Journal ====================

// AppendEvents persists a batch. On a partial failure the already written
// prefix is rolled back by sequence number, keeping the batch atomic.
func (s *Store) AppendEvents(ctx context.Context, events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}

	for i, e := range events {
		if _, err := s.mdb.NewInsert(toEventModel(e)).Exec(ctx); err != nil {
			if i > 0 {
				// best-effort rollback of the written prefix
				_, _ = s.mdb.NewDelete((*eventModel)(nil)).
					Filter(bson.M{"seq": bson.M{"$gte": events[0].Seq}}).
					Exec(ctx)
			}
			return fmt.Errorf("tokenledger/mongo: append events: %w", err)
		}
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, opts event.QueryOpts) ([]*event.Event, error) {
	var models []eventModel

	filter := bson.M{}
	if opts.Type != "" {
		filter["type"] = string(opts.Type)
	}
	if opts.Address != (common.Address{}) {
		hex := opts.Address.Hex()
		filter["$or"] = []bson.M{
			{"from_addr": hex},
			{"to_addr": hex},
		}
	}
	if opts.AfterSeq > 0 {
		filter["seq"] = bson.M{"$gt": opts.AfterSeq}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "seq", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		if isNoDocuments(err) {
			return []*event.Event{}, nil
		}
		return nil, fmt.Errorf("tokenledger/mongo: list events: %w", err)
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
	res, err := s.mdb.NewDelete((*eventModel)(nil)).
		Filter(bson.M{"seq": bson.M{"$lt": beforeSeq}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("tokenledger/mongo: purge events: %w", err)
	}
	return res.DeletedCount(), nil
}

// ==================== Helpers ====================

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for the ledger collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colSnapshots: {},
		colEvents: {
			{
				Keys:    bson.D{{Key: "seq", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "seq", Value: 1}}},
			{Keys: bson.D{{Key: "from_addr", Value: 1}, {Key: "seq", Value: 1}}},
			{Keys: bson.D{{Key: "to_addr", Value: 1}, {Key: "seq", Value: 1}}},
		},
	}
}
