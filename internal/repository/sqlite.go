package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomasvik/trails-backend-go/internal/models"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx, so the
// same repository code serves both direct and transaction-scoped access.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SQLiteStore is the production Store over a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	q  DBTX
}

// NewSQLiteStore creates a store over an opened database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, q: db}
}

// Samples returns the sample repository.
func (s *SQLiteStore) Samples() SampleRepository { return &sqliteSampleRepo{q: s.q} }

// Visits returns the visit repository.
func (s *SQLiteStore) Visits() VisitRepository { return &sqliteVisitRepo{q: s.q} }

// Segments returns the segment repository.
func (s *SQLiteStore) Segments() SegmentRepository { return &sqliteSegmentRepo{q: s.q} }

// Trips returns the trip repository.
func (s *SQLiteStore) Trips() TripRepository { return &sqliteTripRepo{q: s.q} }

// GeocodeCache returns the geocode cache repository.
func (s *SQLiteStore) GeocodeCache() GeocodeCacheRepository { return &sqliteGeocodeRepo{q: s.q} }

// WithTx runs fn against a transaction-scoped store. The transaction is kept
// short and never spans network calls; it commits only when fn returns nil.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		// Already inside a transaction; SQLite does not nest them.
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(&SQLiteStore{db: s.db, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}

// storeErr wraps a driver failure into the ErrStorage taxonomy while keeping
// the operation visible.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %v", models.ErrStorage, op, err)
}
