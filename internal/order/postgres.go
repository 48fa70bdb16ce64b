package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps order records in the pdf_order table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore on the given connection pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get fetches the order for one category.
func (s *PostgresStore) Get(ctx context.Context, category string) ([]string, bool, error) {
	var files []string
	err := s.db.QueryRow(ctx,
		`SELECT file_order FROM pdf_order WHERE category = $1`,
		category,
	).Scan(&files)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: select order %q: %w", ErrStore, category, err)
	}
	return clone(files), true, nil
}

// All fetches every order record.
func (s *PostgresStore) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx, `SELECT category, file_order FROM pdf_order ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("%w: select orders: %w", ErrStore, err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var r Record
		err := row.Scan(&r.Category, &r.FileOrder)
		r.FileOrder = clone(r.FileOrder)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan orders: %w", ErrStore, err)
	}
	return records, nil
}

// Update overwrites the order for a category, creating the row if needed.
func (s *PostgresStore) Update(ctx context.Context, category string, fileOrder []string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO pdf_order (category, file_order, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (category)
		 DO UPDATE SET file_order = EXCLUDED.file_order, updated_at = NOW()`,
		category, clone(fileOrder),
	)
	if err != nil {
		return fmt.Errorf("%w: update order %q: %w", ErrStore, category, err)
	}
	return nil
}
