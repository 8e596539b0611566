// Package postgres stores reference sapwood datasets in PostgreSQL so
// labs can manage their own regional tables alongside the built-in
// catalog.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
	"fellingdate/ports"
)

// ReferenceRepositoryImpl implements ports.ReferenceSource for PostgreSQL
type ReferenceRepositoryImpl struct {
	db *sqlx.DB
}

// NewReferenceRepository creates a new PostgreSQL reference dataset repository
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepositoryImpl {
	return &ReferenceRepositoryImpl{db: db}
}

// EnsureSchema creates the reference tables when they do not exist yet
func (r *ReferenceRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ref_datasets (
			name   TEXT PRIMARY KEY,
			region TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS ref_sapwood_counts (
			dataset   TEXT    NOT NULL REFERENCES ref_datasets(name) ON DELETE CASCADE,
			n_sapwood INTEGER NOT NULL CHECK (n_sapwood >= 1),
			count     INTEGER NOT NULL CHECK (count >= 0),
			PRIMARY KEY (dataset, n_sapwood)
		);
	`)
	return err
}

// List enumerates stored datasets with their total observation counts
func (r *ReferenceRepositoryImpl) List(ctx context.Context) ([]ports.DatasetInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.name, d.region, COALESCE(SUM(c.count), 0)
		FROM ref_datasets d
		LEFT JOIN ref_sapwood_counts c ON c.dataset = d.name
		GROUP BY d.name, d.region
		ORDER BY d.name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []ports.DatasetInfo
	for rows.Next() {
		var info ports.DatasetInfo
		if err := rows.Scan(&info.Name, &info.Region, &info.Observations); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Histogram loads one stored dataset by name
func (r *ReferenceRepositoryImpl) Histogram(ctx context.Context, name string) (dendro.ReferenceHistogram, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM ref_datasets WHERE name = $1)`, name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return dendro.ReferenceHistogram{}, err
	}
	if !exists {
		return dendro.ReferenceHistogram{}, core.NewUnknownReferenceDatasetError(name)
	}

	var bins []dendro.HistogramBin
	err = r.db.SelectContext(ctx, &bins, `
		SELECT n_sapwood, count
		FROM ref_sapwood_counts
		WHERE dataset = $1
		ORDER BY n_sapwood ASC
	`, name)
	if err != nil {
		return dendro.ReferenceHistogram{}, err
	}
	return dendro.NewReferenceHistogram(bins)
}

// Save stores or replaces a dataset and its histogram atomically
func (r *ReferenceRepositoryImpl) Save(ctx context.Context, name, region string, hist dendro.ReferenceHistogram) error {
	if hist.IsEmpty() {
		return core.ErrEmptyReferenceData
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ref_datasets (name, region) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET region = EXCLUDED.region
	`, name, region)
	if err != nil {
		return fmt.Errorf("saving dataset %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ref_sapwood_counts WHERE dataset = $1`, name); err != nil {
		return err
	}
	for _, b := range hist.Bins() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ref_sapwood_counts (dataset, n_sapwood, count) VALUES ($1, $2, $3)
		`, name, b.NSapwood, b.Count)
		if err != nil {
			return fmt.Errorf("saving dataset %s bin %d: %w", name, b.NSapwood, err)
		}
	}
	return tx.Commit()
}

// Delete removes a stored dataset
func (r *ReferenceRepositoryImpl) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ref_datasets WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NewUnknownReferenceDatasetError(name)
	}
	return nil
}
