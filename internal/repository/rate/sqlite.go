// Package rate persists decoded dataset rows in sqlite so the service can
// come up from a local cache when every remote dataset source is unreachable.
package rate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	domain "github.com/ahmethakanbesel/currency-api/internal/rate"
)

const dateFormat = "2006-01-02"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type entry struct {
	currency string
	date     string
	rate     sql.NullFloat64
}

// SaveRows persists dataset rows, replacing any existing entry for the same
// (currency, date). Missing rates are stored as SQL NULL so the sentinel
// survives a cache round trip.
func (r *Repository) SaveRows(ctx context.Context, rows []domain.Row) (int64, error) {
	var entries []entry
	for _, row := range rows {
		date := row.Date.Format(dateFormat)
		for code, v := range row.Rates {
			e := entry{currency: code, date: date}
			if v.Known {
				e.rate = sql.NullFloat64{Float64: v.Rate, Valid: true}
			}
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return 0, nil
	}

	const batchSize = 500
	var total int64

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[i:end]

		placeholders := make([]string, len(batch))
		args := make([]any, 0, len(batch)*3)
		for j, e := range batch {
			placeholders[j] = "(?, ?, ?)"
			args = append(args, e.currency, e.date, e.rate)
		}

		query := fmt.Sprintf( //nolint:gosec // placeholders are not user input
			"INSERT OR REPLACE INTO rates (currency, date, rate) VALUES %s",
			strings.Join(placeholders, ", "),
		)

		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("save rows: %w", err)
		}

		n, _ := res.RowsAffected()
		total += n
	}

	return total, nil
}

// LoadRows reconstructs the cached dataset as one row per date, ascending.
func (r *Repository) LoadRows(ctx context.Context) ([]domain.Row, error) {
	const query = `SELECT currency, date, rate FROM rates ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Row
	var curDate string
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.currency, &e.date, &e.rate); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if e.date != curDate {
			d, err := time.Parse(dateFormat, e.date)
			if err != nil {
				return nil, fmt.Errorf("parse cached date %q: %w", e.date, err)
			}
			out = append(out, domain.Row{Date: d, Rates: make(map[string]domain.Value)})
			curDate = e.date
		}
		v := domain.MissingValue()
		if e.rate.Valid {
			v = domain.KnownValue(e.rate.Float64)
		}
		out[len(out)-1].Rates[e.currency] = v
	}

	return out, rows.Err()
}

// Clear drops every cached row.
func (r *Repository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM rates"); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}
	return nil
}
