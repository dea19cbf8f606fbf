package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tvgw-tennis/winterplan-api/internal/models"
)

// PlanRepository provides persistence for plan rows.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository creates a new plan repository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// ListAll returns every plan row ordered by date and slot code.
func (r *PlanRepository) ListAll(ctx context.Context) ([]models.PlanRow, error) {
	const query = `SELECT id, match_date, weekday, slot_code, match_type, players, created_at FROM plan_rows ORDER BY match_date ASC, slot_code ASC`
	var rows []models.PlanRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list plan rows: %w", err)
	}
	return rows, nil
}

// ListBetween returns plan rows within an inclusive date range.
func (r *PlanRepository) ListBetween(ctx context.Context, from, to string) ([]models.PlanRow, error) {
	const query = `SELECT id, match_date, weekday, slot_code, match_type, players, created_at FROM plan_rows WHERE match_date >= $1 AND match_date <= $2 ORDER BY match_date ASC, slot_code ASC`
	var rows []models.PlanRow
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("list plan rows between: %w", err)
	}
	return rows, nil
}

// BulkInsert stores rows within its own transaction.
func (r *PlanRepository) BulkInsert(ctx context.Context, rows []models.PlanRow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk insert plan rows: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.bulkInsert(ctx, tx, rows); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk insert plan rows: %w", err)
	}
	return nil
}

// BulkInsertWithTx stores rows using an existing transaction.
func (r *PlanRepository) BulkInsertWithTx(ctx context.Context, tx *sqlx.Tx, rows []models.PlanRow) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	return r.bulkInsert(ctx, tx, rows)
}

// DeleteAllWithTx clears the plan table inside an existing transaction.
func (r *PlanRepository) DeleteAllWithTx(ctx context.Context, tx *sqlx.Tx) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_rows`); err != nil {
		return fmt.Errorf("delete plan rows: %w", err)
	}
	return nil
}

// BeginTxx starts a transaction for callers composing multiple writes.
func (r *PlanRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

func (r *PlanRepository) bulkInsert(ctx context.Context, exec sqlx.ExtContext, rows []models.PlanRow) error {
	now := time.Now().UTC()
	for i := range rows {
		payload := rows[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}

		if _, err := sqlx.NamedExecContext(ctx, exec, `INSERT INTO plan_rows (id, match_date, weekday, slot_code, match_type, players, created_at) VALUES (:id, :match_date, :weekday, :slot_code, :match_type, :players, :created_at)`, &payload); err != nil {
			return fmt.Errorf("bulk insert plan row: %w", err)
		}
		rows[i] = payload
	}
	return nil
}
