package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tvgw-tennis/winterplan-api/internal/models"
)

// PlayerRepository loads the three raw player sources the reference build
// merges: general preferences, overrides and ranks.
type PlayerRepository struct {
	db *sqlx.DB
}

// NewPlayerRepository creates a new player repository.
func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// ListPreferences returns the general preference source rows.
func (r *PlayerRepository) ListPreferences(ctx context.Context) ([]models.PreferenceRow, error) {
	const query = `SELECT name, available_days, preference, blocked_ranges, blocked_days, notes FROM player_preferences ORDER BY name ASC`
	var rows []models.PreferenceRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list player preferences: %w", err)
	}
	return rows, nil
}

// ListOverrides returns the override source rows.
func (r *PlayerRepository) ListOverrides(ctx context.Context) ([]models.OverrideRow, error) {
	const query = `SELECT name, available_days, blocked_ranges, blocked_days, weekly_cap, season_cap FROM player_overrides ORDER BY name ASC`
	var rows []models.OverrideRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list player overrides: %w", err)
	}
	return rows, nil
}

// ListRanks returns the rank table rows.
func (r *PlayerRepository) ListRanks(ctx context.Context) ([]models.RankRow, error) {
	const query = `SELECT name, rank FROM player_ranks ORDER BY name ASC`
	var rows []models.RankRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list player ranks: %w", err)
	}
	return rows, nil
}

// ReplacePreferences swaps the general preference source for the given rows.
func (r *PlayerRepository) ReplacePreferences(ctx context.Context, rows []models.PreferenceRow) error {
	const insert = `INSERT INTO player_preferences (name, available_days, preference, blocked_ranges, blocked_days, notes)
		VALUES (:name, :available_days, :preference, :blocked_ranges, :blocked_days, :notes)`
	return r.replace(ctx, "player_preferences", func(tx *sqlx.Tx) error {
		for _, row := range rows {
			if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
				return fmt.Errorf("insert preference %q: %w", row.Name, err)
			}
		}
		return nil
	})
}

// ReplaceOverrides swaps the override source for the given rows.
func (r *PlayerRepository) ReplaceOverrides(ctx context.Context, rows []models.OverrideRow) error {
	const insert = `INSERT INTO player_overrides (name, available_days, blocked_ranges, blocked_days, weekly_cap, season_cap)
		VALUES (:name, :available_days, :blocked_ranges, :blocked_days, :weekly_cap, :season_cap)`
	return r.replace(ctx, "player_overrides", func(tx *sqlx.Tx) error {
		for _, row := range rows {
			if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
				return fmt.Errorf("insert override %q: %w", row.Name, err)
			}
		}
		return nil
	})
}

// ReplaceRanks swaps the rank table for the given rows.
func (r *PlayerRepository) ReplaceRanks(ctx context.Context, rows []models.RankRow) error {
	const insert = `INSERT INTO player_ranks (name, rank) VALUES (:name, :rank)`
	return r.replace(ctx, "player_ranks", func(tx *sqlx.Tx) error {
		for _, row := range rows {
			if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
				return fmt.Errorf("insert rank %q: %w", row.Name, err)
			}
		}
		return nil
	})
}

// replace runs delete-then-insert for one source table inside a transaction.
func (r *PlayerRepository) replace(ctx context.Context, table string, insertAll func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := insertAll(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace %s: %w", table, err)
	}
	return nil
}
