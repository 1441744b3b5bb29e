package store

import (
	"context"
	"database/sql"
	"errors"

	"pantry-cookbook/internal/core/pantry"
	"pantry-cookbook/internal/pkg/common"

	"github.com/rotisserie/eris"
)

func (s *SQLiteStore) GetPantryEntry(ctx context.Context, householdID, ingredientID int64) (*pantry.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT household_id, ingredient_id, is_available, quantity_estimate, last_updated
		 FROM pantry WHERE household_id = ? AND ingredient_id = ?`, householdID, ingredientID)
	e, err := scanPantryEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrPantryNotFound.Withf("pantry entry %d/%d not found", householdID, ingredientID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get pantry entry %d/%d", householdID, ingredientID)
	}
	return e, nil
}

func (s *SQLiteStore) ListPantry(ctx context.Context, householdID int64) ([]pantry.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT household_id, ingredient_id, is_available, quantity_estimate, last_updated
		 FROM pantry WHERE household_id = ? ORDER BY ingredient_id`, householdID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list pantry %d", householdID)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]pantry.Entry, 0)
	for rows.Next() {
		e, err := scanPantryEntry(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pantry entry")
		}
		out = append(out, *e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate pantry")
}

// UpsertPantryEntry 以 (household_id, ingredient_id) 覆寫，後寫者為準
func (s *SQLiteStore) UpsertPantryEntry(ctx context.Context, e *pantry.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pantry (household_id, ingredient_id, is_available, quantity_estimate, last_updated)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(household_id, ingredient_id) DO UPDATE SET
			is_available = excluded.is_available,
			quantity_estimate = excluded.quantity_estimate,
			last_updated = excluded.last_updated`,
		e.HouseholdID, e.IngredientID, boolToInt(e.IsAvailable), string(e.Quantity), e.LastUpdated)
	return eris.Wrapf(err, "sqlite: upsert pantry entry %d/%d", e.HouseholdID, e.IngredientID)
}

func (s *SQLiteStore) DeletePantryEntry(ctx context.Context, householdID, ingredientID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM pantry WHERE household_id = ? AND ingredient_id = ?`, householdID, ingredientID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete pantry entry %d/%d", householdID, ingredientID)
	}
	return checkRowsAffected(res, common.ErrPantryNotFound.Withf("pantry entry %d/%d not found", householdID, ingredientID))
}

func scanPantryEntry(row scannable) (*pantry.Entry, error) {
	var (
		e         pantry.Entry
		available int
		qty       string
	)
	if err := row.Scan(&e.HouseholdID, &e.IngredientID, &available, &qty, &e.LastUpdated); err != nil {
		return nil, err
	}
	e.IsAvailable = available != 0
	e.Quantity = pantry.QuantityEstimate(qty)
	return &e, nil
}
