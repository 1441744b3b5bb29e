package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/pkg/common"

	"github.com/rotisserie/eris"
)

const ingredientColumns = `id, name, category, substitutes, storage_tips, created_at`

func (s *SQLiteStore) GetIngredient(ctx context.Context, id int64) (*catalog.Ingredient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE id = ?`, id)
	ing, err := scanIngredient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrIngredientNotFound.Withf("ingredient %d not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get ingredient %d", id)
	}
	return ing, nil
}

func (s *SQLiteStore) GetIngredients(ctx context.Context, ids []int64) ([]catalog.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get ingredients")
	}
	return collectIngredients(rows)
}

func (s *SQLiteStore) FindIngredientByName(ctx context.Context, name string) (*catalog.Ingredient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE name = ? COLLATE NOCASE`,
		strings.TrimSpace(name))
	ing, err := scanIngredient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrIngredientNotFound.Withf("ingredient %q not found", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: find ingredient %q", name)
	}
	return ing, nil
}

func (s *SQLiteStore) ListIngredients(ctx context.Context) ([]catalog.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list ingredients")
	}
	return collectIngredients(rows)
}

func (s *SQLiteStore) SearchIngredients(ctx context.Context, query string) ([]catalog.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE name LIKE ? ESCAPE '\' ORDER BY name COLLATE NOCASE`,
		"%"+escapeLike(query)+"%")
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search ingredients")
	}
	return collectIngredients(rows)
}

// UpsertIngredient ID 為 0 時新增並回填 ID，否則更新可編輯欄位
func (s *SQLiteStore) UpsertIngredient(ctx context.Context, in *catalog.Ingredient) error {
	subs, err := marshalJSON(nonNil(in.Substitutes))
	if err != nil {
		return err
	}
	if in.ID == 0 {
		if in.CreatedAt.IsZero() {
			in.CreatedAt = time.Now().UTC()
		}
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO ingredients (name, category, substitutes, storage_tips, created_at) VALUES (?, ?, ?, ?, ?)`,
			in.Name, in.Category, subs, in.StorageTips, in.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return common.ErrDuplicateName.Withf("ingredient %q already exists", in.Name)
			}
			return eris.Wrap(err, "sqlite: insert ingredient")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return eris.Wrap(err, "sqlite: ingredient id")
		}
		in.ID = id
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE ingredients SET category = ?, substitutes = ?, storage_tips = ? WHERE id = ?`,
		in.Category, subs, in.StorageTips, in.ID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update ingredient %d", in.ID)
	}
	return checkRowsAffected(res, common.ErrIngredientNotFound.Withf("ingredient %d not found", in.ID))
}

func (s *SQLiteStore) DeleteIngredient(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ingredients WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete ingredient %d", id)
	}
	return checkRowsAffected(res, common.ErrIngredientNotFound.Withf("ingredient %d not found", id))
}

// IngredientReferences 計算食譜與食材櫃對食材的引用數
func (s *SQLiteStore) IngredientReferences(ctx context.Context, id int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM recipe_ingredients WHERE ingredient_id = ?) +
		        (SELECT COUNT(*) FROM pantry WHERE ingredient_id = ?)`, id, id).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: count references %d", id)
	}
	return n, nil
}

func scanIngredient(row scannable) (*catalog.Ingredient, error) {
	var (
		ing  catalog.Ingredient
		subs string
	)
	if err := row.Scan(&ing.ID, &ing.Name, &ing.Category, &subs, &ing.StorageTips, &ing.CreatedAt); err != nil {
		return nil, err
	}
	ing.Substitutes = []string{}
	if err := unmarshalJSON(subs, &ing.Substitutes); err != nil {
		return nil, err
	}
	return &ing, nil
}

func collectIngredients(rows *sql.Rows) ([]catalog.Ingredient, error) {
	defer rows.Close() //nolint:errcheck
	out := make([]catalog.Ingredient, 0)
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan ingredient")
		}
		out = append(out, *ing)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate ingredients")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
