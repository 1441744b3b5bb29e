package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pantry-cookbook/internal/core/recipe"
	"pantry-cookbook/internal/pkg/common"

	"github.com/rotisserie/eris"
)

const recipeColumns = `id, name, description, instructions, prep_time_minutes, cook_time_minutes, servings,
	source_url, image_path, cuisine, category, difficulty, dietary_tags, rating, nutrition, created_at`

func (s *SQLiteStore) GetRecipe(ctx context.Context, id int64) (*recipe.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrRecipeNotFound.Withf("recipe %d not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get recipe %d", id)
	}
	byRecipe, err := s.loadRecipeIngredients(ctx, `WHERE recipe_id = ?`, id)
	if err != nil {
		return nil, err
	}
	r.Ingredients = nonNilIngredients(byRecipe[id])
	return r, nil
}

func (s *SQLiteStore) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	return s.queryRecipes(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY id`)
}

func (s *SQLiteStore) SearchRecipes(ctx context.Context, query string) ([]recipe.Recipe, error) {
	return s.queryRecipes(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE name LIKE ? ESCAPE '\' ORDER BY id`,
		"%"+escapeLike(query)+"%")
}

func (s *SQLiteStore) queryRecipes(ctx context.Context, query string, args ...any) ([]recipe.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query recipes")
	}
	out := make([]recipe.Recipe, 0)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			rows.Close() //nolint:errcheck
			return nil, eris.Wrap(err, "sqlite: scan recipe")
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		rows.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "sqlite: iterate recipes")
	}
	rows.Close() //nolint:errcheck

	if len(out) == 0 {
		return out, nil
	}
	byRecipe, err := s.loadRecipeIngredients(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Ingredients = nonNilIngredients(byRecipe[out[i].ID])
	}
	return out, nil
}

func (s *SQLiteStore) loadRecipeIngredients(ctx context.Context, where string, args ...any) (map[int64][]recipe.RecipeIngredient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT recipe_id, ingredient_id, quantity, unit, preparation_note, display_order, is_optional
		 FROM recipe_ingredients `+where+` ORDER BY recipe_id, display_order, ingredient_id`, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query recipe ingredients")
	}
	defer rows.Close() //nolint:errcheck

	out := make(map[int64][]recipe.RecipeIngredient)
	for rows.Next() {
		var (
			ri       recipe.RecipeIngredient
			optional int
		)
		if err := rows.Scan(&ri.RecipeID, &ri.IngredientID, &ri.Quantity, &ri.Unit,
			&ri.PreparationNote, &ri.DisplayOrder, &optional); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan recipe ingredient")
		}
		ri.IsOptional = optional != 0
		out[ri.RecipeID] = append(out[ri.RecipeID], ri)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate recipe ingredients")
}

// UpsertRecipe ID 為 0 時新增，否則覆寫食譜與其食材清單
func (s *SQLiteStore) UpsertRecipe(ctx context.Context, r *recipe.Recipe) error {
	tags, err := marshalJSON(nonNil(r.DietaryTags))
	if err != nil {
		return err
	}
	nutrition := r.Nutrition
	if nutrition == nil {
		nutrition = map[string]string{}
	}
	nutritionJSON, err := marshalJSON(nutrition)
	if err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin recipe tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if r.ID == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO recipes (name, description, instructions, prep_time_minutes, cook_time_minutes, servings,
				source_url, image_path, cuisine, category, difficulty, dietary_tags, rating, nutrition, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Name, r.Description, r.Instructions, r.PrepTimeMinutes, r.CookTimeMinutes, r.Servings,
			r.SourceURL, r.ImagePath, r.Cuisine, r.Category, r.Difficulty, tags, r.Rating, nutritionJSON, r.CreatedAt)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert recipe")
		}
		if r.ID, err = res.LastInsertId(); err != nil {
			return eris.Wrap(err, "sqlite: recipe id")
		}
	} else {
		res, err := tx.ExecContext(ctx,
			`UPDATE recipes SET name = ?, description = ?, instructions = ?, prep_time_minutes = ?, cook_time_minutes = ?,
				servings = ?, source_url = ?, image_path = ?, cuisine = ?, category = ?, difficulty = ?,
				dietary_tags = ?, rating = ?, nutrition = ?
			 WHERE id = ?`,
			r.Name, r.Description, r.Instructions, r.PrepTimeMinutes, r.CookTimeMinutes, r.Servings,
			r.SourceURL, r.ImagePath, r.Cuisine, r.Category, r.Difficulty, tags, r.Rating, nutritionJSON, r.ID)
		if err != nil {
			return eris.Wrapf(err, "sqlite: update recipe %d", r.ID)
		}
		if err := checkRowsAffected(res, common.ErrRecipeNotFound.Withf("recipe %d not found", r.ID)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = ?`, r.ID); err != nil {
			return eris.Wrapf(err, "sqlite: clear recipe ingredients %d", r.ID)
		}
	}

	for i := range r.Ingredients {
		ri := &r.Ingredients[i]
		ri.RecipeID = r.ID
		if err := upsertRecipeIngredient(ctx, tx, ri); err != nil {
			return err
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit recipe")
}

func (s *SQLiteStore) UpsertRecipeIngredient(ctx context.Context, ri *recipe.RecipeIngredient) error {
	return upsertRecipeIngredient(ctx, s.db, ri)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertRecipeIngredient(ctx context.Context, db execer, ri *recipe.RecipeIngredient) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity, unit, preparation_note, display_order, is_optional)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(recipe_id, ingredient_id) DO UPDATE SET
			quantity = excluded.quantity,
			unit = excluded.unit,
			preparation_note = excluded.preparation_note,
			display_order = excluded.display_order,
			is_optional = excluded.is_optional`,
		ri.RecipeID, ri.IngredientID, ri.Quantity, ri.Unit, ri.PreparationNote, ri.DisplayOrder, boolToInt(ri.IsOptional))
	return eris.Wrapf(err, "sqlite: upsert recipe ingredient %d/%d", ri.RecipeID, ri.IngredientID)
}

func (s *SQLiteStore) DeleteRecipe(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete recipe %d", id)
	}
	return checkRowsAffected(res, common.ErrRecipeNotFound.Withf("recipe %d not found", id))
}

func (s *SQLiteStore) SetRecipeImage(ctx context.Context, id int64, path string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE recipes SET image_path = ? WHERE id = ?`, path, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set recipe image %d", id)
	}
	return checkRowsAffected(res, common.ErrRecipeNotFound.Withf("recipe %d not found", id))
}

func (s *SQLiteStore) Stats(ctx context.Context) (*recipe.Stats, error) {
	var st recipe.Stats
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM recipes),
		(SELECT COUNT(*) FROM ingredients),
		(SELECT COUNT(*) FROM pantry),
		(SELECT COUNT(*) FROM recipes WHERE image_path != ''),
		(SELECT COUNT(*) FROM scrape_log)`).
		Scan(&st.Recipes, &st.Ingredients, &st.PantryItems, &st.WithImages, &st.ScrapedTotal)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats")
	}
	return &st, nil
}

func scanRecipe(row scannable) (*recipe.Recipe, error) {
	var (
		r         recipe.Recipe
		tags      string
		nutrition string
		rating    sql.NullFloat64
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Instructions, &r.PrepTimeMinutes, &r.CookTimeMinutes,
		&r.Servings, &r.SourceURL, &r.ImagePath, &r.Cuisine, &r.Category, &r.Difficulty,
		&tags, &rating, &nutrition, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.DietaryTags = []string{}
	if err := unmarshalJSON(tags, &r.DietaryTags); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(nutrition, &r.Nutrition); err != nil {
		return nil, err
	}
	if rating.Valid {
		v := rating.Float64
		r.Rating = &v
	}
	return &r, nil
}

func nonNilIngredients(in []recipe.RecipeIngredient) []recipe.RecipeIngredient {
	if in == nil {
		return []recipe.RecipeIngredient{}
	}
	return in
}
