package extraction_test

import (
	"context"
	"testing"

	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/core/extraction"
	"pantry-cookbook/internal/core/parsing"
	"pantry-cookbook/internal/core/recipe"
	"pantry-cookbook/internal/infrastructure/store/storetest"
	"pantry-cookbook/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImporter(t *testing.T) (*extraction.Importer, *catalog.Service, *recipe.Service) {
	t.Helper()
	db := storetest.New(t)
	cat := catalog.NewService(db)
	recipes := recipe.NewService(db, cat)
	return extraction.NewImporter(parsing.NewService(nil), cat, recipes), cat, recipes
}

func TestImportCreatesRecipeAndIngredients(t *testing.T) {
	ctx := context.Background()
	im, cat, recipes := newImporter(t)

	existing, err := cat.Create(ctx, catalog.Ingredient{Name: "garlic", Category: catalog.CategoryVegetable})
	require.NoError(t, err)

	rec := extraction.NewRecord("https://example.com/rice")
	rec.Method = extraction.MethodHeuristic
	rec.Title = "Garlic Rice Recipe"
	rec.IngredientsRaw = []string{"1 cup rice", "3 cloves garlic", "2 cloves garlic, minced", "salt to taste"}
	rec.InstructionsRaw = "1. Fry the garlic.\n2. Add rice and simmer."
	rec.CookTime = "20 minutes"
	rec.Servings = "Serves 2"

	r, err := im.Import(ctx, rec)
	require.NoError(t, err)

	assert.Equal(t, "Garlic Rice", r.Name)
	assert.Equal(t, 2, r.Servings)
	assert.Equal(t, 20, r.CookTimeMinutes)
	assert.Equal(t, "https://example.com/rice", r.SourceURL)
	assert.Equal(t, "Fry the garlic.\nAdd rice and simmer.", r.Instructions)

	got, err := recipes.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, got.Ingredients, 3)
	assert.Equal(t, existing.ID, got.Ingredients[1].IngredientID)
	assert.Equal(t, "clove", got.Ingredients[1].Unit)
	assert.InDelta(t, 3.0, got.Ingredients[1].Quantity, 1e-9)
	assert.True(t, got.Ingredients[2].IsOptional)

	all, err := cat.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	rice, err := cat.Search(ctx, "rice")
	require.NoError(t, err)
	require.Len(t, rice, 1)
	assert.Equal(t, catalog.CategoryGrain, rice[0].Category)
}

func TestImportRejectsIncompleteRecord(t *testing.T) {
	im, _, _ := newImporter(t)

	rec := extraction.NewRecord("")
	rec.Title = "Toast"
	rec.IngredientsRaw = []string{"1 slice bread"}

	_, err := im.Import(context.Background(), rec)
	assert.ErrorIs(t, err, common.ErrInsufficientData)
}

func TestImportRejectsInvalidParsedRecipe(t *testing.T) {
	im, _, _ := newImporter(t)

	rec := extraction.NewRecord("")
	rec.Title = "Slow Stock"
	rec.IngredientsRaw = []string{"2 kg bones"}
	rec.InstructionsRaw = "Simmer for a very long time."
	rec.CookTime = "40 hours"

	_, err := im.Import(context.Background(), rec)
	assert.True(t, common.IsValidationError(err))
}
