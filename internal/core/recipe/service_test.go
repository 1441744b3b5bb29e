package recipe_test

import (
	"context"
	"testing"

	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/core/recipe"
	"pantry-cookbook/internal/infrastructure/store/storetest"
	"pantry-cookbook/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAssignsDisplayOrder(t *testing.T) {
	ctx := context.Background()
	db := storetest.New(t)
	cat := catalog.NewService(db)
	svc := recipe.NewService(db, cat)

	flour, err := cat.Create(ctx, catalog.Ingredient{Name: "flour"})
	require.NoError(t, err)
	butter, err := cat.Create(ctx, catalog.Ingredient{Name: "butter"})
	require.NoError(t, err)

	r, err := svc.Create(ctx, recipe.Recipe{
		Name:     " Shortbread ",
		Servings: 4,
		Ingredients: []recipe.RecipeIngredient{
			{IngredientID: butter.ID, Quantity: 1, Unit: "cup", DisplayOrder: 9},
			{IngredientID: flour.ID, Quantity: 2, Unit: "cup"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Shortbread", r.Name)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, butter.ID, got.Ingredients[0].IngredientID)
	assert.Equal(t, 0, got.Ingredients[0].DisplayOrder)
	assert.Equal(t, 1, got.Ingredients[1].DisplayOrder)
}

func TestCreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	db := storetest.New(t)
	cat := catalog.NewService(db)
	svc := recipe.NewService(db, cat)
	eggs, err := cat.Create(ctx, catalog.Ingredient{Name: "eggs"})
	require.NoError(t, err)

	cases := []recipe.Recipe{
		{Name: "", Servings: 1},
		{Name: "x", Servings: 0},
		{Name: "x", Servings: 1, PrepTimeMinutes: -1},
		{Name: "x", Servings: 1, Ingredients: []recipe.RecipeIngredient{{IngredientID: eggs.ID}, {IngredientID: eggs.ID}}},
		{Name: "x", Servings: 1, Ingredients: []recipe.RecipeIngredient{{IngredientID: eggs.ID, Quantity: -2}}},
	}
	for _, c := range cases {
		_, err := svc.Create(ctx, c)
		assert.True(t, common.IsValidationError(err), "%+v", c)
	}

	_, err = svc.Create(ctx, recipe.Recipe{Name: "x", Servings: 1, Ingredients: []recipe.RecipeIngredient{{IngredientID: 55}}})
	assert.True(t, common.IsNotFound(err))
}

func TestRequiredIDsSkipOptional(t *testing.T) {
	r := recipe.Recipe{
		PrepTimeMinutes: 10,
		CookTimeMinutes: 20,
		Ingredients: []recipe.RecipeIngredient{
			{IngredientID: 3},
			{IngredientID: 1, IsOptional: true},
			{IngredientID: 2},
		},
	}
	assert.Equal(t, []int64{3, 2}, r.RequiredIDs())
	assert.Equal(t, []int64{3, 1, 2}, r.IngredientIDs())
	assert.Equal(t, 30, r.TotalTime())
}

func TestGetManySearchAndImage(t *testing.T) {
	ctx := context.Background()
	db := storetest.New(t)
	cat := catalog.NewService(db)
	svc := recipe.NewService(db, cat)

	a, err := svc.Create(ctx, recipe.Recipe{Name: "Tomato Soup", Servings: 2})
	require.NoError(t, err)
	b, err := svc.Create(ctx, recipe.Recipe{Name: "Pancakes", Servings: 2})
	require.NoError(t, err)

	many, err := svc.GetMany(ctx, []int64{b.ID, 404, a.ID})
	require.NoError(t, err)
	require.Len(t, many, 2)
	assert.Equal(t, "Pancakes", many[0].Name)

	hits, err := svc.Search(ctx, "soup")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, a.ID, hits[0].ID)

	all, err := svc.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.SetImage(ctx, a.ID, "img/a.jpg"))
	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Recipes)
	assert.Equal(t, 1, st.WithImages)

	eggs, err := cat.Create(ctx, catalog.Ingredient{Name: "eggs"})
	require.NoError(t, err)
	require.NoError(t, svc.AddIngredient(ctx, recipe.RecipeIngredient{RecipeID: b.ID, IngredientID: eggs.ID, Quantity: 2}))
	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, got.Ingredients, 1)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.True(t, common.IsNotFound(svc.Delete(ctx, a.ID)))
}
