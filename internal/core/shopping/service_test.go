package shopping_test

import (
	"context"
	"testing"

	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/core/pantry"
	"pantry-cookbook/internal/core/recipe"
	"pantry-cookbook/internal/core/shopping"
	"pantry-cookbook/internal/infrastructure/store/storetest"
	"pantry-cookbook/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildForHousehold(t *testing.T) {
	ctx := context.Background()
	db := storetest.New(t)
	cat := catalog.NewService(db)
	pan := pantry.NewService(db, cat)
	rec := recipe.NewService(db, cat)
	svc := shopping.NewService(rec, pan, cat)

	onion, err := cat.Create(ctx, catalog.Ingredient{Name: "onion"})
	require.NoError(t, err)
	butter, err := cat.Create(ctx, catalog.Ingredient{Name: "butter"})
	require.NoError(t, err)
	salt, err := cat.Create(ctx, catalog.Ingredient{Name: "salt"})
	require.NoError(t, err)

	soup, err := rec.Create(ctx, recipe.Recipe{Name: "Onion Soup", Servings: 2, Ingredients: []recipe.RecipeIngredient{
		{IngredientID: onion.ID, Quantity: 3, PreparationNote: "sliced"},
		{IngredientID: butter.ID, Quantity: 2, Unit: "tbsp"},
		{IngredientID: salt.ID, IsOptional: true},
	}})
	require.NoError(t, err)
	_, err = pan.SetAvailability(ctx, 1, butter.ID, true, pantry.QuantityPlenty)
	require.NoError(t, err)

	list, err := svc.BuildForHousehold(ctx, 1, []int64{soup.ID, 999}, false)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"vegetable": {"3 (sliced) onion"}}, list.Map())

	list, err = svc.BuildForHousehold(ctx, 1, []int64{soup.ID}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"salt"}, list.Map()["spice"])

	_, err = svc.BuildForHousehold(ctx, 1, nil, false)
	assert.True(t, common.IsValidationError(err))
}
