package matching

import (
	"errors"
	"testing"

	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/core/recipe"
	"pantry-cookbook/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	flour int64 = iota + 1
	eggs
	milk
	butter
	cheese
	salt
	oil
	chicken
)

var testLookup = catalog.Lookup{
	flour:   {ID: flour, Name: "flour", Category: "grain"},
	eggs:    {ID: eggs, Name: "eggs", Category: "protein"},
	milk:    {ID: milk, Name: "milk", Category: "dairy"},
	butter:  {ID: butter, Name: "butter", Category: "dairy"},
	cheese:  {ID: cheese, Name: "cheese", Category: "dairy"},
	salt:    {ID: salt, Name: "salt", Category: "spice"},
	oil:     {ID: oil, Name: "olive oil", Category: "oil"},
	chicken: {ID: chicken, Name: "chicken", Category: "protein"},
}

func pantryOf(ids ...int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func makeRecipe(id int64, name string, ingredients ...recipe.RecipeIngredient) recipe.Recipe {
	for i := range ingredients {
		ingredients[i].RecipeID = id
		ingredients[i].DisplayOrder = i
	}
	return recipe.Recipe{ID: id, Name: name, Servings: 1, Ingredients: ingredients}
}

func req(id int64) recipe.RecipeIngredient { return recipe.RecipeIngredient{IngredientID: id, Quantity: 1} }

func opt(id int64) recipe.RecipeIngredient {
	return recipe.RecipeIngredient{IngredientID: id, Quantity: 1, IsOptional: true}
}

func TestMatchPancakesAndOmelette(t *testing.T) {
	available := pantryOf(flour, eggs, milk)

	pancakes := makeRecipe(1, "Pancakes", req(flour), req(eggs), req(milk), opt(butter))
	m, err := Match(&pancakes, pancakes.RequiredIDs(), available, testLookup)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.MatchPercentage)
	assert.True(t, m.CanMake)
	assert.Empty(t, m.MissingIngredients)
	assert.Zero(t, m.DifficultyScore)
	assert.Equal(t, StatusCanMake, m.Status)

	omelette := makeRecipe(2, "Omelette", req(eggs), req(cheese), req(milk))
	m, err = Match(&omelette, omelette.RequiredIDs(), available, testLookup)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, m.MatchPercentage, 1e-9)
	assert.False(t, m.CanMake)
	assert.Equal(t, []string{"cheese"}, m.MissingIngredients)
	assert.Equal(t, []string{"eggs", "milk"}, m.AvailableIngredients)
	assert.Equal(t, 1.5, m.DifficultyScore)
	assert.Equal(t, StatusMissingSome, m.Status)
}

func TestMatchEmptyRequiredSet(t *testing.T) {
	r := makeRecipe(1, "Garnish", opt(salt))
	_, err := Match(&r, r.RequiredIDs(), pantryOf(), testLookup)
	assert.True(t, errors.Is(err, common.ErrEmptyRequiredSet))
}

func TestMatchNilRecipePanics(t *testing.T) {
	assert.Panics(t, func() { _, _ = Match(nil, []int64{1}, pantryOf(), testLookup) })
}

func TestMatchUnknownIngredientIsNotCritical(t *testing.T) {
	r := makeRecipe(1, "Mystery", req(99))
	m, err := Match(&r, r.RequiredIDs(), pantryOf(), testLookup)
	require.NoError(t, err)
	assert.Equal(t, []string{"Unknown(99)"}, m.MissingIngredients)
	assert.Equal(t, 1.0, m.DifficultyScore)
}

func TestMatchPercentageInvariant(t *testing.T) {
	r := makeRecipe(1, "Stew", req(chicken), req(oil), req(salt), req(milk))
	pantries := []map[int64]struct{}{
		pantryOf(), pantryOf(salt), pantryOf(salt, oil), pantryOf(salt, oil, milk), pantryOf(salt, oil, milk, chicken),
	}
	for n, p := range pantries {
		m, err := Match(&r, r.RequiredIDs(), p, testLookup)
		require.NoError(t, err)
		assert.InDelta(t, float64(n)/4, m.MatchPercentage, 1e-9)
		assert.Equal(t, m.MatchPercentage == 1.0, m.CanMake)
		assert.Equal(t, len(m.MissingIDs) == 0, m.CanMake)
	}
}

func TestDifficultyMonotoneInCriticalRemovals(t *testing.T) {
	r := makeRecipe(1, "Stew", req(chicken), req(oil), req(salt), req(milk))
	full := pantryOf(chicken, oil, salt, milk)
	prev := -1.0
	for _, remove := range []int64{salt, chicken, oil, milk} {
		delete(full, remove)
		m, err := Match(&r, r.RequiredIDs(), full, testLookup)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, m.DifficultyScore, prev)
		prev = m.DifficultyScore
	}
	assert.Equal(t, 4+0.5*3, prev)
}

func TestFindMatchesFiltersAndOrders(t *testing.T) {
	// 比對率分別為 1.0、0.6、0.3
	full := makeRecipe(1, "Full", req(flour), req(eggs))
	sixty := makeRecipe(2, "Sixty", req(flour), req(eggs), req(milk), req(cheese), req(butter))
	thirty := makeRecipe(3, "Thirty", req(flour), req(cheese), req(butter), req(chicken), req(oil),
		req(salt), req(100), req(101), req(milk), req(eggs))
	available := pantryOf(flour, eggs, milk)

	got := FindMatches([]recipe.Recipe{thirty, sixty, full}, available, testLookup,
		Options{StrictMode: false, IncludePartial: false})
	require.Len(t, got, 2)
	assert.Equal(t, "Full", got[0].Recipe.Name)
	assert.Equal(t, "Sixty", got[1].Recipe.Name)
	assert.InDelta(t, 0.6, got[1].MatchPercentage, 1e-9)

	browse := FindMatches([]recipe.Recipe{thirty, sixty, full}, available, testLookup,
		Options{IncludePartial: true})
	assert.Len(t, browse, 3)

	ready := FindMatches([]recipe.Recipe{thirty, sixty, full}, available, testLookup,
		Options{StrictMode: true})
	require.Len(t, ready, 1)
	assert.Equal(t, "Full", ready[0].Recipe.Name)
}

func TestFindMatchesSkipsEmptyRequired(t *testing.T) {
	empty := makeRecipe(1, "Empty", opt(flour))
	full := makeRecipe(2, "Full", req(flour))
	got := FindMatches([]recipe.Recipe{empty, full}, pantryOf(flour), testLookup, Options{IncludePartial: true})
	require.Len(t, got, 1)
	assert.Equal(t, "Full", got[0].Recipe.Name)
}

func TestSortModesAreStable(t *testing.T) {
	// 兩者都缺一項；缺乳製品的難度較高
	a := makeRecipe(1, "Bravo", req(flour), req(milk))
	b := makeRecipe(2, "Alpha", req(flour), req(salt))
	c := makeRecipe(3, "Charlie", req(flour), req(eggs))
	recipes := []recipe.Recipe{a, b, c}
	available := pantryOf(flour, eggs)

	best := FindMatches(recipes, available, testLookup, Options{IncludePartial: true})
	assert.Equal(t, []string{"Charlie", "Alpha", "Bravo"}, names(best))

	again := FindMatches(recipes, available, testLookup, Options{IncludePartial: true})
	assert.Equal(t, names(best), names(again))

	easiest := FindMatches(recipes, available, testLookup, Options{IncludePartial: true, Sort: SortEasiest})
	assert.Equal(t, []string{"Charlie", "Alpha", "Bravo"}, names(easiest))

	byName := FindMatches(recipes, available, testLookup, Options{IncludePartial: true, Sort: SortName})
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, names(byName))

	tie := []recipe.Recipe{makeRecipe(7, "Second", req(salt)), makeRecipe(8, "First", req(salt))}
	got := FindMatches(tie, pantryOf(), testLookup, Options{IncludePartial: true, Sort: SortEasiest})
	assert.Equal(t, []string{"Second", "First"}, names(got), "ties keep catalog order")
}

func TestSuggestCompletions(t *testing.T) {
	available := pantryOf(flour, eggs)
	recipes := []recipe.Recipe{
		makeRecipe(1, "Ready", req(flour)),
		makeRecipe(2, "MissTwo", req(flour), req(milk), req(cheese)),
		makeRecipe(3, "MissOne", req(flour), req(eggs), req(milk)),
		makeRecipe(4, "MissThree", req(flour), req(milk), req(cheese), req(butter)),
	}

	got := SuggestCompletions(recipes, available, testLookup, 0)
	assert.Equal(t, []string{"MissOne", "MissTwo"}, names(got))

	got = SuggestCompletions(recipes, available, testLookup, 3)
	assert.Equal(t, []string{"MissOne", "MissTwo", "MissThree"}, names(got))

	many := make([]recipe.Recipe, 0, 15)
	for i := int64(0); i < 15; i++ {
		many = append(many, makeRecipe(i+10, "R", req(flour), req(milk)))
	}
	assert.Len(t, SuggestCompletions(many, available, testLookup, 2), 10)
}

func TestParseSortMode(t *testing.T) {
	m, ok := ParseSortMode("")
	assert.True(t, ok)
	assert.Equal(t, SortBestMatch, m)
	m, ok = ParseSortMode(" Easiest ")
	assert.True(t, ok)
	assert.Equal(t, SortEasiest, m)
	_, ok = ParseSortMode("random")
	assert.False(t, ok)
}

func names(ms []RecipeMatch) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Recipe.Name
	}
	return out
}
