package parsing

import (
	"context"
	"errors"
	"testing"

	"pantry-cookbook/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseMinutes(t *testing.T) {
	cases := map[string]int{
		"PT1H30M":           90,
		"PT45M":             45,
		"1 hour 30 minutes": 90,
		"1.5 hours":         90,
		"2 hrs":             120,
		"45 mins":           45,
		"1h30m":             90,
		"1:15":              75,
		"25":                25,
		"500":               0,
		"":                  0,
		"about a while":     0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseMinutes(in), "input %q", in)
	}
}

func TestSplitTimes(t *testing.T) {
	prep, cook := SplitTimes(0, 0, 60)
	assert.Equal(t, 15, prep)
	assert.Equal(t, 45, cook)

	prep, cook = SplitTimes(0, 0, 10)
	assert.Equal(t, 2, prep)
	assert.Equal(t, 8, cook)

	prep, cook = SplitTimes(10, 0, 60)
	assert.Equal(t, 10, prep)
	assert.Equal(t, 0, cook, "known parts are left alone")
}

func TestParseServingsAndRating(t *testing.T) {
	assert.Equal(t, 4, ParseServings("Serves 4-6"))
	assert.Equal(t, 1, ParseServings("a crowd"))
	assert.Equal(t, 1, ParseServings("100 cookies"))
	assert.Equal(t, 1, ParseServings("0"))

	r := ParseRating("4.7 out of 5")
	require.NotNil(t, r)
	assert.InDelta(t, 4.7, *r, 1e-9)
	assert.Equal(t, 5.0, *ParseRating("9"))
	assert.Nil(t, ParseRating("n/a"))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, DifficultyEasy, ClassifyDifficulty("Super Simple"))
	assert.Equal(t, DifficultyHard, ClassifyDifficulty("advanced"))
	assert.Equal(t, DifficultyMedium, ClassifyDifficulty(""))

	assert.Equal(t, "American", NormalizeCuisine("USA"))
	assert.Equal(t, "Italian", NormalizeCuisine("italia"))
	assert.Equal(t, "Mediterranean", NormalizeCuisine("Med"))
	assert.Equal(t, "Irish", NormalizeCuisine("  irish "))
	assert.Equal(t, "Peruvian Fusion", NormalizeCuisine("peruvian fusion"))
	assert.Equal(t, "", NormalizeCuisine(""))

	assert.Equal(t, CategoryBreakfast, NormalizeCategory("Brunch"))
	assert.Equal(t, CategoryDinner, NormalizeCategory("Weeknight Supper"))
	assert.Equal(t, CategoryDessert, NormalizeCategory("Cookies"))
	assert.Equal(t, CategoryDrink, NormalizeCategory("Beverages"))
	assert.Equal(t, "", NormalizeCategory("miscellaneous"))
}

func TestDetectDietaryTags(t *testing.T) {
	tags := DetectDietaryTags("A vegan, gluten free curry. Great for keto fans.")
	assert.Equal(t, []string{"vegan", "gluten-free", "keto", "low-carb"}, tags)
	assert.Empty(t, DetectDietaryTags("buttermilk biscuits"))
	assert.Empty(t, DetectDietaryTags("gfx card"), "matches whole words only")
}

func TestParseIngredientLine(t *testing.T) {
	cases := []struct {
		in   string
		want common.ParsedIngredient
	}{
		{"2 cups all-purpose flour, sifted", common.ParsedIngredient{Quantity: 2, Unit: "cup", Name: "all-purpose flour", Preparation: "sifted"}},
		{"1 1/2 cups milk", common.ParsedIngredient{Quantity: 1.5, Unit: "cup", Name: "milk"}},
		{"½ tsp salt", common.ParsedIngredient{Quantity: 0.5, Unit: "teaspoon", Name: "salt"}},
		{"1½ Tbsp olive oil", common.ParsedIngredient{Quantity: 1.5, Unit: "tablespoon", Name: "olive oil"}},
		{"2-3 cloves garlic, minced", common.ParsedIngredient{Quantity: 2, Unit: "clove", Name: "garlic", Preparation: "minced"}},
		{"3 large eggs", common.ParsedIngredient{Quantity: 3, Name: "eggs", Preparation: "large"}},
		{"1 (14 oz) can diced tomatoes", common.ParsedIngredient{Quantity: 1, Unit: "can", Name: "diced tomatoes", Preparation: "14 oz"}},
		{"pinch of salt", common.ParsedIngredient{Unit: "pinch", Name: "salt"}},
		{"Black pepper, to taste", common.ParsedIngredient{Name: "black pepper", Optional: true}},
		{"1 cup walnuts (optional)", common.ParsedIngredient{Quantity: 1, Unit: "cup", Name: "walnuts", Optional: true}},
		{"- 0.25 lb ground beef", common.ParsedIngredient{Quantity: 0.25, Unit: "pound", Name: "ground beef"}},
		{"2 to 3 c. sugar", common.ParsedIngredient{Quantity: 2, Unit: "cup", Name: "sugar"}},
		{"1 egg", common.ParsedIngredient{Quantity: 1, Name: "egg"}},
	}
	for _, c := range cases {
		got := ParseIngredientLine(c.in)
		c.want.Original = c.in
		assert.Equal(t, c.want, got, "input %q", c.in)
	}

	assert.Equal(t, common.ParsedIngredient{}, ParseIngredientLine("   "))
}

func TestParseIngredientLinesSkipsBlank(t *testing.T) {
	got := ParseIngredientLines([]string{"1 cup rice", "", "  ", "2 eggs"})
	require.Len(t, got, 2)
	assert.Equal(t, "rice", got[0].Name)
	assert.Equal(t, "eggs", got[1].Name)
}

func TestCleanTitle(t *testing.T) {
	cases := map[string]string{
		"Best Pancakes Recipe - allrecipes.com": "Best Pancakes",
		"Chili | Food Network Kitchen":          "Chili",
		"Recipe: Tomato   Soup":                 "Tomato Soup",
		"Recipe":                                "Recipe",
		"Banana Bread":                          "Banana Bread",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanTitle(in), "input %q", in)
	}
}

func TestCleanInstructions(t *testing.T) {
	in := "1. Preheat oven.\n\n2) Mix 1.5 cups flour.\nStep 3: Bake.\n- Cool"
	assert.Equal(t, "Preheat oven.\nMix 1.5 cups flour.\nBake.\nCool", CleanInstructions(in))
}

func TestSimilarityAndSuggestions(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Olive Oil", "olive  oil"))
	assert.Equal(t, 0.8, Similarity("oil", "olive oil"))
	assert.InDelta(t, 1.0/3.0, Similarity("red onion", "onion rings"), 1e-9)
	assert.Zero(t, Similarity("", "salt"))

	got := SuggestMatches("onion", []string{"red onion", "garlic", "green onion", "onion", "onion powder", "onions", "sweet onion"})
	require.Len(t, got, 5)
	assert.Equal(t, Suggestion{Name: "onion", Score: 1}, got[0])
	assert.Equal(t, "red onion", got[1].Name, "ties keep input order")
}

func TestValidate(t *testing.T) {
	ok := ParsedRecipe{
		Title: "Soup", Instructions: "Simmer.", Servings: 4, PrepTimeMinutes: 10, CookTimeMinutes: 30,
		Ingredients: []common.ParsedIngredient{{Name: "water"}},
	}
	assert.Empty(t, Validate(ok))

	warn := ok
	warn.Servings = 24
	warn.CookTimeMinutes = 800
	issues := Validate(warn)
	assert.Len(t, issues, 2)
	assert.False(t, HasErrors(issues))

	bad := ParsedRecipe{Servings: 60, PrepTimeMinutes: 700}
	issues = Validate(bad)
	assert.True(t, HasErrors(issues))
	fields := make([]string, 0)
	for _, i := range issues {
		fields = append(fields, i.Field)
	}
	assert.ElementsMatch(t, []string{"title", "ingredients", "instructions", "servings", "prep_time"}, fields)
}

type mockAI struct {
	mock.Mock
}

func (m *mockAI) Available(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *mockAI) ParseIngredients(ctx context.Context, lines []string) ([]common.ParsedIngredient, error) {
	args := m.Called(ctx, lines)
	parsed, _ := args.Get(0).([]common.ParsedIngredient)
	return parsed, args.Error(1)
}

func TestServiceParseIngredientsPrefersAI(t *testing.T) {
	ctx := context.Background()
	ai := new(mockAI)
	ai.On("Available", ctx).Return(true)
	ai.On("ParseIngredients", ctx, []string{"2 eggs"}).
		Return([]common.ParsedIngredient{{Quantity: 2, Name: "eggs"}, {Name: " "}}, nil)

	got, method := NewService(ai).ParseIngredients(ctx, []string{"2 eggs", ""})
	assert.Equal(t, MethodAI, method)
	assert.Equal(t, []common.ParsedIngredient{{Quantity: 2, Name: "eggs"}}, got)
	ai.AssertExpectations(t)
}

func TestServiceParseIngredientsFallsBack(t *testing.T) {
	ctx := context.Background()

	failing := new(mockAI)
	failing.On("Available", ctx).Return(true)
	failing.On("ParseIngredients", ctx, mock.Anything).Return(nil, errors.New("timeout"))
	got, method := NewService(failing).ParseIngredients(ctx, []string{"1 cup rice"})
	assert.Equal(t, MethodRegex, method)
	require.Len(t, got, 1)
	assert.Equal(t, "rice", got[0].Name)

	offline := new(mockAI)
	offline.On("Available", ctx).Return(false)
	_, method = NewService(offline).ParseIngredients(ctx, []string{"1 cup rice"})
	assert.Equal(t, MethodRegex, method)
	offline.AssertNotCalled(t, "ParseIngredients", mock.Anything, mock.Anything)

	_, method = NewService(nil).ParseIngredients(ctx, []string{"1 cup rice"})
	assert.Equal(t, MethodRegex, method)
}

func TestServiceParse(t *testing.T) {
	src := Source{
		SourceURL:    "https://example.com/soup",
		Title:        "Vegan Lentil Soup Recipe | Example Kitchen",
		Description:  "  A hearty   soup. ",
		Ingredients:  []string{"1 cup red lentils, rinsed", "4 cups water", "Salt, to taste"},
		Instructions: "1. Rinse lentils.\n2. Simmer for 30 minutes.",
		TotalTime:    "PT40M",
		Servings:     "Serves 4",
		Cuisine:      "india",
		Category:     "Main Course",
		Difficulty:   "easy",
		Confidence:   0.9,
	}
	p := NewService(nil).Parse(context.Background(), src)

	assert.Equal(t, "Vegan Lentil Soup", p.Title)
	assert.Equal(t, "A hearty soup.", p.Description)
	assert.Equal(t, 10, p.PrepTimeMinutes)
	assert.Equal(t, 30, p.CookTimeMinutes)
	assert.Equal(t, 4, p.Servings)
	assert.Equal(t, "Indian", p.Cuisine)
	assert.Equal(t, CategoryMain, p.Category)
	assert.Equal(t, DifficultyEasy, p.Difficulty)
	assert.Equal(t, []string{"vegan"}, p.DietaryTags)
	assert.Equal(t, "Rinse lentils.\nSimmer for 30 minutes.", p.Instructions)
	assert.Equal(t, MethodRegex, p.IngredientMethod)
	require.Len(t, p.Ingredients, 3)
	assert.True(t, p.Ingredients[2].Optional)
	assert.True(t, p.Valid())
	assert.Nil(t, p.Rating)
}
