package extraction

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pantry-cookbook/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonLDPage = `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"WebPage","name":"Page"},
  {"@type":["Recipe","Thing"],"name":"Tomato Soup &amp; Basil",
   "recipeIngredient":["2 cups tomatoes","1 cup stock"],
   "recipeInstructions":[{"@type":"HowToSection","name":"Prep","itemListElement":[
     {"@type":"HowToStep","text":"Chop the tomatoes."},
     {"@type":"HowToStep","text":"Simmer with stock."}]}],
   "prepTime":"PT10M","cookTime":"PT20M","recipeYield":["4","4 servings"],
   "aggregateRating":{"ratingValue":4.5},
   "nutrition":{"calories":"120 kcal"},
   "image":{"url":"https://img.example.com/soup.jpg"}}
]}
</script></head><body><h1>Something else</h1></body></html>`

func TestExtractHTMLPrefersJSONLD(t *testing.T) {
	r, err := NewPipeline(nil, nil).ExtractHTML(context.Background(), "https://example.com/soup", jsonLDPage)
	require.NoError(t, err)

	assert.Equal(t, MethodJSONLD, r.Method)
	assert.Equal(t, "Tomato Soup & Basil", r.Title)
	assert.Equal(t, []string{"2 cups tomatoes", "1 cup stock"}, r.IngredientsRaw)
	assert.Equal(t, "Chop the tomatoes.\nSimmer with stock.", r.InstructionsRaw)
	assert.Equal(t, "PT10M", r.PrepTime)
	assert.Equal(t, "4", r.Servings)
	assert.Equal(t, "4.5", r.Rating)
	assert.Equal(t, "120 kcal", r.Nutrition["calories"])
	assert.Equal(t, "https://img.example.com/soup.jpg", r.ImageURL)
	assert.InDelta(t, 1.0, r.Confidence, 1e-9)
}

func TestInstructionStepsShapes(t *testing.T) {
	assert.Equal(t, []string{"Boil water.", "Add pasta."}, instructionSteps("Boil water.\n\nAdd pasta."))
	assert.Equal(t, []string{"One", "Two"}, instructionSteps([]interface{}{"One", map[string]interface{}{"@type": "HowToStep", "text": "Two"}}))
	assert.Empty(t, instructionSteps(nil))
}

func TestFindRecipeNodeMainEntity(t *testing.T) {
	node := findRecipeNode(map[string]interface{}{
		"@type":      "WebPage",
		"mainEntity": map[string]interface{}{"@type": "Recipe", "name": "Stew"},
	})
	require.NotNil(t, node)
	assert.Equal(t, "Stew", node["name"])
	assert.Nil(t, findRecipeNode(map[string]interface{}{"@type": "Article"}))
}

func TestExtractHTMLSiteSelectors(t *testing.T) {
	page := `<html><head><title>Page</title></head><body>
<h1 class="headline">Classic Pancakes</h1>
<ul><li class="ingredients-item-name">1 cup flour</li><li class="ingredients-item-name">1 egg</li><li class="ingredients-item-name">1 cup milk</li></ul>
<ol><li class="instructions-section-item">Whisk everything together until smooth.</li><li class="instructions-section-item">Cook on a hot griddle.</li></ol>
<span class="servings">Serves 4</span>
</body></html>`

	r, err := NewPipeline(nil, nil).ExtractHTML(context.Background(), "https://www.allrecipes.com/recipe/1", page)
	require.NoError(t, err)
	assert.Equal(t, MethodSite, r.Method)
	assert.Equal(t, "Classic Pancakes", r.Title)
	assert.Len(t, r.IngredientsRaw, 3)
	assert.Equal(t, "Whisk everything together until smooth.\nCook on a hot griddle.", r.InstructionsRaw)
	assert.Equal(t, "Serves 4", r.Servings)
	assert.InDelta(t, 1.0, r.Confidence, 1e-9)
}

func TestExtractHTMLGenericSelectors(t *testing.T) {
	page := `<html><head><meta name="description" content="Fluffy weekend pancakes for the family."></head><body>
<h1 itemprop="name">Weekend Pancakes</h1>
<ul><li itemprop="recipeIngredient">2 cups flour</li><li itemprop="recipeIngredient">2 eggs</li></ul>
<div itemprop="recipeInstructions"><p>Mix the flour and eggs in a large bowl.</p><p>Fry spoonfuls in butter until golden.</p></div>
<time itemprop="prepTime" datetime="PT5M">5 min</time>
</body></html>`

	r, err := NewPipeline(nil, nil).ExtractHTML(context.Background(), "https://blog.example.com/pancakes", page)
	require.NoError(t, err)
	assert.Equal(t, MethodGeneric, r.Method)
	assert.Equal(t, "Weekend Pancakes", r.Title)
	assert.Equal(t, "Fluffy weekend pancakes for the family.", r.Description)
	assert.Equal(t, []string{"2 cups flour", "2 eggs"}, r.IngredientsRaw)
	assert.Equal(t, "Mix the flour and eggs in a large bowl.\nFry spoonfuls in butter until golden.", r.InstructionsRaw)
	assert.Equal(t, "PT5M", r.PrepTime)
	assert.InDelta(t, 0.9, r.Confidence, 1e-9)
}

func TestExtractHTMLFallsBackToHeuristic(t *testing.T) {
	page := `<html><head><title>Garlic Rice</title></head><body>
<div>Ingredients</div><ul><li>1 cup rice</li><li>3 cloves garlic</li></ul>
<div>Instructions</div><ol><li>Fry the garlic in oil.</li><li>Add rice and water, then simmer.</li></ol>
<p>Serves 2</p></body></html>`

	r, err := NewPipeline(nil, nil).ExtractHTML(context.Background(), "https://example.com/rice", page)
	require.NoError(t, err)
	assert.Equal(t, MethodHeuristic, r.Method)
	assert.Equal(t, "Garlic Rice", r.Title)
	assert.Equal(t, []string{"1 cup rice", "3 cloves garlic"}, r.IngredientsRaw)
	assert.Equal(t, "Fry the garlic in oil.\nAdd rice and water, then simmer.", r.InstructionsRaw)
	assert.Equal(t, "2", r.Servings)
	assert.InDelta(t, 0.6, r.Confidence, 1e-9)
	assert.Equal(t, "https://example.com/rice", r.SourceURL)
}

func TestExtractHTMLEmptyPageFails(t *testing.T) {
	_, err := NewPipeline(nil, nil).ExtractHTML(context.Background(), "https://example.com/", "<html><body></body></html>")
	assert.ErrorIs(t, err, common.ErrExtractionFailed)
}

type stubEnhancer struct {
	available bool
	recipe    *common.AIRecipe
	err       error
	calls     int
}

func (s *stubEnhancer) Available(context.Context) bool { return s.available }

func (s *stubEnhancer) EnhanceScraping(context.Context, string, string) (*common.AIRecipe, error) {
	s.calls++
	return s.recipe, s.err
}

func TestExtractHTMLUsesAIWhenConfidenceLow(t *testing.T) {
	ai := &stubEnhancer{available: true, recipe: &common.AIRecipe{
		Title:        "Beef Stew",
		Ingredients:  []string{"1 lb beef", "2 carrots"},
		Instructions: "Brown the beef then simmer with the carrots for two hours.",
		Servings:     "4",
	}}

	r, err := NewPipeline(nil, ai).ExtractHTML(context.Background(), "https://example.com/stew", "<html><body><p>Hello</p></body></html>")
	require.NoError(t, err)
	assert.Equal(t, 1, ai.calls)
	assert.Equal(t, MethodAI, r.Method)
	assert.Equal(t, "Beef Stew", r.Title)
	assert.InDelta(t, 0.85, r.Confidence, 1e-9)
}

func TestExtractHTMLAIFailureBecomesWarning(t *testing.T) {
	ai := &stubEnhancer{available: true, err: errors.New("boom")}

	r, err := NewPipeline(nil, ai).ExtractHTML(context.Background(), "https://example.com/x", "<html><body><p>Hello</p></body></html>")
	require.NoError(t, err)
	assert.Equal(t, MethodHeuristic, r.Method)
	assert.Equal(t, "Hello", r.Title)
	assert.Contains(t, r.Warnings, "AI enhancement failed")
}

func TestExtractHTMLSkipsUnavailableAI(t *testing.T) {
	ai := &stubEnhancer{available: false}
	_, err := NewPipeline(nil, ai).ExtractHTML(context.Background(), "https://example.com/x", "<html><body><p>Hello</p></body></html>")
	require.NoError(t, err)
	assert.Zero(t, ai.calls)
}

const lemonBars = `Lemon Bars
Tangy and sweet squares for dessert.
Prep time: 15 minutes
Cook time: 25 minutes
Serves 12

Ingredients:
- 1 cup butter
- 2 cups flour
- 4 eggs

Instructions:
1. Heat the oven to 350F.
2. Bake the crust for 20 minutes.`

const garlicRice = `Garlic Rice
A quick side for weeknights.
Cook time: 20 minutes
Serves 2

Ingredients:
- 1 cup rice
- 3 cloves garlic
- 2 tbsp oil

Instructions:
1. Fry the garlic in the oil.
2. Add the rice and water, then simmer until tender.`

func TestExtractText(t *testing.T) {
	r := ExtractText(lemonBars)

	assert.Equal(t, MethodHeuristic, r.Method)
	assert.Equal(t, "Lemon Bars", r.Title)
	assert.Equal(t, "Tangy and sweet squares for dessert.", r.Description)
	assert.Equal(t, []string{"1 cup butter", "2 cups flour", "4 eggs"}, r.IngredientsRaw)
	assert.Equal(t, "Heat the oven to 350F.\nBake the crust for 20 minutes.", r.InstructionsRaw)
	assert.Equal(t, "15 minutes", r.PrepTime)
	assert.Equal(t, "25 minutes", r.CookTime)
	assert.Equal(t, "12", r.Servings)
	assert.InDelta(t, 1.0, r.Confidence, 1e-9)
	assert.True(t, r.HasMinimumData())
}

func TestExtractTextWithoutHeaders(t *testing.T) {
	r := ExtractText("Quick Toast\n1 slice bread\n1 tbsp butter")

	assert.Equal(t, "Quick Toast", r.Title)
	assert.Equal(t, []string{"1 slice bread", "1 tbsp butter"}, r.IngredientsRaw)
	assert.Empty(t, r.InstructionsRaw)
	assert.Empty(t, r.Description)
	assert.False(t, r.HasMinimumData())
}

func TestParseBulkText(t *testing.T) {
	text := lemonBars + "\n---\nshort note about nothing\n---\n" + garlicRice

	sections := SplitBulkText(text)
	require.Len(t, sections, 2)

	records := ParseBulkText(text)
	require.Len(t, records, 2)
	assert.Equal(t, "Lemon Bars", records[0].Title)
	assert.Equal(t, "Garlic Rice", records[1].Title)
	assert.Len(t, records[1].IngredientsRaw, 3)
}

func TestSplitBulkTextDropsNonRecipes(t *testing.T) {
	filler := strings.Repeat("this paragraph talks about the weather at length. ", 8)
	assert.Empty(t, SplitBulkText(filler))
	assert.Empty(t, SplitBulkText(""))
}

func TestScore(t *testing.T) {
	r := NewRecord("")
	assert.Zero(t, Score(r))

	r.Title = "Soup"
	assert.InDelta(t, 0.3, Score(r), 1e-9)

	r.IngredientsRaw = []string{"1 onion", "2 carrots"}
	r.InstructionsRaw = strings.Repeat("stir ", 12)
	r.Description = "warm"
	r.PrepTime = "10 min"
	r.Servings = "2"
	r.Cuisine = "French"
	r.Category = "main"
	assert.InDelta(t, 1.0, Score(r), 1e-9)
}

func TestAddWarningCapsConfidence(t *testing.T) {
	r := NewRecord("")
	r.Confidence = 0.95
	r.AddWarning("check me")
	assert.InDelta(t, 0.7, r.Confidence, 1e-9)

	r.Confidence = 0.4
	r.AddWarning("again")
	assert.InDelta(t, 0.4, r.Confidence, 1e-9)
	assert.Len(t, r.Warnings, 2)
}

func TestSiteTableResolve(t *testing.T) {
	table := DefaultSiteTable()

	cfg, ok := table.Resolve("www.allrecipes.com")
	assert.True(t, ok)
	assert.Equal(t, "allrecipes.com", cfg.Domain)

	cfg, ok = table.Resolve("m.foodnetwork.com:443")
	assert.True(t, ok)
	assert.Equal(t, "foodnetwork.com", cfg.Domain)

	cfg, ok = table.Resolve("notallrecipes.com")
	assert.False(t, ok)
	assert.Equal(t, "generic", cfg.Domain)
}

func TestLoadSiteConfigs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sites.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sites:
  www.example-recipes.com:
    title: ["h1.t"]
    ingredients: [".ing"]
    confidence_modifier: 0.15
`), 0o644))

	table, err := LoadSiteConfigs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"example-recipes.com"}, table.Domains())

	cfg, ok := table.Resolve("blog.example-recipes.com")
	require.True(t, ok)
	assert.Equal(t, []string{"h1.t"}, cfg.Title)
	assert.InDelta(t, 0.15, cfg.ConfidenceModifier, 1e-9)

	table, err = LoadSiteConfigs(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"allrecipes.com", "epicurious.com", "foodnetwork.com"}, table.Domains())

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("sites: {}\n"), 0o644))
	_, err = LoadSiteConfigs(empty)
	assert.Error(t, err)
}

func TestLoadSiteConfigsShippedFile(t *testing.T) {
	table, err := LoadSiteConfigs(filepath.Join("..", "..", "..", "configs", "sites.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSiteTable().Domains(), table.Domains())
}
