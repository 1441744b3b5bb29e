package parsing

import (
	"regexp"
	"strings"

	"pantry-cookbook/internal/pkg/common"
)

// 難度等級
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var (
	easyWords = []string{"easy", "simple", "basic", "beginner"}
	hardWords = []string{"hard", "difficult", "advanced", "expert"}
)

// ClassifyDifficulty 依關鍵字判斷難度，預設 medium
func ClassifyDifficulty(text string) string {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, easyWords):
		return DifficultyEasy
	case containsAny(t, hardWords):
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

type aliasGroup struct {
	name    string
	aliases []string
}

// 順序即比對優先序
var cuisineAliases = []aliasGroup{
	{"American", []string{"american", "usa", "us"}},
	{"Italian", []string{"italian", "italia"}},
	{"Mexican", []string{"mexican", "mexico", "tex-mex"}},
	{"Chinese", []string{"chinese", "china", "cantonese", "sichuan", "szechuan"}},
	{"Indian", []string{"indian", "india"}},
	{"French", []string{"french", "france"}},
	{"Thai", []string{"thai", "thailand"}},
	{"Japanese", []string{"japanese", "japan"}},
	{"Korean", []string{"korean", "korea"}},
	{"Greek", []string{"greek", "greece"}},
	{"Mediterranean", []string{"mediterranean", "med"}},
	{"Middle Eastern", []string{"middle eastern", "lebanese"}},
	{"Vietnamese", []string{"vietnamese", "vietnam"}},
	{"Spanish", []string{"spanish", "spain"}},
}

// NormalizeCuisine 將料理別名正規化，未知者以首字大寫回傳
func NormalizeCuisine(text string) string {
	t := common.NormalizeSpace(strings.ToLower(text))
	if t == "" {
		return ""
	}
	for _, g := range cuisineAliases {
		for _, a := range g.aliases {
			if hasWord(t, a) {
				return g.name
			}
		}
	}
	return common.TitleCase(t)
}

// 餐點分類
const (
	CategoryBreakfast = "breakfast"
	CategoryLunch     = "lunch"
	CategoryDinner    = "dinner"
	CategoryDessert   = "dessert"
	CategoryAppetizer = "appetizer"
	CategorySnack     = "snack"
	CategorySide      = "side"
	CategoryDrink     = "drink"
	CategoryMain      = "main"
)

var categoryAliases = []aliasGroup{
	{CategoryBreakfast, []string{"breakfast", "brunch"}},
	{CategoryLunch, []string{"lunch"}},
	{CategoryDinner, []string{"dinner", "supper"}},
	{CategoryDessert, []string{"dessert", "sweet", "cake", "cookie", "cookies", "pie"}},
	{CategoryAppetizer, []string{"appetizer", "appetizers", "starter", "starters"}},
	{CategorySnack, []string{"snack", "snacks"}},
	{CategorySide, []string{"side", "sides", "side dish"}},
	{CategoryDrink, []string{"drink", "drinks", "beverage", "beverages", "cocktail", "smoothie"}},
	{CategoryMain, []string{"main", "main course", "entree", "entrée"}},
}

// NormalizeCategory 將餐點分類正規化，無法判斷時回傳空字串
func NormalizeCategory(text string) string {
	t := common.NormalizeSpace(strings.ToLower(text))
	if t == "" {
		return ""
	}
	for _, g := range categoryAliases {
		for _, a := range g.aliases {
			if hasWord(t, a) {
				return g.name
			}
		}
	}
	return ""
}

var dietaryIndicators = []aliasGroup{
	{"vegetarian", []string{"vegetarian", "veggie"}},
	{"vegan", []string{"vegan"}},
	{"gluten-free", []string{"gluten-free", "gluten free", "gf"}},
	{"dairy-free", []string{"dairy-free", "dairy free", "lactose free", "lactose-free"}},
	{"keto", []string{"keto", "ketogenic"}},
	{"paleo", []string{"paleo"}},
	{"low-carb", []string{"low-carb", "low carb", "keto"}},
}

// DetectDietaryTags 以整字比對找出飲食標籤，依固定順序回傳且不重複
func DetectDietaryTags(text string) []string {
	t := strings.ToLower(text)
	tags := make([]string, 0)
	for _, g := range dietaryIndicators {
		for _, w := range g.aliases {
			if hasWord(t, w) {
				tags = append(tags, g.name)
				break
			}
		}
	}
	return tags
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

var wordPatterns = map[string]*regexp.Regexp{}

// hasWord 以字邊界比對，避免 "us" 命中 "asparagus"
func hasWord(text, word string) bool {
	re, ok := wordPatterns[word]
	if !ok {
		re = regexp.MustCompile(`(^|[^\pL\pN])` + regexp.QuoteMeta(word) + `($|[^\pL\pN])`)
	}
	return re.MatchString(text)
}

func init() {
	for _, groups := range [][]aliasGroup{cuisineAliases, categoryAliases, dietaryIndicators} {
		for _, g := range groups {
			for _, a := range g.aliases {
				wordPatterns[a] = regexp.MustCompile(`(^|[^\pL\pN])` + regexp.QuoteMeta(a) + `($|[^\pL\pN])`)
			}
		}
	}
}
