package extraction

import (
	"encoding/json"
	"html"
	"strconv"
	"strings"

	"pantry-cookbook/internal/pkg/common"

	"github.com/PuerkitoBio/goquery"
)

// JSON-LD 信心分數
const (
	jsonLDBase         = 0.4
	jsonLDIngredients  = 0.3
	jsonLDInstructions = 0.2
	jsonLDField        = 0.05
)

var jsonLDNutrition = map[string]string{
	"calories":            "calories",
	"proteinContent":      "protein",
	"carbohydrateContent": "carbs",
	"fatContent":          "fat",
	"fiberContent":        "fiber",
	"sodiumContent":       "sodium",
	"sugarContent":        "sugar",
}

// extractJSONLD 尋找 @type 為 Recipe 的 JSON-LD 區塊，找不到或內容為空時回傳 nil
func extractJSONLD(doc *goquery.Document, sourceURL string) *Record {
	var found *Record
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data interface{}
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &data); err != nil {
			return true
		}
		node := findRecipeNode(data)
		if node == nil {
			return true
		}
		r := recordFromJSONLD(node, sourceURL)
		if r.Title == "" && len(r.IngredientsRaw) == 0 {
			return true
		}
		found = r
		return false
	})
	return found
}

// findRecipeNode 深度優先搜尋陣列、@graph 與巢狀物件
func findRecipeNode(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if n := findRecipeNode(item); n != nil {
				return n
			}
		}
	case map[string]interface{}:
		if isRecipeType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			if n := findRecipeNode(graph); n != nil {
				return n
			}
		}
		if main, ok := t["mainEntity"]; ok {
			return findRecipeNode(main)
		}
	}
	return nil
}

func isRecipeType(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, "Recipe")
	case []interface{}:
		for _, item := range t {
			if isRecipeType(item) {
				return true
			}
		}
	}
	return false
}

func recordFromJSONLD(node map[string]interface{}, sourceURL string) *Record {
	r := NewRecord(sourceURL)
	r.Method = MethodJSONLD
	r.Title = ldText(node["name"])
	r.Description = ldText(node["description"])

	ingredients := node["recipeIngredient"]
	if ingredients == nil {
		ingredients = node["ingredients"]
	}
	for _, item := range ldList(ingredients) {
		if v := ldText(item); v != "" {
			r.IngredientsRaw = append(r.IngredientsRaw, v)
		}
	}
	r.InstructionsRaw = strings.Join(instructionSteps(node["recipeInstructions"]), "\n")

	r.PrepTime = ldText(node["prepTime"])
	r.CookTime = ldText(node["cookTime"])
	r.TotalTime = ldText(node["totalTime"])
	r.Servings = ldFirst(node["recipeYield"])
	r.Cuisine = ldJoined(node["recipeCuisine"])
	r.Category = ldJoined(node["recipeCategory"])
	r.ImageURL = imageURL(node["image"])
	if rating, ok := node["aggregateRating"].(map[string]interface{}); ok {
		r.Rating = ldText(rating["ratingValue"])
	}
	if nutrition, ok := node["nutrition"].(map[string]interface{}); ok {
		for key, name := range jsonLDNutrition {
			if v := ldText(nutrition[key]); v != "" {
				r.Nutrition[name] = v
			}
		}
	}

	c := jsonLDBase
	if len(r.IngredientsRaw) > 0 {
		c += jsonLDIngredients
	}
	if r.InstructionsRaw != "" {
		c += jsonLDInstructions
	}
	if r.PrepTime != "" {
		c += jsonLDField
	}
	if r.CookTime != "" {
		c += jsonLDField
	}
	if r.Servings != "" {
		c += jsonLDField
	}
	r.Confidence = clamp(c)
	return r
}

// instructionSteps 支援字串、字串陣列、HowToStep 與 HowToSection
func instructionSteps(v interface{}) []string {
	steps := make([]string, 0)
	switch t := v.(type) {
	case string:
		for _, line := range strings.Split(html.UnescapeString(t), "\n") {
			if line = common.NormalizeSpace(line); line != "" {
				steps = append(steps, line)
			}
		}
	case []interface{}:
		for _, item := range t {
			steps = append(steps, instructionSteps(item)...)
		}
	case map[string]interface{}:
		if items, ok := t["itemListElement"]; ok {
			return instructionSteps(items)
		}
		if s := ldText(t["text"]); s != "" {
			steps = append(steps, s)
		} else if s := ldText(t["name"]); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}

// ldText 取出字串或數字值，HTML 實體會被解碼
func ldText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return common.NormalizeSpace(html.UnescapeString(t))
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]interface{}:
		if s, ok := t["@value"]; ok {
			return ldText(s)
		}
	}
	return ""
}

func ldList(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return t
	case nil:
		return nil
	default:
		return []interface{}{t}
	}
}

func ldFirst(v interface{}) string {
	for _, item := range ldList(v) {
		if s := ldText(item); s != "" {
			return s
		}
	}
	return ""
}

func ldJoined(v interface{}) string {
	parts := make([]string, 0)
	for _, item := range ldList(v) {
		if s := ldText(item); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func imageURL(v interface{}) string {
	for _, item := range ldList(v) {
		switch t := item.(type) {
		case string:
			return strings.TrimSpace(t)
		case map[string]interface{}:
			if u := ldText(t["url"]); u != "" {
				return u
			}
		}
	}
	return ""
}
