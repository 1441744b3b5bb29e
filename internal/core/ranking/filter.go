// Package ranking 食譜屬性篩選、相關度搜尋與排序
package ranking

import (
	"strings"

	"pantry-cookbook/internal/core/recipe"
)

// TimeBucket 總時間區間
type TimeBucket string

const (
	Quick    TimeBucket = "quick"
	Medium   TimeBucket = "medium"
	Long     TimeBucket = "long"
	Extended TimeBucket = "extended"
)

// ClassifyTime 依總分鐘數分類：<=30 quick，31~60 medium，61~119 long，>=120 extended
func ClassifyTime(total int) TimeBucket {
	switch {
	case total <= 30:
		return Quick
	case total <= 60:
		return Medium
	case total < 120:
		return Long
	default:
		return Extended
	}
}

// ParseTimeBucket 解析時間區間名稱
func ParseTimeBucket(s string) (TimeBucket, bool) {
	switch b := TimeBucket(strings.ToLower(strings.TrimSpace(s))); b {
	case Quick, Medium, Long, Extended:
		return b, true
	}
	return "", false
}

// 較嚴格的飲食標籤隱含較寬鬆的標籤
var dietaryImplications = map[string][]string{
	"vegan":       {"vegetarian", "plant-based"},
	"vegetarian":  {"plant-based"},
	"gluten-free": {"wheat-free"},
	"dairy-free":  {"lactose-free"},
	"keto":        {"low-carb"},
	"paleo":       {"grain-free", "dairy-free"},
}

// Filter 食譜屬性篩選條件，零值欄位表示不限制
type Filter struct {
	Cuisines            []string     `json:"cuisines,omitempty"`
	Categories          []string     `json:"categories,omitempty"`
	Difficulties        []string     `json:"difficulties,omitempty"`
	TimeBuckets         []TimeBucket `json:"time_buckets,omitempty"`
	MinServings         int          `json:"min_servings,omitempty"`
	MaxServings         int          `json:"max_servings,omitempty"`
	DietaryTags         []string     `json:"dietary_tags,omitempty"`
	InclusiveDietary    bool         `json:"inclusive_dietary,omitempty"`
	MakeableOnly        bool         `json:"makeable_only,omitempty"`
	CompleteOnly        bool         `json:"complete_only,omitempty"`
	Query               string       `json:"query,omitempty"`
	RequiredIngredients []int64      `json:"required_ingredients,omitempty"`
	ExcludedIngredients []int64      `json:"excluded_ingredients,omitempty"`
	MinRating           float64      `json:"min_rating,omitempty"`
}

// IsEmpty 是否沒有任何條件
func (f *Filter) IsEmpty() bool {
	return len(f.Cuisines) == 0 && len(f.Categories) == 0 && len(f.Difficulties) == 0 &&
		len(f.TimeBuckets) == 0 && f.MinServings == 0 && f.MaxServings == 0 &&
		len(f.DietaryTags) == 0 && !f.MakeableOnly && !f.CompleteOnly &&
		strings.TrimSpace(f.Query) == "" && len(f.RequiredIngredients) == 0 &&
		len(f.ExcludedIngredients) == 0 && f.MinRating == 0
}

// Matches 判斷單一食譜是否符合所有條件
func (f *Filter) Matches(r *recipe.Recipe, available map[int64]struct{}) bool {
	if len(f.Cuisines) > 0 && !containsFold(f.Cuisines, r.Cuisine) {
		return false
	}
	if len(f.Categories) > 0 && !containsFold(f.Categories, r.Category) {
		return false
	}
	if len(f.Difficulties) > 0 && !containsFold(f.Difficulties, r.Difficulty) {
		return false
	}
	if len(f.TimeBuckets) > 0 {
		bucket := ClassifyTime(r.TotalTime())
		found := false
		for _, b := range f.TimeBuckets {
			if b == bucket {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinServings > 0 && r.Servings < f.MinServings {
		return false
	}
	if f.MaxServings > 0 && r.Servings > f.MaxServings {
		return false
	}
	if len(f.DietaryTags) > 0 && !satisfiesDietary(r.DietaryTags, f.DietaryTags, f.InclusiveDietary) {
		return false
	}
	if f.MakeableOnly && !makeable(r, available) {
		return false
	}
	if f.CompleteOnly && !IsComplete(r) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(r.Name), q) && !strings.Contains(strings.ToLower(r.Description), q) {
			return false
		}
	}
	if len(f.RequiredIngredients) > 0 || len(f.ExcludedIngredients) > 0 {
		has := make(map[int64]bool, len(r.Ingredients))
		for _, ri := range r.Ingredients {
			has[ri.IngredientID] = true
		}
		for _, id := range f.RequiredIngredients {
			if !has[id] {
				return false
			}
		}
		for _, id := range f.ExcludedIngredients {
			if has[id] {
				return false
			}
		}
	}
	if f.MinRating > 0 && (r.Rating == nil || *r.Rating < f.MinRating) {
		return false
	}
	return true
}

// Apply 依條件篩選食譜，保留原本順序
func Apply(recipes []recipe.Recipe, f Filter, available map[int64]struct{}) []recipe.Recipe {
	if f.IsEmpty() {
		return recipes
	}
	out := make([]recipe.Recipe, 0, len(recipes))
	for i := range recipes {
		if f.Matches(&recipes[i], available) {
			out = append(out, recipes[i])
		}
	}
	return out
}

// IsComplete 食譜有足夠的步驟說明與至少一項必要食材
func IsComplete(r *recipe.Recipe) bool {
	return len(strings.TrimSpace(r.Instructions)) >= 50 && len(r.RequiredIDs()) > 0
}

func makeable(r *recipe.Recipe, available map[int64]struct{}) bool {
	required := r.RequiredIDs()
	if len(required) == 0 {
		return false
	}
	for _, id := range required {
		if _, ok := available[id]; !ok {
			return false
		}
	}
	return true
}

func satisfiesDietary(recipeTags, wanted []string, inclusive bool) bool {
	have := make(map[string]bool, len(recipeTags)*2)
	for _, t := range recipeTags {
		t = strings.ToLower(strings.TrimSpace(t))
		have[t] = true
		if inclusive {
			for _, implied := range dietaryImplications[t] {
				have[implied] = true
			}
		}
	}
	for _, w := range wanted {
		if !have[strings.ToLower(strings.TrimSpace(w))] {
			return false
		}
	}
	return true
}

func containsFold(set []string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}
