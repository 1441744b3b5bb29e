// Package matching 比對食譜必要食材與食材櫃，計算可做程度與排序
package matching

import (
	"sort"
	"strings"

	"pantry-cookbook/internal/core/recipe"
	"pantry-cookbook/internal/pkg/common"
)

// 缺少時額外加權的關鍵分類
var criticalCategories = map[string]bool{
	"protein": true,
	"oil":     true,
	"dairy":   true,
}

const (
	criticalWeight       = 0.5
	partialThreshold     = 0.5
	defaultMaxMissing    = 2
	maxSuggestionResults = 10
)

// Lookup 食材 id 對應名稱與分類，未知 id 必須回傳安全預設值
type Lookup interface {
	Name(id int64) string
	Category(id int64) string
}

// RecipeMatch 單一食譜對目前食材櫃的比對結果，每次查詢重新計算
type RecipeMatch struct {
	Recipe               *recipe.Recipe `json:"recipe"`
	AvailableIngredients []string       `json:"available_ingredients"`
	MissingIngredients   []string       `json:"missing_ingredients"`
	MissingIDs           []int64        `json:"missing_ingredient_ids"`
	MatchPercentage      float64        `json:"match_percentage"`
	CanMake              bool           `json:"can_make"`
	DifficultyScore      float64        `json:"difficulty_score"`
	Status               string         `json:"status"`
}

// 比對狀態
const (
	StatusCanMake     = "can_make"
	StatusAlmost      = "almost"
	StatusMissingSome = "missing_some"
	StatusNeedMany    = "need_many"
)

// Match 計算單一食譜的比對結果；必要食材為空時回傳 ErrEmptyRequiredSet，recipe 為 nil 時 panic
func Match(r *recipe.Recipe, requiredIDs []int64, available map[int64]struct{}, lookup Lookup) (RecipeMatch, error) {
	if r == nil {
		panic("matching: nil recipe")
	}
	required := dedupe(requiredIDs)
	if len(required) == 0 {
		return RecipeMatch{}, common.ErrEmptyRequiredSet.Withf("recipe %d has no required ingredients", r.ID)
	}

	m := RecipeMatch{
		Recipe:               r,
		AvailableIngredients: make([]string, 0, len(required)),
		MissingIngredients:   make([]string, 0),
		MissingIDs:           make([]int64, 0),
	}
	critical := 0
	for _, id := range required {
		if _, ok := available[id]; ok {
			m.AvailableIngredients = append(m.AvailableIngredients, lookup.Name(id))
			continue
		}
		m.MissingIngredients = append(m.MissingIngredients, lookup.Name(id))
		m.MissingIDs = append(m.MissingIDs, id)
		if criticalCategories[strings.ToLower(lookup.Category(id))] {
			critical++
		}
	}

	m.MatchPercentage = float64(len(m.AvailableIngredients)) / float64(len(required))
	m.CanMake = len(m.MissingIDs) == 0
	m.DifficultyScore = float64(len(m.MissingIDs)) + criticalWeight*float64(critical)
	m.Status = StatusLabel(m)
	return m, nil
}

// StatusLabel 比對結果的顯示狀態
func StatusLabel(m RecipeMatch) string {
	switch {
	case m.CanMake:
		return StatusCanMake
	case m.MatchPercentage >= 0.8:
		return StatusAlmost
	case m.MatchPercentage >= 0.5:
		return StatusMissingSome
	default:
		return StatusNeedMany
	}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// SortMode 比對結果排序方式
type SortMode string

const (
	SortBestMatch SortMode = "best_match"
	SortEasiest   SortMode = "easiest"
	SortName      SortMode = "name"
)

// ParseSortMode 解析排序名稱，空字串視為 best_match
func ParseSortMode(s string) (SortMode, bool) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SortBestMatch, true
	case SortBestMatch, SortEasiest, SortName:
		return m, true
	}
	return "", false
}

// Options FindMatches 的篩選與排序選項
type Options struct {
	StrictMode     bool     `json:"strict_mode"`
	IncludePartial bool     `json:"include_partial"`
	Sort           SortMode `json:"sort"`
}

// FindMatches 比對所有食譜並依選項過濾排序；沒有必要食材的食譜直接略過
func FindMatches(recipes []recipe.Recipe, available map[int64]struct{}, lookup Lookup, opts Options) []RecipeMatch {
	matches := make([]RecipeMatch, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		m, err := Match(r, r.RequiredIDs(), available, lookup)
		if err != nil {
			continue
		}
		if opts.StrictMode && !m.CanMake {
			continue
		}
		if !opts.IncludePartial && m.MatchPercentage < partialThreshold {
			continue
		}
		matches = append(matches, m)
	}
	SortMatches(matches, opts.Sort)
	return matches
}

// SortMatches 穩定排序，相同鍵值維持目錄順序
func SortMatches(matches []RecipeMatch, mode SortMode) {
	switch mode {
	case SortEasiest:
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].DifficultyScore < matches[j].DifficultyScore
		})
	case SortName:
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Recipe.Name < matches[j].Recipe.Name
		})
	default:
		sort.SliceStable(matches, func(i, j int) bool {
			a, b := matches[i], matches[j]
			if a.MatchPercentage != b.MatchPercentage {
				return a.MatchPercentage > b.MatchPercentage
			}
			return a.DifficultyScore < b.DifficultyScore
		})
	}
}

// SuggestCompletions 找出只差 1~maxMissing 項食材的食譜，缺得少的優先，最多 10 筆
func SuggestCompletions(recipes []recipe.Recipe, available map[int64]struct{}, lookup Lookup, maxMissing int) []RecipeMatch {
	if maxMissing <= 0 {
		maxMissing = defaultMaxMissing
	}
	all := FindMatches(recipes, available, lookup, Options{StrictMode: false, IncludePartial: true})

	out := make([]RecipeMatch, 0)
	for _, m := range all {
		n := len(m.MissingIDs)
		if m.CanMake || n < 1 || n > maxMissing {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if len(a.MissingIDs) != len(b.MissingIDs) {
			return len(a.MissingIDs) < len(b.MissingIDs)
		}
		return a.MatchPercentage > b.MatchPercentage
	})
	if len(out) > maxSuggestionResults {
		out = out[:maxSuggestionResults]
	}
	return out
}
