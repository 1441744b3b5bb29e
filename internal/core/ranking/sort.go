package ranking

import (
	"sort"
	"strings"

	"pantry-cookbook/internal/core/recipe"
)

// SortOrder 搜尋結果排序方式
type SortOrder string

const (
	SortRelevance     SortOrder = "relevance"
	SortNameAsc       SortOrder = "name_asc"
	SortNameDesc      SortOrder = "name_desc"
	SortPrepTimeAsc   SortOrder = "prep_time_asc"
	SortPrepTimeDesc  SortOrder = "prep_time_desc"
	SortTotalTimeAsc  SortOrder = "total_time_asc"
	SortTotalTimeDesc SortOrder = "total_time_desc"
	SortCreatedAsc    SortOrder = "created_asc"
	SortCreatedDesc   SortOrder = "created_desc"
	SortRatingDesc    SortOrder = "rating_desc"
)

// ParseSortOrder 解析排序名稱，未知值回傳 false
func ParseSortOrder(s string) (SortOrder, bool) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortRelevance, SortNameAsc, SortNameDesc, SortPrepTimeAsc, SortPrepTimeDesc,
		SortTotalTimeAsc, SortTotalTimeDesc, SortCreatedAsc, SortCreatedDesc, SortRatingDesc:
		return o, true
	}
	return "", false
}

// SortHits 穩定排序，相同鍵值維持原順序
func SortHits(hits []SearchHit, order SortOrder) {
	less := func(i, j int) bool { return false }
	switch order {
	case SortRelevance:
		less = func(i, j int) bool { return hits[i].Score > hits[j].Score }
	case SortNameAsc:
		less = func(i, j int) bool {
			return strings.ToLower(hits[i].Recipe.Name) < strings.ToLower(hits[j].Recipe.Name)
		}
	case SortNameDesc:
		less = func(i, j int) bool {
			return strings.ToLower(hits[i].Recipe.Name) > strings.ToLower(hits[j].Recipe.Name)
		}
	case SortPrepTimeAsc:
		less = func(i, j int) bool { return hits[i].Recipe.PrepTimeMinutes < hits[j].Recipe.PrepTimeMinutes }
	case SortPrepTimeDesc:
		less = func(i, j int) bool { return hits[i].Recipe.PrepTimeMinutes > hits[j].Recipe.PrepTimeMinutes }
	case SortTotalTimeAsc:
		less = func(i, j int) bool { return hits[i].Recipe.TotalTime() < hits[j].Recipe.TotalTime() }
	case SortTotalTimeDesc:
		less = func(i, j int) bool { return hits[i].Recipe.TotalTime() > hits[j].Recipe.TotalTime() }
	case SortCreatedAsc:
		less = func(i, j int) bool { return hits[i].Recipe.CreatedAt.Before(hits[j].Recipe.CreatedAt) }
	case SortCreatedDesc:
		less = func(i, j int) bool { return hits[i].Recipe.CreatedAt.After(hits[j].Recipe.CreatedAt) }
	case SortRatingDesc:
		less = func(i, j int) bool { return ratingOf(hits[i]) > ratingOf(hits[j]) }
	}
	sort.SliceStable(hits, less)
}

// SortRecipes 不計相關度的食譜排序
func SortRecipes(recipes []recipe.Recipe, order SortOrder) {
	hits := make([]SearchHit, len(recipes))
	for i := range recipes {
		hits[i] = SearchHit{Recipe: recipes[i]}
	}
	SortHits(hits, order)
	for i := range hits {
		recipes[i] = hits[i].Recipe
	}
}

func ratingOf(h SearchHit) float64 {
	if h.Recipe.Rating == nil {
		return 0
	}
	return *h.Recipe.Rating
}

// Page 分頁結果
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Paginate 取出第 page 頁（從 1 起算），超出範圍回傳空頁
func Paginate[T any](items []T, page, size int) Page[T] {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	start := (page - 1) * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return Page[T]{Items: out, Total: len(items), Page: page, PageSize: size}
}
