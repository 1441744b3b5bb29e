// Package shopping 彙整多道食譜缺少的食材，依分類輸出購物清單
package shopping

import (
	"strings"

	"pantry-cookbook/internal/core/recipe"
	"pantry-cookbook/internal/pkg/common"
)

// Lookup 食材 id 對應名稱與分類
type Lookup interface {
	Name(id int64) string
	Category(id int64) string
}

// Section 單一分類的購物項目
type Section struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// List 依分類首次出現順序排列的購物清單
type List struct {
	Sections []Section `json:"sections"`
}

// Options 購物清單選項
type Options struct {
	IncludeOptional bool `json:"include_optional"`
}

// Build 彙整缺少的食材；同分類內相同字串只保留一行，不同數量不合併
func Build(recipes []recipe.Recipe, available map[int64]struct{}, lookup Lookup, opts Options) List {
	list := List{Sections: make([]Section, 0)}
	index := make(map[string]int)
	seen := make(map[string]map[string]bool)

	for i := range recipes {
		for _, ri := range recipes[i].Ingredients {
			if ri.IsOptional && !opts.IncludeOptional {
				continue
			}
			if _, ok := available[ri.IngredientID]; ok {
				continue
			}
			category := lookup.Category(ri.IngredientID)
			line := FormatLine(ri, lookup.Name(ri.IngredientID))

			pos, ok := index[category]
			if !ok {
				pos = len(list.Sections)
				index[category] = pos
				list.Sections = append(list.Sections, Section{Category: category, Items: make([]string, 0)})
				seen[category] = make(map[string]bool)
			}
			if seen[category][line] {
				continue
			}
			seen[category][line] = true
			list.Sections[pos].Items = append(list.Sections[pos].Items, line)
		}
	}
	return list
}

// FormatLine 組成 "{數量} {單位} ({處理方式}) {名稱}"，空白欄位省略
func FormatLine(ri recipe.RecipeIngredient, name string) string {
	parts := make([]string, 0, 4)
	if ri.Quantity > 0 {
		parts = append(parts, common.FormatQuantity(ri.Quantity))
	}
	if u := strings.TrimSpace(ri.Unit); u != "" {
		parts = append(parts, u)
	}
	if p := strings.TrimSpace(ri.PreparationNote); p != "" {
		parts = append(parts, "("+p+")")
	}
	parts = append(parts, name)
	return strings.Join(parts, " ")
}

// IsEmpty 清單是否沒有任何項目
func (l List) IsEmpty() bool {
	return len(l.Sections) == 0
}

// Count 項目總數
func (l List) Count() int {
	n := 0
	for _, s := range l.Sections {
		n += len(s.Items)
	}
	return n
}

// Map 轉為 分類 -> 項目 的對照
func (l List) Map() map[string][]string {
	out := make(map[string][]string, len(l.Sections))
	for _, s := range l.Sections {
		out[s.Category] = append([]string(nil), s.Items...)
	}
	return out
}

// Text 純文字條列，依分類分組
func (l List) Text() string {
	var b strings.Builder
	for i, s := range l.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(common.TitleCase(s.Category))
		b.WriteString(":\n")
		for _, item := range s.Items {
			b.WriteString("- ")
			b.WriteString(item)
			b.WriteString("\n")
		}
	}
	return b.String()
}
