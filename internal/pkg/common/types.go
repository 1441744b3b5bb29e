package common

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsedIngredient 單一食材行的結構化結果
type ParsedIngredient struct {
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Name        string  `json:"name"`
	Preparation string  `json:"preparation,omitempty"`
	Optional    bool    `json:"optional"`
	Original    string  `json:"original,omitempty"`
}

// String 組成 "數量 單位 名稱, 處理方式" 的顯示字串
func (p ParsedIngredient) String() string {
	parts := make([]string, 0, 3)
	if p.Quantity > 0 {
		parts = append(parts, FormatQuantity(p.Quantity))
	}
	if p.Unit != "" {
		parts = append(parts, p.Unit)
	}
	parts = append(parts, p.Name)
	out := strings.Join(parts, " ")
	if p.Preparation != "" {
		out += ", " + p.Preparation
	}
	return out
}

// AIRecipe AI 從網頁擷取的食譜欄位
type AIRecipe struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	PrepTime     string   `json:"prep_time"`
	CookTime     string   `json:"cook_time"`
	Servings     string   `json:"servings"`
	Cuisine      string   `json:"cuisine"`
	Difficulty   string   `json:"difficulty"`
	DietaryTags  []string `json:"dietary_tags"`
}

// FormatQuantity 整數不顯示小數，其他以最短表示輸出
func FormatQuantity(q float64) string {
	if q == float64(int64(q)) {
		return strconv.FormatInt(int64(q), 10)
	}
	return strconv.FormatFloat(q, 'g', -1, 64)
}

// FormatMinutes 以 "1h 30m" 形式輸出分鐘數
func FormatMinutes(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
