package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// 食材分類
const (
	CategoryProtein   = "protein"
	CategoryVegetable = "vegetable"
	CategoryFruit     = "fruit"
	CategoryDairy     = "dairy"
	CategoryGrain     = "grain"
	CategorySpice     = "spice"
	CategoryHerb      = "herb"
	CategoryOil       = "oil"
	CategorySweetener = "sweetener"
	CategoryCondiment = "condiment"
	CategoryBaking    = "baking"
	CategoryOther     = "other"
	CategoryUnknown   = "unknown"
)

var knownCategories = map[string]bool{
	CategoryProtein: true, CategoryVegetable: true, CategoryFruit: true, CategoryDairy: true,
	CategoryGrain: true, CategorySpice: true, CategoryHerb: true, CategoryOil: true,
	CategorySweetener: true, CategoryCondiment: true, CategoryBaking: true, CategoryOther: true,
}

// IsKnownCategory 檢查分類是否在列舉內
func IsKnownCategory(c string) bool {
	return knownCategories[c]
}

// Ingredient 食材目錄項目
type Ingredient struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Substitutes []string  `json:"substitutes"`
	StorageTips string    `json:"storage_tips"`
	CreatedAt   time.Time `json:"created_at"`
}

// MetadataPatch 可編輯的食材欄位，nil 表示不變
type MetadataPatch struct {
	Category    *string   `json:"category"`
	Substitutes *[]string `json:"substitutes"`
	StorageTips *string   `json:"storage_tips"`
}

// Repository 食材儲存介面
type Repository interface {
	GetIngredient(ctx context.Context, id int64) (*Ingredient, error)
	GetIngredients(ctx context.Context, ids []int64) ([]Ingredient, error)
	FindIngredientByName(ctx context.Context, name string) (*Ingredient, error)
	ListIngredients(ctx context.Context) ([]Ingredient, error)
	SearchIngredients(ctx context.Context, query string) ([]Ingredient, error)
	UpsertIngredient(ctx context.Context, in *Ingredient) error
	DeleteIngredient(ctx context.Context, id int64) error
	IngredientReferences(ctx context.Context, id int64) (int, error)
}

// Lookup id 到食材的對照表，查無資料時回傳安全預設值
type Lookup map[int64]Ingredient

// Name 回傳食材名稱，未知 id 回傳 "Unknown(id)"
func (l Lookup) Name(id int64) string {
	if ing, ok := l[id]; ok {
		return ing.Name
	}
	return fmt.Sprintf("Unknown(%d)", id)
}

// Category 回傳食材分類，未知 id 回傳 unknown
func (l Lookup) Category(id int64) string {
	if ing, ok := l[id]; ok && ing.Category != "" {
		return ing.Category
	}
	return CategoryUnknown
}

// NewLookup 由食材列表建立對照表
func NewLookup(items []Ingredient) Lookup {
	l := make(Lookup, len(items))
	for _, it := range items {
		l[it.ID] = it
	}
	return l
}

// NormalizeName 食材名稱比對用的正規化
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
