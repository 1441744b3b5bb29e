package recipe

import (
	"context"
	"time"
)

// Recipe 食譜
type Recipe struct {
	ID              int64              `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Instructions    string             `json:"instructions"`
	PrepTimeMinutes int                `json:"prep_time_minutes"`
	CookTimeMinutes int                `json:"cook_time_minutes"`
	Servings        int                `json:"servings"`
	SourceURL       string             `json:"source_url,omitempty"`
	ImagePath       string             `json:"image_path,omitempty"`
	Cuisine         string             `json:"cuisine,omitempty"`
	Category        string             `json:"category,omitempty"`
	Difficulty      string             `json:"difficulty,omitempty"`
	DietaryTags     []string           `json:"dietary_tags"`
	Rating          *float64           `json:"rating,omitempty"`
	Nutrition       map[string]string  `json:"nutrition,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	Ingredients     []RecipeIngredient `json:"ingredients"`
}

// RecipeIngredient 食譜所需食材，以 (RecipeID, IngredientID) 唯一
type RecipeIngredient struct {
	RecipeID        int64   `json:"recipe_id"`
	IngredientID    int64   `json:"ingredient_id"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	PreparationNote string  `json:"preparation_note,omitempty"`
	DisplayOrder    int     `json:"display_order"`
	IsOptional      bool    `json:"is_optional"`
}

// TotalTime 準備與烹調時間總和（分鐘）
func (r *Recipe) TotalTime() int {
	return r.PrepTimeMinutes + r.CookTimeMinutes
}

// RequiredIDs 非選用食材 id，依顯示順序
func (r *Recipe) RequiredIDs() []int64 {
	ids := make([]int64, 0, len(r.Ingredients))
	seen := make(map[int64]bool, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		if ri.IsOptional || seen[ri.IngredientID] {
			continue
		}
		seen[ri.IngredientID] = true
		ids = append(ids, ri.IngredientID)
	}
	return ids
}

// IngredientIDs 全部食材 id（含選用）
func (r *Recipe) IngredientIDs() []int64 {
	ids := make([]int64, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		ids[i] = ri.IngredientID
	}
	return ids
}

// Stats 資料庫統計
type Stats struct {
	Recipes      int `json:"recipes"`
	Ingredients  int `json:"ingredients"`
	PantryItems  int `json:"pantry_items"`
	WithImages   int `json:"with_images"`
	ScrapedTotal int `json:"scraped_total"`
}

// Repository 食譜儲存介面
type Repository interface {
	GetRecipe(ctx context.Context, id int64) (*Recipe, error)
	ListRecipes(ctx context.Context) ([]Recipe, error)
	SearchRecipes(ctx context.Context, query string) ([]Recipe, error)
	UpsertRecipe(ctx context.Context, r *Recipe) error
	DeleteRecipe(ctx context.Context, id int64) error
	UpsertRecipeIngredient(ctx context.Context, ri *RecipeIngredient) error
	SetRecipeImage(ctx context.Context, id int64, path string) error
	Stats(ctx context.Context) (*Stats, error)
}
