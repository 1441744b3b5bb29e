package shopping

import (
	"context"

	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/core/recipe"
	"pantry-cookbook/internal/pkg/common"

	"go.uber.org/zap"
)

// RecipeSource 依 id 取得多筆食譜
type RecipeSource interface {
	GetMany(ctx context.Context, ids []int64) ([]recipe.Recipe, error)
}

// PantrySnapshot 提供家庭可用食材快照
type PantrySnapshot interface {
	AvailableIDs(ctx context.Context, householdID int64) (map[int64]struct{}, error)
}

// IngredientResolver 批次解析食材名稱與分類
type IngredientResolver interface {
	Resolve(ctx context.Context, ids []int64) catalog.Lookup
}

// Service 購物清單服務
type Service struct {
	recipes RecipeSource
	pantry  PantrySnapshot
	catalog IngredientResolver
}

// NewService 創建購物清單服務
func NewService(recipes RecipeSource, pantry PantrySnapshot, catalog IngredientResolver) *Service {
	return &Service{recipes: recipes, pantry: pantry, catalog: catalog}
}

// BuildForHousehold 以家庭目前的食材櫃產生購物清單，不存在的食譜略過
func (s *Service) BuildForHousehold(ctx context.Context, householdID int64, recipeIDs []int64, includeOptional bool) (List, error) {
	if len(recipeIDs) == 0 {
		return List{}, common.NewValidationError("at least one recipe id is required")
	}
	recipes, err := s.recipes.GetMany(ctx, recipeIDs)
	if err != nil {
		return List{}, err
	}
	available, err := s.pantry.AvailableIDs(ctx, householdID)
	if err != nil {
		return List{}, err
	}

	ids := make([]int64, 0)
	for i := range recipes {
		ids = append(ids, recipes[i].IngredientIDs()...)
	}
	lookup := s.catalog.Resolve(ctx, ids)

	list := Build(recipes, available, lookup, Options{IncludeOptional: includeOptional})
	common.LogInfo("購物清單已產生",
		zap.Int64("household_id", householdID),
		zap.Int("recipes", len(recipes)),
		zap.Int("items", list.Count()),
	)
	return list, nil
}
