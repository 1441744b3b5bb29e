package recipe

import (
	"context"
	"strings"
	"time"

	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/pkg/common"

	"go.uber.org/zap"
)

// IngredientChecker 食譜驗證食材存在所需的介面
type IngredientChecker interface {
	Get(ctx context.Context, id int64) (*catalog.Ingredient, error)
}

// Service 食譜目錄服務
type Service struct {
	repo        Repository
	ingredients IngredientChecker
	now         func() time.Time
}

// NewService 創建食譜目錄服務
func NewService(repo Repository, ingredients IngredientChecker) *Service {
	return &Service{repo: repo, ingredients: ingredients, now: time.Now}
}

// Create 建立食譜，依傳入順序指定食材顯示順序
func (s *Service) Create(ctx context.Context, in Recipe) (*Recipe, error) {
	in.Name = common.NormalizeSpace(in.Name)
	if err := validate(&in); err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(in.Ingredients))
	for i := range in.Ingredients {
		ri := &in.Ingredients[i]
		if seen[ri.IngredientID] {
			return nil, common.NewValidationErrorf("ingredient %d listed twice", ri.IngredientID)
		}
		seen[ri.IngredientID] = true
		if ri.Quantity < 0 {
			return nil, common.NewValidationErrorf("negative quantity for ingredient %d", ri.IngredientID)
		}
		if _, err := s.ingredients.Get(ctx, ri.IngredientID); err != nil {
			return nil, err
		}
		ri.DisplayOrder = i
	}

	in.ID = 0
	in.CreatedAt = s.now().UTC()
	if in.DietaryTags == nil {
		in.DietaryTags = []string{}
	}
	if err := s.repo.UpsertRecipe(ctx, &in); err != nil {
		return nil, err
	}
	common.LogInfo("新增食譜",
		zap.Int64("id", in.ID),
		zap.String("name", in.Name),
		zap.Int("ingredients", len(in.Ingredients)),
	)
	return &in, nil
}

func validate(r *Recipe) error {
	switch {
	case r.Name == "":
		return common.NewValidationError("recipe name is required")
	case r.PrepTimeMinutes < 0 || r.CookTimeMinutes < 0:
		return common.NewValidationError("prep and cook time must be >= 0")
	case r.Servings < 1:
		return common.NewValidationError("servings must be >= 1")
	}
	return nil
}

// Get 取得食譜（含食材）
func (s *Service) Get(ctx context.Context, id int64) (*Recipe, error) {
	return s.repo.GetRecipe(ctx, id)
}

// GetMany 依 id 取得多筆食譜，保持傳入順序，不存在者略過
func (s *Service) GetMany(ctx context.Context, ids []int64) ([]Recipe, error) {
	out := make([]Recipe, 0, len(ids))
	for _, id := range ids {
		r, err := s.repo.GetRecipe(ctx, id)
		if err != nil {
			if common.IsNotFound(err) {
				common.LogWarn("略過不存在的食譜", zap.Int64("recipe_id", id))
				continue
			}
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

// List 列出所有食譜（依 id 排序，即目錄順序）
func (s *Service) List(ctx context.Context) ([]Recipe, error) {
	return s.repo.ListRecipes(ctx)
}

// Search 名稱子字串搜尋
func (s *Service) Search(ctx context.Context, query string) ([]Recipe, error) {
	if strings.TrimSpace(query) == "" {
		return s.List(ctx)
	}
	return s.repo.SearchRecipes(ctx, strings.TrimSpace(query))
}

// Delete 刪除食譜
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteRecipe(ctx, id)
}

// AddIngredient 新增或更新食譜中的食材
func (s *Service) AddIngredient(ctx context.Context, ri RecipeIngredient) error {
	if _, err := s.repo.GetRecipe(ctx, ri.RecipeID); err != nil {
		return err
	}
	if _, err := s.ingredients.Get(ctx, ri.IngredientID); err != nil {
		return err
	}
	if ri.Quantity < 0 {
		return common.NewValidationError("quantity must be >= 0")
	}
	return s.repo.UpsertRecipeIngredient(ctx, &ri)
}

// SetImage 更新食譜圖片路徑
func (s *Service) SetImage(ctx context.Context, id int64, path string) error {
	if err := s.repo.SetRecipeImage(ctx, id, path); err != nil {
		return err
	}
	common.LogInfo("食譜圖片已更新", zap.Int64("recipe_id", id), zap.String("path", path))
	return nil
}

// Stats 資料庫統計
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
