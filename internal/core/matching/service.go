package matching

import (
	"context"

	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/core/ranking"
	"pantry-cookbook/internal/core/recipe"
	"pantry-cookbook/internal/pkg/common"

	"go.uber.org/zap"
)

// PantrySnapshot 提供家庭可用食材快照
type PantrySnapshot interface {
	AvailableIDs(ctx context.Context, householdID int64) (map[int64]struct{}, error)
}

// RecipeSource 提供食譜目錄
type RecipeSource interface {
	List(ctx context.Context) ([]recipe.Recipe, error)
}

// LookupSource 提供完整食材對照表
type LookupSource interface {
	LookupAll(ctx context.Context) (catalog.Lookup, error)
}

// Service 以目前資料庫狀態執行比對，結果不做快取
type Service struct {
	pantry  PantrySnapshot
	recipes RecipeSource
	catalog LookupSource
}

// NewService 創建比對服務
func NewService(pantry PantrySnapshot, recipes RecipeSource, catalog LookupSource) *Service {
	return &Service{pantry: pantry, recipes: recipes, catalog: catalog}
}

type snapshot struct {
	available map[int64]struct{}
	recipes   []recipe.Recipe
	lookup    catalog.Lookup
}

func (s *Service) load(ctx context.Context, householdID int64, filter *ranking.Filter) (*snapshot, error) {
	available, err := s.pantry.AvailableIDs(ctx, householdID)
	if err != nil {
		return nil, err
	}
	recipes, err := s.recipes.List(ctx)
	if err != nil {
		return nil, err
	}
	lookup, err := s.catalog.LookupAll(ctx)
	if err != nil {
		return nil, err
	}
	if filter != nil {
		recipes = ranking.Apply(recipes, *filter, available)
	}
	return &snapshot{available: available, recipes: recipes, lookup: lookup}, nil
}

// MatchForHousehold 讀取家庭食材櫃與食譜，先套用屬性篩選再比對排序
func (s *Service) MatchForHousehold(ctx context.Context, householdID int64, opts Options, filter *ranking.Filter) ([]RecipeMatch, error) {
	snap, err := s.load(ctx, householdID, filter)
	if err != nil {
		return nil, err
	}
	matches := FindMatches(snap.recipes, snap.available, snap.lookup, opts)
	common.LogDebug("食譜比對完成",
		zap.Int64("household_id", householdID),
		zap.Int("recipes", len(snap.recipes)),
		zap.Int("matches", len(matches)),
		zap.Bool("strict", opts.StrictMode),
		zap.Bool("partial", opts.IncludePartial),
	)
	return matches, nil
}

// SuggestForHousehold 找出家庭只差幾項食材即可完成的食譜
func (s *Service) SuggestForHousehold(ctx context.Context, householdID int64, maxMissing int) ([]RecipeMatch, error) {
	snap, err := s.load(ctx, householdID, nil)
	if err != nil {
		return nil, err
	}
	return SuggestCompletions(snap.recipes, snap.available, snap.lookup, maxMissing), nil
}
