package pantry

import (
	"context"
	"sort"
	"strings"
	"time"

	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/pkg/common"

	"go.uber.org/zap"
)

// IngredientSource 食材櫃需要的目錄查詢
type IngredientSource interface {
	Get(ctx context.Context, id int64) (*catalog.Ingredient, error)
	Resolve(ctx context.Context, ids []int64) catalog.Lookup
}

// Service 食材櫃服務
type Service struct {
	repo    Repository
	catalog IngredientSource
	now     func() time.Time
}

// NewService 創建食材櫃服務
func NewService(repo Repository, catalog IngredientSource) *Service {
	return &Service{repo: repo, catalog: catalog, now: time.Now}
}

// Upsert 新增或覆寫食材櫃項目（後寫者為準）
func (s *Service) Upsert(ctx context.Context, e Entry) (*Entry, error) {
	if e.HouseholdID <= 0 {
		return nil, common.NewValidationError("household id is required")
	}
	e.Quantity = QuantityEstimate(strings.ToLower(strings.TrimSpace(string(e.Quantity))))
	if !e.Quantity.Valid() {
		return nil, common.NewValidationErrorf("invalid quantity estimate %q", e.Quantity)
	}
	if _, err := s.catalog.Get(ctx, e.IngredientID); err != nil {
		return nil, err
	}
	e.LastUpdated = s.now().UTC()
	if err := s.repo.UpsertPantryEntry(ctx, &e); err != nil {
		return nil, err
	}
	common.LogDebug("食材櫃已更新",
		zap.Int64("household_id", e.HouseholdID),
		zap.Int64("ingredient_id", e.IngredientID),
		zap.Bool("available", e.IsAvailable),
	)
	return &e, nil
}

// SetAvailability 切換單一食材是否可用
func (s *Service) SetAvailability(ctx context.Context, householdID, ingredientID int64, available bool, qty QuantityEstimate) (*Entry, error) {
	return s.Upsert(ctx, Entry{
		HouseholdID:  householdID,
		IngredientID: ingredientID,
		IsAvailable:  available,
		Quantity:     qty,
	})
}

// BulkSet 批次設定可用狀態，回傳成功筆數
func (s *Service) BulkSet(ctx context.Context, householdID int64, items map[int64]bool) (int, error) {
	ids := make([]int64, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	updated := 0
	for _, id := range ids {
		if _, err := s.SetAvailability(ctx, householdID, id, items[id], QuantityUnset); err != nil {
			if common.IsNotFound(err) {
				common.LogWarn("略過不存在的食材", zap.Int64("ingredient_id", id))
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// Remove 移除食材櫃項目
func (s *Service) Remove(ctx context.Context, householdID, ingredientID int64) error {
	return s.repo.DeletePantryEntry(ctx, householdID, ingredientID)
}

// List 列出家庭食材櫃，依分類再依名稱排序
func (s *Service) List(ctx context.Context, householdID int64) ([]EntryView, error) {
	entries, err := s.repo.ListPantry(ctx, householdID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.IngredientID
	}
	lookup := s.catalog.Resolve(ctx, ids)

	views := make([]EntryView, len(entries))
	for i, e := range entries {
		views[i] = EntryView{Entry: e, Name: lookup.Name(e.IngredientID), Category: lookup.Category(e.IngredientID)}
	}
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Category != views[j].Category {
			return views[i].Category < views[j].Category
		}
		return strings.ToLower(views[i].Name) < strings.ToLower(views[j].Name)
	})
	return views, nil
}

// ByCategory 依分類分組
func (s *Service) ByCategory(ctx context.Context, householdID int64) (map[string][]EntryView, error) {
	views, err := s.List(ctx, householdID)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]EntryView)
	for _, v := range views {
		out[v.Category] = append(out[v.Category], v)
	}
	return out, nil
}

// AvailableIDs 取得目前可用食材的快照
func (s *Service) AvailableIDs(ctx context.Context, householdID int64) (map[int64]struct{}, error) {
	entries, err := s.repo.ListPantry(ctx, householdID)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		if e.IsAvailable {
			out[e.IngredientID] = struct{}{}
		}
	}
	return out, nil
}

// Stats 食材櫃統計
func (s *Service) Stats(ctx context.Context, householdID int64) (*Stats, error) {
	views, err := s.List(ctx, householdID)
	if err != nil {
		return nil, err
	}
	st := &Stats{Total: len(views), ByCategory: make(map[string]int)}
	for _, v := range views {
		if v.IsAvailable {
			st.Available++
			st.ByCategory[v.Category]++
		}
		if v.Quantity == QuantityRunningLow {
			st.RunningLow++
		}
	}
	return st, nil
}

// StockCommon 將常用食材加入食材櫃並標記為充足
func (s *Service) StockCommon(ctx context.Context, householdID int64, seeded []catalog.Ingredient) (int, error) {
	added := 0
	for _, ing := range seeded {
		if _, err := s.SetAvailability(ctx, householdID, ing.ID, true, QuantityPlenty); err != nil {
			return added, err
		}
		added++
	}
	common.LogInfo("常用食材已加入食材櫃", zap.Int64("household_id", householdID), zap.Int("added", added))
	return added, nil
}
