package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"pantry-cookbook/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 食材目錄服務
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService 創建食材目錄服務
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get 取得單一食材
func (s *Service) Get(ctx context.Context, id int64) (*Ingredient, error) {
	return s.repo.GetIngredient(ctx, id)
}

// Resolve 批次解析食材，查無資料的 id 以安全預設值表示
func (s *Service) Resolve(ctx context.Context, ids []int64) Lookup {
	lookup := make(Lookup, len(ids))
	if len(ids) == 0 {
		return lookup
	}
	items, err := s.repo.GetIngredients(ctx, ids)
	if err != nil {
		common.LogWarn("批次讀取食材失敗，改用預設值", zap.Error(err), zap.Int("count", len(ids)))
		return lookup
	}
	for _, it := range items {
		lookup[it.ID] = it
	}
	return lookup
}

// LookupAll 取得完整食材對照表
func (s *Service) LookupAll(ctx context.Context) (Lookup, error) {
	items, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return nil, err
	}
	return NewLookup(items), nil
}

// List 列出所有食材（依名稱排序）
func (s *Service) List(ctx context.Context) ([]Ingredient, error) {
	items, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items, nil
}

// Search 以名稱子字串搜尋（不分大小寫）
func (s *Service) Search(ctx context.Context, query string) ([]Ingredient, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	return s.repo.SearchIngredients(ctx, query)
}

// Create 新增食材，名稱不分大小寫唯一
func (s *Service) Create(ctx context.Context, in Ingredient) (*Ingredient, error) {
	in.Name = common.NormalizeSpace(in.Name)
	if in.Name == "" {
		return nil, common.NewValidationError("ingredient name is required")
	}
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if in.Category == "" {
		in.Category = AutoCategorize(in.Name)
	}
	if !IsKnownCategory(in.Category) {
		return nil, common.NewValidationErrorf("unknown ingredient category %q", in.Category)
	}

	existing, err := s.repo.FindIngredientByName(ctx, in.Name)
	if err != nil && !errors.Is(err, common.ErrIngredientNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, common.ErrDuplicateName.Withf("ingredient %q already exists", in.Name)
	}

	in.ID = 0
	in.CreatedAt = s.now().UTC()
	if in.Substitutes == nil {
		in.Substitutes = []string{}
	}
	if err := s.repo.UpsertIngredient(ctx, &in); err != nil {
		return nil, err
	}
	common.LogInfo("新增食材", zap.Int64("id", in.ID), zap.String("name", in.Name), zap.String("category", in.Category))
	return &in, nil
}

// UpdateMetadata 更新食材的分類、替代品與保存方式，名稱不可修改
func (s *Service) UpdateMetadata(ctx context.Context, id int64, patch MetadataPatch) (*Ingredient, error) {
	ing, err := s.repo.GetIngredient(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Category != nil {
		c := strings.ToLower(strings.TrimSpace(*patch.Category))
		if !IsKnownCategory(c) {
			return nil, common.NewValidationErrorf("unknown ingredient category %q", c)
		}
		ing.Category = c
	}
	if patch.Substitutes != nil {
		ing.Substitutes = *patch.Substitutes
	}
	if patch.StorageTips != nil {
		ing.StorageTips = *patch.StorageTips
	}
	if err := s.repo.UpsertIngredient(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

// Delete 刪除食材，仍被引用時拒絕
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetIngredient(ctx, id); err != nil {
		return err
	}
	refs, err := s.repo.IngredientReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return common.ErrIngredientInUse.Withf("ingredient %d is referenced %d times", id, refs)
	}
	return s.repo.DeleteIngredient(ctx, id)
}

// FindOrCreate 以名稱（不分大小寫）尋找食材，不存在時建立
func (s *Service) FindOrCreate(ctx context.Context, name, category string) (*Ingredient, bool, error) {
	name = common.NormalizeSpace(name)
	if name == "" {
		return nil, false, common.NewValidationError("ingredient name is required")
	}
	existing, err := s.repo.FindIngredientByName(ctx, name)
	if err == nil && existing != nil {
		return existing, false, nil
	}
	if err != nil && !errors.Is(err, common.ErrIngredientNotFound) {
		return nil, false, err
	}
	created, err := s.Create(ctx, Ingredient{Name: strings.ToLower(name), Category: category})
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// Categories 回傳目前使用中的分類（排序）
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	items, err := s.repo.ListIngredients(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, it := range items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, it.Category)
	}
	sort.Strings(out)
	return out, nil
}

// SeedCommon 建立常用食材，已存在的名稱略過，回傳所有種子食材
func (s *Service) SeedCommon(ctx context.Context) ([]Ingredient, int, error) {
	seeded := make([]Ingredient, 0)
	created := 0
	for _, group := range commonIngredients {
		for _, name := range group.names {
			ing, isNew, err := s.FindOrCreate(ctx, name, group.category)
			if err != nil {
				return seeded, created, err
			}
			if isNew {
				created++
			}
			seeded = append(seeded, *ing)
		}
	}
	common.LogInfo("常用食材已建立", zap.Int("created", created), zap.Int("total", len(seeded)))
	return seeded, created, nil
}
