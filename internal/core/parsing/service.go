package parsing

import (
	"context"
	"strings"
	"time"

	"pantry-cookbook/internal/pkg/common"

	"go.uber.org/zap"
)

// 食材解析方式
const (
	MethodAI    = "ai"
	MethodRegex = "regex"
)

// Source 待正規化的原始食譜欄位
type Source struct {
	SourceURL    string
	Title        string
	Description  string
	Ingredients  []string
	Instructions string
	PrepTime     string
	CookTime     string
	TotalTime    string
	Servings     string
	Cuisine      string
	Category     string
	Difficulty   string
	Rating       string
	Nutrition    map[string]string
	Confidence   float64
}

// ParsedRecipe 正規化後可直接建立食譜的欄位
type ParsedRecipe struct {
	SourceURL        string                    `json:"source_url,omitempty"`
	Title            string                    `json:"title"`
	Description      string                    `json:"description"`
	Ingredients      []common.ParsedIngredient `json:"ingredients"`
	IngredientMethod string                    `json:"ingredient_method"`
	Instructions     string                    `json:"instructions"`
	PrepTimeMinutes  int                       `json:"prep_time_minutes"`
	CookTimeMinutes  int                       `json:"cook_time_minutes"`
	Servings         int                       `json:"servings"`
	Cuisine          string                    `json:"cuisine,omitempty"`
	Category         string                    `json:"category,omitempty"`
	Difficulty       string                    `json:"difficulty"`
	DietaryTags      []string                  `json:"dietary_tags"`
	Rating           *float64                  `json:"rating,omitempty"`
	Nutrition        map[string]string         `json:"nutrition,omitempty"`
	Confidence       float64                   `json:"confidence"`
	Issues           []Issue                   `json:"issues"`
}

// Valid 是否沒有錯誤等級的問題
func (p *ParsedRecipe) Valid() bool {
	return !HasErrors(p.Issues)
}

// IngredientAI 可選的 AI 食材解析器
type IngredientAI interface {
	Available(ctx context.Context) bool
	ParseIngredients(ctx context.Context, lines []string) ([]common.ParsedIngredient, error)
}

// Service 解析服務
type Service struct {
	ai IngredientAI
}

// NewService 創建解析服務，ai 可為 nil
func NewService(ai IngredientAI) *Service {
	return &Service{ai: ai}
}

// ParseIngredients 優先使用 AI 解析，失敗或不可用時改用規則解析
func (s *Service) ParseIngredients(ctx context.Context, lines []string) ([]common.ParsedIngredient, string) {
	cleaned := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			cleaned = append(cleaned, l)
		}
	}
	if len(cleaned) == 0 {
		return []common.ParsedIngredient{}, MethodRegex
	}

	if s.ai != nil && s.ai.Available(ctx) {
		start := time.Now()
		parsed, err := s.ai.ParseIngredients(ctx, cleaned)
		parsed = keepNamed(parsed)
		switch {
		case err != nil:
			common.LogWarn("AI 食材解析失敗，改用規則解析", zap.Error(err), zap.Duration("耗時", time.Since(start)))
		case len(parsed) == 0:
			common.LogWarn("AI 食材解析無結果，改用規則解析", zap.Int("lines", len(cleaned)))
		default:
			return parsed, MethodAI
		}
	}
	return ParseIngredientLines(cleaned), MethodRegex
}

// Parse 將原始欄位正規化並附上驗證問題
func (s *Service) Parse(ctx context.Context, src Source) ParsedRecipe {
	ingredients, method := s.ParseIngredients(ctx, src.Ingredients)

	prep, cook := SplitTimes(ParseMinutes(src.PrepTime), ParseMinutes(src.CookTime), ParseMinutes(src.TotalTime))
	p := ParsedRecipe{
		SourceURL:        strings.TrimSpace(src.SourceURL),
		Title:            CleanTitle(src.Title),
		Description:      common.NormalizeSpace(src.Description),
		Ingredients:      ingredients,
		IngredientMethod: method,
		Instructions:     CleanInstructions(src.Instructions),
		PrepTimeMinutes:  prep,
		CookTimeMinutes:  cook,
		Servings:         ParseServings(src.Servings),
		Cuisine:          NormalizeCuisine(src.Cuisine),
		Category:         NormalizeCategory(src.Category),
		Difficulty:       ClassifyDifficulty(src.Difficulty),
		Rating:           ParseRating(src.Rating),
		Nutrition:        src.Nutrition,
		Confidence:       src.Confidence,
	}
	p.DietaryTags = DetectDietaryTags(strings.Join([]string{
		src.Title, src.Description, src.Instructions, strings.Join(src.Ingredients, " "),
	}, " "))
	p.Issues = Validate(p)

	common.LogDebug("食譜解析完成",
		zap.String("title", p.Title),
		zap.Int("ingredients", len(p.Ingredients)),
		zap.String("method", method),
		zap.Int("issues", len(p.Issues)),
	)
	return p
}

func keepNamed(items []common.ParsedIngredient) []common.ParsedIngredient {
	out := make([]common.ParsedIngredient, 0, len(items))
	for _, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			continue
		}
		if it.Quantity < 0 {
			it.Quantity = 0
		}
		out = append(out, it)
	}
	return out
}
