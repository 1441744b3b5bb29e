package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"pantry-cookbook/internal/core/ai/cache"
	"pantry-cookbook/internal/infrastructure/config"
	"pantry-cookbook/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	// 網頁內容送給模型前的截斷長度
	maxScrapeHTMLBytes = 3000
	// 同時進行的模型請求數，本地模型一次只能處理少量請求
	maxConcurrentCalls = 2

	promptNamespace = "ai:prompt"
)

// 各用途的回應長度上限
const (
	tokensScrape       = 1000
	tokensIngredients  = 800
	tokensSuggestions  = 500
	tokensInstructions = 800
	tokensNutrition    = 400
)

// Completer 模型客戶端
type Completer interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	Health(ctx context.Context) error
}

// Service AI 服務：健康檢查快取、兩層回應快取與用途專屬的提示詞
type Service struct {
	cfg    config.AIConfig
	client Completer
	l1     *cache.CacheManager
	l2     *cache.RedisService
	slots  *semaphore.Weighted
	now    func() time.Time

	mu          sync.Mutex
	available   bool
	lastChecked time.Time
}

// NewService 創建 AI 服務，l1、l2 可為 nil
func NewService(cfg *config.Config, l1 *cache.CacheManager, l2 *cache.RedisService) *Service {
	return NewServiceWithClient(cfg.AI, NewClient(cfg.AI), l1, l2)
}

// NewServiceWithClient 以指定客戶端創建 AI 服務
func NewServiceWithClient(cfg config.AIConfig, client Completer, l1 *cache.CacheManager, l2 *cache.RedisService) *Service {
	return &Service{
		cfg:    cfg,
		client: client,
		l1:     l1,
		l2:     l2,
		slots:  semaphore.NewWeighted(maxConcurrentCalls),
		now:    time.Now,
	}
}

// Available 停用時永遠為 false，健康檢查結果快取 HealthCheckInterval
func (s *Service) Available(ctx context.Context) bool {
	if s == nil || !s.cfg.Enabled {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lastChecked.IsZero() && s.now().Sub(s.lastChecked) < s.cfg.HealthCheckInterval {
		return s.available
	}
	err := s.client.Health(ctx)
	s.available = err == nil
	s.lastChecked = s.now()
	if err != nil {
		common.LogWarn("AI 服務無法連線", zap.String("base_url", s.cfg.BaseURL), zap.Error(err))
	} else {
		common.LogInfo("AI 服務可用", zap.String("base_url", s.cfg.BaseURL))
	}
	return s.available
}

// ProcessRequest 統一對外方法：先查 L1、L2 快取，未命中才呼叫模型並回寫
func (s *Service) ProcessRequest(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if s == nil || !s.cfg.Enabled {
		return "", common.ErrAIUnavailable.Withf("ai is disabled")
	}

	// 統一 prompt 格式，確保快取 key 一致
	prompt = strings.Join(strings.Fields(prompt), " ")
	cacheKey := fmt.Sprintf("%d|%s", maxTokens, prompt)

	if val, err := s.l1.Get(ctx, promptNamespace, cacheKey); err == nil {
		return val, nil
	}
	if val, err := s.l2.Get(ctx, cacheKey); err == nil {
		_ = s.l1.Set(ctx, promptNamespace, cacheKey, val)
		return val, nil
	}

	if err := s.slots.Acquire(ctx, 1); err != nil {
		return "", common.ErrAIUnavailable.Wrap(err)
	}
	content, err := s.client.Generate(ctx, prompt, maxTokens)
	s.slots.Release(1)
	if err != nil {
		return "", common.ErrAIUnavailable.Wrap(err)
	}

	if err := s.l1.Set(ctx, promptNamespace, cacheKey, content); err != nil {
		common.LogDebug("AI 回應未寫入快取", zap.Error(err))
	}
	if err := s.l2.Set(ctx, cacheKey, content); err != nil {
		common.LogWarn("AI 回應寫入 Redis 失敗", zap.Error(err))
	}
	return content, nil
}

// ingredientJSON 模型回傳的單一食材
type ingredientJSON struct {
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Name        string  `json:"name"`
	Preparation string  `json:"preparation"`
	Optional    bool    `json:"optional"`
}

// ParseIngredients 請模型將食材行轉為結構化資料
func (s *Service) ParseIngredients(ctx context.Context, lines []string) (out []common.ParsedIngredient, err error) {
	start := time.Now()
	defer func() { common.LogAICall("parse_ingredients", time.Since(start), err) }()

	var b strings.Builder
	b.WriteString(`Parse each recipe ingredient line below into structured data.
Return ONLY a JSON array with one object per line, in the same order:
[{"quantity": 2, "unit": "cup", "name": "flour", "preparation": "sifted", "optional": false}]
Use 0 for a missing quantity, an empty string for a missing unit or preparation, a lowercase singular unit, and a lowercase name without quantity or unit. Mark "optional" or "to taste" items as optional.

Lines:
`)
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}

	content, err := s.ProcessRequest(ctx, b.String(), tokensIngredients)
	if err != nil {
		return nil, err
	}
	raw, ok := common.ExtractJSONArray(content)
	if !ok {
		return nil, common.ErrAIUnavailable.Withf("no JSON array in ingredient response")
	}
	var items []ingredientJSON
	if err := common.ParseModelJSON(raw, &items); err != nil {
		return nil, common.ErrAIUnavailable.Wrap(err)
	}

	out = make([]common.ParsedIngredient, 0, len(items))
	for i, it := range items {
		p := common.ParsedIngredient{
			Quantity:    it.Quantity,
			Unit:        strings.ToLower(strings.TrimSpace(it.Unit)),
			Name:        strings.ToLower(common.NormalizeSpace(it.Name)),
			Preparation: common.NormalizeSpace(it.Preparation),
			Optional:    it.Optional,
		}
		if len(items) == len(lines) {
			p.Original = lines[i]
		}
		out = append(out, p)
	}
	return out, nil
}

// EnhanceScraping 請模型從網頁內容擷取食譜欄位
func (s *Service) EnhanceScraping(ctx context.Context, html, url string) (_ *common.AIRecipe, err error) {
	start := time.Now()
	defer func() { common.LogAICall("enhance_scraping", time.Since(start), err) }()

	if len(html) > maxScrapeHTMLBytes {
		html = strings.ToValidUTF8(html[:maxScrapeHTMLBytes], "")
	}
	prompt := fmt.Sprintf(`Analyze this recipe webpage HTML and extract structured recipe information:

URL: %s
HTML Content: %s

Please extract and return ONLY a JSON object with these fields:
{"title": "recipe name", "description": "brief description", "ingredients": ["ingredient 1", "ingredient 2"], "instructions": "step-by-step instructions", "prep_time": "15 minutes", "cook_time": "30 minutes", "servings": "4", "cuisine": "cuisine type", "difficulty": "easy/medium/hard", "dietary_tags": ["vegetarian", "gluten-free"]}

Focus on accuracy and completeness. Return only valid JSON.`, url, html)

	content, err := s.ProcessRequest(ctx, prompt, tokensScrape)
	if err != nil {
		return nil, err
	}
	raw, ok := common.ExtractJSONObject(content)
	if !ok {
		return nil, common.ErrAIUnavailable.Withf("no JSON object in scraping response")
	}
	var fields map[string]interface{}
	if err := common.ParseModelJSON(raw, &fields); err != nil {
		return nil, common.ErrAIUnavailable.Wrap(err)
	}
	return &common.AIRecipe{
		Title:        looseString(fields["title"]),
		Description:  looseString(fields["description"]),
		Ingredients:  looseStrings(fields["ingredients"]),
		Instructions: looseString(fields["instructions"]),
		PrepTime:     looseString(fields["prep_time"]),
		CookTime:     looseString(fields["cook_time"]),
		Servings:     looseString(fields["servings"]),
		Cuisine:      looseString(fields["cuisine"]),
		Difficulty:   looseString(fields["difficulty"]),
		DietaryTags:  looseStrings(fields["dietary_tags"]),
	}, nil
}

// looseString 模型常把數字或步驟陣列放在字串欄位
func looseString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := looseString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

func looseStrings(v interface{}) []string {
	out := make([]string, 0)
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if s := looseString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, line := range strings.Split(t, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

// SuggestIngredients 建議 3-5 個可搭配或替代的食材
func (s *Service) SuggestIngredients(ctx context.Context, title string, ingredients, pantry []string) (out []string, err error) {
	start := time.Now()
	defer func() { common.LogAICall("suggest_ingredients", time.Since(start), err) }()

	pantryText := ""
	if len(pantry) > 0 {
		pantryText = "\nAvailable ingredients: " + strings.Join(pantry, ", ")
	}
	prompt := fmt.Sprintf(`Recipe: %s
Current ingredients: %s%s

Suggest 3-5 additional ingredients that would complement this recipe or substitutes for ingredients the user doesn't have.
Focus on practical, commonly available ingredients.

Return only a JSON array of ingredient names:
["suggestion 1", "suggestion 2", "suggestion 3"]`, title, strings.Join(ingredients, ", "), pantryText)

	content, err := s.ProcessRequest(ctx, prompt, tokensSuggestions)
	if err != nil {
		return nil, err
	}
	raw, ok := common.ExtractJSONArray(content)
	if !ok {
		return nil, common.ErrAIUnavailable.Withf("no JSON array in suggestion response")
	}
	var items []interface{}
	if err := common.ParseModelJSON(raw, &items); err != nil {
		return nil, common.ErrAIUnavailable.Wrap(err)
	}
	out = make([]string, 0, len(items))
	for _, it := range items {
		if name, ok := it.(string); ok && strings.TrimSpace(name) != "" {
			out = append(out, strings.TrimSpace(name))
		}
	}
	return out, nil
}

// ImproveInstructions 改寫步驟讓家庭廚師更容易跟著做
func (s *Service) ImproveInstructions(ctx context.Context, title, instructions string) (out string, err error) {
	start := time.Now()
	defer func() { common.LogAICall("improve_instructions", time.Since(start), err) }()

	prompt := fmt.Sprintf(`Recipe: %s
Current instructions: %s

Please improve these cooking instructions to be clearer, more detailed, and easier to follow.
Add helpful tips, timing guidance, and visual cues where appropriate.
Keep the same cooking method but make it more accessible for home cooks.

Return only the improved instructions as plain text.`, title, instructions)

	content, err := s.ProcessRequest(ctx, prompt, tokensInstructions)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// EstimateNutrition 估計每份營養，任何負值或非數字都視為無效回應
func (s *Service) EstimateNutrition(ctx context.Context, title string, servings int, ingredients []string) (out map[string]float64, err error) {
	start := time.Now()
	defer func() { common.LogAICall("estimate_nutrition", time.Since(start), err) }()

	prompt := fmt.Sprintf(`Recipe: %s
Servings: %d
Ingredients: %s

Estimate the nutritional information per serving for this recipe.
Return ONLY a JSON object:
{"calories": 350, "protein_g": 25, "carbs_g": 30, "fat_g": 15, "fiber_g": 5, "sugar_g": 8}

Provide reasonable estimates based on typical ingredient nutritional values.`, title, servings, strings.Join(ingredients, "; "))

	content, err := s.ProcessRequest(ctx, prompt, tokensNutrition)
	if err != nil {
		return nil, err
	}
	raw, ok := common.ExtractJSONObject(content)
	if !ok {
		return nil, common.ErrAIUnavailable.Withf("no JSON object in nutrition response")
	}
	var values map[string]interface{}
	if err := common.ParseModelJSON(raw, &values); err != nil {
		return nil, common.ErrAIUnavailable.Wrap(err)
	}
	out = make(map[string]float64, len(values))
	for k, v := range values {
		n, ok := v.(json.Number)
		if !ok {
			return nil, common.ErrAIUnavailable.Withf("nutrition value %q is not a number", k)
		}
		f, err := n.Float64()
		if err != nil || f < 0 {
			return nil, common.ErrAIUnavailable.Withf("nutrition value %q is invalid", k)
		}
		out[k] = f
	}
	return out, nil
}

// Status AI 服務狀態
type Status struct {
	Enabled     bool                   `json:"enabled"`
	Available   bool                   `json:"available"`
	BaseURL     string                 `json:"base_url"`
	Model       string                 `json:"model"`
	LastChecked *time.Time             `json:"last_checked,omitempty"`
	Cache       map[string]interface{} `json:"cache"`
	Redis       bool                   `json:"redis"`
}

// Status 回傳目前設定、可用性與快取統計
func (s *Service) Status(ctx context.Context) Status {
	st := Status{
		Enabled: s.cfg.Enabled,
		BaseURL: s.cfg.BaseURL,
		Model:   s.cfg.Model,
		Cache:   s.l1.GetStats(),
		Redis:   s.l2 != nil,
	}
	st.Available = s.Available(ctx)

	s.mu.Lock()
	if !s.lastChecked.IsZero() {
		t := s.lastChecked
		st.LastChecked = &t
	}
	s.mu.Unlock()
	return st
}
