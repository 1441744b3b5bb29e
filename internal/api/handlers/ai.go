package handlers

import (
	"net/http"

	"pantry-cookbook/internal/core/ai/service"
	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/core/pantry"
	"pantry-cookbook/internal/core/recipe"
	"pantry-cookbook/internal/core/shopping"
	"pantry-cookbook/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// AIHandler AI 輔助功能處理器
type AIHandler struct {
	ai               *service.Service
	recipes          *recipe.Service
	catalog          *catalog.Service
	pantry           *pantry.Service
	defaultHousehold int64
}

// NewAIHandler 創建 AI 處理器
func NewAIHandler(ai *service.Service, recipes *recipe.Service, catalog *catalog.Service, pantry *pantry.Service, defaultHousehold int64) *AIHandler {
	return &AIHandler{
		ai:               ai,
		recipes:          recipes,
		catalog:          catalog,
		pantry:           pantry,
		defaultHousehold: defaultHousehold,
	}
}

// Status GET /ai/status
func (h *AIHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.ai.Status(c.Request.Context()))
}

// loadRecipe 讀取路徑上的食譜並確認 AI 可用
func (h *AIHandler) loadRecipe(c *gin.Context) (*recipe.Recipe, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	if !h.ai.Available(c.Request.Context()) {
		respondError(c, common.ErrAIUnavailable)
		return nil, false
	}
	r, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return r, true
}

// ingredientLines 食譜食材的顯示字串
func (h *AIHandler) ingredientLines(c *gin.Context, r *recipe.Recipe) []string {
	lookup := h.catalog.Resolve(c.Request.Context(), r.IngredientIDs())
	lines := make([]string, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		lines = append(lines, shopping.FormatLine(ri, lookup.Name(ri.IngredientID)))
	}
	return lines
}

// Instructions POST /ai/recipes/:id/instructions
func (h *AIHandler) Instructions(c *gin.Context) {
	r, ok := h.loadRecipe(c)
	if !ok {
		return
	}
	improved, err := h.ai.ImproveInstructions(c.Request.Context(), r.Name, r.Instructions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe_id": r.ID, "instructions": improved})
}

// Nutrition POST /ai/recipes/:id/nutrition
func (h *AIHandler) Nutrition(c *gin.Context) {
	r, ok := h.loadRecipe(c)
	if !ok {
		return
	}
	servings := r.Servings
	if servings <= 0 {
		servings = 1
	}
	est, err := h.ai.EstimateNutrition(c.Request.Context(), r.Name, servings, h.ingredientLines(c, r))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe_id": r.ID, "servings": servings, "per_serving": est})
}

// Suggestions POST /ai/recipes/:id/suggestions，以家庭食材櫃為參考
func (h *AIHandler) Suggestions(c *gin.Context) {
	household, ok := householdID(c, h.defaultHousehold)
	if !ok {
		return
	}
	r, ok := h.loadRecipe(c)
	if !ok {
		return
	}
	items, err := h.pantry.List(c.Request.Context(), household)
	if err != nil {
		respondError(c, err)
		return
	}
	stocked := make([]string, 0, len(items))
	for _, it := range items {
		if it.IsAvailable {
			stocked = append(stocked, it.Name)
		}
	}

	suggestions, err := h.ai.SuggestIngredients(c.Request.Context(), r.Name, h.ingredientLines(c, r), stocked)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe_id": r.ID, "suggestions": suggestions})
}
