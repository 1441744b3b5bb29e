package handlers

import (
	"net/http"
	"strings"

	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/core/pantry"

	"github.com/gin-gonic/gin"
)

// IngredientHandler 食材目錄處理器
type IngredientHandler struct {
	catalog          *catalog.Service
	pantry           *pantry.Service
	defaultHousehold int64
}

// NewIngredientHandler 創建食材處理器
func NewIngredientHandler(catalog *catalog.Service, pantry *pantry.Service, defaultHousehold int64) *IngredientHandler {
	return &IngredientHandler{catalog: catalog, pantry: pantry, defaultHousehold: defaultHousehold}
}

// CreateIngredientRequest 新增食材
type CreateIngredientRequest struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category"`
	Substitutes []string `json:"substitutes"`
	StorageTips string   `json:"storage_tips"`
}

// List GET /ingredients?q=
func (h *IngredientHandler) List(c *gin.Context) {
	var (
		items []catalog.Ingredient
		err   error
	)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		items, err = h.catalog.Search(c.Request.Context(), q)
	} else {
		items, err = h.catalog.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": items, "count": len(items)})
}

// Create POST /ingredients
func (h *IngredientHandler) Create(c *gin.Context) {
	var req CreateIngredientRequest
	if !bindJSON(c, &req) {
		return
	}
	ing, err := h.catalog.Create(c.Request.Context(), catalog.Ingredient{
		Name:        req.Name,
		Category:    req.Category,
		Substitutes: req.Substitutes,
		StorageTips: req.StorageTips,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

// Get GET /ingredients/:id
func (h *IngredientHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ing, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

// Update PATCH /ingredients/:id
func (h *IngredientHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch catalog.MetadataPatch
	if !bindJSON(c, &patch) {
		return
	}
	ing, err := h.catalog.UpdateMetadata(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

// Delete DELETE /ingredients/:id
func (h *IngredientHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Categories GET /ingredients/categories
func (h *IngredientHandler) Categories(c *gin.Context) {
	cats, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

// Seed POST /ingredients/seed?stock=true，stock 時一併加入家庭食材櫃
func (h *IngredientHandler) Seed(c *gin.Context) {
	stock, ok := queryBool(c, "stock", false)
	if !ok {
		return
	}
	household, ok := householdID(c, h.defaultHousehold)
	if !ok {
		return
	}

	seeded, created, err := h.catalog.SeedCommon(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"created": created, "total": len(seeded)}
	if stock {
		added, err := h.pantry.StockCommon(c.Request.Context(), household, seeded)
		if err != nil {
			respondError(c, err)
			return
		}
		resp["stocked"] = added
		resp["household_id"] = household
	}
	c.JSON(http.StatusOK, resp)
}
