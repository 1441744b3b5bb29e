package handlers

import (
	"net/http"

	"pantry-cookbook/internal/core/pantry"

	"github.com/gin-gonic/gin"
)

// PantryHandler 家庭食材櫃處理器
type PantryHandler struct {
	pantry           *pantry.Service
	defaultHousehold int64
}

// NewPantryHandler 創建食材櫃處理器
func NewPantryHandler(pantry *pantry.Service, defaultHousehold int64) *PantryHandler {
	return &PantryHandler{pantry: pantry, defaultHousehold: defaultHousehold}
}

// SetItemRequest 設定單一食材；未提供 is_available 時視為有庫存
type SetItemRequest struct {
	IsAvailable *bool                   `json:"is_available"`
	Quantity    pantry.QuantityEstimate `json:"quantity_estimate"`
}

// BulkRequest 批次設定，key 為食材 id
type BulkRequest struct {
	Items map[int64]bool `json:"items" binding:"required"`
}

// List GET /pantry?group=category
func (h *PantryHandler) List(c *gin.Context) {
	household, ok := householdID(c, h.defaultHousehold)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if c.Query("group") == "category" {
		groups, err := h.pantry.ByCategory(ctx, household)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"household_id": household, "categories": groups})
		return
	}

	items, err := h.pantry.List(ctx, household)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"household_id": household, "items": items, "count": len(items)})
}

// Set PUT /pantry/:ingredient_id
func (h *PantryHandler) Set(c *gin.Context) {
	household, ok := householdID(c, h.defaultHousehold)
	if !ok {
		return
	}
	ingredientID, ok := pathID(c, "ingredient_id")
	if !ok {
		return
	}
	var req SetItemRequest
	if !bindJSON(c, &req) {
		return
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	entry, err := h.pantry.SetAvailability(c.Request.Context(), household, ingredientID, available, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Bulk POST /pantry/bulk
func (h *PantryHandler) Bulk(c *gin.Context) {
	household, ok := householdID(c, h.defaultHousehold)
	if !ok {
		return
	}
	var req BulkRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.pantry.BulkSet(c.Request.Context(), household, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"household_id": household, "updated": n})
}

// Remove DELETE /pantry/:ingredient_id
func (h *PantryHandler) Remove(c *gin.Context) {
	household, ok := householdID(c, h.defaultHousehold)
	if !ok {
		return
	}
	ingredientID, ok := pathID(c, "ingredient_id")
	if !ok {
		return
	}
	if err := h.pantry.Remove(c.Request.Context(), household, ingredientID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats GET /pantry/stats
func (h *PantryHandler) Stats(c *gin.Context) {
	household, ok := householdID(c, h.defaultHousehold)
	if !ok {
		return
	}
	st, err := h.pantry.Stats(c.Request.Context(), household)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
