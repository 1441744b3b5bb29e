package handlers

import (
	"net/http"

	"pantry-cookbook/internal/core/shopping"

	"github.com/gin-gonic/gin"
)

// ShoppingHandler 購物清單處理器
type ShoppingHandler struct {
	shopping         *shopping.Service
	defaultHousehold int64
}

// NewShoppingHandler 創建購物清單處理器
func NewShoppingHandler(shopping *shopping.Service, defaultHousehold int64) *ShoppingHandler {
	return &ShoppingHandler{shopping: shopping, defaultHousehold: defaultHousehold}
}

// ShoppingListRequest 購物清單請求，format 為 json（預設）或 text
type ShoppingListRequest struct {
	RecipeIDs       []int64 `json:"recipe_ids" binding:"required,min=1"`
	IncludeOptional bool    `json:"include_optional"`
	Format          string  `json:"format"`
}

// Build POST /shopping-list
func (h *ShoppingHandler) Build(c *gin.Context) {
	household, ok := householdID(c, h.defaultHousehold)
	if !ok {
		return
	}
	var req ShoppingListRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Format != "" && req.Format != "json" && req.Format != "text" {
		badRequest(c, "invalid format: %q", req.Format)
		return
	}

	list, err := h.shopping.BuildForHousehold(c.Request.Context(), household, req.RecipeIDs, req.IncludeOptional)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Format == "text" {
		c.String(http.StatusOK, list.Text())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"household_id": household,
		"sections":     list.Sections,
		"count":        list.Count(),
	})
}
