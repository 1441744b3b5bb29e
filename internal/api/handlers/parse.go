package handlers

import (
	"net/http"

	"pantry-cookbook/internal/core/parsing"

	"github.com/gin-gonic/gin"
)

// 單次請求可解析的行數上限
const maxParseLines = 200

// ParseHandler 食材行解析處理器
type ParseHandler struct {
	parser *parsing.Service
}

// NewParseHandler 創建解析處理器
func NewParseHandler(parser *parsing.Service) *ParseHandler {
	return &ParseHandler{parser: parser}
}

// ParseLineRequest 單行食材
type ParseLineRequest struct {
	Line string `json:"line" binding:"required"`
}

// ParseLinesRequest 多行食材
type ParseLinesRequest struct {
	Lines []string `json:"lines" binding:"required,min=1"`
}

// Ingredient POST /parse/ingredient，只使用規則解析
func (h *ParseHandler) Ingredient(c *gin.Context) {
	var req ParseLineRequest
	if !bindJSON(c, &req) {
		return
	}
	parsed := parsing.ParseIngredientLine(req.Line)
	c.JSON(http.StatusOK, gin.H{"ingredient": parsed, "display": parsed.String()})
}

// Ingredients POST /parse/ingredients，AI 可用時優先，否則改用規則解析
func (h *ParseHandler) Ingredients(c *gin.Context) {
	var req ParseLinesRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Lines) > maxParseLines {
		badRequest(c, "too many lines: %d (max %d)", len(req.Lines), maxParseLines)
		return
	}
	items, method := h.parser.ParseIngredients(c.Request.Context(), req.Lines)
	c.JSON(http.StatusOK, gin.H{"ingredients": items, "method": method, "count": len(items)})
}
