package handlers

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/core/image"
	"pantry-cookbook/internal/core/pantry"
	"pantry-cookbook/internal/core/ranking"
	"pantry-cookbook/internal/core/recipe"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RecipeHandler 食譜處理器
type RecipeHandler struct {
	recipes          *recipe.Service
	catalog          *catalog.Service
	pantry           *pantry.Service
	images           *image.Service
	defaultHousehold int64
}

// NewRecipeHandler 創建食譜處理器
func NewRecipeHandler(recipes *recipe.Service, catalog *catalog.Service, pantry *pantry.Service, images *image.Service, defaultHousehold int64) *RecipeHandler {
	return &RecipeHandler{
		recipes:          recipes,
		catalog:          catalog,
		pantry:           pantry,
		images:           images,
		defaultHousehold: defaultHousehold,
	}
}

// ImageRequest data URI、base64 或圖片網址
type ImageRequest struct {
	Image string `json:"image" binding:"required"`
}

type listParams struct {
	filter   ranking.Filter
	order    ranking.SortOrder
	page     int
	pageSize int
}

func (h *RecipeHandler) parseList(c *gin.Context, defaultOrder ranking.SortOrder) (listParams, bool) {
	var p listParams
	var ok bool
	if p.filter, ok = parseFilter(c); !ok {
		return p, false
	}

	p.order = defaultOrder
	if raw := c.Query("sort"); raw != "" {
		if p.order, ok = ranking.ParseSortOrder(raw); !ok {
			badRequest(c, "invalid sort: %q", raw)
			return p, false
		}
	}
	if p.page, ok = queryInt(c, "page", 1); !ok {
		return p, false
	}
	if p.pageSize, ok = queryInt(c, "page_size", defaultPageSize); !ok {
		return p, false
	}
	if p.pageSize > maxPageSize {
		p.pageSize = maxPageSize
	}
	return p, true
}

// available 只有需要「可做」篩選時才讀取食材櫃
func (h *RecipeHandler) available(c *gin.Context, f ranking.Filter) (map[int64]struct{}, bool) {
	if !f.MakeableOnly {
		return nil, true
	}
	household, ok := householdID(c, h.defaultHousehold)
	if !ok {
		return nil, false
	}
	ids, err := h.pantry.AvailableIDs(c.Request.Context(), household)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return ids, true
}

// List GET /recipes
func (h *RecipeHandler) List(c *gin.Context) {
	p, ok := h.parseList(c, ranking.SortCreatedDesc)
	if !ok {
		return
	}
	available, ok := h.available(c, p.filter)
	if !ok {
		return
	}

	all, err := h.recipes.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	filtered := ranking.Apply(all, p.filter, available)
	ranking.SortRecipes(filtered, p.order)
	c.JSON(http.StatusOK, ranking.Paginate(filtered, p.page, p.pageSize))
}

// Search GET /recipes/search?q=，依相關度計分，零分結果不回傳
func (h *RecipeHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		badRequest(c, "q is required")
		return
	}
	p, ok := h.parseList(c, ranking.SortRelevance)
	if !ok {
		return
	}
	p.filter.Query = ""
	available, ok := h.available(c, p.filter)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	all, err := h.recipes.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	lookup, err := h.catalog.LookupAll(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	hits := ranking.Search(ranking.Apply(all, p.filter, available), query, lookup)
	relevant := make([]ranking.SearchHit, 0, len(hits))
	for _, hit := range hits {
		if hit.Score > 0 {
			relevant = append(relevant, hit)
		}
	}
	ranking.SortHits(relevant, p.order)
	c.JSON(http.StatusOK, ranking.Paginate(relevant, p.page, p.pageSize))
}

// Create POST /recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	var req recipe.Recipe
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.recipes.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get GET /recipes/:id
func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Delete DELETE /recipes/:id
func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage POST /recipes/:id/image，接受 JSON {"image": ...} 或 multipart 檔案欄位 image
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var data string
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("image")
		if err != nil {
			badRequest(c, "image file is required")
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		raw, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			respondError(c, err)
			return
		}
		data = base64.StdEncoding.EncodeToString(raw)
	} else {
		var req ImageRequest
		if !bindJSON(c, &req) {
			return
		}
		data = req.Image
	}

	path, err := h.images.SaveRecipeImage(c.Request.Context(), id, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe_id": id, "image_path": path})
}
