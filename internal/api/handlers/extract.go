package handlers

import (
	"net/http"

	"pantry-cookbook/internal/core/extraction"
	"pantry-cookbook/internal/core/parsing"
	"pantry-cookbook/internal/core/recipe"

	"github.com/gin-gonic/gin"
)

const (
	maxBatchURLs    = 20
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// ExtractHandler 食譜擷取處理器
type ExtractHandler struct {
	scraper  *extraction.Service
	importer *extraction.Importer
	parser   *parsing.Service
}

// NewExtractHandler 創建擷取處理器
func NewExtractHandler(scraper *extraction.Service, importer *extraction.Importer, parser *parsing.Service) *ExtractHandler {
	return &ExtractHandler{scraper: scraper, importer: importer, parser: parser}
}

// ExtractURLRequest 單一網址，import 時成功後直接建立食譜
type ExtractURLRequest struct {
	URL    string `json:"url" binding:"required"`
	Import bool   `json:"import"`
}

// ExtractURLsRequest 多個網址
type ExtractURLsRequest struct {
	URLs []string `json:"urls" binding:"required,min=1"`
}

// ExtractTextRequest 貼上的食譜文字
type ExtractTextRequest struct {
	Text   string `json:"text" binding:"required"`
	Import bool   `json:"import"`
}

// ImportRequest 將擷取紀錄建立為食譜
type ImportRequest struct {
	Record *extraction.Record `json:"record" binding:"required"`
}

// ImportOutcome 單筆匯入結果
type ImportOutcome struct {
	Title  string         `json:"title"`
	Recipe *recipe.Recipe `json:"recipe,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// URL POST /extract/url；擷取失敗回傳 422 並附完整結果
func (h *ExtractHandler) URL(c *gin.Context) {
	var req ExtractURLRequest
	if !bindJSON(c, &req) {
		return
	}
	res := h.scraper.ScrapeURL(c.Request.Context(), req.URL)
	if !res.Success {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}
	if !req.Import {
		c.JSON(http.StatusOK, res)
		return
	}

	created, err := h.importer.Import(c.Request.Context(), res.Record)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"result": res, "recipe": created})
}

// URLs POST /extract/urls，依輸入順序回傳每個網址的結果
func (h *ExtractHandler) URLs(c *gin.Context) {
	var req ExtractURLsRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.URLs) > maxBatchURLs {
		badRequest(c, "too many urls: %d (max %d)", len(req.URLs), maxBatchURLs)
		return
	}

	results := h.scraper.ScrapeMany(c.Request.Context(), req.URLs)
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})
}

// Text POST /extract/text，回傳擷取紀錄與正規化預覽
func (h *ExtractHandler) Text(c *gin.Context) {
	var req ExtractTextRequest
	if !bindJSON(c, &req) {
		return
	}
	rec := extraction.ExtractText(req.Text)
	if req.Import {
		created, err := h.importer.Import(c.Request.Context(), rec)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"record": rec, "recipe": created})
		return
	}

	preview := h.parser.Parse(c.Request.Context(), rec.Source())
	c.JSON(http.StatusOK, gin.H{
		"record":   rec,
		"parsed":   preview,
		"complete": rec.HasMinimumData(),
	})
}

// Bulk POST /extract/bulk，將多道食譜的文字分段擷取，import 時逐筆建立
func (h *ExtractHandler) Bulk(c *gin.Context) {
	var req ExtractTextRequest
	if !bindJSON(c, &req) {
		return
	}
	records := extraction.ParseBulkText(req.Text)
	if !req.Import {
		c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
		return
	}

	outcomes := make([]ImportOutcome, 0, len(records))
	imported := 0
	for _, rec := range records {
		out := ImportOutcome{Title: rec.Title}
		created, err := h.importer.Import(c.Request.Context(), rec)
		if err != nil {
			out.Error = err.Error()
		} else {
			out.Recipe = created
			imported++
		}
		outcomes = append(outcomes, out)
	}
	c.JSON(http.StatusOK, gin.H{
		"results":  outcomes,
		"imported": imported,
		"failed":   len(outcomes) - imported,
	})
}

// Import POST /extract/import
func (h *ExtractHandler) Import(c *gin.Context) {
	var req ImportRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.importer.Import(c.Request.Context(), req.Record)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Log GET /extract/log?limit=
func (h *ExtractHandler) Log(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultLogLimit)
	if !ok {
		return
	}
	if limit == 0 || limit > maxLogLimit {
		limit = maxLogLimit
	}
	entries, err := h.scraper.RecentScrapes(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}
