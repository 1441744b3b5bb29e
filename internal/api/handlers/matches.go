package handlers

import (
	"net/http"

	"pantry-cookbook/internal/core/matching"

	"github.com/gin-gonic/gin"
)

// MatchHandler 食材櫃比對處理器
type MatchHandler struct {
	matching         *matching.Service
	defaultHousehold int64
}

// NewMatchHandler 創建比對處理器
func NewMatchHandler(matching *matching.Service, defaultHousehold int64) *MatchHandler {
	return &MatchHandler{matching: matching, defaultHousehold: defaultHousehold}
}

// Matches GET /matches?strict=&partial=&sort=，可搭配食譜篩選參數
func (h *MatchHandler) Matches(c *gin.Context) {
	household, ok := householdID(c, h.defaultHousehold)
	if !ok {
		return
	}

	var opts matching.Options
	if opts.StrictMode, ok = queryBool(c, "strict", false); !ok {
		return
	}
	if opts.IncludePartial, ok = queryBool(c, "partial", false); !ok {
		return
	}
	if opts.Sort, ok = matching.ParseSortMode(c.Query("sort")); !ok {
		badRequest(c, "invalid sort: %q", c.Query("sort"))
		return
	}
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	matches, err := h.matching.MatchForHousehold(c.Request.Context(), household, opts, &filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"household_id": household,
		"matches":      matches,
		"count":        len(matches),
	})
}

// Suggestions GET /matches/suggestions?max_missing=
func (h *MatchHandler) Suggestions(c *gin.Context) {
	household, ok := householdID(c, h.defaultHousehold)
	if !ok {
		return
	}
	maxMissing, ok := queryInt(c, "max_missing", 0)
	if !ok {
		return
	}

	suggestions, err := h.matching.SuggestForHousehold(c.Request.Context(), household, maxMissing)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"household_id": household,
		"suggestions":  suggestions,
		"count":        len(suggestions),
	})
}
