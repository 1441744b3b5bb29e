// Package handlers HTTP 處理器
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"pantry-cookbook/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HouseholdHeader 指定家庭的請求標頭
const HouseholdHeader = "X-Household-ID"

// respondError 依錯誤類型輸出狀態碼與 ErrorResponse；詳細原因只在 debug 模式回傳
func respondError(c *gin.Context, err error) {
	status, code := common.StatusOf(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogDebug("請求被拒絕", fields...)
	}
	_ = c.Error(err)

	resp := common.ErrorResponse{Error: err.Error(), Code: code}
	if status >= http.StatusInternalServerError {
		resp.Error = http.StatusText(status)
		if gin.Mode() == gin.DebugMode {
			resp.Details = err.Error()
		}
	}
	c.AbortWithStatusJSON(status, resp)
}

// badRequest 回傳 400 驗證錯誤
func badRequest(c *gin.Context, format string, args ...interface{}) {
	respondError(c, common.NewValidationErrorf(format, args...))
}

// bindJSON 解析請求體，失敗時已回應 400
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return false
	}
	return true
}

// pathID 解析路徑上的正整數 id
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := common.ParseID(c.Param(name))
	if err != nil {
		badRequest(c, "invalid %s: %q", name, c.Param(name))
		return 0, false
	}
	return id, true
}

// householdID 取得 X-Household-ID，未提供時使用預設家庭
func householdID(c *gin.Context, fallback int64) (int64, bool) {
	raw := strings.TrimSpace(c.GetHeader(HouseholdHeader))
	if raw == "" {
		return fallback, true
	}
	id, err := common.ParseID(raw)
	if err != nil {
		badRequest(c, "invalid %s header: %q", HouseholdHeader, raw)
		return 0, false
	}
	return id, true
}

// queryInt 讀取整數查詢參數，未提供時回傳 def
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		badRequest(c, "invalid %s: %q", name, raw)
		return 0, false
	}
	return v, true
}

// queryBool 讀取布林查詢參數，未提供時回傳 def
func queryBool(c *gin.Context, name string, def bool) (bool, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, "invalid %s: %q", name, raw)
		return false, false
	}
	return v, true
}

// queryList 讀取可重複或以逗號分隔的查詢參數
func queryList(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// queryIDs 讀取 id 清單查詢參數
func queryIDs(c *gin.Context, name string) ([]int64, bool) {
	parts := queryList(c, name)
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := common.ParseID(p)
		if err != nil {
			badRequest(c, "invalid %s: %q", name, p)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
