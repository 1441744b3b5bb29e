package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"pantry-cookbook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 就緒檢查的資料庫 ping 期限
const pingTimeout = 2 * time.Second

// Pinger 可檢查連線的相依元件
type Pinger interface {
	Ping(ctx context.Context) error
}

// AIStatus 回報 AI 服務是否可用
type AIStatus interface {
	Available(ctx context.Context) bool
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime"`
	Checks    map[string]string      `json:"checks"`
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	started time.Time
	db      Pinger
	ai      AIStatus
}

// NewHandler 創建健康檢查處理器，ai 可為 nil
func NewHandler(version string, db Pinger, ai AIStatus) *Handler {
	return &Handler{version: version, started: time.Now(), db: db, ai: ai}
}

// Health GET /health：資料庫失敗為 degraded，AI 不可用只標示在 checks
func (h *Handler) Health(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Checks: map[string]string{"database": "ok", "ai": "disabled"},
	}

	if err := h.ping(c.Request.Context()); err != nil {
		resp.Status = "degraded"
		resp.Checks["database"] = err.Error()
	}
	if h.ai != nil {
		resp.Checks["ai"] = "unavailable"
		if h.ai.Available(c.Request.Context()) {
			resp.Checks["ai"] = "ok"
		}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("status", resp.Status),
	)
	c.JSON(http.StatusOK, resp)
}

// Ready GET /ready：資料庫無法連線時回傳 503
func (h *Handler) Ready(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		common.LogWarn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Live GET /live
func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h *Handler) ping(ctx context.Context) error {
	if h.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return h.db.Ping(ctx)
}
