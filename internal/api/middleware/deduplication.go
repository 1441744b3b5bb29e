package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"pantry-cookbook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// deduplicator 記錄最近的寫入請求指紋
type deduplicator struct {
	mu        sync.Mutex
	window    time.Duration
	seen      map[string]time.Time
	now       func() time.Time
	lastSweep time.Time
}

func newDeduplicator(window time.Duration) *deduplicator {
	if window <= 0 {
		window = time.Second
	}
	return &deduplicator{window: window, seen: make(map[string]time.Time), now: time.Now}
}

// duplicate 在 window 內看過相同指紋時回傳 true，否則記錄下來
func (d *deduplicator) duplicate(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if now.Sub(d.lastSweep) > 10*d.window {
		for k, t := range d.seen {
			if now.Sub(t) > d.window {
				delete(d.seen, k)
			}
		}
		d.lastSweep = now
	}

	if last, ok := d.seen[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.seen[fingerprint] = now
	return false
}

// Deduplication 拒絕 window 內重複送出的 POST 請求（路徑、household 與內容皆相同）
func Deduplication(window time.Duration) gin.HandlerFunc {
	d := newDeduplicator(window)
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		fingerprint := c.Request.URL.RequestURI() + "|" + c.GetHeader("X-Household-ID")
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
					Error: "Request body too large",
					Code:  common.ErrCodeTooLarge,
				})
				return
			}
			hash := sha256.Sum256(body)
			fingerprint += "|" + hex.EncodeToString(hash[:])
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		if d.duplicate(fingerprint) {
			common.LogWarn("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Error: "Request too frequent",
				Code:  common.ErrCodeTooManyRequests,
			})
			return
		}

		c.Next()
	}
}
