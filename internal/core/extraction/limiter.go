package extraction

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DomainLimiter 每個網域兩次抓取之間至少間隔 delay
type DomainLimiter struct {
	delay    time.Duration
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewDomainLimiter 創建網域限速器，delay <= 0 時不等待
func NewDomainLimiter(delay time.Duration) *DomainLimiter {
	return &DomainLimiter{delay: delay, limiters: make(map[string]*rate.Limiter)}
}

// Wait 阻塞直到可以再次抓取該網域，ctx 取消時回傳錯誤
func (l *DomainLimiter) Wait(ctx context.Context, host string) error {
	if l == nil || l.delay <= 0 {
		return nil
	}
	return l.limiter(normalizeHost(host)).Wait(ctx)
}

func (l *DomainLimiter) limiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.delay), 1)
		l.limiters[host] = lim
	}
	return lim
}
