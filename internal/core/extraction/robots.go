package extraction

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"pantry-cookbook/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// RobotsCache robots.txt 內容快取
type RobotsCache interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
}

const robotsNamespace = "robots"

// 代表「全部允許」的快取值
const allowAllRobots = "User-agent: *\nDisallow:\n"

// RobotsChecker 依 scheme+host 快取 robots.txt 並判斷是否允許抓取
type RobotsChecker struct {
	client    *resty.Client
	userAgent string
	cache     RobotsCache
}

// NewRobotsChecker 創建 robots 檢查器，cache 可為 nil
func NewRobotsChecker(userAgent string, timeout time.Duration, cache RobotsCache) *RobotsChecker {
	return &RobotsChecker{
		client:    resty.New().SetTimeout(timeout).SetHeader("User-Agent", userAgent),
		userAgent: userAgent,
		cache:     cache,
	}
}

// Allowed 取得失敗或回應非 2xx 時視為允許
func (c *RobotsChecker) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	origin := u.Scheme + "://" + u.Host

	body, cached := "", false
	if c.cache != nil {
		if v, err := c.cache.Get(ctx, robotsNamespace, origin); err == nil {
			body, cached = v, true
		}
	}
	if !cached {
		body = c.fetch(ctx, origin)
		if c.cache != nil {
			if err := c.cache.Set(ctx, robotsNamespace, origin, body); err != nil {
				common.LogDebug("robots.txt 快取失敗", zap.String("origin", origin), zap.Error(err))
			}
		}
	}

	data, err := robotstxt.FromString(body)
	if err != nil {
		common.LogWarn("robots.txt 解析失敗，視為允許", zap.String("origin", origin), zap.Error(err))
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, c.userAgent)
}

func (c *RobotsChecker) fetch(ctx context.Context, origin string) string {
	resp, err := c.client.R().SetContext(ctx).Get(origin + "/robots.txt")
	if err != nil {
		common.LogWarn("robots.txt 取得失敗，視為允許", zap.String("origin", origin), zap.Error(err))
		return allowAllRobots
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return allowAllRobots
	}
	return resp.String()
}
