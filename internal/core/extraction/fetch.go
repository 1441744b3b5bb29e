package extraction

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
)

// Fetcher 取得網頁 HTML
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher 以 resty 抓取網頁，限制回應大小
type HTTPFetcher struct {
	client   *resty.Client
	maxBytes int64
}

// NewHTTPFetcher 創建網頁抓取器
func NewHTTPFetcher(userAgent string, timeout time.Duration, maxBytes int64) *HTTPFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &HTTPFetcher{client: client, maxBytes: maxBytes}
}

// Fetch 非 2xx、非 HTML 或超過大小上限時回傳錯誤
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: get %s", url)
	}
	body := resp.RawBody()
	defer body.Close() //nolint:errcheck

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return "", eris.Errorf("fetch: %s returned status %d", url, resp.StatusCode())
	}
	if ct := strings.ToLower(resp.Header().Get("Content-Type")); ct != "" &&
		!strings.Contains(ct, "html") && !strings.Contains(ct, "xml") {
		return "", eris.Errorf("fetch: %s returned non-HTML content type %q", url, ct)
	}

	reader := io.Reader(body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(body, f.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: read body %s", url)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return "", eris.Errorf("fetch: %s exceeds %d bytes", url, f.maxBytes)
	}
	return string(data), nil
}
