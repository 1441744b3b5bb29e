package extraction

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"pantry-cookbook/internal/infrastructure/config"
	"pantry-cookbook/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 失敗原因標籤
const (
	FailValidation = "validation"
	FailRobots     = "robots"
	FailFetch      = "fetch"
	FailParsing    = "parsing"
)

// RobotsPolicy 判斷網址是否允許抓取
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// Limiter 抓取前的網域限速
type Limiter interface {
	Wait(ctx context.Context, host string) error
}

// Recorder 抓取紀錄儲存
type Recorder interface {
	RecordScrape(ctx context.Context, e LogEntry) error
	RecentScrapes(ctx context.Context, limit int) ([]LogEntry, error)
}

// Result 單一網址的抓取結果；錯誤與警告格式為 "[步驟] 訊息"
type Result struct {
	Success          bool          `json:"success"`
	URL              string        `json:"url"`
	Record           *Record       `json:"record,omitempty"`
	Errors           []string      `json:"errors"`
	Warnings         []string      `json:"warnings"`
	RobotsAllowed    bool          `json:"robots_allowed"`
	HTMLRetrieved    bool          `json:"html_retrieved"`
	ParsingAttempted bool          `json:"parsing_attempted"`
	Duration         time.Duration `json:"-"`
	DurationMs       int64         `json:"duration_ms"`
}

func (r *Result) addError(step, msg string) {
	r.Errors = append(r.Errors, fmt.Sprintf("[%s] %s", step, msg))
}

func (r *Result) addWarning(step, msg string) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("[%s] %s", step, msg))
}

// FailureReason 第一個錯誤的步驟標籤，沒有錯誤時為空字串
func (r *Result) FailureReason() string {
	if len(r.Errors) == 0 {
		return ""
	}
	e := r.Errors[0]
	if strings.HasPrefix(e, "[") {
		if end := strings.Index(e, "]"); end > 0 {
			return e[1:end]
		}
	}
	return ""
}

// Service 抓取服務：驗證、robots、限速、抓取、擷取
type Service struct {
	pipeline      *Pipeline
	fetcher       Fetcher
	robots        RobotsPolicy
	limiter       Limiter
	recorder      Recorder
	concurrency   int
	respectRobots bool
}

// NewService 創建抓取服務，robots、limiter、recorder 可為 nil
func NewService(pipeline *Pipeline, fetcher Fetcher, robots RobotsPolicy, limiter Limiter, recorder Recorder, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		pipeline:      pipeline,
		fetcher:       fetcher,
		robots:        robots,
		limiter:       limiter,
		recorder:      recorder,
		concurrency:   concurrency,
		respectRobots: robots != nil,
	}
}

// NewServiceFromConfig 依設定組裝抓取服務
func NewServiceFromConfig(cfg *config.Config, ai AIEnhancer, cache RobotsCache, recorder Recorder) (*Service, error) {
	sites, err := LoadSiteConfigs(cfg.Scraping.SitesFile)
	if err != nil {
		return nil, err
	}
	var robots RobotsPolicy
	if cfg.Scraping.RespectRobots {
		robots = NewRobotsChecker(cfg.Scraping.UserAgent, cfg.Scraping.Timeout, cache)
	}
	svc := NewService(
		NewPipeline(sites, ai),
		NewHTTPFetcher(cfg.Scraping.UserAgent, cfg.Scraping.Timeout, cfg.Scraping.MaxHTMLBytes),
		robots,
		NewDomainLimiter(cfg.Scraping.Delay),
		recorder,
		cfg.Scraping.BulkConcurrency,
	)
	common.LogInfo("抓取服務已初始化",
		zap.Strings("sites", sites.Domains()),
		zap.Duration("delay", cfg.Scraping.Delay),
		zap.Bool("respect_robots", cfg.Scraping.RespectRobots),
	)
	return svc, nil
}

// Pipeline 擷取流程
func (s *Service) Pipeline() *Pipeline {
	return s.pipeline
}

// ScrapeURL 抓取並擷取單一網址，失敗以結果表示而非錯誤
func (s *Service) ScrapeURL(ctx context.Context, rawURL string) (res Result) {
	start := time.Now()
	rawURL = strings.TrimSpace(rawURL)
	res = Result{URL: rawURL, Errors: []string{}, Warnings: []string{}}
	defer func() {
		res.Duration = time.Since(start)
		res.DurationMs = res.Duration.Milliseconds()
		s.record(ctx, &res)
	}()

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		res.addError(FailValidation, "Invalid URL format")
		return res
	}

	res.RobotsAllowed = true
	if s.respectRobots && !s.robots.Allowed(ctx, rawURL) {
		res.RobotsAllowed = false
		res.addError(FailRobots, "Scraping disallowed by robots.txt")
		return res
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, u.Host); err != nil {
			res.addError(FailFetch, "Failed to retrieve HTML content: "+err.Error())
			return res
		}
	}

	html, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		common.LogWarn("網頁抓取失敗", zap.String("url", rawURL), zap.Error(err))
		res.addError(FailFetch, "Failed to retrieve HTML content")
		return res
	}
	res.HTMLRetrieved = true

	res.ParsingAttempted = true
	rec, err := s.pipeline.ExtractHTML(ctx, rawURL, html)
	if err != nil {
		res.addError(FailParsing, "Failed to parse recipe data from HTML")
		return res
	}

	res.Success = true
	res.Record = rec
	if !rec.HasMinimumData() {
		res.addError(FailValidation, "Insufficient recipe data extracted")
		rec.AddWarning("Recipe may need manual review")
	}
	for _, w := range rec.Warnings {
		res.addWarning(rec.Method, w)
	}
	return res
}

// ScrapeMany 以有限並行抓取多個網址，結果保持輸入順序
func (s *Service) ScrapeMany(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = s.ScrapeURL(gctx, u)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// RecentScrapes 最近的抓取紀錄
func (s *Service) RecentScrapes(ctx context.Context, limit int) ([]LogEntry, error) {
	if s.recorder == nil {
		return []LogEntry{}, nil
	}
	return s.recorder.RecentScrapes(ctx, limit)
}

func (s *Service) record(ctx context.Context, res *Result) {
	method, confidence := "", 0.0
	if res.Record != nil {
		method, confidence = res.Record.Method, res.Record.Confidence
	}
	var logErr error
	if !res.Success {
		logErr = fmt.Errorf("%s", strings.Join(res.Errors, "; "))
	}
	common.LogScrape(res.URL, method, confidence, res.Duration, logErr)

	if s.recorder == nil {
		return
	}
	entry := LogEntry{
		URL:           res.URL,
		Success:       res.Success,
		Method:        method,
		Confidence:    confidence,
		FailureReason: res.FailureReason(),
		DurationMs:    res.DurationMs,
	}
	if err := s.recorder.RecordScrape(context.WithoutCancel(ctx), entry); err != nil {
		common.LogWarn("抓取紀錄寫入失敗", zap.String("url", res.URL), zap.Error(err))
	}
}
