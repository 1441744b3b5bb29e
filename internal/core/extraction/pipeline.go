package extraction

import (
	"context"
	"net/url"
	"strings"
	"time"

	"pantry-cookbook/internal/pkg/common"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// 低於此信心時啟用後備解析
const fallbackThreshold = 0.5

// AIEnhancer 可選的 AI 網頁擷取
type AIEnhancer interface {
	Available(ctx context.Context) bool
	EnhanceScraping(ctx context.Context, html, url string) (*common.AIRecipe, error)
}

// Pipeline 依序執行 JSON-LD、選擇器、啟發式與 AI 階段
type Pipeline struct {
	sites *SiteTable
	ai    AIEnhancer
}

// NewPipeline 創建擷取流程，sites 為 nil 時使用內建設定，ai 可為 nil
func NewPipeline(sites *SiteTable, ai AIEnhancer) *Pipeline {
	if sites == nil {
		sites = DefaultSiteTable()
	}
	return &Pipeline{sites: sites, ai: ai}
}

// Sites 目前使用的網域設定
func (p *Pipeline) Sites() *SiteTable {
	return p.sites
}

// ExtractHTML 從 HTML 擷取食譜；只有完全無法產生紀錄時回傳錯誤
func (p *Pipeline) ExtractHTML(ctx context.Context, sourceURL, html string) (*Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, common.ErrExtractionFailed.Wrap(err)
	}

	if r := extractJSONLD(doc, sourceURL); r != nil {
		return r, nil
	}

	site, matched := p.sites.Resolve(hostOf(sourceURL))
	r := extractWithSelectors(doc, sourceURL, site, matched, p.sites.Generic())

	if r.Confidence < fallbackThreshold {
		h := extractHeuristic(visibleText(doc), sourceURL, htmlBaseline)
		if h.Confidence > r.Confidence && (h.Title != "" || len(h.IngredientsRaw) > 0) {
			if h.ImageURL == "" {
				h.ImageURL = r.ImageURL
			}
			r = h
		}
	}

	if r.Confidence < fallbackThreshold && p.ai != nil && p.ai.Available(ctx) {
		r = p.enhance(ctx, r, sourceURL, html)
	}

	if r.Title == "" && len(r.IngredientsRaw) == 0 && r.InstructionsRaw == "" {
		return nil, common.ErrExtractionFailed.Withf("no recipe content found in %s", sourceURL)
	}
	return r, nil
}

// enhance 只在 AI 結果達到最低資料要求時採用，失敗時以警告保留原結果
func (p *Pipeline) enhance(ctx context.Context, current *Record, sourceURL, html string) *Record {
	start := time.Now()
	ai, err := p.ai.EnhanceScraping(ctx, html, sourceURL)
	if err != nil {
		common.LogWarn("AI 擷取失敗", zap.String("url", sourceURL), zap.Error(err), zap.Duration("耗時", time.Since(start)))
		current.AddWarning("AI enhancement failed")
		return current
	}
	r := recordFromAI(ai, sourceURL)
	if !r.HasMinimumData() {
		current.AddWarning("AI enhancement returned incomplete data")
		return current
	}
	if r.ImageURL == "" {
		r.ImageURL = current.ImageURL
	}
	r.Confidence = Score(r)
	return r
}

func recordFromAI(ai *common.AIRecipe, sourceURL string) *Record {
	r := NewRecord(sourceURL)
	r.Method = MethodAI
	if ai == nil {
		return r
	}
	r.Title = common.NormalizeSpace(ai.Title)
	r.Description = common.NormalizeSpace(ai.Description)
	for _, ing := range ai.Ingredients {
		if ing = common.NormalizeSpace(ing); ing != "" {
			r.IngredientsRaw = append(r.IngredientsRaw, ing)
		}
	}
	r.InstructionsRaw = strings.TrimSpace(ai.Instructions)
	r.PrepTime = ai.PrepTime
	r.CookTime = ai.CookTime
	r.Servings = ai.Servings
	r.Cuisine = ai.Cuisine
	r.Difficulty = ai.Difficulty
	return r
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
