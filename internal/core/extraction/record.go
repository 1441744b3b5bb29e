// Package extraction 從網頁或貼上的文字擷取食譜欄位，並標示擷取信心
package extraction

import (
	"strings"
	"time"

	"pantry-cookbook/internal/core/parsing"
)

// 擷取方式
const (
	MethodJSONLD    = "json-ld"
	MethodSite      = "site-selectors"
	MethodGeneric   = "generic-selectors"
	MethodHeuristic = "heuristic-text"
	MethodAI        = "ai"
)

// 有警告時的信心上限
const warningConfidenceCap = 0.7

// Record 擷取出的原始食譜欄位，缺少的欄位為空值
type Record struct {
	SourceURL       string            `json:"source_url"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	IngredientsRaw  []string          `json:"ingredients_raw"`
	InstructionsRaw string            `json:"instructions_raw"`
	PrepTime        string            `json:"prep_time"`
	CookTime        string            `json:"cook_time"`
	TotalTime       string            `json:"total_time"`
	Servings        string            `json:"servings"`
	Cuisine         string            `json:"cuisine"`
	Category        string            `json:"category"`
	Difficulty      string            `json:"difficulty"`
	Rating          string            `json:"rating"`
	Nutrition       map[string]string `json:"nutrition,omitempty"`
	ImageURL        string            `json:"image_url,omitempty"`
	Confidence      float64           `json:"confidence"`
	Method          string            `json:"method"`
	Warnings        []string          `json:"warnings"`
}

// NewRecord 建立空白紀錄
func NewRecord(sourceURL string) *Record {
	return &Record{
		SourceURL:      sourceURL,
		IngredientsRaw: []string{},
		Nutrition:      map[string]string{},
		Warnings:       []string{},
	}
}

// HasMinimumData 標題、至少一項食材與步驟皆存在
func (r *Record) HasMinimumData() bool {
	if r == nil {
		return false
	}
	return strings.TrimSpace(r.Title) != "" &&
		len(r.IngredientsRaw) > 0 &&
		strings.TrimSpace(r.InstructionsRaw) != ""
}

// AddWarning 加入警告並將信心壓到 0.7 以下
func (r *Record) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
	if r.Confidence > warningConfidenceCap {
		r.Confidence = warningConfidenceCap
	}
}

// Source 轉為解析服務的輸入
func (r *Record) Source() parsing.Source {
	return parsing.Source{
		SourceURL:    r.SourceURL,
		Title:        r.Title,
		Description:  r.Description,
		Ingredients:  r.IngredientsRaw,
		Instructions: r.InstructionsRaw,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		TotalTime:    r.TotalTime,
		Servings:     r.Servings,
		Cuisine:      r.Cuisine,
		Category:     r.Category,
		Difficulty:   r.Difficulty,
		Rating:       r.Rating,
		Nutrition:    r.Nutrition,
		Confidence:   r.Confidence,
	}
}

// 評分項目權重，總分除以 10
const (
	scoreTitle        = 3.0
	scoreIngredients  = 3.0
	scoreInstructions = 2.0
	scoreDescription  = 0.5
	scoreTime         = 0.5
	scoreServings     = 0.5
	scoreCuisine      = 0.3
	scoreCategory     = 0.2

	minScoredInstructions = 50
)

// Score 依欄位完整度計算 [0,1] 的信心分數
func Score(r *Record) float64 {
	s := 0.0
	if strings.TrimSpace(r.Title) != "" {
		s += scoreTitle
	}
	if len(r.IngredientsRaw) >= 2 {
		s += scoreIngredients
	}
	if len(strings.TrimSpace(r.InstructionsRaw)) >= minScoredInstructions {
		s += scoreInstructions
	}
	if strings.TrimSpace(r.Description) != "" {
		s += scoreDescription
	}
	if r.PrepTime != "" || r.CookTime != "" || r.TotalTime != "" {
		s += scoreTime
	}
	if r.Servings != "" {
		s += scoreServings
	}
	if r.Cuisine != "" {
		s += scoreCuisine
	}
	if r.Category != "" {
		s += scoreCategory
	}
	return clamp(s / 10)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// LogEntry 抓取紀錄
type LogEntry struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Success       bool      `json:"success"`
	Method        string    `json:"method"`
	Confidence    float64   `json:"confidence"`
	FailureReason string    `json:"failure_reason,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}
