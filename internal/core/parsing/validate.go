package parsing

import "fmt"

// 問題等級
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue 解析後的驗證問題
type Issue struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// 驗證範圍與警告門檻（分鐘）
const (
	maxPrepMinutes  = 600
	maxCookMinutes  = 1440
	warnPrepMinutes = 300
	warnCookMinutes = 720
	warnServings    = 20
)

// Validate 檢查解析結果，錯誤表示不應直接建立食譜
func Validate(p ParsedRecipe) []Issue {
	issues := make([]Issue, 0)
	fail := func(field, format string, args ...interface{}) {
		issues = append(issues, Issue{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}
	warn := func(field, format string, args ...interface{}) {
		issues = append(issues, Issue{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
	}

	if p.Title == "" {
		fail("title", "title is required")
	}
	if len(p.Ingredients) == 0 {
		fail("ingredients", "at least one ingredient is required")
	}
	if p.Instructions == "" {
		fail("instructions", "instructions are required")
	}

	switch {
	case p.Servings < minServings || p.Servings > maxServings:
		fail("servings", "servings must be between %d and %d, got %d", minServings, maxServings, p.Servings)
	case p.Servings > warnServings:
		warn("servings", "unusually many servings: %d", p.Servings)
	}
	switch {
	case p.PrepTimeMinutes < 0 || p.PrepTimeMinutes > maxPrepMinutes:
		fail("prep_time", "prep time must be between 0 and %d minutes, got %d", maxPrepMinutes, p.PrepTimeMinutes)
	case p.PrepTimeMinutes > warnPrepMinutes:
		warn("prep_time", "unusually long prep time: %d minutes", p.PrepTimeMinutes)
	}
	switch {
	case p.CookTimeMinutes < 0 || p.CookTimeMinutes > maxCookMinutes:
		fail("cook_time", "cook time must be between 0 and %d minutes, got %d", maxCookMinutes, p.CookTimeMinutes)
	case p.CookTimeMinutes > warnCookMinutes:
		warn("cook_time", "unusually long cook time: %d minutes", p.CookTimeMinutes)
	}
	return issues
}

// HasErrors 是否含有錯誤等級的問題
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
