package extraction

import (
	"regexp"
	"strings"

	"pantry-cookbook/internal/pkg/common"
)

// 啟發式解析的起始信心與每個訊號的加分
const (
	textBaseline     = 0.5
	htmlBaseline     = 0.3
	heuristicSignal  = 0.1
	maxHeaderLen     = 40
	maxTitleLen      = 100
	maxDescriptionLn = 3
)

var (
	ingredientsHeader  = regexp.MustCompile(`(?i)^(?:ingredients?|what you(?:'ll| will)? need|you will need|shopping list)\s*:?$`)
	instructionsHeader = regexp.MustCompile(`(?i)^(?:instructions?|directions?|method|steps|preparation|how to make it)\s*:?$`)
	metadataLine       = regexp.MustCompile(`(?i)^(?:(?:prep(?:aration)?|cook(?:ing)?|total)(?:\s+time)?|serves|servings|yield|makes|difficulty|cuisine)\s*:.{0,40}$|^(?i:serves|makes|yield)\s+\d+.{0,30}$`)
	bulletPrefix       = regexp.MustCompile(`^\s*(?:(?:[-*•·▢□✓]|\d+[.)])\s+|(?i:step)\s*\d+[:.)]?\s*)`)
	quantityLine       = regexp.MustCompile(`(?i)^(?:\d+(?:[./]\d+)?|[½⅓⅔¼¾⅛])\s*(?:cups?|tbsp|tsp|tablespoons?|teaspoons?|oz|ounces?|lbs?|pounds?|g|grams?|kg|ml|l|cloves?|cans?|slices?|pinch|large|medium|small|whole)?\b`)

	timeUnit       = `\s*:?\s*(\d+\s*(?:minutes?|mins?|hours?|hrs?))`
	prepSignal     = regexp.MustCompile(`prep(?:aration)?(?:\s+time)?` + timeUnit)
	cookSignal     = regexp.MustCompile(`cook(?:ing)?(?:\s+time)?` + timeUnit)
	totalSignal    = regexp.MustCompile(`total(?:\s+time)?` + timeUnit)
	servingsSignal = regexp.MustCompile(`(?:serves|servings|yield|makes)\s*:?\s*(\d+)`)
)

// ExtractText 解析貼上的純文字食譜
func ExtractText(text string) *Record {
	return extractHeuristic(text, "", textBaseline)
}

// extractHeuristic 以行為單位找出食材區塊與步驟區塊
func extractHeuristic(text, sourceURL string, baseline float64) *Record {
	r := NewRecord(sourceURL)
	r.Method = MethodHeuristic

	lines := make([]string, 0)
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if l = common.NormalizeSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	ingStart, insStart := -1, -1
	for i, l := range lines {
		if len(l) > maxHeaderLen {
			continue
		}
		if ingStart < 0 && ingredientsHeader.MatchString(l) {
			ingStart = i
		}
		if insStart < 0 && instructionsHeader.MatchString(l) && i > ingStart {
			insStart = i
		}
	}

	// 標題：第一行非標題列、非中繼資料且不過長的文字
	titleIdx := -1
	for i, l := range lines {
		if isHeader(l) || metadataLine.MatchString(l) || len(l) > maxTitleLen {
			continue
		}
		if (ingStart >= 0 && i >= ingStart) || (insStart >= 0 && i >= insStart) {
			break
		}
		titleIdx = i
		r.Title = l
		break
	}

	descEnd := len(lines)
	switch {
	case ingStart >= 0:
		descEnd = ingStart
	case insStart >= 0:
		descEnd = insStart
	}
	desc := make([]string, 0)
	for i := titleIdx + 1; titleIdx >= 0 && i < descEnd && len(desc) < maxDescriptionLn; i++ {
		if metadataLine.MatchString(lines[i]) || quantityLine.MatchString(lines[i]) {
			continue
		}
		desc = append(desc, lines[i])
	}

	if ingStart >= 0 {
		end := len(lines)
		if insStart > ingStart {
			end = insStart
		}
		for _, l := range lines[ingStart+1 : end] {
			if isHeader(l) || metadataLine.MatchString(l) {
				continue
			}
			if item := strings.TrimSpace(bulletPrefix.ReplaceAllString(l, "")); item != "" {
				r.IngredientsRaw = append(r.IngredientsRaw, item)
			}
		}
	} else {
		// 沒有食材標題時，收集看起來像「數量 單位 食材」的行
		limit := len(lines)
		if insStart >= 0 {
			limit = insStart
		}
		for i := titleIdx + 1; i < limit; i++ {
			if quantityLine.MatchString(lines[i]) {
				r.IngredientsRaw = append(r.IngredientsRaw, bulletPrefix.ReplaceAllString(lines[i], ""))
			}
		}
	}
	if len(desc) > 0 && (ingStart >= 0 || insStart >= 0) {
		r.Description = strings.Join(desc, " ")
	}

	if insStart >= 0 {
		steps := make([]string, 0)
		for _, l := range lines[insStart+1:] {
			if isHeader(l) || metadataLine.MatchString(l) {
				continue
			}
			if step := strings.TrimSpace(bulletPrefix.ReplaceAllString(l, "")); step != "" {
				steps = append(steps, step)
			}
		}
		r.InstructionsRaw = strings.Join(steps, "\n")
	}

	lower := strings.ToLower(text)
	confidence := baseline
	if m := prepSignal.FindStringSubmatch(lower); m != nil {
		r.PrepTime = m[1]
		confidence += heuristicSignal
	}
	if m := cookSignal.FindStringSubmatch(lower); m != nil {
		r.CookTime = m[1]
		confidence += heuristicSignal
	}
	if m := totalSignal.FindStringSubmatch(lower); m != nil {
		r.TotalTime = m[1]
	}
	if m := servingsSignal.FindStringSubmatch(lower); m != nil {
		r.Servings = m[1]
		confidence += heuristicSignal
	}
	if len(r.IngredientsRaw) > 0 {
		confidence += heuristicSignal
	}
	if r.InstructionsRaw != "" {
		confidence += heuristicSignal
	}
	r.Confidence = clamp(confidence)
	return r
}

func isHeader(l string) bool {
	return len(l) <= maxHeaderLen && (ingredientsHeader.MatchString(l) || instructionsHeader.MatchString(l))
}
