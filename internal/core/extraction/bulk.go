package extraction

import (
	"context"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// 單段文字被視為食譜的條件
const (
	minSectionLen        = 200
	minSectionIndicators = 3
)

var (
	sectionSplitter = regexp.MustCompile(`\n\s*\n\s*\n|---+|\*\*\*+|Recipe:|RECIPE:|\nNext recipe|\nRecipe #`)
	indicatorWords  = []string{"ingredients", "instructions", "directions", "method", "prep", "cook", "serves", "servings"}
	quantityUnit    = regexp.MustCompile(`(?i)\b\d+(?:[./]\d+)?\s*(?:cups?|tbsp|tsp|tablespoons?|teaspoons?|oz|ounces?|lbs?|pounds?|grams?|g|kg|ml)\b`)
)

// SplitBulkText 依分隔標記切段，只保留看起來像食譜的段落
func SplitBulkText(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := sectionSplitter.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if looksLikeRecipe(p) {
			out = append(out, p)
		}
	}
	return out
}

func looksLikeRecipe(section string) bool {
	if len(section) <= minSectionLen {
		return false
	}
	lower := strings.ToLower(section)
	count := 0
	for _, w := range indicatorWords {
		if strings.Contains(lower, w) {
			count++
		}
	}
	if quantityUnit.MatchString(section) {
		count++
	}
	return count >= minSectionIndicators
}

// ParseBulkText 將多篇食譜的文字切段後逐段解析，保持原始順序
func ParseBulkText(text string) []*Record {
	sections := SplitBulkText(text)
	records := make([]*Record, len(sections))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU())
	for i, section := range sections {
		g.Go(func() error {
			records[i] = ExtractText(section)
			return nil
		})
	}
	_ = g.Wait()
	return records
}
