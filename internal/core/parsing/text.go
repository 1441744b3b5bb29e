package parsing

import (
	"regexp"
	"sort"
	"strings"

	"pantry-cookbook/internal/pkg/common"
)

var (
	titlePrefixPattern  = regexp.MustCompile(`(?i)^recipe\s*:\s*`)
	titleDomainPattern  = regexp.MustCompile(`(?i)\s+[-–|]\s+[\w.-]+\.(?:com|net|org|co\.uk|co)$`)
	titleSuffixPattern  = regexp.MustCompile(`\s+\|\s+[^|]+$`)
	titleRecipeWord     = regexp.MustCompile(`(?i)\s+recipe$`)
	instructionBulletRe = regexp.MustCompile(`^\s*(?:(?:[-*•·]|\d+[.)])\s+|(?i:step)\s*\d+[:.)]?\s*)`)
)

// CleanTitle 移除 "Recipe:" 前綴、網站名稱後綴與結尾的 "recipe"
func CleanTitle(title string) string {
	t := common.NormalizeSpace(title)
	if t == "" {
		return ""
	}
	cleaned := titlePrefixPattern.ReplaceAllString(t, "")
	cleaned = titleDomainPattern.ReplaceAllString(cleaned, "")
	cleaned = titleSuffixPattern.ReplaceAllString(cleaned, "")
	cleaned = titleRecipeWord.ReplaceAllString(cleaned, "")
	cleaned = strings.Trim(cleaned, " -–|:")
	if cleaned == "" {
		return t
	}
	return cleaned
}

// CleanInstructions 逐行去除編號與項目符號，空行略過
func CleanInstructions(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = common.NormalizeSpace(instructionBulletRe.ReplaceAllString(l, ""))
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// 名稱比對門檻與回傳上限
const (
	suggestThreshold = 0.3
	maxSuggestions   = 5
)

// Similarity 名稱相似度：相同 1.0、互相包含 0.8，其餘為單字 Jaccard
func Similarity(a, b string) float64 {
	a = strings.ToLower(common.NormalizeSpace(a))
	b = strings.ToLower(common.NormalizeSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}
	wa := wordSet(a)
	wb := wordSet(b)
	inter := 0
	for w := range wa {
		if wb[w] {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Suggestion 候選名稱與相似度
type Suggestion struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// SuggestMatches 回傳相似度高於 0.3 的前五個候選，同分保持輸入順序
func SuggestMatches(name string, candidates []string) []Suggestion {
	out := make([]Suggestion, 0)
	for _, c := range candidates {
		if s := Similarity(name, c); s > suggestThreshold {
			out = append(out, Suggestion{Name: c, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}
