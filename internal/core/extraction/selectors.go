package extraction

import (
	"strings"
	"unicode"

	"pantry-cookbook/internal/pkg/common"

	"github.com/PuerkitoBio/goquery"
)

// 欄位長度門檻
const (
	minDescriptionLen  = 10
	minIngredientLen   = 2
	minIngredientItems = 2
	minInstructionsLen = 20
)

// extractWithSelectors 依網域設定與通用選擇器逐欄擷取，找不到的欄位留空
func extractWithSelectors(doc *goquery.Document, sourceURL string, site SiteConfig, matched bool, generic SiteConfig) *Record {
	chain := func(field string) []string {
		if !matched {
			return generic.selectors(field)
		}
		return append(append([]string{}, site.selectors(field)...), generic.selectors(field)...)
	}

	r := NewRecord(sourceURL)
	r.Title = firstValue(doc, chain(fieldTitle), func(v string) bool { return v != "" })
	r.Description = firstValue(doc, chain(fieldDescription), func(v string) bool { return len(v) > minDescriptionLen })
	r.IngredientsRaw = firstList(doc, chain(fieldIngredients))
	r.InstructionsRaw = firstInstructions(doc, chain(fieldInstructions))
	r.PrepTime = firstTime(doc, chain(fieldPrepTime))
	r.CookTime = firstTime(doc, chain(fieldCookTime))
	r.TotalTime = firstTime(doc, chain(fieldTotalTime))
	r.Servings = firstValue(doc, chain(fieldServings), hasDigit)
	r.Cuisine = firstValue(doc, chain(fieldCuisine), nonEmpty)
	r.Category = firstValue(doc, chain(fieldCategory), nonEmpty)
	r.Difficulty = firstValue(doc, chain(fieldDifficulty), nonEmpty)
	r.Rating = firstValue(doc, chain(fieldRating), hasDigit)
	r.ImageURL = firstAttr(doc, chain(fieldImage), "content", "src")

	keys := make(map[string]bool)
	for k := range generic.Nutrition {
		keys[k] = true
	}
	if matched {
		for k := range site.Nutrition {
			keys[k] = true
		}
	}
	for k := range keys {
		sels := generic.Nutrition[k]
		if matched {
			sels = append(append([]string{}, site.Nutrition[k]...), sels...)
		}
		if v := firstValue(doc, sels, hasDigit); v != "" {
			r.Nutrition[k] = v
		}
	}

	r.Method = MethodGeneric
	modifier := 0.0
	if matched {
		r.Method = MethodSite
		modifier = site.ConfidenceModifier
	}
	if r.Title == "" && len(r.IngredientsRaw) == 0 && r.InstructionsRaw == "" {
		r.Confidence = 0
		return r
	}
	r.Confidence = clamp(Score(r) + modifier)
	return r
}

func nonEmpty(v string) bool { return v != "" }

func hasDigit(v string) bool {
	return strings.IndexFunc(v, unicode.IsDigit) >= 0
}

// valueOf meta 取 content，其餘取正規化後的文字
func valueOf(s *goquery.Selection) string {
	if goquery.NodeName(s) == "meta" {
		v, _ := s.Attr("content")
		return common.NormalizeSpace(v)
	}
	return common.NormalizeSpace(s.Text())
}

func firstValue(doc *goquery.Document, selectors []string, ok func(string) bool) string {
	for _, sel := range selectors {
		if v := valueOf(doc.Find(sel).First()); ok(v) {
			return v
		}
	}
	return ""
}

func firstAttr(doc *goquery.Document, selectors []string, attrs ...string) string {
	for _, sel := range selectors {
		s := doc.Find(sel).First()
		for _, a := range attrs {
			if v, ok := s.Attr(a); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// firstTime 優先使用 datetime/content 屬性，文字需看起來像時間
func firstTime(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		for _, a := range []string{"datetime", "content"} {
			if v, ok := s.Attr(a); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		text := common.NormalizeSpace(s.Text())
		lower := strings.ToLower(text)
		if strings.Contains(lower, "min") || strings.Contains(lower, "hour") || strings.Contains(lower, ":") {
			return text
		}
	}
	return ""
}

// firstList 第一個產生至少兩項有效項目的選擇器
func firstList(doc *goquery.Document, selectors []string) []string {
	for _, sel := range selectors {
		items := make([]string, 0)
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if v := valueOf(s); len(v) > minIngredientLen {
				items = append(items, v)
			}
		})
		if len(items) >= minIngredientItems {
			return items
		}
	}
	return []string{}
}

// firstInstructions 容器內有 li/p 時逐項換行，合併後需超過 20 字元
func firstInstructions(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		steps := make([]string, 0)
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			children := s.Find("li")
			if children.Length() == 0 {
				children = s.Find("p")
			}
			if children.Length() == 0 {
				if v := valueOf(s); v != "" {
					steps = append(steps, v)
				}
				return
			}
			children.Each(func(_ int, c *goquery.Selection) {
				if v := common.NormalizeSpace(c.Text()); v != "" {
					steps = append(steps, v)
				}
			})
		})
		if combined := strings.Join(steps, "\n"); len(combined) > minInstructionsLen {
			return combined
		}
	}
	return ""
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true, "dd": true,
	"div": true, "dl": true, "dt": true, "figcaption": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "td": true, "th": true, "tr": true, "ul": true, "title": true,
}

var invisibleElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "svg": true, "head": true,
}

// visibleText 將文件可見文字轉為逐行文字，區塊元素之間換行
func visibleText(doc *goquery.Document) string {
	var b strings.Builder
	if title := common.NormalizeSpace(doc.Find("head title").First().Text()); title != "" {
		b.WriteString(title)
		b.WriteString("\n")
	}
	writeVisible(doc.Find("body"), &b)

	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = common.NormalizeSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func writeVisible(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		switch {
		case name == "#text":
			b.WriteString(s.Text())
		case invisibleElements[name], strings.HasPrefix(name, "#"):
			return
		case blockElements[name]:
			b.WriteString("\n")
			writeVisible(s, b)
			b.WriteString("\n")
		default:
			writeVisible(s, b)
		}
	})
}
