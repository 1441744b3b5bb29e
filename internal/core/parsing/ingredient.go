package parsing

import (
	"regexp"
	"strconv"
	"strings"

	"pantry-cookbook/internal/pkg/common"
)

// 單位別名 -> 標準單位
var unitAliases = map[string]string{
	"cup": "cup", "cups": "cup", "c": "cup",
	"tablespoon": "tablespoon", "tablespoons": "tablespoon", "tbsp": "tablespoon", "tbs": "tablespoon", "tbl": "tablespoon",
	"teaspoon": "teaspoon", "teaspoons": "teaspoon", "tsp": "teaspoon",
	"liter": "liter", "liters": "liter", "litre": "liter", "litres": "liter", "l": "liter",
	"milliliter": "milliliter", "milliliters": "milliliter", "millilitre": "milliliter", "ml": "milliliter",
	"pound": "pound", "pounds": "pound", "lb": "pound", "lbs": "pound",
	"ounce": "ounce", "ounces": "ounce", "oz": "ounce",
	"gram": "gram", "grams": "gram", "g": "gram",
	"kilogram": "kilogram", "kilograms": "kilogram", "kg": "kilogram",
	"piece": "piece", "pieces": "piece", "pc": "piece", "pcs": "piece",
	"clove": "clove", "cloves": "clove",
	"slice": "slice", "slices": "slice",
	"can": "can", "cans": "can",
	"pinch": "pinch", "pinches": "pinch",
	"dash": "dash", "dashes": "dash",
}

// 不影響食材身分的描述詞，從名稱移到處理方式
var sizeDescriptors = map[string]bool{
	"large": true, "medium": true, "small": true, "extra-large": true, "jumbo": true,
	"fresh": true, "ripe": true,
}

// 常見 Unicode 分數
var vulgarFractions = map[rune]string{
	'½': "1/2", '⅓': "1/3", '⅔': "2/3", '¼': "1/4", '¾': "3/4",
	'⅕': "1/5", '⅖': "2/5", '⅗': "3/5", '⅘': "4/5", '⅙': "1/6", '⅚': "5/6",
	'⅛': "1/8", '⅜': "3/8", '⅝': "5/8", '⅞': "7/8",
}

const numberExpr = `\d+\s+\d+/\d+|\d+/\d+|\d+(?:\.\d+)?|\.\d+`

var (
	quantityPattern    = regexp.MustCompile(`^(` + numberExpr + `)(?:\s*(?:-|–|to)\s*(?:` + numberExpr + `))?\s*(.*)$`)
	parentheticalRegex = regexp.MustCompile(`\(([^)]*)\)`)
	optionalPattern    = regexp.MustCompile(`(?i)\b(optional|to taste)\b`)
	leadingOfPattern   = regexp.MustCompile(`(?i)^of\s+`)
	bulletPattern      = regexp.MustCompile(`^\s*(?:[-*•·▢□]|\d+[.)])\s+`)
)

// ParseIngredientLine 將單行食材拆成數量、單位、名稱與處理方式
//
// 不依賴 AI 的後備解析器，任何輸入都會回傳結果，無法辨識的部分留在名稱裡。
func ParseIngredientLine(line string) common.ParsedIngredient {
	original := strings.TrimSpace(line)
	out := common.ParsedIngredient{Original: original}
	if original == "" {
		return out
	}
	text := bulletPattern.ReplaceAllString(expandFractions(original), "")
	out.Optional = optionalPattern.MatchString(text)

	prep := make([]string, 0, 2)
	for _, m := range parentheticalRegex.FindAllStringSubmatch(text, -1) {
		if note := cleanNote(m[1]); note != "" {
			prep = append(prep, note)
		}
	}
	text = parentheticalRegex.ReplaceAllString(text, " ")
	if i := strings.Index(text, ","); i >= 0 {
		if note := cleanNote(text[i+1:]); note != "" {
			prep = append(prep, note)
		}
		text = text[:i]
	}
	text = optionalPattern.ReplaceAllString(text, " ")
	text = common.NormalizeSpace(text)

	if m := quantityPattern.FindStringSubmatch(text); m != nil {
		out.Quantity = parseQuantity(m[1])
		text = m[2]
	}

	words := strings.Fields(text)
	if len(words) > 1 {
		if unit, ok := unitAliases[strings.TrimSuffix(strings.ToLower(words[0]), ".")]; ok {
			// 無數量時只接受 "pinch of" 這類本身即是份量的單位
			if out.Quantity > 0 || unit == "pinch" || unit == "dash" {
				out.Unit = unit
				words = words[1:]
			}
		}
	}

	name := leadingOfPattern.ReplaceAllString(strings.Join(words, " "), "")
	words = strings.Fields(strings.ToLower(name))
	descriptors := make([]string, 0)
	for len(words) > 1 && sizeDescriptors[words[0]] {
		descriptors = append(descriptors, words[0])
		words = words[1:]
	}
	out.Name = strings.Trim(strings.Join(words, " "), " .,;:")
	if len(descriptors) > 0 {
		prep = append([]string{strings.Join(descriptors, " ")}, prep...)
	}
	out.Preparation = strings.Join(prep, ", ")
	return out
}

// ParseIngredientLines 逐行解析，略過空行
func ParseIngredientLines(lines []string) []common.ParsedIngredient {
	out := make([]common.ParsedIngredient, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		p := ParseIngredientLine(l)
		if p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func expandFractions(s string) string {
	var b strings.Builder
	prevDigit := false
	for _, r := range s {
		if f, ok := vulgarFractions[r]; ok {
			if prevDigit {
				b.WriteByte(' ')
			}
			b.WriteString(f)
			prevDigit = false
			continue
		}
		if r == '⁄' {
			r = '/'
		}
		b.WriteRune(r)
		prevDigit = r >= '0' && r <= '9'
	}
	return b.String()
}

// parseQuantity 解析 "1 1/2"、"3/4"、"2.5"
func parseQuantity(s string) float64 {
	total := 0.0
	for _, part := range strings.Fields(s) {
		if num, den, ok := strings.Cut(part, "/"); ok {
			n, err1 := strconv.ParseFloat(num, 64)
			d, err2 := strconv.ParseFloat(den, 64)
			if err1 == nil && err2 == nil && d != 0 {
				total += n / d
			}
			continue
		}
		if v, err := strconv.ParseFloat(part, 64); err == nil {
			total += v
		}
	}
	return total
}

func cleanNote(s string) string {
	s = optionalPattern.ReplaceAllString(s, " ")
	return strings.Trim(common.NormalizeSpace(s), " ,;:.")
}
