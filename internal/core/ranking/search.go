package ranking

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"pantry-cookbook/internal/core/recipe"
)

// 各欄位的相關度權重
const (
	weightTitle        = 3.0
	weightDescription  = 2.0
	weightIngredient   = 2.5
	weightInstructions = 1.0
	phraseBoost        = 1.5
	minTermLength      = 3
)

// NameLookup 食材名稱查詢
type NameLookup interface {
	Name(id int64) string
}

// SearchHit 搜尋結果與相關度
type SearchHit struct {
	Recipe       recipe.Recipe `json:"recipe"`
	Score        float64       `json:"relevance_score"`
	MatchedTerms []string      `json:"matched_terms"`
}

// Search 計算每筆食譜對查詢的相關度，不過濾零分結果，保留原本順序
func Search(recipes []recipe.Recipe, query string, lookup NameLookup) []SearchHit {
	terms := queryTerms(query)
	phrase := strings.ToLower(strings.TrimSpace(query))

	hits := make([]SearchHit, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		matched := make(map[string]bool)
		score := scoreText(r.Name, terms, weightTitle, matched)
		score += scoreText(r.Description, terms, weightDescription, matched)
		if lookup != nil {
			for _, ri := range r.Ingredients {
				score += scoreText(lookup.Name(ri.IngredientID), terms, weightIngredient, matched)
			}
		}
		score += scoreText(r.Instructions, terms, weightInstructions, matched)
		if phrase != "" && strings.Contains(strings.ToLower(r.Name), phrase) {
			score *= phraseBoost
		}

		list := make([]string, 0, len(matched))
		for t := range matched {
			list = append(list, t)
		}
		sort.Strings(list)
		hits[i] = SearchHit{Recipe: *r, Score: score, MatchedTerms: list}
	}
	return hits
}

// queryTerms 去除標點後切詞，少於三個字元的詞略過
func queryTerms(query string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return ' '
	}, query)
	terms := make([]string, 0)
	for _, t := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(t) >= minTermLength {
			terms = append(terms, t)
		}
	}
	return terms
}

// scoreText 完整單字命中給全額權重，只出現在單字內部給一半
func scoreText(text string, terms []string, weight float64, matched map[string]bool) float64 {
	if text == "" || len(terms) == 0 {
		return 0
	}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	score := 0.0
	for _, term := range terms {
		whole, partial := false, false
		for _, w := range words {
			if w == term {
				whole = true
				break
			}
			if strings.Contains(w, term) {
				partial = true
			}
		}
		switch {
		case whole:
			score += weight
			matched[term] = true
		case partial:
			score += weight * 0.5
			matched[term] = true
		}
	}
	return score
}
