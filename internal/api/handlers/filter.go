package handlers

import (
	"strconv"
	"strings"

	"pantry-cookbook/internal/core/ranking"

	"github.com/gin-gonic/gin"
)

// parseFilter 由查詢參數組成食譜篩選條件，參數錯誤時已回應 400
//
//	cuisine, category, difficulty, dietary, time: 可重複或逗號分隔
//	min_servings, max_servings, min_rating: 數值
//	inclusive, makeable, complete: 布林
//	ingredients, exclude: 食材 id 清單
//	q: 名稱或描述包含的文字
func parseFilter(c *gin.Context) (ranking.Filter, bool) {
	f := ranking.Filter{
		Cuisines:     queryList(c, "cuisine"),
		Categories:   queryList(c, "category"),
		Difficulties: queryList(c, "difficulty"),
		DietaryTags:  queryList(c, "dietary"),
		Query:        strings.TrimSpace(c.Query("q")),
	}

	for _, raw := range queryList(c, "time") {
		b, ok := ranking.ParseTimeBucket(raw)
		if !ok {
			badRequest(c, "invalid time bucket: %q", raw)
			return f, false
		}
		f.TimeBuckets = append(f.TimeBuckets, b)
	}

	var ok bool
	if f.MinServings, ok = queryInt(c, "min_servings", 0); !ok {
		return f, false
	}
	if f.MaxServings, ok = queryInt(c, "max_servings", 0); !ok {
		return f, false
	}
	if f.InclusiveDietary, ok = queryBool(c, "inclusive", false); !ok {
		return f, false
	}
	if f.MakeableOnly, ok = queryBool(c, "makeable", false); !ok {
		return f, false
	}
	if f.CompleteOnly, ok = queryBool(c, "complete", false); !ok {
		return f, false
	}
	if f.RequiredIngredients, ok = queryIDs(c, "ingredients"); !ok {
		return f, false
	}
	if f.ExcludedIngredients, ok = queryIDs(c, "exclude"); !ok {
		return f, false
	}
	if raw := strings.TrimSpace(c.Query("min_rating")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 5 {
			badRequest(c, "invalid min_rating: %q", raw)
			return f, false
		}
		f.MinRating = v
	}
	return f, true
}
