package extraction

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SiteConfig 單一網域的欄位選擇器，依序嘗試
type SiteConfig struct {
	Domain             string              `yaml:"-" json:"domain"`
	Title              []string            `yaml:"title" json:"title,omitempty"`
	Description        []string            `yaml:"description" json:"description,omitempty"`
	Ingredients        []string            `yaml:"ingredients" json:"ingredients,omitempty"`
	Instructions       []string            `yaml:"instructions" json:"instructions,omitempty"`
	PrepTime           []string            `yaml:"prep_time" json:"prep_time,omitempty"`
	CookTime           []string            `yaml:"cook_time" json:"cook_time,omitempty"`
	TotalTime          []string            `yaml:"total_time" json:"total_time,omitempty"`
	Servings           []string            `yaml:"servings" json:"servings,omitempty"`
	Cuisine            []string            `yaml:"cuisine" json:"cuisine,omitempty"`
	Category           []string            `yaml:"category" json:"category,omitempty"`
	Difficulty         []string            `yaml:"difficulty" json:"difficulty,omitempty"`
	Rating             []string            `yaml:"rating" json:"rating,omitempty"`
	Image              []string            `yaml:"image" json:"image,omitempty"`
	Nutrition          map[string][]string `yaml:"nutrition" json:"nutrition,omitempty"`
	ConfidenceModifier float64             `yaml:"confidence_modifier" json:"confidence_modifier"`
}

// 欄位名稱
const (
	fieldTitle        = "title"
	fieldDescription  = "description"
	fieldIngredients  = "ingredients"
	fieldInstructions = "instructions"
	fieldPrepTime     = "prep_time"
	fieldCookTime     = "cook_time"
	fieldTotalTime    = "total_time"
	fieldServings     = "servings"
	fieldCuisine      = "cuisine"
	fieldCategory     = "category"
	fieldDifficulty   = "difficulty"
	fieldRating       = "rating"
	fieldImage        = "image"
)

func (c *SiteConfig) selectors(field string) []string {
	switch field {
	case fieldTitle:
		return c.Title
	case fieldDescription:
		return c.Description
	case fieldIngredients:
		return c.Ingredients
	case fieldInstructions:
		return c.Instructions
	case fieldPrepTime:
		return c.PrepTime
	case fieldCookTime:
		return c.CookTime
	case fieldTotalTime:
		return c.TotalTime
	case fieldServings:
		return c.Servings
	case fieldCuisine:
		return c.Cuisine
	case fieldCategory:
		return c.Category
	case fieldDifficulty:
		return c.Difficulty
	case fieldRating:
		return c.Rating
	case fieldImage:
		return c.Image
	}
	return nil
}

// genericSite 沒有網域設定時的預設選擇器
var genericSite = SiteConfig{
	Domain:       "generic",
	Title:        []string{`[itemprop="name"]`, ".recipe-title", ".entry-title", "h1.recipe", "h1", "title"},
	Description:  []string{`[itemprop="description"]`, ".recipe-description", ".recipe-summary", ".entry-summary", `meta[name="description"]`},
	Ingredients:  []string{`[itemprop="recipeIngredient"]`, `[itemprop="ingredients"]`, ".recipe-ingredient", ".ingredient", "ul.ingredients li", ".ingredients li"},
	Instructions: []string{`[itemprop="recipeInstructions"]`, ".recipe-instructions", ".instructions", ".method", ".directions"},
	PrepTime:     []string{`[itemprop="prepTime"]`, ".prep-time", ".recipe-prep-time", "time[datetime]"},
	CookTime:     []string{`[itemprop="cookTime"]`, ".cook-time", ".recipe-cook-time"},
	TotalTime:    []string{`[itemprop="totalTime"]`, ".total-time", ".recipe-total-time"},
	Servings:     []string{`[itemprop="recipeYield"]`, ".recipe-yield", ".servings", ".serves"},
	Cuisine:      []string{`[itemprop="recipeCuisine"]`, ".recipe-cuisine", ".cuisine"},
	Category:     []string{`[itemprop="recipeCategory"]`, ".recipe-category", ".category"},
	Difficulty:   []string{".difficulty", ".recipe-difficulty", ".level"},
	Rating:       []string{`[itemprop="ratingValue"]`, ".rating", ".stars"},
	Image:        []string{`meta[property="og:image"]`, `[itemprop="image"]`},
	Nutrition: map[string][]string{
		"calories": {`[itemprop="calories"]`, ".calories"},
		"protein":  {`[itemprop="proteinContent"]`, ".protein"},
		"carbs":    {`[itemprop="carbohydrateContent"]`, ".carbs", ".carbohydrates"},
		"fat":      {`[itemprop="fatContent"]`, ".fat"},
		"fiber":    {`[itemprop="fiberContent"]`, ".fiber"},
		"sodium":   {`[itemprop="sodiumContent"]`, ".sodium"},
	},
}

// builtinSites 沒有設定檔時使用的網域設定
var builtinSites = map[string]SiteConfig{
	"allrecipes.com": {
		Title:              []string{"h1.recipe-summary__h1", "h1.headline"},
		Ingredients:        []string{".recipe-ingred_txt", ".ingredients-item-name"},
		Instructions:       []string{".recipe-directions__list--item", ".instructions-section-item"},
		ConfidenceModifier: 0.2,
	},
	"foodnetwork.com": {
		Title:              []string{".o-AssetTitle__a-HeadlineText"},
		Ingredients:        []string{".o-RecipeIngredient__a-Ingredient", ".o-Ingredients__a-Ingredient"},
		Instructions:       []string{".o-Method__m-Step"},
		ConfidenceModifier: 0.2,
	},
	"epicurious.com": {
		Ingredients:        []string{`[data-testid="IngredientList"] li`, `[data-testid="IngredientList"] div`},
		Instructions:       []string{`[data-testid="InstructionsWrapper"] li`, `[data-testid="InstructionsWrapper"] p`},
		ConfidenceModifier: 0.1,
	},
}

// SiteTable 網域到選擇器設定的對照，啟動時載入一次
type SiteTable struct {
	sites   map[string]SiteConfig
	generic SiteConfig
}

// NewSiteTable 以指定網域設定建立對照表
func NewSiteTable(sites map[string]SiteConfig) *SiteTable {
	t := &SiteTable{sites: make(map[string]SiteConfig, len(sites)), generic: genericSite}
	for domain, cfg := range sites {
		domain = normalizeHost(domain)
		cfg.Domain = domain
		t.sites[domain] = cfg
	}
	return t
}

// DefaultSiteTable 內建的網域設定
func DefaultSiteTable() *SiteTable {
	return NewSiteTable(builtinSites)
}

type siteFile struct {
	Sites map[string]SiteConfig `yaml:"sites"`
}

// LoadSiteConfigs 讀取 YAML 網域設定，檔案不存在時回傳內建設定
func LoadSiteConfigs(path string) (*SiteTable, error) {
	if path == "" {
		return DefaultSiteTable(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSiteTable(), nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "extraction: read site configs %s", path)
	}
	var f siteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "extraction: parse site configs %s", path)
	}
	if len(f.Sites) == 0 {
		return nil, eris.Errorf("extraction: no sites in %s", path)
	}
	return NewSiteTable(f.Sites), nil
}

// Resolve 依主機名稱找設定：完全相符，其次最長的子網域後綴，最後為通用設定
func (t *SiteTable) Resolve(host string) (SiteConfig, bool) {
	host = normalizeHost(host)
	if cfg, ok := t.sites[host]; ok {
		return cfg, true
	}
	best := ""
	for domain := range t.sites {
		if strings.HasSuffix(host, "."+domain) && len(domain) > len(best) {
			best = domain
		}
	}
	if best != "" {
		return t.sites[best], true
	}
	return t.generic, false
}

// Generic 通用選擇器
func (t *SiteTable) Generic() SiteConfig {
	return t.generic
}

// Domains 已設定的網域（排序）
func (t *SiteTable) Domains() []string {
	out := make([]string, 0, len(t.sites))
	for d := range t.sites {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return strings.TrimPrefix(host, "www.")
}
