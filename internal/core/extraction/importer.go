package extraction

import (
	"context"
	"strings"

	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/core/parsing"
	"pantry-cookbook/internal/core/recipe"
	"pantry-cookbook/internal/pkg/common"

	"go.uber.org/zap"
)

// IngredientResolver 依名稱尋找或建立食材
type IngredientResolver interface {
	FindOrCreate(ctx context.Context, name, category string) (*catalog.Ingredient, bool, error)
}

// RecipeCreator 建立食譜
type RecipeCreator interface {
	Create(ctx context.Context, in recipe.Recipe) (*recipe.Recipe, error)
}

// Importer 將擷取紀錄轉為目錄中的食譜
type Importer struct {
	parser      *parsing.Service
	ingredients IngredientResolver
	recipes     RecipeCreator
}

// NewImporter 創建匯入器
func NewImporter(parser *parsing.Service, ingredients IngredientResolver, recipes RecipeCreator) *Importer {
	return &Importer{parser: parser, ingredients: ingredients, recipes: recipes}
}

// Import 驗證並正規化紀錄後建立食譜，新食材會自動歸類
func (im *Importer) Import(ctx context.Context, rec *Record) (*recipe.Recipe, error) {
	if !rec.HasMinimumData() {
		return nil, common.ErrInsufficientData.Withf("record needs a title, ingredients and instructions")
	}

	parsed := im.parser.Parse(ctx, rec.Source())
	if !parsed.Valid() {
		msgs := make([]string, 0, len(parsed.Issues))
		for _, is := range parsed.Issues {
			if is.Severity == parsing.SeverityError {
				msgs = append(msgs, is.Field+": "+is.Message)
			}
		}
		return nil, common.NewValidationError(strings.Join(msgs, "; "))
	}

	in := recipe.Recipe{
		Name:            parsed.Title,
		Description:     parsed.Description,
		Instructions:    parsed.Instructions,
		PrepTimeMinutes: parsed.PrepTimeMinutes,
		CookTimeMinutes: parsed.CookTimeMinutes,
		Servings:        parsed.Servings,
		SourceURL:       parsed.SourceURL,
		Cuisine:         parsed.Cuisine,
		Category:        parsed.Category,
		Difficulty:      parsed.Difficulty,
		DietaryTags:     parsed.DietaryTags,
		Rating:          parsed.Rating,
		Nutrition:       parsed.Nutrition,
	}

	seen := make(map[int64]bool, len(parsed.Ingredients))
	created := 0
	for _, pi := range parsed.Ingredients {
		ing, isNew, err := im.ingredients.FindOrCreate(ctx, pi.Name, catalog.AutoCategorize(pi.Name))
		if err != nil {
			return nil, err
		}
		if isNew {
			created++
		}
		if seen[ing.ID] {
			continue
		}
		seen[ing.ID] = true
		in.Ingredients = append(in.Ingredients, recipe.RecipeIngredient{
			IngredientID:    ing.ID,
			Quantity:        pi.Quantity,
			Unit:            pi.Unit,
			PreparationNote: pi.Preparation,
			IsOptional:      pi.Optional,
		})
	}

	out, err := im.recipes.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	common.LogInfo("擷取紀錄已匯入",
		zap.Int64("recipe_id", out.ID),
		zap.String("method", rec.Method),
		zap.String("ingredient_method", parsed.IngredientMethod),
		zap.Int("new_ingredients", created),
	)
	return out, nil
}
