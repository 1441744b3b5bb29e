package api

import (
	"fmt"
	"time"

	"pantry-cookbook/internal/api/handlers"
	"pantry-cookbook/internal/api/handlers/health"
	"pantry-cookbook/internal/api/middleware"
	"pantry-cookbook/internal/core/ai/service"
	"pantry-cookbook/internal/core/catalog"
	"pantry-cookbook/internal/core/extraction"
	"pantry-cookbook/internal/core/image"
	"pantry-cookbook/internal/core/matching"
	"pantry-cookbook/internal/core/pantry"
	"pantry-cookbook/internal/core/parsing"
	"pantry-cookbook/internal/core/recipe"
	"pantry-cookbook/internal/core/shopping"
	"pantry-cookbook/internal/infrastructure/config"
	"pantry-cookbook/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services 路由需要的服務
type Services struct {
	DB         health.Pinger
	Catalog    *catalog.Service
	Pantry     *pantry.Service
	Recipes    *recipe.Service
	Matching   *matching.Service
	Shopping   *shopping.Service
	Parsing    *parsing.Service
	Extraction *extraction.Service
	Importer   *extraction.Importer
	Images     *image.Service
	AI         *service.Service
}

func (s *Services) validate() error {
	missing := make([]string, 0)
	check := func(name string, ok bool) {
		if !ok {
			missing = append(missing, name)
		}
	}
	check("catalog", s.Catalog != nil)
	check("pantry", s.Pantry != nil)
	check("recipes", s.Recipes != nil)
	check("matching", s.Matching != nil)
	check("shopping", s.Shopping != nil)
	check("parsing", s.Parsing != nil)
	check("extraction", s.Extraction != nil)
	check("importer", s.Importer != nil)
	check("images", s.Images != nil)
	check("ai", s.AI != nil)
	if len(missing) > 0 {
		return fmt.Errorf("services not initialized: %v", missing)
	}
	return nil
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc *Services) (*gin.Engine, error) {
	if err := svc.validate(); err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		return nil, err
	}
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", handlers.HouseholdHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 健康檢查不受限流與超時影響
	hh := health.NewHandler(cfg.App.Version, svc.DB, svc.AI)
	router.GET("/health", hh.Health)
	router.GET("/ready", hh.Ready)
	router.GET("/live", hh.Live)

	api := router.Group("/api/v1")
	api.Use(middleware.BodySizeLimit(cfg.Server.MaxBodySize))
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	if cfg.DedupWindow > 0 {
		api.Use(middleware.Deduplication(cfg.DedupWindow))
	}

	household := cfg.Household.DefaultID

	ingredients := handlers.NewIngredientHandler(svc.Catalog, svc.Pantry, household)
	ig := api.Group("/ingredients")
	{
		ig.GET("", ingredients.List)
		ig.POST("", ingredients.Create)
		ig.GET("/categories", ingredients.Categories)
		ig.POST("/seed", ingredients.Seed)
		ig.GET("/:id", ingredients.Get)
		ig.PATCH("/:id", ingredients.Update)
		ig.DELETE("/:id", ingredients.Delete)
	}

	pantryH := handlers.NewPantryHandler(svc.Pantry, household)
	pg := api.Group("/pantry")
	{
		pg.GET("", pantryH.List)
		pg.GET("/stats", pantryH.Stats)
		pg.POST("/bulk", pantryH.Bulk)
		pg.PUT("/:ingredient_id", pantryH.Set)
		pg.DELETE("/:ingredient_id", pantryH.Remove)
	}

	recipes := handlers.NewRecipeHandler(svc.Recipes, svc.Catalog, svc.Pantry, svc.Images, household)
	rg := api.Group("/recipes")
	{
		rg.GET("", recipes.List)
		rg.POST("", recipes.Create)
		rg.GET("/search", recipes.Search)
		rg.GET("/:id", recipes.Get)
		rg.DELETE("/:id", recipes.Delete)
		rg.POST("/:id/image", recipes.UploadImage)
	}

	matches := handlers.NewMatchHandler(svc.Matching, household)
	api.GET("/matches", matches.Matches)
	api.GET("/matches/suggestions", matches.Suggestions)

	shoppingH := handlers.NewShoppingHandler(svc.Shopping, household)
	api.POST("/shopping-list", shoppingH.Build)

	extract := handlers.NewExtractHandler(svc.Extraction, svc.Importer, svc.Parsing)
	eg := api.Group("/extract")
	{
		eg.POST("/url", extract.URL)
		eg.POST("/urls", extract.URLs)
		eg.POST("/text", extract.Text)
		eg.POST("/bulk", extract.Bulk)
		eg.POST("/import", extract.Import)
		eg.GET("/log", extract.Log)
	}

	parse := handlers.NewParseHandler(svc.Parsing)
	api.POST("/parse/ingredient", parse.Ingredient)
	api.POST("/parse/ingredients", parse.Ingredients)

	ai := handlers.NewAIHandler(svc.AI, svc.Recipes, svc.Catalog, svc.Pantry, household)
	ag := api.Group("/ai")
	{
		ag.GET("/status", ai.Status)
		ag.POST("/recipes/:id/instructions", ai.Instructions)
		ag.POST("/recipes/:id/nutrition", ai.Nutrition)
		ag.POST("/recipes/:id/suggestions", ai.Suggestions)
	}

	common.LogInfo("Router setup completed",
		zap.Int("routes", len(router.Routes())),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodySize),
	)
	return router, nil
}
