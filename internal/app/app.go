// Package app 依設定組裝資料庫、快取與各項服務，供 API 服務與 CLI 共用
package app

import (
	"context"

	"pantry-cookbook/internal/api"
	"pantry-cookbook/internal/core/ai/cache"
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
	"pantry-cookbook/internal/infrastructure/store"
	"pantry-cookbook/internal/pkg/common"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// App 組裝完成的服務集合
type App struct {
	Config     *config.Config
	Store      *store.SQLiteStore
	Cache      *cache.CacheManager
	Redis      *cache.RedisService
	AI         *service.Service
	Catalog    *catalog.Service
	Pantry     *pantry.Service
	Recipes    *recipe.Service
	Matching   *matching.Service
	Shopping   *shopping.Service
	Parsing    *parsing.Service
	Extraction *extraction.Service
	Importer   *extraction.Importer
	Images     *image.Service
}

// New 開啟資料庫並執行遷移，Redis 連線失敗時只記錄警告並停用二級快取
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := store.NewSQLite(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "app: migrate database")
	}

	a := &App{Config: cfg, Store: db, Cache: cache.NewManager(cfg)}

	a.Redis, err = cache.NewRedisService(ctx, cfg)
	if err != nil {
		common.LogWarn("Redis 無法連線，停用二級快取", zap.Error(err))
		a.Redis = nil
	}

	a.AI = service.NewService(cfg, a.Cache, a.Redis)
	a.Catalog = catalog.NewService(db)
	a.Pantry = pantry.NewService(db, a.Catalog)
	a.Recipes = recipe.NewService(db, a.Catalog)
	a.Matching = matching.NewService(a.Pantry, a.Recipes, a.Catalog)
	a.Shopping = shopping.NewService(a.Recipes, a.Pantry, a.Catalog)
	a.Parsing = parsing.NewService(a.AI)
	a.Importer = extraction.NewImporter(a.Parsing, a.Catalog, a.Recipes)
	a.Images = image.NewService(cfg.Image, a.Recipes)

	a.Extraction, err = extraction.NewServiceFromConfig(cfg, a.AI, a.Cache, db)
	if err != nil {
		a.Close()
		return nil, err
	}

	common.LogInfo("服務初始化完成",
		zap.String("database", cfg.Database.Path),
		zap.Bool("cache_enabled", a.Cache != nil),
		zap.Bool("redis_enabled", a.Redis != nil),
		zap.Bool("ai_enabled", cfg.AI.Enabled),
	)
	return a, nil
}

// APIServices 轉為路由需要的服務集合
func (a *App) APIServices() *api.Services {
	return &api.Services{
		DB:         a.Store,
		Catalog:    a.Catalog,
		Pantry:     a.Pantry,
		Recipes:    a.Recipes,
		Matching:   a.Matching,
		Shopping:   a.Shopping,
		Parsing:    a.Parsing,
		Extraction: a.Extraction,
		Importer:   a.Importer,
		Images:     a.Images,
		AI:         a.AI,
	}
}

// Close 釋放快取與資料庫連線
func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		common.LogWarn("關閉快取失敗", zap.Error(err))
	}
	if err := a.Redis.Close(); err != nil {
		common.LogWarn("關閉 Redis 失敗", zap.Error(err))
	}
	if err := a.Store.Close(); err != nil {
		common.LogWarn("關閉資料庫失敗", zap.Error(err))
	}
}
