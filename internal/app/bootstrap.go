package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/core/mealdb"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
)

// BuildService 組裝資料源客戶端、快取與食譜服務，回傳的 cleanup 需在結束時呼叫
func BuildService(ctx context.Context, cfg *config.Config) (*recipe.Service, func(), error) {
	client := mealdb.NewClient(cfg)

	source, closeCache, err := cache.Wrap(ctx, client, cfg.Cache)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	common.LogInfo("食譜服務已初始化",
		zap.String("source", cfg.MealDB.BaseURL),
		zap.Bool("breaker", cfg.MealDB.Breaker.Enabled),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Int("candidate_limit", cfg.Search.CandidateLimit),
		zap.Int("category_limit", cfg.Search.CategoryLimit),
	)

	cleanup := func() {
		if err := closeCache(); err != nil {
			common.LogWarn("關閉快取失敗", zap.Error(err))
		}
		_ = client.Close()
	}

	return recipe.NewService(source, cfg.Search), cleanup, nil
}
