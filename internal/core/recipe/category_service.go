package recipe

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recipe-finder/internal/core/provider"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/pkg/metrics"
)

// CategoryAggregator 從固定分類各取樣幾道食譜作為預設結果
// --------------------------------------------------
type CategoryAggregator struct {
	source     provider.Source
	fetcher    *detailFetcher
	categories []common.Category
	limit      int
}

// NewCategoryAggregator 創建分類彙整器，limit 為每個分類的候選上限
func NewCategoryAggregator(source provider.Source, records *RecordNormalizer, categories []common.Category, limit int) *CategoryAggregator {
	return &CategoryAggregator{
		source:     source,
		fetcher:    &detailFetcher{source: source, records: records},
		categories: categories,
		limit:      limit,
	}
}

// AggregateDefault 併發查詢所有分類並依分類順序攤平結果，不做跨分類去重
func (a *CategoryAggregator) AggregateDefault(ctx context.Context) ([]common.Recipe, error) {
	start := time.Now()
	defer func() {
		metrics.SearchDuration.WithLabelValues("default").Observe(time.Since(start).Seconds())
	}()

	perCategory := make([][]provider.CandidateRef, len(a.categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, category := range a.categories {
		g.Go(func() error {
			refs, err := a.source.FindByCategory(gctx, category)
			if err != nil {
				return err
			}
			perCategory[i] = capRefs(refs, a.limit)
			common.LogDebug("分類候選查詢完成",
				zap.String("category", string(category)),
				zap.Int("candidates", len(refs)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		metrics.SearchErrors.WithLabelValues("default").Inc()
		common.LogError("預設食譜查詢失敗", zap.Error(err))
		return nil, &SearchError{Cause: err}
	}

	batches := make([][]fetchedRecipe, len(a.categories))
	var wg sync.WaitGroup
	for i, refs := range perCategory {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batches[i] = a.fetcher.fetchAll(ctx, refs)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recipes := make([]common.Recipe, 0, len(a.categories)*a.limit)
	for _, batch := range batches {
		for _, item := range batch {
			recipes = append(recipes, item.recipe)
		}
	}

	common.LogInfo("預設食譜彙整完成",
		zap.Int("categories", len(a.categories)),
		zap.Int("recipes", len(recipes)),
	)
	return recipes, nil
}
