package recipe

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-finder/internal/core/provider"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/pkg/metrics"
)

// MatchingEngine 依食材清單找出符合的食譜
// --------------------------------------------------
type MatchingEngine struct {
	source     provider.Source
	fetcher    *detailFetcher
	aggregator *CategoryAggregator
	limit      int
}

// NewMatchingEngine 創建食材比對引擎，limit 為候選上限
func NewMatchingEngine(source provider.Source, records *RecordNormalizer, aggregator *CategoryAggregator, limit int) *MatchingEngine {
	return &MatchingEngine{
		source:     source,
		fetcher:    &detailFetcher{source: source, records: records},
		aggregator: aggregator,
		limit:      limit,
	}
}

// SearchByIngredients 以已正規化的食材清單搜尋食譜
//
// 第一個食材沒有候選時，依序改用其他食材查詢，採用第一組非空的候選。
// 其餘每個食材都必須出現在某行食材名稱或步驟文字中（不分大小寫的子字串），
// 只靠步驟文字比對到的食材會記錄在 UnmatchedRequested。
// 清單為空時回傳預設分類彙整結果。
func (e *MatchingEngine) SearchByIngredients(ctx context.Context, requested []string) ([]common.Recipe, error) {
	if len(requested) == 0 {
		return e.aggregator.AggregateDefault(ctx)
	}

	start := time.Now()
	defer func() {
		metrics.SearchDuration.WithLabelValues("ingredients").Observe(time.Since(start).Seconds())
	}()

	refs, sourceIndex, err := e.findCandidates(ctx, requested)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		metrics.SearchErrors.WithLabelValues("ingredients").Inc()
		common.LogError("食材候選查詢失敗",
			zap.Strings("ingredients", requested),
			zap.Error(err),
		)
		return nil, &SearchError{Cause: err}
	}
	if len(refs) == 0 {
		common.LogInfo("沒有符合的食譜", zap.Strings("ingredients", requested))
		return []common.Recipe{}, nil
	}

	fetched := e.fetcher.fetchAll(ctx, capRefs(refs, e.limit))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recipes := make([]common.Recipe, 0, len(fetched))
	for _, item := range fetched {
		recipe, ok := matchSecondary(item, requested, sourceIndex)
		if ok {
			recipes = append(recipes, recipe)
		}
	}

	common.LogInfo("食材搜尋完成",
		zap.Strings("ingredients", requested),
		zap.String("candidate_ingredient", requested[sourceIndex]),
		zap.Int("candidates", len(refs)),
		zap.Int("fetched", len(fetched)),
		zap.Int("recipes", len(recipes)),
	)
	return recipes, nil
}

// findCandidates 查詢候選並回傳產生候選的食材索引，全部沒有結果時回傳空切片
func (e *MatchingEngine) findCandidates(ctx context.Context, requested []string) ([]provider.CandidateRef, int, error) {
	for i, name := range requested {
		refs, err := e.source.FindByIngredient(ctx, name)
		if err != nil {
			return nil, i, err
		}
		if len(refs) == 0 {
			common.LogDebug("食材沒有候選", zap.String("ingredient", name))
			continue
		}
		if i > 0 {
			metrics.SearchFallbacks.Inc()
			common.LogInfo("改用其他食材查詢候選",
				zap.String("primary", requested[0]),
				zap.String("fallback", name),
			)
		}
		return refs, i, nil
	}
	return nil, 0, nil
}

// matchSecondary 檢查產生候選以外的每個食材
func matchSecondary(item fetchedRecipe, requested []string, sourceIndex int) (common.Recipe, bool) {
	recipe := item.recipe
	instructions := strings.ToLower(item.instructions)
	unmatched := make([]string, 0)

	for i, name := range requested {
		if i == sourceIndex {
			continue
		}
		if recipe.HasIngredient(name) {
			continue
		}
		if !strings.Contains(instructions, strings.ToLower(name)) {
			return common.Recipe{}, false
		}
		unmatched = append(unmatched, name)
	}

	recipe.UnmatchedRequested = unmatched
	return recipe, true
}
