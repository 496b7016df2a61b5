package recipe

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"recipe-finder/internal/core/provider"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/pkg/metrics"
)

// fetchedRecipe 取得並正規化後的食譜，附帶原始步驟文字
type fetchedRecipe struct {
	recipe       common.Recipe
	instructions string
}

// detailFetcher 併發取得候選食譜的詳細資料
type detailFetcher struct {
	source  provider.Source
	records *RecordNormalizer
}

// fetchAll 併發取得所有候選的詳細資料並維持候選順序
// 單筆找不到、格式錯誤或資料源失敗只會移除該筆，不影響其他候選
func (f *detailFetcher) fetchAll(ctx context.Context, refs []provider.CandidateRef) []fetchedRecipe {
	slots := make([]*fetchedRecipe, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots[i] = f.fetchOne(ctx, ref.ID)
		}()
	}
	wg.Wait()

	out := make([]fetchedRecipe, 0, len(refs))
	for _, slot := range slots {
		if slot != nil {
			out = append(out, *slot)
		}
	}
	return out
}

// fetchOne 取得單筆詳細資料，任何失敗都回傳 nil
func (f *detailFetcher) fetchOne(ctx context.Context, id string) *fetchedRecipe {
	record, found, err := f.source.FetchDetail(ctx, id)
	if err != nil {
		metrics.SearchOmitted.WithLabelValues("unavailable").Inc()
		if !errors.Is(err, context.Canceled) {
			common.LogWarn("取得食譜詳細資料失敗，略過此候選",
				zap.String("id", id),
				zap.Error(err),
			)
		}
		return nil
	}
	if !found {
		metrics.SearchOmitted.WithLabelValues("not_found").Inc()
		common.LogDebug("食譜不存在，略過此候選", zap.String("id", id))
		return nil
	}

	recipe, instructions, err := f.records.Normalize(record)
	if err != nil {
		metrics.SearchOmitted.WithLabelValues("malformed").Inc()
		common.LogWarn("食譜紀錄格式錯誤，略過此候選",
			zap.String("id", id),
			zap.Error(err),
		)
		return nil
	}

	return &fetchedRecipe{recipe: recipe, instructions: instructions}
}

func capRefs(refs []provider.CandidateRef, limit int) []provider.CandidateRef {
	if limit > 0 && len(refs) > limit {
		return refs[:limit]
	}
	return refs
}
