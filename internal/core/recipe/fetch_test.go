package recipe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"recipe-finder/internal/core/provider"
	"recipe-finder/internal/pkg/common"
)

// barrierSource 所有詳細資料請求到齊後才一起回應，逾時視為資料源失敗
type barrierSource struct {
	*fakeSource

	want    int
	mu      sync.Mutex
	arrived int
	release chan struct{}
}

func (b *barrierSource) FetchDetail(ctx context.Context, id string) (provider.RawRecord, bool, error) {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.want {
		close(b.release)
	}
	b.mu.Unlock()

	select {
	case <-b.release:
		return b.fakeSource.FetchDetail(ctx, id)
	case <-time.After(2 * time.Second):
		return nil, false, provider.Unavailable("lookup", errors.New("fetches did not overlap"))
	}
}

func TestFetchAllRunsConcurrentlyAndKeepsOrder(t *testing.T) {
	fake := newFakeSource()
	fake.addMeal("1", "One", "Cook.", "Rice")
	fake.addMeal("2", "Two", "Cook.", "Rice")
	fake.addMeal("4", "Four", "Cook.", "Rice")

	source := &barrierSource{fakeSource: fake, want: 4, release: make(chan struct{})}
	fetcher := &detailFetcher{source: source, records: NewRecordNormalizer(DefaultCategoryTable())}

	fetched := fetcher.fetchAll(context.Background(), candidateRefs("4", "3", "2", "1"))

	recipes := make([]common.Recipe, 0, len(fetched))
	for _, item := range fetched {
		recipes = append(recipes, item.recipe)
	}
	assert.Equal(t, []string{"4", "2", "1"}, recipeIDs(recipes))
}
