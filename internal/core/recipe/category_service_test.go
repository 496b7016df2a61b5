package recipe

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-finder/internal/core/provider"
	"recipe-finder/internal/pkg/common"
)

func newTestAggregator(source provider.Source) *CategoryAggregator {
	return NewCategoryAggregator(source, NewRecordNormalizer(DefaultCategoryTable()), common.DefaultCategories(), 5)
}

// seedCategories 每個分類放入 perCategory 筆候選與紀錄
func seedCategories(source *fakeSource, perCategory int) {
	for _, category := range common.DefaultCategories() {
		ids := make([]string, 0, perCategory)
		for i := 0; i < perCategory; i++ {
			id := fmt.Sprintf("%s-%d", category, i)
			ids = append(ids, id)
			source.addMeal(id, fmt.Sprintf("%s #%d", category, i), "Cook.", "Salt")
		}
		source.byCategory[category] = candidateRefs(ids...)
	}
}

func TestAggregateDefaultCapsEachCategory(t *testing.T) {
	source := newFakeSource()
	seedCategories(source, 8)

	recipes, err := newTestAggregator(source).AggregateDefault(context.Background())
	require.NoError(t, err)
	require.Len(t, recipes, 35)
	assert.Equal(t, 35, source.detailCalls)

	// 依分類順序攤平，分類內維持候選順序
	i := 0
	for _, category := range common.DefaultCategories() {
		for n := 0; n < 5; n++ {
			assert.Equal(t, fmt.Sprintf("%s-%d", category, n), recipes[i].ID)
			assert.Empty(t, recipes[i].UnmatchedRequested)
			i++
		}
	}
}

func TestAggregateDefaultSmallCategories(t *testing.T) {
	source := newFakeSource()
	source.byCategory[common.CategoryLamb] = candidateRefs("l1", "l2")
	source.addMeal("l1", "Lamb Tagine", "Slow cook.", "Lamb")
	source.addMeal("l2", "Lamb Chops", "Grill.", "Lamb")

	recipes, err := newTestAggregator(source).AggregateDefault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2"}, recipeIDs(recipes))
}

func TestAggregateDefaultIsolatesDetailFailures(t *testing.T) {
	source := newFakeSource()
	seedCategories(source, 5)
	delete(source.records, "Beef-0")
	source.detailErr["Pasta-3"] = provider.Unavailable("lookup", errors.New("reset"))

	recipes, err := newTestAggregator(source).AggregateDefault(context.Background())
	require.NoError(t, err)
	assert.Len(t, recipes, 33)
	assert.NotContains(t, recipeIDs(recipes), "Beef-0")
	assert.NotContains(t, recipeIDs(recipes), "Pasta-3")
}

func TestAggregateDefaultCategoryFailure(t *testing.T) {
	source := newFakeSource()
	seedCategories(source, 5)
	source.categoryErr[common.CategorySeafood] = provider.Unavailable("filter.category", errors.New("bad gateway"))

	recipes, err := newTestAggregator(source).AggregateDefault(context.Background())
	assert.Nil(t, recipes)

	var searchErr *SearchError
	require.ErrorAs(t, err, &searchErr)
	assert.ErrorIs(t, err, provider.ErrSourceUnavailable)
}
