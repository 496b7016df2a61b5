package recipe

import (
	"context"
	"fmt"
	"sync"

	"recipe-finder/internal/core/provider"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
)

// fakeSource 記憶體中的資料源
type fakeSource struct {
	mu sync.Mutex

	byIngredient  map[string][]provider.CandidateRef
	byCategory    map[common.Category][]provider.CandidateRef
	records       map[string]provider.RawRecord
	ingredientErr map[string]error
	categoryErr   map[common.Category]error
	detailErr     map[string]error
	gates         map[string]chan struct{}

	ingredientCalls []string
	detailCalls     int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		byIngredient:  make(map[string][]provider.CandidateRef),
		byCategory:    make(map[common.Category][]provider.CandidateRef),
		records:       make(map[string]provider.RawRecord),
		ingredientErr: make(map[string]error),
		categoryErr:   make(map[common.Category]error),
		detailErr:     make(map[string]error),
		gates:         make(map[string]chan struct{}),
	}
}

func (f *fakeSource) FindByIngredient(ctx context.Context, name string) ([]provider.CandidateRef, error) {
	f.mu.Lock()
	f.ingredientCalls = append(f.ingredientCalls, name)
	gate := f.gates[name]
	refs, err := f.byIngredient[name], f.ingredientErr[name]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if refs == nil {
		return []provider.CandidateRef{}, nil
	}
	return refs, nil
}

func (f *fakeSource) FindByCategory(ctx context.Context, category common.Category) ([]provider.CandidateRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.categoryErr[category]; err != nil {
		return nil, err
	}
	refs := f.byCategory[category]
	if refs == nil {
		return []provider.CandidateRef{}, nil
	}
	return refs, nil
}

func (f *fakeSource) FetchDetail(ctx context.Context, id string) (provider.RawRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if err := f.detailErr[id]; err != nil {
		return nil, false, err
	}
	record, ok := f.records[id]
	if !ok {
		return nil, false, nil
	}
	return record, true, nil
}

// addMeal 加入一筆紀錄，ingredients 依序填入 strIngredientN
func (f *fakeSource) addMeal(id, title, instructions string, ingredients ...string) {
	record := provider.RawRecord{
		"idMeal":          id,
		"strMeal":         title,
		"strCategory":     "Beef",
		"strInstructions": instructions,
		"strMealThumb":    "https://example.com/" + id + ".jpg",
	}
	for i, name := range ingredients {
		record[fmt.Sprintf("strIngredient%d", i+1)] = name
		record[fmt.Sprintf("strMeasure%d", i+1)] = "1 cup"
	}
	f.records[id] = record
}

func candidateRefs(ids ...string) []provider.CandidateRef {
	out := make([]provider.CandidateRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, provider.CandidateRef{ID: id})
	}
	return out
}

func recipeIDs(recipes []common.Recipe) []string {
	ids := make([]string, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	return ids
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{CandidateLimit: 20, CategoryLimit: 5}
}

func newTestService(source provider.Source) *Service {
	return NewService(source, testSearchConfig())
}
