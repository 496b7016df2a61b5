package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"recipe-finder/internal/core/provider"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/pkg/metrics"
)

// Source 在資料源前加上快取，只快取成功的回應，錯誤一律直接回傳
type Source struct {
	next    provider.Source
	store   Store
	backend string
}

var _ provider.Source = (*Source)(nil)

// detailEntry 詳細紀錄快取內容，Found=false 代表資料源回報找不到
type detailEntry struct {
	Found  bool               `json:"found"`
	Record provider.RawRecord `json:"record,omitempty"`
}

// NewStore 依設定建立快取儲存
func NewStore(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		return NewRedisStore(ctx, cfg)
	case config.CacheBackendMemory, "":
		return NewManager(cfg), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Wrap 快取啟用時包裝資料源，否則原樣回傳
func Wrap(ctx context.Context, next provider.Source, cfg config.CacheConfig) (provider.Source, func() error, error) {
	if !cfg.Enabled {
		return next, func() error { return nil }, nil
	}

	store, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	backend := cfg.Backend
	if backend == "" {
		backend = config.CacheBackendMemory
	}
	return NewSource(next, store, backend), store.Close, nil
}

// NewSource 建立帶快取的資料源
func NewSource(next provider.Source, store Store, backend string) *Source {
	return &Source{next: next, store: store, backend: backend}
}

// FindByIngredient 查詢食材候選並快取
func (s *Source) FindByIngredient(ctx context.Context, name string) ([]provider.CandidateRef, error) {
	key := "ingredient:" + strings.ToLower(name)
	return s.candidates(ctx, key, func() ([]provider.CandidateRef, error) {
		return s.next.FindByIngredient(ctx, name)
	})
}

// FindByCategory 查詢分類候選並快取
func (s *Source) FindByCategory(ctx context.Context, category common.Category) ([]provider.CandidateRef, error) {
	key := "category:" + string(category)
	return s.candidates(ctx, key, func() ([]provider.CandidateRef, error) {
		return s.next.FindByCategory(ctx, category)
	})
}

// FetchDetail 取得詳細紀錄並快取，找不到也會快取
func (s *Source) FetchDetail(ctx context.Context, id string) (provider.RawRecord, bool, error) {
	key := "detail:" + id

	var entry detailEntry
	if s.load(ctx, key, &entry) {
		return entry.Record, entry.Found, nil
	}

	record, found, err := s.next.FetchDetail(ctx, id)
	if err != nil {
		return nil, false, err
	}

	s.save(ctx, key, detailEntry{Found: found, Record: record})
	return record, found, nil
}

func (s *Source) candidates(ctx context.Context, key string, fetch func() ([]provider.CandidateRef, error)) ([]provider.CandidateRef, error) {
	var refs []provider.CandidateRef
	if s.load(ctx, key, &refs) {
		if refs == nil {
			refs = []provider.CandidateRef{}
		}
		return refs, nil
	}

	refs, err := fetch()
	if err != nil {
		return nil, err
	}

	s.save(ctx, key, refs)
	return refs, nil
}

// load 讀取快取，讀取失敗視為未命中
func (s *Source) load(ctx context.Context, key string, v any) bool {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.String("key", key), zap.Error(err))
		}
		metrics.CacheMisses.WithLabelValues(s.backend).Inc()
		common.LogCacheMiss(s.backend, key)
		return false
	}

	if err := common.ParseJSONBytes(data, v); err != nil {
		common.LogWarn("快取內容損壞", zap.String("key", key), zap.Error(err))
		metrics.CacheMisses.WithLabelValues(s.backend).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(s.backend).Inc()
	common.LogCacheHit(s.backend, key)
	return true
}

// save 寫入快取，失敗只記錄警告
func (s *Source) save(ctx context.Context, key string, v any) {
	data, err := common.ToJSON(v)
	if err != nil {
		common.LogWarn("序列化快取內容失敗", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.Set(ctx, key, []byte(data)); err != nil {
		common.LogWarn("寫入快取失敗", zap.String("key", key), zap.Error(err))
	}
}
