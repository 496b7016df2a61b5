package recipe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-finder/internal/core/provider"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/pkg/metrics"
)

// Service 食譜服務，呼叫端唯一的入口
type Service struct {
	source      provider.Source
	ingredients *IngredientNormalizer
	records     *RecordNormalizer
	engine      *MatchingEngine
	aggregator  *CategoryAggregator
}

// NewService 以預設對照表創建食譜服務
func NewService(source provider.Source, cfg config.SearchConfig) *Service {
	return NewServiceWithTables(source, cfg, DefaultIngredientTable(), DefaultCategoryTable())
}

// NewServiceWithTables 以指定的食材與分類對照表創建食譜服務
func NewServiceWithTables(source provider.Source, cfg config.SearchConfig, ingredientTable, categoryTable map[string]string) *Service {
	records := NewRecordNormalizer(categoryTable)
	aggregator := NewCategoryAggregator(source, records, common.DefaultCategories(), cfg.CategoryLimit)

	return &Service{
		source:      source,
		ingredients: NewIngredientNormalizer(ingredientTable),
		records:     records,
		engine:      NewMatchingEngine(source, records, aggregator, cfg.CandidateLimit),
		aggregator:  aggregator,
	}
}

// Search 正規化食材後搜尋，再以 query 過濾；沒有食材時回傳預設食譜
func (s *Service) Search(ctx context.Context, raw []string, query string) ([]common.Recipe, error) {
	requested := s.ingredients.NormalizeAll(raw)

	recipes, err := s.engine.SearchByIngredients(ctx, requested)
	if err != nil {
		return nil, err
	}
	return FilterByQuery(recipes, query), nil
}

// Default 預設食譜，依 query 過濾
func (s *Service) Default(ctx context.Context, query string) ([]common.Recipe, error) {
	recipes, err := s.aggregator.AggregateDefault(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByQuery(recipes, query), nil
}

// Lookup 以 id 取得單一食譜
func (s *Service) Lookup(ctx context.Context, id string) (*common.Recipe, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, common.NewValidationError("recipe id is required")
	}

	start := time.Now()
	defer func() {
		metrics.SearchDuration.WithLabelValues("lookup").Observe(time.Since(start).Seconds())
	}()

	record, found, err := s.source.FetchDetail(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		metrics.SearchErrors.WithLabelValues("lookup").Inc()
		common.LogError("取得食譜失敗", zap.String("id", id), zap.Error(err))
		return nil, &SearchError{Cause: err}
	}
	if !found {
		return nil, fmt.Errorf("recipe %s: %w", id, common.ErrNotFound)
	}

	recipe, _, err := s.records.Normalize(record)
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// SuggestedIngredients 建議食材清單
func (s *Service) SuggestedIngredients() []string {
	return common.SuggestedIngredients()
}

// Normalize 正規化單一食材
func (s *Service) Normalize(token string) string {
	return s.ingredients.Normalize(token)
}
