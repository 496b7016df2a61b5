package recipe

import (
	"recipe-finder/internal/pkg/common"
)

// SearchRequest 食材搜尋請求
type SearchRequest struct {
	Ingredients []string `json:"ingredients"`
	Query       string   `json:"query"`
}

// SearchResponse 搜尋結果
type SearchResponse struct {
	Recipes []common.Recipe `json:"recipes"`
	Count   int             `json:"count"`
}

// NewSearchResponse 由食譜清單建立回應
func NewSearchResponse(recipes []common.Recipe) SearchResponse {
	if recipes == nil {
		recipes = []common.Recipe{}
	}
	return SearchResponse{Recipes: recipes, Count: len(recipes)}
}

// Delivery Session 交付的搜尋結果
type Delivery struct {
	RequestID uint64
	Recipes   []common.Recipe
	Err       error
}
