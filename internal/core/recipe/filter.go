package recipe

import (
	"strings"

	"recipe-finder/internal/pkg/common"
)

// FilterByQuery 保留名稱或任一食材包含 query 的食譜，query 為空時原樣回傳
func FilterByQuery(recipes []common.Recipe, query string) []common.Recipe {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return recipes
	}

	out := make([]common.Recipe, 0, len(recipes))
	for i := range recipes {
		if strings.Contains(strings.ToLower(recipes[i].Title), query) || recipes[i].HasIngredient(query) {
			out = append(out, recipes[i])
		}
	}
	return out
}
