package recipe

import (
	"strings"

	"recipe-finder/internal/pkg/common"
)

// IngredientNormalizer 將使用者輸入的食材轉成資料源使用的名稱
type IngredientNormalizer struct {
	table map[string]string
}

// DefaultIngredientTable 預設食材對照表，目前全部對應到自己
func DefaultIngredientTable() map[string]string {
	table := make(map[string]string)
	for _, name := range common.SuggestedIngredients() {
		table[name] = name
	}
	return table
}

// NewIngredientNormalizer 以對照表建立食材正規化器，對照表會被複製
func NewIngredientNormalizer(table map[string]string) *IngredientNormalizer {
	own := make(map[string]string, len(table))
	for k, v := range table {
		own[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &IngredientNormalizer{table: own}
}

// Normalize 轉小寫、去空白後查表，查不到時原樣回傳
func (n *IngredientNormalizer) Normalize(token string) string {
	key := strings.ToLower(strings.TrimSpace(token))
	if translated, ok := n.table[key]; ok {
		return translated
	}
	return key
}

// NormalizeAll 正規化一組食材，丟棄空白項目並去除重複（保留第一次出現的順序）
func (n *IngredientNormalizer) NormalizeAll(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		name := n.Normalize(token)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
