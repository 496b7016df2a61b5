package recipe

import (
	"fmt"
	"strings"

	"recipe-finder/internal/core/provider"
	"recipe-finder/internal/pkg/common"
)

// 完整紀錄中 strIngredientN/strMeasureN 的數量
const maxIngredientFields = 20

// RecordNormalizer 將資料源紀錄轉成 Recipe，不做任何 I/O
type RecordNormalizer struct {
	categories map[string]string
}

// DefaultCategoryTable 分類顯示名稱對照表
func DefaultCategoryTable() map[string]string {
	return map[string]string{
		"Beef":          "Beef",
		"Chicken":       "Chicken",
		"Dessert":       "Dessert",
		"Lamb":          "Lamb",
		"Pasta":         "Pasta",
		"Seafood":       "Seafood",
		"Vegetarian":    "Vegetarian",
		"Vegan":         "Vegan",
		"Side":          "Side Dish",
		"Miscellaneous": "Miscellaneous",
		"Pork":          "Pork",
		"Starter":       "Starter",
		"Breakfast":     "Breakfast",
		"Goat":          "Goat",
	}
}

// NewRecordNormalizer 以分類對照表建立紀錄正規化器
func NewRecordNormalizer(categories map[string]string) *RecordNormalizer {
	own := make(map[string]string, len(categories))
	for k, v := range categories {
		own[k] = v
	}
	return &RecordNormalizer{categories: own}
}

// Normalize 轉換整筆紀錄，並回傳原始步驟文字供次要食材比對
func (n *RecordNormalizer) Normalize(record provider.RawRecord) (common.Recipe, string, error) {
	id := field(record, "idMeal")
	title := field(record, "strMeal")
	if id == "" || title == "" {
		return common.Recipe{}, "", fmt.Errorf("%w: id=%q title=%q", ErrMalformedRecord, id, title)
	}

	instructions, _ := record.Field("strInstructions")

	var image *string
	if thumb := field(record, "strMealThumb"); thumb != "" {
		image = &thumb
	}

	return common.Recipe{
		ID:                 id,
		Title:              title,
		Image:              image,
		Category:           n.TranslateCategory(field(record, "strCategory")),
		Instructions:       SegmentInstructions(instructions),
		Ingredients:        n.ExtractIngredients(record),
		UnmatchedRequested: []string{},
	}, instructions, nil
}

// ExtractIngredients 掃描 20 組食材欄位，只保留名稱非空白的項目
func (n *RecordNormalizer) ExtractIngredients(record provider.RawRecord) []common.IngredientLine {
	lines := make([]common.IngredientLine, 0, maxIngredientFields)
	for i := 1; i <= maxIngredientFields; i++ {
		name := field(record, fmt.Sprintf("strIngredient%d", i))
		if name == "" {
			continue
		}
		lines = append(lines, common.IngredientLine{
			Name:    name,
			Measure: field(record, fmt.Sprintf("strMeasure%d", i)),
		})
	}
	return lines
}

// TranslateCategory 分類轉成顯示名稱，未知分類原樣回傳
func (n *RecordNormalizer) TranslateCategory(raw string) string {
	if translated, ok := n.categories[raw]; ok {
		return translated
	}
	return raw
}

// SegmentInstructions 以換行或句點切分步驟，去除空白並丟棄空的片段
func SegmentInstructions(text string) []string {
	pieces := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '.'
	})

	steps := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if step := strings.TrimSpace(piece); step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}

func field(record provider.RawRecord, key string) string {
	v, _ := record.Field(key)
	return strings.TrimSpace(v)
}
