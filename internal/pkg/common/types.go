package common

import (
	"strings"
)

// IngredientLine 食譜中的一行食材
type IngredientLine struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// Recipe 食譜
// 每次搜尋都從資料源重新建立，回傳後不再修改
type Recipe struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Image              *string          `json:"image"`
	Category           string           `json:"category"`
	Instructions       []string         `json:"instructions"`
	Ingredients        []IngredientLine `json:"ingredients"`
	UnmatchedRequested []string         `json:"unmatched_requested"`
}

// HasIngredient 是否有任一食材名稱包含 name（不分大小寫）
func (r *Recipe) HasIngredient(name string) bool {
	needle := strings.ToLower(name)
	for _, line := range r.Ingredients {
		if strings.Contains(strings.ToLower(line.Name), needle) {
			return true
		}
	}
	return false
}

// Category 食譜分類
type Category string

const (
	CategoryBeef       Category = "Beef"
	CategoryChicken    Category = "Chicken"
	CategoryDessert    Category = "Dessert"
	CategoryLamb       Category = "Lamb"
	CategoryPasta      Category = "Pasta"
	CategorySeafood    Category = "Seafood"
	CategoryVegetarian Category = "Vegetarian"
)

// DefaultCategories 預設推薦使用的分類
func DefaultCategories() []Category {
	return []Category{
		CategoryBeef,
		CategoryChicken,
		CategoryDessert,
		CategoryLamb,
		CategoryPasta,
		CategorySeafood,
		CategoryVegetarian,
	}
}

// SuggestedIngredients 建議食材清單
func SuggestedIngredients() []string {
	return []string{
		"tomato", "onion", "garlic", "chicken", "beef", "carrot",
		"potato", "zucchini", "pepper", "mushroom",
		"pasta", "rice", "milk", "egg", "cheese", "butter",
	}
}
