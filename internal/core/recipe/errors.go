package recipe

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord 紀錄缺少 idMeal 或 strMeal
var ErrMalformedRecord = errors.New("malformed recipe record")

// SearchError 搜尋在必要路徑上失敗（候選查詢無法完成）
type SearchError struct {
	Cause error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("recipe search failed: %v", e.Cause)
}

// Unwrap 回傳原因
func (e *SearchError) Unwrap() error {
	return e.Cause
}

// IsSearchError 判斷是否為 SearchError
func IsSearchError(err error) bool {
	var searchErr *SearchError
	return errors.As(err, &searchErr)
}
