package provider

import (
	"context"
	"errors"
	"fmt"

	"recipe-finder/internal/pkg/common"
)

// ErrSourceUnavailable 資料源無法完成請求或回應格式錯誤
var ErrSourceUnavailable = errors.New("recipe source unavailable")

// SourceError 表示一次資料源操作失敗
type SourceError struct {
	Op  string // 操作名稱，例如 filter.ingredient
	Err error
}

func (e *SourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrSourceUnavailable)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrSourceUnavailable, e.Err)
}

// Unwrap 回傳原始錯誤
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is 讓 errors.Is(err, ErrSourceUnavailable) 成立
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// Unavailable 建立 SourceError
func Unavailable(op string, err error) error {
	return &SourceError{Op: op, Err: err}
}

// CandidateRef 篩選結果中的最小食譜參考
type CandidateRef struct {
	ID string `json:"idMeal"`
}

// RawRecord 資料源回傳的完整食譜紀錄，值可能為 null
type RawRecord map[string]any

// Field 取得字串欄位，缺少或非字串時回傳 false
func (r RawRecord) Field(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Source 食譜資料源
//
// FindByIngredient 與 FindByCategory 沒有結果時回傳空切片而不是錯誤。
// FetchDetail 找不到紀錄時回傳 (nil, false, nil)。
// 其餘失敗一律為 ErrSourceUnavailable，不在此層重試。
type Source interface {
	FindByIngredient(ctx context.Context, name string) ([]CandidateRef, error)
	FindByCategory(ctx context.Context, category common.Category) ([]CandidateRef, error)
	FetchDetail(ctx context.Context, id string) (RawRecord, bool, error)
}
