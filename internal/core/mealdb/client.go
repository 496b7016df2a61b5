package mealdb

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"recipe-finder/internal/core/provider"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/pkg/metrics"
)

const (
	breakerName = "mealdb-api"

	// 錯誤訊息中最多保留的回應內容長度
	maxErrorBodySize = 512

	opFilterIngredient = "filter.ingredient"
	opFilterCategory   = "filter.category"
	opLookup           = "lookup"
)

// Client 食譜資料源 HTTP 客戶端
type Client struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

var _ provider.Source = (*Client)(nil)

// NewClient 創建食譜資料源客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.MealDB.BaseURL).
		SetTimeout(cfg.MealDB.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("%s/%s", cfg.App.Name, cfg.App.Version))

	return &Client{
		client:  client,
		breaker: newBreaker(breakerName, cfg.MealDB.Breaker),
	}
}

// FindByIngredient 以單一食材查詢候選食譜
func (c *Client) FindByIngredient(ctx context.Context, name string) ([]provider.CandidateRef, error) {
	return c.filter(ctx, opFilterIngredient, "i", name)
}

// FindByCategory 以分類查詢候選食譜
func (c *Client) FindByCategory(ctx context.Context, category common.Category) ([]provider.CandidateRef, error) {
	return c.filter(ctx, opFilterCategory, "c", string(category))
}

// FetchDetail 取得完整食譜紀錄
func (c *Client) FetchDetail(ctx context.Context, id string) (provider.RawRecord, bool, error) {
	body, err := c.get(ctx, opLookup, "/lookup.php", "i", id)
	if err != nil {
		return nil, false, err
	}

	var records []provider.RawRecord
	found, err := decodeMeals(body, &records)
	if err != nil {
		metrics.SourceRequests.WithLabelValues(opLookup, "error").Inc()
		return nil, false, provider.Unavailable(opLookup, err)
	}
	if !found || len(records) == 0 || records[0] == nil {
		metrics.SourceRequests.WithLabelValues(opLookup, "not_found").Inc()
		return nil, false, nil
	}

	metrics.SourceRequests.WithLabelValues(opLookup, "ok").Inc()
	return records[0], true, nil
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

func (c *Client) filter(ctx context.Context, op, param, value string) ([]provider.CandidateRef, error) {
	body, err := c.get(ctx, op, "/filter.php", param, value)
	if err != nil {
		return nil, err
	}

	var refs []provider.CandidateRef
	found, err := decodeMeals(body, &refs)
	if err != nil {
		metrics.SourceRequests.WithLabelValues(op, "error").Inc()
		return nil, provider.Unavailable(op, err)
	}
	if !found || len(refs) == 0 {
		metrics.SourceRequests.WithLabelValues(op, "empty").Inc()
		return []provider.CandidateRef{}, nil
	}

	// 丟棄沒有 id 的項目
	out := refs[:0]
	for _, ref := range refs {
		if ref.ID != "" {
			out = append(out, ref)
		}
	}

	metrics.SourceRequests.WithLabelValues(op, "ok").Inc()
	return out, nil
}

// get 發送請求並回傳 200 的回應內容
func (c *Client) get(ctx context.Context, op, path, param, value string) ([]byte, error) {
	start := time.Now()
	body, err := c.execute(func() ([]byte, error) {
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParam(param, value).
			Get(path)
		if err != nil {
			return nil, fmt.Errorf("failed to send request: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), truncate(resp.Body()))
		}
		return resp.Body(), nil
	})
	duration := time.Since(start)
	metrics.SourceRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
	common.LogSourceCall(op, duration, err)

	if err != nil {
		if isRejected(err) {
			metrics.SourceRequests.WithLabelValues(op, "rejected").Inc()
		} else {
			metrics.SourceRequests.WithLabelValues(op, "error").Inc()
		}
		return nil, provider.Unavailable(op, err)
	}
	return body, nil
}

func (c *Client) execute(fn func() ([]byte, error)) ([]byte, error) {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn)
}

// decodeMeals 解析 {"meals": [...]} 信封
// meals 為 null 時回傳 found=false；缺少 meals 鍵或不是 JSON 物件時回傳錯誤
func decodeMeals(body []byte, v any) (bool, error) {
	var envelope map[string]json.RawMessage
	if err := common.ParseJSONBytes(body, &envelope); err != nil {
		return false, fmt.Errorf("malformed response: %w", err)
	}
	if envelope == nil {
		return false, fmt.Errorf("malformed response: top-level value is null")
	}

	raw, ok := envelope["meals"]
	if !ok {
		return false, fmt.Errorf("malformed response: missing meals key")
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, nil
	}

	if err := common.ParseJSONBytes(raw, v); err != nil {
		return false, fmt.Errorf("malformed meals: %w", err)
	}
	return true, nil
}

func truncate(body []byte) string {
	if len(body) <= maxErrorBodySize {
		return string(body)
	}
	return string(body[:maxErrorBodySize]) + "...(truncated)"
}
