package recipe

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/pkg/metrics"
)

// Session 連續搜尋，只交付最新一次請求的結果
//
// 舊請求不會被中止，它們會跑完，但結果直接丟棄。
// Results 最多保留一筆尚未讀取的結果。
type Session struct {
	service *Service

	mu      sync.Mutex
	latest  uint64
	results chan Delivery
	wg      sync.WaitGroup
}

// NewSession 創建搜尋 Session
func (s *Service) NewSession() *Session {
	return &Session{
		service: s,
		results: make(chan Delivery, 1),
	}
}

// Submit 送出新的搜尋並回傳請求編號，不會等待結果
func (s *Session) Submit(ctx context.Context, raw []string, query string) uint64 {
	s.mu.Lock()
	s.latest++
	id := s.latest
	s.drainLocked()
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		recipes, err := s.service.Search(ctx, raw, query)
		s.deliver(Delivery{RequestID: id, Recipes: recipes, Err: err})
	}()

	return id
}

// Results 結果通道
func (s *Session) Results() <-chan Delivery {
	return s.results
}

// Latest 目前最新的請求編號
func (s *Session) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Wait 等待所有已送出的搜尋結束
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) deliver(d Delivery) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.RequestID != s.latest {
		metrics.SupersededSearches.Inc()
		common.LogDebug("搜尋結果已過期，丟棄",
			zap.Uint64("request_id", d.RequestID),
			zap.Uint64("latest", s.latest),
		)
		return
	}

	s.drainLocked()
	s.results <- d
}

// drainLocked 移除尚未讀取的舊結果，呼叫前需持有鎖
func (s *Session) drainLocked() {
	select {
	case old := <-s.results:
		metrics.SupersededSearches.Inc()
		common.LogDebug("未讀取的搜尋結果被取代", zap.Uint64("request_id", old.RequestID))
	default:
	}
}
