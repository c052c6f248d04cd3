package store

import (
	"context"
	"sync"
	"time"

	"xuezhan/logx"
)

// MemoryStore 进程内会话存储。后台协程定期清理超过 TTL 的对局，
// 规避废弃对局堆积内存。
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore(ttl time.Duration, sweepInterval time.Duration) *MemoryStore {
	m := &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	if sweepInterval > 0 {
		go m.sweepLoop(sweepInterval)
	}
	return m
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = time.Now()
	m.sessions[s.GameID] = s
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, gameID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Delete(ctx context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, gameID)
	return nil
}

func (m *MemoryStore) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

// Len 当前缓存的会话数
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep(time.Now())
		case <-m.stop:
			return
		}
	}
}

// sweep 清理创建时间早于 TTL 的会话
func (m *MemoryStore) sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.CreatedAt) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		logx.Info("清理过期对局 %d 个, 剩余 %d 个", removed, len(m.sessions))
	}
	return removed
}
