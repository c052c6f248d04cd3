// Package store 负责对局会话的保存与检索。
// 默认内存实现带 TTL 清扫，部署多实例时切换 redis 实现。
package store

import (
	"context"
	"errors"
	"time"

	"xuezhan/engine"
)

// ErrNotFound 对局不存在或已被清理
var ErrNotFound = errors.New("game session not found")

// Session 一局游戏的完整会话。AIOrder 记录电脑玩家行动顺序，
// LastDiscarder 记录最近一次出牌者，响应类动作依赖它定位点炮者。
type Session struct {
	GameID        string            `json:"game_id"`
	HumanPlayerID string            `json:"human_player_id"`
	AIOrder       []string          `json:"ai_order"`
	LastDiscarder string            `json:"last_discarder"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	State         *engine.GameState `json:"state"`
}

// GameStore 会话存取接口
type GameStore interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, gameID string) (*Session, error)
	Delete(ctx context.Context, gameID string) error
	Close() error
}
