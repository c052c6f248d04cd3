// Package record 负责牌谱归档：对局过程中收集事件，
// 终局后异步写入 mongodb。写库失败只记日志，不影响行牌。
package record

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"xuezhan/engine"
	"xuezhan/logx"
)

const (
	EventBury    = "bury"
	EventDiscard = "discard"
	EventPong    = "pong"
	EventKong    = "kong"
	EventHu      = "hu"
)

// GameEvent 牌谱中的单个事件。Points 只对胡牌事件有意义，
// 记录赢家在该次结算中的得分变化。
type GameEvent struct {
	Type     string    `bson:"type"`
	PlayerID string    `bson:"player_id"`
	Tile     string    `bson:"tile,omitempty"`
	Points   int       `bson:"points,omitempty"`
	At       time.Time `bson:"at"`
}

// PlayerResult 终局时单个玩家的结果
type PlayerResult struct {
	PlayerID    string `bson:"player_id"`
	Seat        int    `bson:"seat"`
	Score       int    `bson:"score"`
	IsHu        bool   `bson:"is_hu"`
	MissingSuit string `bson:"missing_suit,omitempty"`
}

// GameRecord 一局游戏的完整牌谱
type GameRecord struct {
	ID         primitive.ObjectID `bson:"_id"`
	GameID     string             `bson:"game_id"`
	Players    []PlayerResult     `bson:"players"`
	Events     []GameEvent        `bson:"events"`
	EndPhase   string             `bson:"end_phase"`
	CreatedAt  time.Time          `bson:"created_at"`
	FinishedAt time.Time          `bson:"finished_at"`
}

// Archiver 单局牌谱收集器。事件始终在内存中累积，
// col 为 nil 时终局落盘退化为空操作。
type Archiver struct {
	col    *mongo.Collection
	gameID string
	mu     sync.Mutex
	events []GameEvent
	start  time.Time
	closed bool
}

func NewArchiver(col *mongo.Collection, gameID string) *Archiver {
	return &Archiver{
		col:    col,
		gameID: gameID,
		events: make([]GameEvent, 0, 256),
		start:  time.Now(),
	}
}

func (a *Archiver) record(ev GameEvent) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	ev.At = time.Now()
	a.events = append(a.events, ev)
}

// RecordDiscard 记录出牌
func (a *Archiver) RecordDiscard(playerID string, tile engine.Tile) {
	a.record(GameEvent{Type: EventDiscard, PlayerID: playerID, Tile: tile.String()})
}

// RecordTransition 对比一次引擎操作前后的状态，补记埋牌、碰杠、
// 胡牌事件。出牌由调用方直接记录，这里只看玩家侧的增量。
func (a *Archiver) RecordTransition(before, after *engine.GameState) {
	if a == nil || before == nil || after == nil {
		return
	}
	for i, bp := range before.Players {
		if i >= len(after.Players) {
			break
		}
		ap := after.Players[i]

		if bp.MissingSuit == nil && ap.MissingSuit != nil {
			a.record(GameEvent{Type: EventBury, PlayerID: ap.ID, Tile: ap.MissingSuit.String()})
		}
		for j := len(bp.Melds); j < len(ap.Melds); j++ {
			m := ap.Melds[j]
			typ := EventPong
			if m.Type.IsKong() {
				typ = EventKong
			}
			a.record(GameEvent{Type: typ, PlayerID: ap.ID, Tile: m.Tiles[0].String()})
		}
		// 补杠不新增副露, 靠类型变化识别
		for j := 0; j < len(bp.Melds) && j < len(ap.Melds); j++ {
			if !bp.Melds[j].Type.IsKong() && ap.Melds[j].Type.IsKong() {
				a.record(GameEvent{Type: EventKong, PlayerID: ap.ID, Tile: ap.Melds[j].Tiles[0].String()})
			}
		}
		if !bp.IsHu && ap.IsHu {
			ev := GameEvent{Type: EventHu, PlayerID: ap.ID, Points: ap.Score - bp.Score}
			if n := len(ap.WonTiles); n > len(bp.WonTiles) {
				ev.Tile = ap.WonTiles[n-1].String()
			}
			a.record(ev)
		}
	}
}

// Finalize 终局后把整份牌谱异步写入 mongodb
func (a *Archiver) Finalize(st *engine.GameState) {
	if a == nil {
		return
	}
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	events := make([]GameEvent, len(a.events))
	copy(events, a.events)
	a.mu.Unlock()

	if a.col == nil {
		return
	}

	players := make([]PlayerResult, 0, len(st.Players))
	for i, p := range st.Players {
		pr := PlayerResult{
			PlayerID: p.ID,
			Seat:     i,
			Score:    p.Score,
			IsHu:     p.IsHu,
		}
		if p.MissingSuit != nil {
			pr.MissingSuit = p.MissingSuit.String()
		}
		players = append(players, pr)
	}
	rec := &GameRecord{
		ID:         primitive.NewObjectID(),
		GameID:     a.gameID,
		Players:    players,
		Events:     events,
		EndPhase:   st.Phase.String(),
		CreatedAt:  a.start,
		FinishedAt: time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := a.col.InsertOne(ctx, rec); err != nil {
			logx.Error("保存牌谱失败: game=%s err=%v", a.gameID, err)
			return
		}
		logx.Info("牌谱保存成功: game=%s events=%d", a.gameID, len(events))
	}()
}

// Events 当前已收集的事件快照
func (a *Archiver) Events() []GameEvent {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]GameEvent, len(a.events))
	copy(out, a.events)
	return out
}
