package engine

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"xuezhan/logx"
)

// Manager 牌局生命周期管理：建局、洗牌发牌、视角过滤、终局。
type Manager struct {
	rng     *rand.Rand
	table   ScoreTable
	actions *Actions
}

func NewManager(table ScoreTable) *Manager {
	return NewManagerWithSource(table, rand.NewSource(time.Now().UnixNano()))
}

// NewManagerWithSource 固定随机源建管理器，牌序可复现
func NewManagerWithSource(table ScoreTable, src rand.Source) *Manager {
	checker := NewWinChecker()
	scorer := NewScorer(table)
	settle := NewSettlement(table)
	return &Manager{
		rng:     rand.New(src),
		table:   table,
		actions: NewActions(checker, scorer, settle),
	}
}

// Actions 行牌动作引擎入口
func (m *Manager) Actions() *Actions {
	return m.actions
}

// Table 当前生效的计分表
func (m *Manager) Table() ScoreTable {
	return m.table
}

// CreateGame 建局。恰好四名玩家，座位即传入顺序，0 号为庄。
func (m *Manager) CreateGame(playerIDs []string) (*GameState, error) {
	if len(playerIDs) != NumPlayers {
		return nil, invalidAction("game requires exactly %d players, got %d", NumPlayers, len(playerIDs))
	}
	seen := make(map[string]struct{}, NumPlayers)
	players := make([]*Player, 0, NumPlayers)
	for _, id := range playerIDs {
		if id == "" {
			return nil, invalidAction("player id must not be empty")
		}
		if _, dup := seen[id]; dup {
			return nil, invalidAction("duplicate player id %s", id)
		}
		seen[id] = struct{}{}
		players = append(players, NewPlayer(id, m.table.InitialScore))
	}
	st := &GameState{
		GameID:      uuid.NewString(),
		Players:     players,
		Phase:       PhasePreparing,
		DealerIndex: 0,
	}
	logx.Info("建局: game=%s players=%v", st.GameID, playerIDs)
	return st, nil
}

// StartGame 洗牌发牌进入埋牌阶段。庄家 14 张，闲家 13 张。
func (m *Manager) StartGame(st *GameState) (*GameState, error) {
	if st.Phase != PhasePreparing {
		return nil, invalidState("Cannot start game outside of PREPARING phase.")
	}
	next := st.Clone()
	wall := NewWall()
	m.rng.Shuffle(len(wall), func(i, j int) {
		wall[i], wall[j] = wall[j], wall[i]
	})
	for i, p := range next.Players {
		n := 13
		if i == next.DealerIndex {
			n = 14
		}
		p.Hand = make([]Tile, n)
		copy(p.Hand, wall[len(wall)-n:])
		wall = wall[:len(wall)-n]
		SortTiles(p.Hand)
	}
	next.Wall = wall
	next.Phase = PhaseBurying
	next.CurrentPlayerIndex = next.DealerIndex
	logx.Info("开局发牌: game=%s wall=%d", next.GameID, next.WallRemaining())
	return next, nil
}

// EndGame 强制终局
func (m *Manager) EndGame(st *GameState) *GameState {
	next := st.Clone()
	next.Phase = PhaseEnded
	return next
}

// PlayerView 面向单个玩家过滤后的对手或自己的公开信息。
// 只有本人能看到手牌和刚摸的牌，别家只暴露手牌张数。
type PlayerView struct {
	ID            string  `json:"id"`
	Hand          []Tile  `json:"hand,omitempty"`
	HandCount     int     `json:"hand_count"`
	LastDrawnTile *Tile   `json:"last_drawn_tile,omitempty"`
	Melds         []*Meld `json:"melds"`
	BuriedTiles   []Tile  `json:"buried_tiles"`
	MissingSuit   *Suit   `json:"missing_suit"`
	WonTiles      []Tile  `json:"won_tiles"`
	Score         int     `json:"score"`
	IsHu          bool    `json:"is_hu"`
	HandLocked    bool    `json:"hand_locked"`
}

// GameView 单个玩家视角下的完整局面
type GameView struct {
	GameID             string          `json:"game_id"`
	Phase              GamePhase       `json:"phase"`
	DealerIndex        int             `json:"dealer_index"`
	CurrentPlayerIndex int             `json:"current_player_index"`
	CurrentPlayerID    string          `json:"current_player_id"`
	WallRemainingCount int             `json:"wall_remaining_count"`
	DiscardPile        []DiscardedTile `json:"discard_pile"`
	Players            []PlayerView    `json:"players"`
}

// StateView 按请求玩家视角过滤局面，牌墙与别家手牌不下发
func (m *Manager) StateView(st *GameState, playerID string) GameView {
	view := GameView{
		GameID:             st.GameID,
		Phase:              st.Phase,
		DealerIndex:        st.DealerIndex,
		CurrentPlayerIndex: st.CurrentPlayerIndex,
		WallRemainingCount: st.WallRemaining(),
		DiscardPile:        append([]DiscardedTile(nil), st.DiscardPile...),
		Players:            make([]PlayerView, 0, NumPlayers),
	}
	if st.CurrentPlayerIndex >= 0 && st.CurrentPlayerIndex < len(st.Players) {
		view.CurrentPlayerID = st.Players[st.CurrentPlayerIndex].ID
	}
	for _, p := range st.Players {
		pv := PlayerView{
			ID:          p.ID,
			HandCount:   len(p.Hand),
			Melds:       make([]*Meld, 0, len(p.Melds)),
			BuriedTiles: append([]Tile(nil), p.BuriedTiles...),
			MissingSuit: p.MissingSuit,
			WonTiles:    append([]Tile(nil), p.WonTiles...),
			Score:       p.Score,
			IsHu:        p.IsHu,
			HandLocked:  p.HandLocked,
		}
		for _, meld := range p.Melds {
			pv.Melds = append(pv.Melds, meld.clone())
		}
		if p.ID == playerID {
			pv.Hand = append([]Tile(nil), p.Hand...)
			if p.LastDrawnTile != nil {
				t := *p.LastDrawnTile
				pv.LastDrawnTile = &t
			}
		}
		view.Players = append(view.Players, pv)
	}
	return view
}
