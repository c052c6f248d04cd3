package engine

import "encoding/json"

// GamePhase 游戏阶段
type GamePhase int

const (
	PhasePreparing GamePhase = iota
	PhaseBurying
	PhasePlaying
	PhaseEnded
)

func (g GamePhase) String() string {
	switch g {
	case PhasePreparing:
		return "PREPARING"
	case PhaseBurying:
		return "BURYING"
	case PhasePlaying:
		return "PLAYING"
	case PhaseEnded:
		return "ENDED"
	default:
		return "UNKNOWN"
	}
}

func (g GamePhase) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

func (g *GamePhase) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "PREPARING":
		*g = PhasePreparing
	case "BURYING":
		*g = PhaseBurying
	case "PLAYING":
		*g = PhasePlaying
	case "ENDED":
		*g = PhaseEnded
	}
	return nil
}

// DiscardedTile 弃牌堆中的一条记录
type DiscardedTile struct {
	Tile      Tile   `json:"tile"`
	PlayerID  string `json:"playerId"`
	TurnIndex int    `json:"turnIndex"` // 第几张打出，用于排序与回放
}

// GameState 一局游戏的完整状态。所有引擎操作读取旧状态、返回新状态，
// 绝不原地修改，失败路径保证入参不变。
type GameState struct {
	GameID             string          `json:"gameId"`
	Players            []*Player       `json:"players"`
	CurrentPlayerIndex int             `json:"currentPlayerIndex"`
	Wall               []Tile          `json:"wall"`
	DiscardPile        []DiscardedTile `json:"discardPile"`
	Phase              GamePhase       `json:"phase"`
	DealerIndex        int             `json:"dealerIndex"`
}

// NumPlayers 血战到底固定四人
const NumPlayers = 4

// Clone 深拷贝
func (st *GameState) Clone() *GameState {
	ns := &GameState{
		GameID:             st.GameID,
		CurrentPlayerIndex: st.CurrentPlayerIndex,
		Wall:               append([]Tile(nil), st.Wall...),
		DiscardPile:        append([]DiscardedTile(nil), st.DiscardPile...),
		Phase:              st.Phase,
		DealerIndex:        st.DealerIndex,
	}
	ns.Players = make([]*Player, len(st.Players))
	for i, p := range st.Players {
		ns.Players[i] = p.clone()
	}
	return ns
}

// WallRemaining 牌墙剩余张数
func (st *GameState) WallRemaining() int {
	return len(st.Wall)
}

// PlayerByID 按 ID 查找玩家
func (st *GameState) PlayerByID(id string) *Player {
	for _, p := range st.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// SeatOf 玩家座位号，未找到返回 -1
func (st *GameState) SeatOf(id string) int {
	for i, p := range st.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// HuCount 已胡玩家数
func (st *GameState) HuCount() int {
	n := 0
	for _, p := range st.Players {
		if p.IsHu {
			n++
		}
	}
	return n
}

// TotalScore 四家总分，零和不变量下恒等于 4 × 初始分
func (st *GameState) TotalScore() int {
	sum := 0
	for _, p := range st.Players {
		sum += p.Score
	}
	return sum
}

// TotalTileCount 牌墙 + 全部玩家持牌 + 弃牌堆的总张数，
// 正常对局中恒等于 108
func (st *GameState) TotalTileCount() int {
	n := len(st.Wall) + len(st.DiscardPile)
	for _, p := range st.Players {
		n += p.tileCount()
	}
	return n
}

// lastDiscard 弃牌堆顶，为空返回 nil
func (st *GameState) lastDiscard() *DiscardedTile {
	if len(st.DiscardPile) == 0 {
		return nil
	}
	return &st.DiscardPile[len(st.DiscardPile)-1]
}

// popDiscardIf 若弃牌堆顶是指定牌则移除，碰/杠/点炮胡会把这张牌
// 从弃牌堆移入面子或胡牌记录，维持牌数守恒
func (st *GameState) popDiscardIf(t Tile) bool {
	last := st.lastDiscard()
	if last == nil || last.Tile != t {
		return false
	}
	st.DiscardPile = st.DiscardPile[:len(st.DiscardPile)-1]
	return true
}
