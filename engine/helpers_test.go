package engine

import "testing"

func wan(r int) Tile  { return Tile{Suit: SuitWan, Rank: r} }
func tiao(r int) Tile { return Tile{Suit: SuitTiao, Rank: r} }
func tong(r int) Tile { return Tile{Suit: SuitTong, Rank: r} }

func suitPtr(s Suit) *Suit {
	v := s
	return &v
}

// testPlayer 固定 100 分、指定缺门的测试玩家
func testPlayer(id string, missing Suit, hand ...Tile) *Player {
	p := NewPlayer(id, 100)
	p.Hand = append(p.Hand, hand...)
	SortTiles(p.Hand)
	p.MissingSuit = suitPtr(missing)
	return p
}

// testState 四人行牌阶段局面，p0 为庄，牌墙用条子填充
func testState(wallSize int, players ...*Player) *GameState {
	wall := make([]Tile, 0, wallSize)
	for i := 0; i < wallSize; i++ {
		wall = append(wall, tiao(i%9+1))
	}
	return &GameState{
		GameID:  "game-test",
		Players: players,
		Wall:    wall,
		Phase:   PhasePlaying,
	}
}

func fourPlayers(missing Suit) []*Player {
	return []*Player{
		testPlayer("p1", missing),
		testPlayer("p2", missing),
		testPlayer("p3", missing),
		testPlayer("p4", missing),
	}
}

func newTestActions() *Actions {
	table := DefaultScoreTable()
	return NewActions(NewWinChecker(), NewScorer(table), NewSettlement(table))
}

func assertScore(t *testing.T, st *GameState, want ...int) {
	t.Helper()
	for i, w := range want {
		if got := st.Players[i].Score; got != w {
			t.Errorf("player %s score = %d, want %d", st.Players[i].ID, got, w)
		}
	}
}
