package engine

// Player 一名玩家的完整状态。手牌私有（对外视图只暴露张数），
// 埋牌、面子、得分等公开。
type Player struct {
	ID            string  `json:"playerId"`
	Hand          []Tile  `json:"hand"`
	Melds         []*Meld `json:"melds"`
	BuriedTiles   []Tile  `json:"buriedTiles"` // 埋掉的3张同花色牌
	MissingSuit   *Suit   `json:"missingSuit"` // 一经设定全局不变
	LastDrawnTile *Tile   `json:"lastDrawnTile"`
	WonTiles      []Tile  `json:"wonTiles"` // 血战中每次胡到的牌
	Score         int     `json:"score"`
	IsHu          bool    `json:"isHu"`       // 单调，胡过即恒真
	HandLocked    bool    `json:"handLocked"` // 首胡后锁牌，只能摸什么打什么
	KongDraw      bool    `json:"kongDraw"`   // 刚补到杠后的牌，胡即杠上花
	HasDiscarded  bool    `json:"hasDiscarded"`
}

// NewPlayer 创建玩家，初始分由计分表给定
func NewPlayer(id string, score int) *Player {
	return &Player{
		ID:    id,
		Hand:  make([]Tile, 0, 14),
		Melds: make([]*Meld, 0, 4),
		Score: score,
	}
}

func (p *Player) clone() *Player {
	np := &Player{
		ID:           p.ID,
		Hand:         append([]Tile(nil), p.Hand...),
		BuriedTiles:  append([]Tile(nil), p.BuriedTiles...),
		WonTiles:     append([]Tile(nil), p.WonTiles...),
		Score:        p.Score,
		IsHu:         p.IsHu,
		HandLocked:   p.HandLocked,
		KongDraw:     p.KongDraw,
		HasDiscarded: p.HasDiscarded,
	}
	np.Melds = make([]*Meld, len(p.Melds))
	for i, m := range p.Melds {
		np.Melds[i] = m.clone()
	}
	if p.MissingSuit != nil {
		s := *p.MissingSuit
		np.MissingSuit = &s
	}
	if p.LastDrawnTile != nil {
		t := *p.LastDrawnTile
		np.LastDrawnTile = &t
	}
	return np
}

// CountInHand 手牌中某种牌的张数
func (p *Player) CountInHand(t Tile) int {
	n := 0
	for _, h := range p.Hand {
		if h == t {
			n++
		}
	}
	return n
}

// removeFromHand 移除一张指定牌，不存在返回 false
func (p *Player) removeFromHand(t Tile) bool {
	for i, h := range p.Hand {
		if h == t {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Player) removeFromHandN(t Tile, n int) bool {
	if p.CountInHand(t) < n {
		return false
	}
	for i := 0; i < n; i++ {
		p.removeFromHand(t)
	}
	return true
}

// MissingSuitCount 手牌中缺门花色牌的张数
func (p *Player) MissingSuitCount() int {
	if p.MissingSuit == nil {
		return 0
	}
	n := 0
	for _, t := range p.Hand {
		if t.Suit == *p.MissingSuit {
			n++
		}
	}
	return n
}

// IsFlowerPig 花猪：定缺后手牌中仍持有缺门牌
func (p *Player) IsFlowerPig() bool {
	return p.MissingSuitCount() > 0
}

// hasOpenMelds 是否有破坏门清的明牌（碰/明杠/补杠），暗杠不算
func (p *Player) hasOpenMelds() bool {
	for _, m := range p.Melds {
		if !m.IsConcealed {
			return true
		}
	}
	return false
}

// tileCount 该玩家持有的总张数（手牌 + 面子 + 埋牌 + 胡到的牌），
// 用于全局牌数守恒校验
func (p *Player) tileCount() int {
	n := len(p.Hand) + len(p.BuriedTiles) + len(p.WonTiles)
	for _, m := range p.Melds {
		n += len(m.Tiles)
	}
	return n
}
