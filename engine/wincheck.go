package engine

import (
	"github.com/dgraph-io/ristretto"

	"xuezhan/logx"
)

// WinChecker 胡牌判定器。判定 手牌∪{额外一张} 能否分解为
// 一对将 + 若干面子（顺子/刻子/杠），且不含缺门花色的牌。
// 分解结果按规范化牌型键缓存，同种牌型只回溯一次。
type WinChecker struct {
	cache *ristretto.Cache
}

// NewWinChecker 创建判定器，缓存失败时退化为无缓存直接计算
func NewWinChecker() *WinChecker {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 22,
		BufferItems: 64,
	})
	if err != nil {
		logx.Warn("创建胡牌缓存失败, 降级为无缓存: %v", err)
		cache = nil
	}
	return &WinChecker{cache: cache}
}

// IsHu 判定能否胡牌。extra 为点炮/额外的牌，自摸判定传 nil。
// 未定缺、或手牌（含额外牌）中存在缺门花色的牌时不可胡（花猪不胡）。
func (w *WinChecker) IsHu(p *Player, extra *Tile) bool {
	if p.MissingSuit == nil {
		return false
	}
	missing := *p.MissingSuit

	tiles := make([]Tile, 0, len(p.Hand)+1)
	tiles = append(tiles, p.Hand...)
	if extra != nil {
		tiles = append(tiles, *extra)
	}
	if len(tiles) < 2 {
		return false
	}

	// 缺门校验先行，不满足时不做分解
	for _, t := range tiles {
		if t.Suit == missing {
			return false
		}
	}

	counts := countTiles(tiles)
	return w.decomposable(&counts)
}

// CanWinOn 列出当前手牌点任意一张即胡的所有牌，查大叫时用于
// 判定是否听牌及其最大番
func (w *WinChecker) CanWinOn(p *Player) []Tile {
	if p.MissingSuit == nil || p.IsFlowerPig() {
		return nil
	}
	var wins []Tile
	for kind := 0; kind < NumSuits*9; kind++ {
		t := tileFromKind(kind)
		if t.Suit == *p.MissingSuit {
			continue
		}
		if w.IsHu(p, &t) {
			wins = append(wins, t)
		}
	}
	return wins
}

// decomposable 整手牌能否分解为一对将 + 面子若干
func (w *WinChecker) decomposable(counts *tileCounts) bool {
	key := counts.key()
	if w.cache != nil {
		if v, ok := w.cache.Get(key); ok {
			return v.(bool)
		}
	}

	ok := false
	// 枚举将牌，其余全部分解为面子
	for kind := range counts {
		if counts[kind] < 2 {
			continue
		}
		counts[kind] -= 2
		if decomposeMelds(counts) {
			ok = true
		}
		counts[kind] += 2
		if ok {
			break
		}
	}

	if w.cache != nil {
		w.cache.Set(key, ok, 1)
	}
	return ok
}

// decomposeMelds 把剩余牌全部拆成刻子/杠/顺子。
// 手牌中留到胡牌的4张同牌按一坎（杠）处理。
func decomposeMelds(counts *tileCounts) bool {
	kind := -1
	for i, n := range counts {
		if n > 0 {
			kind = i
			break
		}
	}
	if kind == -1 {
		return true
	}

	// 刻子
	if counts[kind] >= 3 {
		counts[kind] -= 3
		if decomposeMelds(counts) {
			counts[kind] += 3
			return true
		}
		counts[kind] += 3
	}
	// 手内四张
	if counts[kind] >= 4 {
		counts[kind] -= 4
		if decomposeMelds(counts) {
			counts[kind] += 4
			return true
		}
		counts[kind] += 4
	}
	// 顺子，不跨花色
	rank := kind%9 + 1
	if rank <= 7 && counts[kind+1] > 0 && counts[kind+2] > 0 {
		counts[kind]--
		counts[kind+1]--
		counts[kind+2]--
		if decomposeMelds(counts) {
			counts[kind]++
			counts[kind+1]++
			counts[kind+2]++
			return true
		}
		counts[kind]++
		counts[kind+1]++
		counts[kind+2]++
	}
	return false
}
