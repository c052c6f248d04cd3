// Package ai 提供电脑玩家的出牌决策，策略刻意保持简单：
// 定缺埋最少的花色，出牌先清缺门再拆孤张，响应能胡就胡。
package ai

import (
	"math/rand"
	"time"

	"xuezhan/engine"
	"xuezhan/logx"
)

// Bot 电脑玩家决策器
type Bot struct {
	rng     *rand.Rand
	checker *engine.WinChecker
}

func NewBot(checker *engine.WinChecker) *Bot {
	return NewBotWithSource(checker, rand.NewSource(time.Now().UnixNano()))
}

// NewBotWithSource 固定随机源，测试下决策可复现
func NewBotWithSource(checker *engine.WinChecker, src rand.Source) *Bot {
	return &Bot{rng: rand.New(src), checker: checker}
}

// ChooseBuryTiles 从张数最少的花色里取前三张定缺
func (b *Bot) ChooseBuryTiles(p *engine.Player) []engine.Tile {
	var counts [engine.NumSuits]int
	for _, t := range p.Hand {
		counts[t.Suit]++
	}
	minSuit := engine.Suit(0)
	for s := engine.Suit(1); s < engine.NumSuits; s++ {
		if counts[s] < counts[minSuit] {
			minSuit = s
		}
	}
	tiles := make([]engine.Tile, 0, 3)
	for _, t := range p.Hand {
		if t.Suit == minSuit && len(tiles) < 3 {
			tiles = append(tiles, t)
		}
	}
	return tiles
}

// ChooseDiscardTile 出牌优先级：缺门牌、左右无邻张的孤张、随机。
// 锁手玩家直接打刚摸的牌。
func (b *Bot) ChooseDiscardTile(p *engine.Player) engine.Tile {
	if p.IsHu && p.LastDrawnTile != nil {
		return *p.LastDrawnTile
	}

	if p.MissingSuit != nil {
		for _, t := range p.Hand {
			if t.Suit == *p.MissingSuit {
				return t
			}
		}
	}

	for _, t := range p.Hand {
		adjacent := 0
		for _, other := range p.Hand {
			if other.Suit == t.Suit && abs(other.Rank-t.Rank) == 1 {
				adjacent++
			}
		}
		if adjacent == 0 {
			return t
		}
	}

	return p.Hand[b.rng.Intn(len(p.Hand))]
}

// ChooseResponse 对别家出牌的响应：胡 > 杠 > 碰 > 过。
// 缺门牌不响应，空墙无法补牌时杠降级为碰。
func (b *Bot) ChooseResponse(p *engine.Player, discarded engine.Tile, wallRemaining int) engine.PlayerResponse {
	resp := engine.PlayerResponse{PlayerID: p.ID, TargetTile: discarded}
	resp.Action = engine.ActionPass

	if p.MissingSuit != nil && discarded.Suit == *p.MissingSuit {
		return resp
	}
	if b.checker.IsHu(p, &discarded) {
		logx.Info("AI %s 选择胡 %s", p.ID, discarded)
		resp.Action = engine.ActionHu
		resp.Priority = engine.ActionHu.Priority()
		return resp
	}
	if p.IsHu {
		return resp
	}

	n := p.CountInHand(discarded)
	switch {
	case n >= 3 && wallRemaining > 0:
		logx.Info("AI %s 选择杠 %s", p.ID, discarded)
		resp.Action = engine.ActionKongExposed
		resp.Priority = engine.ActionKongExposed.Priority()
	case n >= 2:
		logx.Info("AI %s 选择碰 %s", p.ID, discarded)
		resp.Action = engine.ActionPong
		resp.Priority = engine.ActionPong.Priority()
	}
	return resp
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
