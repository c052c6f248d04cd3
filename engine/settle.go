package engine

import "xuezhan/logx"

// Settlement 分数结算引擎。只在牌局状态定格之后执行转分，
// 结算缺陷不会污染核心牌局状态。零和校验只记录、永不中断行牌。
type Settlement struct {
	table ScoreTable
}

func NewSettlement(table ScoreTable) *Settlement {
	return &Settlement{table: table}
}

// zeroSumTotal 四家总分恒定值
func (s *Settlement) zeroSumTotal() int {
	return s.table.InitialScore * NumPlayers
}

// VerifyZeroSum 校验零和不变量，违反时带完整上下文记录日志。
// 允许负分，不设下限。
func (s *Settlement) VerifyZeroSum(st *GameState, context string) bool {
	total := st.TotalScore()
	if total == s.zeroSumTotal() {
		return true
	}
	scores := make(map[string]int, NumPlayers)
	for _, p := range st.Players {
		scores[p.ID] = p.Score
	}
	logx.Error("零和校验失败: game=%s context=%s total=%d expected=%d scores=%v",
		st.GameID, context, total, s.zeroSumTotal(), scores)
	return false
}

// SettleSelfDraw 自摸结算：赢家 +3×番，其余三家各 -番
func (s *Settlement) SettleSelfDraw(st *GameState, winnerSeat int, fan int) {
	for i, p := range st.Players {
		if i == winnerSeat {
			p.Score += 3 * fan
		} else {
			p.Score -= fan
		}
	}
	s.VerifyZeroSum(st, "self-draw hu")
}

// SettleDiscardWin 点炮结算：赢家 +番，点炮者 -番，其余不变。
// 一炮多响时按赢家逐个调用，点炮者支付全部赢家番数之和。
func (s *Settlement) SettleDiscardWin(st *GameState, winnerSeat, discarderSeat int, fan int) {
	st.Players[winnerSeat].Score += fan
	st.Players[discarderSeat].Score -= fan
	s.VerifyZeroSum(st, "discard hu")
}

// SettleKong 杠的实时结算（刮风下雨）。
// 明杠点杠者付固定分，暗杠/补杠其余三家各付固定分。
func (s *Settlement) SettleKong(st *GameState, actorSeat int, kind ActionType, discarderSeat int) {
	switch kind {
	case ActionKongExposed:
		price := s.table.KongExposedPrice
		st.Players[actorSeat].Score += price
		st.Players[discarderSeat].Score -= price
	case ActionKongConcealed:
		price := s.table.KongConcealedPrice
		for i, p := range st.Players {
			if i == actorSeat {
				p.Score += price * (NumPlayers - 1)
			} else {
				p.Score -= price
			}
		}
	case ActionKongUpgrade:
		price := s.table.KongUpgradePrice
		for i, p := range st.Players {
			if i == actorSeat {
				p.Score += price * (NumPlayers - 1)
			} else {
				p.Score -= price
			}
		}
	}
	s.VerifyZeroSum(st, "kong "+kind.String())
}

// SettleExhaustiveDraw 流局结算：查花猪、查大叫。
// 花猪向每家非花猪赔付固定分；未听牌玩家向每个听牌玩家
// 赔付对方可胡的最大番。已胡玩家不参与查大叫。
func (s *Settlement) SettleExhaustiveDraw(st *GameState, checker *WinChecker, scorer *Scorer) {
	type standing struct {
		pig     bool
		ting    bool
		bestFan int
	}
	standings := make([]standing, NumPlayers)
	for i, p := range st.Players {
		if p.IsHu {
			continue
		}
		if p.IsFlowerPig() || p.MissingSuit == nil {
			standings[i].pig = true
			continue
		}
		wins := checker.CanWinOn(p)
		if len(wins) == 0 {
			continue
		}
		standings[i].ting = true
		for _, t := range wins {
			tile := t
			fan := scorer.CalculateScore(p, WinContext{ExtraTile: &tile})
			if fan > standings[i].bestFan {
				standings[i].bestFan = fan
			}
		}
	}

	// 查大叫：未听牌者（含花猪）赔付每个听牌者的最大番
	for i, p := range st.Players {
		if p.IsHu || standings[i].ting {
			continue
		}
		for j, other := range st.Players {
			if j == i || !standings[j].ting {
				continue
			}
			p.Score -= standings[j].bestFan
			other.Score += standings[j].bestFan
			logx.Info("查大叫: game=%s %s 赔付 %s %d分", st.GameID, p.ID, other.ID, standings[j].bestFan)
		}
	}

	// 查花猪：花猪赔付每家非花猪固定分
	for i, p := range st.Players {
		if !standings[i].pig {
			continue
		}
		for j, other := range st.Players {
			if j == i || standings[j].pig {
				continue
			}
			p.Score -= s.table.FlowerPigPenalty
			other.Score += s.table.FlowerPigPenalty
			logx.Info("查花猪: game=%s %s 赔付 %s %d分", st.GameID, p.ID, other.ID, s.table.FlowerPigPenalty)
		}
	}

	s.VerifyZeroSum(st, "exhaustive draw")
}
