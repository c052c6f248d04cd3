package api

import (
	"errors"
	"time"

	"xuezhan/engine"
	"xuezhan/logx"
	"xuezhan/store"
)

// 防止 AI 循环失控的硬上限
const maxAIIterations = 100

var errAITimeout = errors.New("ai turn loop exceeded time limit")

// runAITurns 执行电脑玩家回合直到再次轮到人类、人类可以响应
// 最近一张弃牌、或对局结束。每步都把最新状态写回会话。
func (s *Server) runAITurns(session *store.Session) error {
	actions := s.manager.Actions()
	arch := s.archiverFor(session.GameID)
	deadline := time.Now().Add(s.aiLimit)

	for i := 0; i < maxAIIterations; i++ {
		if time.Now().After(deadline) {
			return errAITimeout
		}
		st := session.State

		switch st.Phase {
		case engine.PhaseEnded:
			return nil

		case engine.PhaseBurying:
			// 埋牌阶段不走回合制，按座位序处理还没定缺的电脑玩家
			var pending *engine.Player
			for _, p := range st.Players {
				if p.ID != session.HumanPlayerID && p.MissingSuit == nil {
					pending = p
					break
				}
			}
			if pending == nil {
				return nil
			}
			tiles := s.bot.ChooseBuryTiles(pending)
			next, err := actions.BuryCards(st, pending.ID, tiles)
			if err != nil {
				return err
			}
			logx.Info("AI %s 定缺埋牌 %v", pending.ID, tiles)
			arch.RecordTransition(st, next)
			session.State = next

		case engine.PhasePlaying:
			current := st.Players[st.CurrentPlayerIndex]
			if current.ID == session.HumanPlayerID {
				return nil
			}
			if err := s.runAIDiscard(session, current); err != nil {
				return err
			}
			if s.humanCanRespond(session.State, session.HumanPlayerID) {
				logx.Info("人类玩家可响应 %s 的弃牌, 暂停 AI 回合", current.ID)
				return nil
			}
			if session.State.Phase != engine.PhasePlaying {
				continue
			}
			st = session.State
			last := st.DiscardPile[len(st.DiscardPile)-1]
			discarderSeat := st.SeatOf(session.LastDiscarder)
			responses := s.collectBotResponses(st, last.Tile, discarderSeat, session.HumanPlayerID)
			next, err := actions.ProcessResponses(st, responses, session.LastDiscarder)
			if err != nil {
				return err
			}
			arch.RecordTransition(st, next)
			session.State = next

		default:
			logx.Warn("意外的游戏阶段 %s, 停止 AI 回合", st.Phase)
			return nil
		}
	}
	return errors.New("ai turn loop exceeded max iterations")
}

// runAIDiscard 当前电脑玩家出一张牌，跳过响应处理，
// 以便先询问人类是否要碰杠胡。
func (s *Server) runAIDiscard(session *store.Session, current *engine.Player) error {
	actions := s.manager.Actions()
	st := session.State

	// 手牌 + 面子折算后差一张的才需要摸牌，刚碰完的直接出牌
	if current.LastDrawnTile == nil && (len(current.Hand)+3*len(current.Melds))%3 == 1 {
		next, err := actions.DrawTile(st, current.ID)
		if err != nil {
			return err
		}
		session.State = next
		if next.Phase != engine.PhasePlaying {
			return nil
		}
		st = next
		current = st.Players[st.CurrentPlayerIndex]
	}

	tile := s.bot.ChooseDiscardTile(current)
	next, err := actions.DiscardTile(st, current.ID, tile, true)
	if err != nil {
		return err
	}
	logx.Info("AI %s 打出 %s", current.ID, tile)
	s.archiverFor(session.GameID).RecordDiscard(current.ID, tile)
	session.LastDiscarder = current.ID
	session.State = next
	return nil
}

// collectBotResponses 逐家询问 AI 决策器对弃牌的响应，exclude
// 指已单独表态的玩家（人类）。优先级裁决交给引擎的响应通道。
func (s *Server) collectBotResponses(st *engine.GameState, tile engine.Tile, discarderSeat int, exclude string) []engine.PlayerResponse {
	responses := make([]engine.PlayerResponse, 0, engine.NumPlayers-1)
	for off := 1; off < engine.NumPlayers; off++ {
		p := st.Players[(discarderSeat+off)%engine.NumPlayers]
		if p.ID == exclude {
			continue
		}
		r := s.bot.ChooseResponse(p, tile, st.WallRemaining())
		if r.Action != engine.ActionPass {
			responses = append(responses, r)
		}
	}
	return responses
}

// humanCanRespond 人类玩家是否能对最近一张弃牌碰杠胡。
// 能则暂停 AI 回合，等待人类通过接口响应。
func (s *Server) humanCanRespond(st *engine.GameState, humanID string) bool {
	if len(st.DiscardPile) == 0 {
		return false
	}
	human := st.PlayerByID(humanID)
	if human == nil {
		return false
	}
	last := st.DiscardPile[len(st.DiscardPile)-1].Tile
	if human.MissingSuit != nil && last.Suit == *human.MissingSuit {
		return false
	}
	if s.checker.IsHu(human, &last) {
		return true
	}
	if human.IsHu {
		return false
	}
	count := human.CountInHand(last)
	if count >= 3 && st.WallRemaining() > 0 {
		return true
	}
	return count >= 2
}
