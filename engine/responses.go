package engine

import "sort"

// PlayerResponse 对别家出牌的响应声明
type PlayerResponse struct {
	PlayerID   string     `json:"player_id"`
	Action     ActionType `json:"action"`
	TargetTile Tile       `json:"target_tile"`
	Priority   int        `json:"priority"`
}

// CollectResponses 按贪心策略收集三家对出牌的响应：
// 能胡必胡，其次杠，再次碰。已胡玩家和缺门牌不参与响应。
func (a *Actions) CollectResponses(st *GameState, tile Tile, discarderSeat int) []PlayerResponse {
	var responses []PlayerResponse
	for off := 1; off < NumPlayers; off++ {
		seat := (discarderSeat + off) % NumPlayers
		p := st.Players[seat]
		if p.MissingSuit != nil && tile.Suit == *p.MissingSuit {
			continue
		}
		if a.checker.IsHu(p, &tile) {
			responses = append(responses, PlayerResponse{
				PlayerID: p.ID, Action: ActionHu, TargetTile: tile, Priority: ActionHu.Priority(),
			})
			continue
		}
		// 已胡玩家锁手，不再参与碰杠
		if p.IsHu {
			continue
		}
		switch p.CountInHand(tile) {
		case 3:
			if st.WallRemaining() > 0 {
				responses = append(responses, PlayerResponse{
					PlayerID: p.ID, Action: ActionKongExposed, TargetTile: tile, Priority: ActionKongExposed.Priority(),
				})
				continue
			}
			fallthrough
		case 2:
			responses = append(responses, PlayerResponse{
				PlayerID: p.ID, Action: ActionPong, TargetTile: tile, Priority: ActionPong.Priority(),
			})
		}
	}
	return responses
}

// ProcessResponses 仲裁响应并推进回合。胡牌优先于杠碰，
// 一炮多响时从点炮者下家起顺时针依次结算，全部结算后
// 回合从点炮者下家继续。无人响应则下家摸牌。
func (a *Actions) ProcessResponses(st *GameState, responses []PlayerResponse, discarderID string) (*GameState, error) {
	next := st.Clone()
	if err := a.processResponses(next, responses, discarderID); err != nil {
		return nil, err
	}
	return next, nil
}

func (a *Actions) processResponses(st *GameState, responses []PlayerResponse, discarderID string) error {
	discarderSeat := st.SeatOf(discarderID)
	if discarderSeat < 0 {
		return invalidAction("discarder %s not found", discarderID)
	}

	// 所有非过的响应必须指向当前弃牌堆顶，杜绝凭空造牌
	last := st.lastDiscard()
	for _, r := range responses {
		if r.Action == ActionPass {
			continue
		}
		if last == nil || last.Tile != r.TargetTile {
			return invalidAction("player %s cannot %s %s: tile is not the pending discard",
				r.PlayerID, r.Action, r.TargetTile)
		}
	}

	var hus []PlayerResponse
	var best *PlayerResponse
	for i := range responses {
		r := responses[i]
		if r.Action == ActionPass {
			continue
		}
		if r.Action == ActionHu {
			hus = append(hus, r)
			continue
		}
		if best == nil || r.Priority > best.Priority {
			best = &responses[i]
		}
	}

	if len(hus) > 0 {
		sort.SliceStable(hus, func(i, j int) bool {
			si := (st.SeatOf(hus[i].PlayerID) - discarderSeat - 1 + NumPlayers) % NumPlayers
			sj := (st.SeatOf(hus[j].PlayerID) - discarderSeat - 1 + NumPlayers) % NumPlayers
			return si < sj
		})
		for _, r := range hus {
			if err := a.declareAction(st, r.PlayerID, ActionHu, r.TargetTile, discarderID, true); err != nil {
				return err
			}
		}
		if st.Phase == PhasePlaying {
			a.nextPlayerDraw(st, discarderSeat)
		}
		return nil
	}

	if best != nil {
		return a.declareAction(st, best.PlayerID, best.Action, best.TargetTile, discarderID, false)
	}

	a.nextPlayerDraw(st, discarderSeat)
	return nil
}
