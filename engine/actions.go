package engine

import (
	"xuezhan/logx"
)

// Actions 行牌动作引擎。所有入口先克隆状态再校验再变更，
// 任何校验失败都不会留下半完成的状态。
type Actions struct {
	checker *WinChecker
	scorer  *Scorer
	settle  *Settlement
}

func NewActions(checker *WinChecker, scorer *Scorer, settle *Settlement) *Actions {
	return &Actions{checker: checker, scorer: scorer, settle: settle}
}

// BuryCards 埋牌定缺。必须恰好三张同花色手牌，
// 四家全部埋完后进入行牌阶段，庄家先出。
func (a *Actions) BuryCards(st *GameState, playerID string, tiles []Tile) (*GameState, error) {
	if st.Phase != PhaseBurying {
		return nil, invalidState("Cannot bury cards outside of BURYING phase.")
	}
	next := st.Clone()
	p := next.PlayerByID(playerID)
	if p == nil {
		return nil, invalidAction("player %s not found", playerID)
	}
	if p.MissingSuit != nil {
		return nil, invalidAction("player %s has already buried cards", playerID)
	}
	if len(tiles) != 3 {
		return nil, invalidAction("must bury exactly 3 tiles, got %d", len(tiles))
	}
	suit := tiles[0].Suit
	for _, t := range tiles[1:] {
		if t.Suit != suit {
			return nil, invalidAction("buried tiles must share one suit")
		}
	}
	for _, t := range tiles {
		if !p.removeFromHand(t) {
			return nil, invalidAction("tile %s not in player's hand", t)
		}
	}
	p.BuriedTiles = append(p.BuriedTiles, tiles...)
	ms := suit
	p.MissingSuit = &ms

	for _, other := range next.Players {
		if other.MissingSuit == nil {
			return next, nil
		}
	}
	next.Phase = PhasePlaying
	next.CurrentPlayerIndex = next.DealerIndex
	logx.Info("埋牌完成进入行牌阶段: game=%s dealer=%s", next.GameID, next.Players[next.DealerIndex].ID)
	return next, nil
}

// DiscardTile 出牌。血战锁手后只能打刚摸的牌，缺门未清空时必须优先打缺门。
// skipResponses 为 true 时只落牌不推进回合，响应窗口交给调用方收集。
func (a *Actions) DiscardTile(st *GameState, playerID string, tile Tile, skipResponses bool) (*GameState, error) {
	if st.Phase != PhasePlaying {
		return nil, invalidState("Cannot discard tile outside of PLAYING phase.")
	}
	seat := st.SeatOf(playerID)
	if seat < 0 {
		return nil, invalidAction("player %s not found", playerID)
	}
	if seat != st.CurrentPlayerIndex {
		return nil, invalidAction("it is not player %s's turn", playerID)
	}
	next := st.Clone()
	p := next.Players[seat]

	if p.IsHu && p.LastDrawnTile != nil && tile != *p.LastDrawnTile {
		return nil, invalidAction("手牌已锁定, 必须打出刚摸的牌 %s", *p.LastDrawnTile)
	}
	if p.MissingSuit != nil && tile.Suit != *p.MissingSuit {
		if n := p.MissingSuitCount(); n > 0 {
			return nil, invalidAction("缺门优先规则违反: 必须优先打出缺门(%s)的牌, 手牌中还有 %d 张缺门牌",
				p.MissingSuit.Chinese(), n)
		}
	}
	if !p.removeFromHand(tile) {
		return nil, invalidAction("tile %s not in player's hand", tile)
	}
	p.LastDrawnTile = nil
	p.HasDiscarded = true
	next.DiscardPile = append(next.DiscardPile, DiscardedTile{
		Tile:      tile,
		PlayerID:  playerID,
		TurnIndex: len(next.DiscardPile),
	})

	if skipResponses {
		return next, nil
	}
	responses := a.CollectResponses(next, tile, seat)
	return a.ProcessResponses(next, responses, playerID)
}

// DrawTile 当前玩家从牌墙摸牌。牌墙耗尽触发流局结算。
func (a *Actions) DrawTile(st *GameState, playerID string) (*GameState, error) {
	if st.Phase != PhasePlaying {
		return nil, invalidState("Cannot draw tile outside of PLAYING phase.")
	}
	seat := st.SeatOf(playerID)
	if seat < 0 {
		return nil, invalidAction("player %s not found", playerID)
	}
	if seat != st.CurrentPlayerIndex {
		return nil, invalidAction("it is not player %s's turn", playerID)
	}
	if st.Players[seat].LastDrawnTile != nil {
		return nil, invalidAction("player %s has already drawn this turn", playerID)
	}
	next := st.Clone()
	if next.WallRemaining() == 0 {
		a.endExhaustiveDraw(next)
		return next, nil
	}
	a.dealToSeat(next, seat)
	return next, nil
}

// DeclareAction 玩家声明副露或胡牌动作。PASS 原样返回状态。
func (a *Actions) DeclareAction(st *GameState, playerID string, action ActionType, target Tile, discarderID string) (*GameState, error) {
	next := st.Clone()
	if err := a.declareAction(next, playerID, action, target, discarderID, false); err != nil {
		return nil, err
	}
	return next, nil
}

// declareAction 就地执行声明动作。skipNextDraw 用于一炮多响的中间赢家，
// 只有最后一个胡牌声明之后才推进摸牌。
func (a *Actions) declareAction(st *GameState, playerID string, action ActionType, target Tile, discarderID string, skipNextDraw bool) error {
	if st.Phase != PhasePlaying {
		return invalidState("Cannot declare action outside of PLAYING phase.")
	}
	seat := st.SeatOf(playerID)
	if seat < 0 {
		return invalidAction("player %s not found", playerID)
	}
	p := st.Players[seat]

	switch action {
	case ActionPass:
		return nil

	case ActionPong:
		if p.IsHu {
			return invalidAction("手牌已锁定: 已胡玩家不能碰杠")
		}
		if n := p.CountInHand(target); n < 2 {
			return invalidAction("player %s cannot PONG %s: only has %d in hand", playerID, target, n)
		}
		if last := st.lastDiscard(); last == nil || last.Tile != target {
			return invalidAction("player %s cannot PONG %s: tile is not the pending discard", playerID, target)
		}
		p.removeFromHandN(target, 2)
		st.popDiscardIf(target)
		p.Melds = append(p.Melds, &Meld{
			Type:  ActionPong,
			Tiles: []Tile{target, target, target},
		})
		st.CurrentPlayerIndex = seat
		return nil

	case ActionKongExposed:
		if p.IsHu {
			return invalidAction("手牌已锁定: 已胡玩家不能碰杠")
		}
		if n := p.CountInHand(target); n < 3 {
			return invalidAction("player %s cannot KONG %s: only has %d in hand", playerID, target, n)
		}
		if st.WallRemaining() == 0 {
			return invalidAction("cannot KONG: no tiles left in wall")
		}
		if last := st.lastDiscard(); last == nil || last.Tile != target {
			return invalidAction("player %s cannot KONG %s: tile is not the pending discard", playerID, target)
		}
		discarderSeat := st.SeatOf(discarderID)
		if discarderSeat < 0 {
			return invalidAction("discarder %s not found", discarderID)
		}
		p.removeFromHandN(target, 3)
		st.popDiscardIf(target)
		p.Melds = append(p.Melds, &Meld{
			Type:  ActionKongExposed,
			Tiles: []Tile{target, target, target, target},
		})
		a.settle.SettleKong(st, seat, ActionKongExposed, discarderSeat)
		a.kongReplacementDraw(st, seat)
		return nil

	case ActionKongConcealed:
		if p.IsHu {
			return invalidAction("手牌已锁定: 已胡玩家不能碰杠")
		}
		if seat != st.CurrentPlayerIndex {
			return invalidAction("it is not player %s's turn", playerID)
		}
		if n := p.CountInHand(target); n < 4 {
			return invalidAction("player %s cannot KONG_CONCEALED %s: only has %d in hand", playerID, target, n)
		}
		if st.WallRemaining() == 0 {
			return invalidAction("cannot KONG: no tiles left in wall")
		}
		p.removeFromHandN(target, 4)
		p.Melds = append(p.Melds, &Meld{
			Type:        ActionKongConcealed,
			Tiles:       []Tile{target, target, target, target},
			IsConcealed: true,
		})
		a.settle.SettleKong(st, seat, ActionKongConcealed, -1)
		a.kongReplacementDraw(st, seat)
		return nil

	case ActionKongUpgrade:
		if p.IsHu {
			return invalidAction("手牌已锁定: 已胡玩家不能碰杠")
		}
		if seat != st.CurrentPlayerIndex {
			return invalidAction("it is not player %s's turn", playerID)
		}
		var pong *Meld
		for _, m := range p.Melds {
			if m.Type == ActionPong && m.Tiles[0] == target {
				pong = m
				break
			}
		}
		if pong == nil {
			return invalidAction("player %s cannot KONG_UPGRADE %s: no existing PONG found", playerID, target)
		}
		if p.CountInHand(target) < 1 {
			return invalidAction("player %s cannot KONG_UPGRADE %s: no tile in hand to upgrade", playerID, target)
		}
		if st.WallRemaining() == 0 {
			return invalidAction("cannot KONG: no tiles left in wall")
		}
		p.removeFromHand(target)
		pong.Type = ActionKongUpgrade
		pong.Tiles = append(pong.Tiles, target)
		a.settle.SettleKong(st, seat, ActionKongUpgrade, -1)
		a.kongReplacementDraw(st, seat)
		return nil

	case ActionHu:
		return a.declareHu(st, seat, target, discarderID, skipNextDraw)

	default:
		return invalidAction("unknown action type %s", action)
	}
}

// declareHu 胡牌声明。自摸按 3 倍番收取三家，点炮只收点炮者。
// 胡后锁手进入血战，第三家胡牌即终局。
func (a *Actions) declareHu(st *GameState, seat int, target Tile, discarderID string, skipNextDraw bool) error {
	p := st.Players[seat]

	selfDrawn := discarderID == "" || discarderID == p.ID
	ctx := WinContext{SelfDrawn: selfDrawn}

	// 自摸时胡牌通常已在手里，直接声明未摸进的牌时按额外牌校验
	fromHand := p.LastDrawnTile != nil && *p.LastDrawnTile == target && p.CountInHand(target) > 0

	if selfDrawn {
		// 自摸声明的牌必须真实持有：要么刚摸进，要么已在手里
		if !fromHand && p.CountInHand(target) == 0 &&
			(p.LastDrawnTile == nil || *p.LastDrawnTile != target) {
			return invalidAction("player %s cannot HU on %s: tile not in hand or just drawn", p.ID, target)
		}
		if fromHand {
			if !a.checker.IsHu(p, nil) {
				return invalidAction("player %s cannot HU: not a winning hand", p.ID)
			}
		} else if !a.checker.IsHu(p, &target) {
			return invalidAction("player %s cannot HU on %s: not a winning hand", p.ID, target)
		}
		ctx.KongFlower = p.KongDraw
	} else {
		// 一炮多响批处理中首家已把实牌收走，批内后续赢家在
		// processResponses 统一校验过弃牌，这里只拦直接声明
		if !skipNextDraw {
			if last := st.lastDiscard(); last == nil || last.Tile != target {
				return invalidAction("player %s cannot HU on %s: tile is not the pending discard", p.ID, target)
			}
		}
		if !a.checker.IsHu(p, &target) {
			return invalidAction("player %s cannot HU on %s: not a winning hand", p.ID, target)
		}
		ctx.ExtraTile = &target
		discarderSeat := st.SeatOf(discarderID)
		if discarderSeat < 0 {
			return invalidAction("discarder %s not found", discarderID)
		}
		ctx.KongFlower = st.Players[discarderSeat].KongDraw
	}

	ctx.LastTile = st.WallRemaining() == 0
	noMelds := len(p.Melds) == 0
	if selfDrawn && seat == st.DealerIndex && len(st.DiscardPile) == 0 && noMelds {
		ctx.TianHu = true
	}
	if seat != st.DealerIndex && !p.HasDiscarded && noMelds {
		ctx.DiHu = true
	}

	fan := a.scorer.CalculateScore(p, ctx)

	if selfDrawn {
		if fromHand {
			p.removeFromHand(target)
		}
		p.WonTiles = append(p.WonTiles, target)
		a.settle.SettleSelfDraw(st, seat, fan)
	} else {
		// 实牌只归首家赢家，保持 108 张守恒；批内后续赢家只记分
		if st.popDiscardIf(target) {
			p.WonTiles = append(p.WonTiles, target)
		}
		discarderSeat := st.SeatOf(discarderID)
		a.settle.SettleDiscardWin(st, seat, discarderSeat, fan)
	}

	p.IsHu = true
	p.HandLocked = true
	p.LastDrawnTile = nil
	p.KongDraw = false
	logx.Info("胡牌: game=%s player=%s fan=%d selfDrawn=%v", st.GameID, p.ID, fan, selfDrawn)

	if st.HuCount() >= NumPlayers-1 {
		st.Phase = PhaseEnded
		logx.Info("三家胡牌终局: game=%s", st.GameID)
		return nil
	}
	if skipNextDraw {
		return nil
	}
	if selfDrawn {
		a.nextPlayerDraw(st, seat)
	} else {
		a.nextPlayerDraw(st, st.SeatOf(discarderID))
	}
	return nil
}

// nextPlayerDraw 回合推进：fromSeat 的下家摸牌。牌墙耗尽则流局终局。
func (a *Actions) nextPlayerDraw(st *GameState, fromSeat int) {
	if st.Phase != PhasePlaying {
		return
	}
	if st.WallRemaining() == 0 {
		a.endExhaustiveDraw(st)
		return
	}
	a.dealToSeat(st, (fromSeat+1)%NumPlayers)
}

// dealToSeat 给指定座位摸一张并把回合交给他
func (a *Actions) dealToSeat(st *GameState, seat int) {
	st.CurrentPlayerIndex = seat
	p := st.Players[seat]
	t := st.Wall[len(st.Wall)-1]
	st.Wall = st.Wall[:len(st.Wall)-1]
	p.Hand = append(p.Hand, t)
	SortTiles(p.Hand)
	p.LastDrawnTile = &t
	p.KongDraw = false
}

// kongReplacementDraw 杠后补牌，补牌标记用于杠上花与杠上炮判定
func (a *Actions) kongReplacementDraw(st *GameState, seat int) {
	a.dealToSeat(st, seat)
	st.Players[seat].KongDraw = true
}

// endExhaustiveDraw 流局：查花猪查大叫后终局
func (a *Actions) endExhaustiveDraw(st *GameState) {
	a.settle.SettleExhaustiveDraw(st, a.checker, a.scorer)
	st.Phase = PhaseEnded
	logx.Info("流局终局: game=%s", st.GameID)
}
