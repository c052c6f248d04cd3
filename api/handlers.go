package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"xuezhan/engine"
	"xuezhan/logx"
	"xuezhan/store"
)

// DefaultHumanID 未指定玩家列表时人类玩家的固定 ID
const DefaultHumanID = "human"

var defaultPlayerIDs = []string{DefaultHumanID, "ai_1", "ai_2", "ai_3"}

type tileRequest struct {
	Suit string `json:"suit" binding:"required"`
	Rank int    `json:"rank" binding:"required"`
}

type createGameRequest struct {
	PlayerIDs []string `json:"player_ids"`
}

type playerActionRequest struct {
	PlayerID string        `json:"player_id" binding:"required"`
	Action   string        `json:"action" binding:"required"`
	Tiles    []tileRequest `json:"tiles"`
}

func tilesFromRequest(reqs []tileRequest) ([]engine.Tile, error) {
	tiles := make([]engine.Tile, 0, len(reqs))
	for _, r := range reqs {
		suit, err := engine.ParseSuit(r.Suit)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, engine.Tile{Suit: suit, Rank: r.Rank})
	}
	return tiles, nil
}

// friendlyActionError 把引擎的技术性错误转成面向玩家的提示
func friendlyActionError(msg string) string {
	switch {
	case strings.Contains(msg, "cannot HU"):
		return "无法胡牌：手牌中包含缺门花色的牌，或牌型不符合胡牌结构（需要1对将 + N个面子）"
	case strings.Contains(msg, "cannot PONG"):
		return "无法碰牌：手牌中没有足够的相同牌"
	case strings.Contains(msg, "cannot KONG"):
		return "无法杠牌：手牌中没有足够的相同牌"
	case strings.Contains(msg, "not player"):
		return "现在不是你的回合"
	case strings.Contains(msg, "缺门优先"):
		return "必须优先打出缺门花色的牌"
	default:
		return "操作失败：" + msg
	}
}

// createGame 建局并发牌。默认 1 人类 + 3 电脑，电脑玩家由 AI 回合
// 循环驱动，返回的局面按人类玩家视角过滤。
func (s *Server) createGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "请求参数错误"})
		return
	}
	playerIDs := req.PlayerIDs
	if len(playerIDs) == 0 {
		playerIDs = defaultPlayerIDs
	}

	st, err := s.manager.CreateGame(playerIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	st, err = s.manager.StartGame(st)
	if err != nil {
		respondError(c, err)
		return
	}

	humanID := playerIDs[0]
	for _, id := range playerIDs {
		if id == DefaultHumanID {
			humanID = id
			break
		}
	}
	aiOrder := make([]string, 0, len(playerIDs)-1)
	for _, id := range playerIDs {
		if id != humanID {
			aiOrder = append(aiOrder, id)
		}
	}

	now := time.Now()
	session := &store.Session{
		GameID:        st.GameID,
		HumanPlayerID: humanID,
		AIOrder:       aiOrder,
		CreatedAt:     now,
		UpdatedAt:     now,
		State:         st,
	}
	if err := s.store.Save(c.Request.Context(), session); err != nil {
		logx.Error("保存对局失败: game=%s err=%v", st.GameID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	s.archiverFor(st.GameID)

	logx.Info("建局成功: game=%s players=%v ai=%v", st.GameID, playerIDs, aiOrder)
	c.JSON(http.StatusOK, gin.H{
		"game_id": st.GameID,
		"state":   s.manager.StateView(st, humanID),
	})
}

// getGameState 按请求玩家视角查询局面
func (s *Server) getGameState(c *gin.Context) {
	playerID := c.Query("player_id")
	if playerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "player_id is required"})
		return
	}
	session, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.manager.StateView(session.State, playerID))
}

// submitAction 处理人类玩家动作并接着执行 AI 回合，
// 直到再次轮到人类（或人类可响应、或对局结束）才返回。
func (s *Server) submitAction(c *gin.Context) {
	session, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req playerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "请求参数错误"})
		return
	}
	tiles, err := tilesFromRequest(req.Tiles)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	logx.Info("收到动作: game=%s player=%s action=%s", session.GameID, req.PlayerID, req.Action)
	before := session.State
	st, err := s.dispatchAction(session, req.PlayerID, req.Action, tiles)
	if err != nil {
		respondError(c, err)
		return
	}
	session.State = st

	arch := s.archiverFor(session.GameID)
	if req.Action == "discard" {
		arch.RecordDiscard(req.PlayerID, tiles[0])
	}
	arch.RecordTransition(before, st)

	if err := s.runAITurns(session); err != nil {
		logx.Error("AI 回合执行失败: game=%s err=%v", session.GameID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "AI execution timeout"})
		return
	}

	if session.State.Phase == engine.PhaseEnded {
		s.finishArchive(session.GameID, session.State)
	}

	session.UpdatedAt = time.Now()
	if err := s.store.Save(c.Request.Context(), session); err != nil {
		logx.Error("保存对局失败: game=%s err=%v", session.GameID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, s.manager.StateView(session.State, req.PlayerID))
}

// dispatchAction 人类动作分发。响应类动作（碰/杠/胡/过）依赖会话里
// 记录的最近出牌者定位点炮方。
func (s *Server) dispatchAction(session *store.Session, playerID, action string, tiles []engine.Tile) (*engine.GameState, error) {
	st := session.State
	actions := s.manager.Actions()

	switch action {
	case "bury":
		if len(tiles) != 3 {
			return nil, &engine.InvalidActionError{Msg: "Bury requires exactly 3 tiles"}
		}
		return actions.BuryCards(st, playerID, tiles)

	case "draw":
		// 调试接口，正常流程中摸牌由出牌响应自动触发
		return actions.DrawTile(st, playerID)

	case "discard":
		if len(tiles) != 1 {
			return nil, &engine.InvalidActionError{Msg: "Discard requires exactly 1 tile"}
		}
		next, err := actions.DiscardTile(st, playerID, tiles[0], false)
		if err != nil {
			return nil, err
		}
		session.LastDiscarder = playerID
		return next, nil

	case "peng", "gang", "hu":
		if len(tiles) == 0 {
			return nil, &engine.InvalidActionError{Msg: action + " requires specifying tile"}
		}
		// 自己回合的胡是自摸, 不走响应通道
		if action == "hu" && st.Phase == engine.PhasePlaying &&
			st.Players[st.CurrentPlayerIndex].ID == playerID {
			return actions.DeclareAction(st, playerID, engine.ActionHu, tiles[0], "")
		}
		at := engine.ActionPong
		switch action {
		case "gang":
			at = engine.ActionKongExposed
		case "hu":
			at = engine.ActionHu
		}
		resp := engine.PlayerResponse{
			PlayerID:   playerID,
			Action:     at,
			TargetTile: tiles[0],
			Priority:   at.Priority(),
		}
		return actions.ProcessResponses(st, []engine.PlayerResponse{resp}, session.LastDiscarder)

	case "skip":
		// 人类过牌，别家仍可能碰杠胡同一张
		if len(st.DiscardPile) == 0 {
			return nil, &engine.InvalidActionError{Msg: "No tile to skip"}
		}
		last := st.DiscardPile[len(st.DiscardPile)-1]
		discarderSeat := st.SeatOf(session.LastDiscarder)
		if discarderSeat < 0 {
			return nil, &engine.InvalidActionError{Msg: "no discard to respond to"}
		}
		responses := []engine.PlayerResponse{{
			PlayerID: playerID, Action: engine.ActionPass, TargetTile: last.Tile,
		}}
		responses = append(responses, s.collectBotResponses(st, last.Tile, discarderSeat, playerID)...)
		return actions.ProcessResponses(st, responses, session.LastDiscarder)

	case "angang":
		if len(tiles) == 0 {
			return nil, &engine.InvalidActionError{Msg: "Angang requires specifying tile"}
		}
		return actions.DeclareAction(st, playerID, engine.ActionKongConcealed, tiles[0], "")

	case "bugang":
		if len(tiles) == 0 {
			return nil, &engine.InvalidActionError{Msg: "Bugang requires specifying tile"}
		}
		return actions.DeclareAction(st, playerID, engine.ActionKongUpgrade, tiles[0], "")

	default:
		return nil, &engine.InvalidActionError{Msg: "Unknown action: " + action}
	}
}
