package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"xuezhan/engine"
	"xuezhan/record"
	"xuezhan/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server *Server
	router *gin.Engine
	store  *store.MemoryStore
}

func newTestEnv(seed int64) *testEnv {
	manager := engine.NewManagerWithSource(engine.DefaultScoreTable(), rand.NewSource(seed))
	ms := store.NewMemoryStore(time.Hour, 0)
	s := NewServer(manager, ms, nil, 5*time.Second)
	r := gin.New()
	s.Routes(r)
	return &testEnv{server: s, router: r, store: ms}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) session(t *testing.T, gameID string) *store.Session {
	t.Helper()
	session, err := e.store.Get(context.Background(), gameID)
	if err != nil {
		t.Fatalf("session %s: %v", gameID, err)
	}
	return session
}

// createGame 建局并返回 game_id
func (e *testEnv) createGame(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/games", map[string]any{})
	if w.Code != http.StatusOK {
		t.Fatalf("create game: status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		GameID string `json:"game_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.GameID == "" {
		t.Fatal("expected non-empty game_id")
	}
	return resp.GameID
}

func tileReqs(tiles ...engine.Tile) []map[string]any {
	reqs := make([]map[string]any, 0, len(tiles))
	for _, tl := range tiles {
		reqs = append(reqs, map[string]any{"suit": tl.Suit.String(), "rank": tl.Rank})
	}
	return reqs
}

// buryFromHand 从手牌里取某一花色的前三张
func buryFromHand(t *testing.T, hand []engine.Tile) []engine.Tile {
	t.Helper()
	var counts [engine.NumSuits]int
	for _, tl := range hand {
		counts[tl.Suit]++
	}
	for s := engine.Suit(0); s < engine.NumSuits; s++ {
		if counts[s] < 3 {
			continue
		}
		picked := make([]engine.Tile, 0, 3)
		for _, tl := range hand {
			if tl.Suit == s && len(picked) < 3 {
				picked = append(picked, tl)
			}
		}
		return picked
	}
	t.Fatal("no suit with 3 tiles in hand")
	return nil
}

func TestCreateGameDefaults(t *testing.T) {
	env := newTestEnv(1)
	gameID := env.createGame(t)

	session := env.session(t, gameID)
	if session.HumanPlayerID != DefaultHumanID {
		t.Fatalf("human player = %s, want %s", session.HumanPlayerID, DefaultHumanID)
	}
	if len(session.AIOrder) != 3 {
		t.Fatalf("ai order length = %d, want 3", len(session.AIOrder))
	}
	if session.State.Phase != engine.PhaseBurying {
		t.Fatalf("phase = %s, want BURYING", session.State.Phase)
	}
	if got := len(session.State.Players[0].Hand); got != 14 {
		t.Fatalf("dealer hand = %d, want 14", got)
	}
}

func TestGetGameStateFiltersHands(t *testing.T) {
	env := newTestEnv(2)
	gameID := env.createGame(t)

	w := env.do(t, http.MethodGet, "/games/"+gameID+"?player_id=human", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var view engine.GameView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	for _, pv := range view.Players {
		if pv.ID == "human" {
			if len(pv.Hand) != 14 {
				t.Fatalf("own hand = %d tiles, want 14", len(pv.Hand))
			}
		} else if len(pv.Hand) != 0 {
			t.Fatalf("opponent %s hand exposed (%d tiles)", pv.ID, len(pv.Hand))
		}
	}
}

func TestGetGameStateRequiresPlayerID(t *testing.T) {
	env := newTestEnv(3)
	gameID := env.createGame(t)

	w := env.do(t, http.MethodGet, "/games/"+gameID, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestGetGameStateNotFound(t *testing.T) {
	env := newTestEnv(4)
	w := env.do(t, http.MethodGet, "/games/no-such-game?player_id=human", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
}

func TestSubmitActionUnknown(t *testing.T) {
	env := newTestEnv(5)
	gameID := env.createGame(t)

	w := env.do(t, http.MethodPost, "/games/"+gameID+"/action", map[string]any{
		"player_id": "human",
		"action":    "fly",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400, body %s", w.Code, w.Body.String())
	}
}

func TestSubmitActionWrongPhase(t *testing.T) {
	env := newTestEnv(6)
	gameID := env.createGame(t)

	session := env.session(t, gameID)
	tile := session.State.Players[0].Hand[0]
	w := env.do(t, http.MethodPost, "/games/"+gameID+"/action", map[string]any{
		"player_id": "human",
		"action":    "discard",
		"tiles":     tileReqs(tile),
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409, body %s", w.Code, w.Body.String())
	}
}

func TestBuryTriggersAIBury(t *testing.T) {
	env := newTestEnv(7)
	gameID := env.createGame(t)

	session := env.session(t, gameID)
	bury := buryFromHand(t, session.State.Players[0].Hand)
	w := env.do(t, http.MethodPost, "/games/"+gameID+"/action", map[string]any{
		"player_id": "human",
		"action":    "bury",
		"tiles":     tileReqs(bury...),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	session = env.session(t, gameID)
	for _, p := range session.State.Players {
		if p.MissingSuit == nil {
			t.Fatalf("player %s has no missing suit after bury round", p.ID)
		}
	}
	if session.State.Phase != engine.PhasePlaying {
		t.Fatalf("phase = %s, want PLAYING", session.State.Phase)
	}
	// 人类是庄家，埋牌结束后应直接轮到人类出牌
	if got := session.State.Players[session.State.CurrentPlayerIndex].ID; got != "human" {
		t.Fatalf("current player = %s, want human", got)
	}
	if got := session.State.TotalTileCount(); got != engine.TotalTiles {
		t.Fatalf("tile count = %d, want %d", got, engine.TotalTiles)
	}

	// 四家定缺都应进牌谱
	buried := 0
	for _, ev := range env.server.archiverFor(gameID).Events() {
		if ev.Type == record.EventBury {
			buried++
		}
	}
	if buried != 4 {
		t.Fatalf("bury events = %d, want 4", buried)
	}
}

func TestDiscardRunsAITurns(t *testing.T) {
	env := newTestEnv(8)
	gameID := env.createGame(t)

	session := env.session(t, gameID)
	bury := buryFromHand(t, session.State.Players[0].Hand)
	w := env.do(t, http.MethodPost, "/games/"+gameID+"/action", map[string]any{
		"player_id": "human", "action": "bury", "tiles": tileReqs(bury...),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("bury: status %d, body %s", w.Code, w.Body.String())
	}

	session = env.session(t, gameID)
	human := session.State.Players[0]
	tile := human.Hand[0]
	for _, h := range human.Hand {
		if human.MissingSuit != nil && h.Suit == *human.MissingSuit {
			tile = h
			break
		}
	}
	w = env.do(t, http.MethodPost, "/games/"+gameID+"/action", map[string]any{
		"player_id": "human", "action": "discard", "tiles": tileReqs(tile),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("discard: status %d, body %s", w.Code, w.Body.String())
	}

	session = env.session(t, gameID)
	if session.LastDiscarder == "" {
		t.Fatal("expected last discarder to be recorded")
	}
	discards := 0
	for _, ev := range env.server.archiverFor(gameID).Events() {
		if ev.Type == record.EventDiscard {
			discards++
		}
	}
	if discards == 0 {
		t.Fatal("expected discard events in the archive")
	}
	if len(session.State.DiscardPile) == 0 && session.State.Phase == engine.PhasePlaying {
		t.Fatal("expected at least one discard after AI turns")
	}
	if got := session.State.TotalTileCount(); got != engine.TotalTiles {
		t.Fatalf("tile count = %d, want %d", got, engine.TotalTiles)
	}
	// AI 回合结束后要么轮到人类, 要么人类可响应, 要么对局已结束
	if session.State.Phase == engine.PhasePlaying {
		currentID := session.State.Players[session.State.CurrentPlayerIndex].ID
		if currentID != "human" && !env.server.humanCanRespond(session.State, "human") {
			t.Fatalf("ai loop stopped on %s without pending human response", currentID)
		}
	}
}

func TestDiscardMissingSuitRejected(t *testing.T) {
	env := newTestEnv(9)
	gameID := env.createGame(t)

	session := env.session(t, gameID)
	bury := buryFromHand(t, session.State.Players[0].Hand)
	w := env.do(t, http.MethodPost, "/games/"+gameID+"/action", map[string]any{
		"player_id": "human", "action": "bury", "tiles": tileReqs(bury...),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("bury: status %d", w.Code)
	}

	session = env.session(t, gameID)
	human := session.State.Players[0]
	if human.MissingSuitCount() == 0 {
		t.Skip("no missing-suit tiles left in hand for this seed")
	}
	var keep engine.Tile
	found := false
	for _, h := range human.Hand {
		if h.Suit != *human.MissingSuit {
			keep = h
			found = true
			break
		}
	}
	if !found {
		t.Skip("hand is all missing-suit tiles for this seed")
	}
	w = env.do(t, http.MethodPost, "/games/"+gameID+"/action", map[string]any{
		"player_id": "human", "action": "discard", "tiles": tileReqs(keep),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Detail != "必须优先打出缺门花色的牌" {
		t.Fatalf("detail = %q", resp.Detail)
	}
}

func TestFullGameToCompletion(t *testing.T) {
	env := newTestEnv(10)
	gameID := env.createGame(t)

	session := env.session(t, gameID)
	bury := buryFromHand(t, session.State.Players[0].Hand)
	w := env.do(t, http.MethodPost, "/games/"+gameID+"/action", map[string]any{
		"player_id": "human", "action": "bury", "tiles": tileReqs(bury...),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("bury: status %d, body %s", w.Code, w.Body.String())
	}

	// 人类一直按简单策略行牌直到对局结束
	for i := 0; i < 300; i++ {
		session = env.session(t, gameID)
		st := session.State
		if st.Phase == engine.PhaseEnded {
			break
		}
		human := st.PlayerByID("human")

		var body map[string]any
		if st.Players[st.CurrentPlayerIndex].ID == "human" {
			tile := chooseHumanDiscard(human)
			body = map[string]any{
				"player_id": "human", "action": "discard", "tiles": tileReqs(tile),
			}
		} else {
			// 不是人类回合却停了下来, 说明人类可响应, 一律选择过
			body = map[string]any{"player_id": "human", "action": "skip"}
		}
		w = env.do(t, http.MethodPost, "/games/"+gameID+"/action", body)
		if w.Code != http.StatusOK {
			t.Fatalf("step %d: status %d, body %s", i, w.Code, w.Body.String())
		}
	}

	session = env.session(t, gameID)
	if session.State.Phase != engine.PhaseEnded {
		t.Fatalf("game did not end, phase = %s", session.State.Phase)
	}
	if got := session.State.TotalScore(); got != 4*engine.DefaultScoreTable().InitialScore {
		t.Fatalf("total score = %d, want %d", got, 4*engine.DefaultScoreTable().InitialScore)
	}
	if got := session.State.TotalTileCount(); got != engine.TotalTiles {
		t.Fatalf("tile count = %d, want %d", got, engine.TotalTiles)
	}
}

// chooseHumanDiscard 缺门优先, 锁手打刚摸的牌
func chooseHumanDiscard(p *engine.Player) engine.Tile {
	if p.IsHu && p.LastDrawnTile != nil {
		return *p.LastDrawnTile
	}
	if p.MissingSuit != nil {
		for _, h := range p.Hand {
			if h.Suit == *p.MissingSuit {
				return h
			}
		}
	}
	return p.Hand[0]
}

func TestPingAndHealth(t *testing.T) {
	env := newTestEnv(11)
	for _, path := range []string{"/ping", "/health"} {
		w := env.do(t, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, w.Code)
		}
	}
}

func TestTilesFromRequestRejectsBadSuit(t *testing.T) {
	if _, err := tilesFromRequest([]tileRequest{{Suit: "FENG", Rank: 1}}); err == nil {
		t.Fatal("expected error for unknown suit")
	}
	tiles, err := tilesFromRequest([]tileRequest{{Suit: "WAN", Rank: 5}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := engine.Tile{Suit: engine.SuitWan, Rank: 5}
	if tiles[0] != want {
		t.Fatalf("tile = %v, want %v", tiles[0], want)
	}
}

func TestCreateGameCustomPlayers(t *testing.T) {
	env := newTestEnv(12)
	ids := []string{"p1", "p2", "p3", "p4"}
	w := env.do(t, http.MethodPost, "/games", map[string]any{"player_ids": ids})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		GameID string `json:"game_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	session := env.session(t, resp.GameID)
	// 列表里没有 human 时第一个玩家视作人类
	if session.HumanPlayerID != "p1" {
		t.Fatalf("human = %s, want p1", session.HumanPlayerID)
	}
	if fmt.Sprint(session.AIOrder) != fmt.Sprint([]string{"p2", "p3", "p4"}) {
		t.Fatalf("ai order = %v", session.AIOrder)
	}
}
