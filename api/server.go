// Package api 是引擎的 HTTP 适配层：建局、查询视角状态、提交动作。
// 人类玩家提交动作后自动执行电脑玩家回合，直到轮回人类或对局结束。
package api

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"xuezhan/ai"
	"xuezhan/engine"
	"xuezhan/record"
	"xuezhan/store"
)

// Server 聚合引擎、会话仓库、AI 决策器与牌谱归档
type Server struct {
	manager *engine.Manager
	store   store.GameStore
	bot     *ai.Bot
	checker *engine.WinChecker
	mongo   *record.MongoManager
	aiLimit time.Duration

	mu       sync.Mutex
	archives map[string]*record.Archiver
}

func NewServer(manager *engine.Manager, gs store.GameStore, mongo *record.MongoManager, aiTimeout time.Duration) *Server {
	if aiTimeout <= 0 {
		aiTimeout = 5 * time.Second
	}
	checker := engine.NewWinChecker()
	return &Server{
		manager:  manager,
		store:    gs,
		bot:      ai.NewBot(checker),
		checker:  checker,
		mongo:    mongo,
		aiLimit:  aiTimeout,
		archives: make(map[string]*record.Archiver),
	}
}

// Routes 注册所有路由
func (s *Server) Routes(r *gin.Engine) {
	r.GET("/ping", s.ping)
	r.GET("/health", s.health)

	games := r.Group("/games")
	{
		games.POST("", s.createGame)
		games.GET("/:id", s.getGameState)
		games.POST("/:id/action", s.submitAction)
	}
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "pong",
		"timestamp": time.Now().Unix(),
		"service":   "xuezhan",
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"healthy":   true,
		"timestamp": time.Now().Unix(),
	})
}

// archiverFor 取或建某局的牌谱收集器
func (s *Server) archiverFor(gameID string) *record.Archiver {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.archives[gameID]
	if !ok {
		a = record.NewArchiver(s.mongo.Records(), gameID)
		s.archives[gameID] = a
	}
	return a
}

// finishArchive 终局时落盘牌谱并释放收集器
func (s *Server) finishArchive(gameID string, st *engine.GameState) {
	s.mu.Lock()
	a, ok := s.archives[gameID]
	delete(s.archives, gameID)
	s.mu.Unlock()
	if ok {
		a.Finalize(st)
	}
}

// respondError 引擎错误到 HTTP 状态码的映射
func respondError(c *gin.Context, err error) {
	var actionErr *engine.InvalidActionError
	var stateErr *engine.InvalidGameStateError
	switch {
	case errors.As(err, &actionErr):
		c.JSON(http.StatusBadRequest, gin.H{"detail": friendlyActionError(actionErr.Msg)})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{"detail": stateErr.Msg})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Game not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}
