package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"xuezhan/api"
	"xuezhan/config"
	"xuezhan/engine"
	"xuezhan/logx"
	"xuezhan/record"
	"xuezhan/store"
)

// newGameStore 按配置选择会话存储
func newGameStore(conf *config.Config) store.GameStore {
	ttl := time.Duration(conf.GameConf.SessionTTLHours) * time.Hour
	switch conf.GameConf.Store {
	case "redis":
		rs, err := store.NewRedisStore(conf.DatabaseConf.RedisConf, ttl)
		if err != nil {
			logx.Fatal("redis 会话存储初始化失败: %v", err)
		}
		return rs
	default:
		return store.NewMemoryStore(ttl, 10*time.Minute)
	}
}

func Run(ctx context.Context) error {
	conf := config.Conf

	gameStore := newGameStore(conf)
	defer gameStore.Close()

	mongo := record.NewMongo(conf.DatabaseConf.MongoConf)
	defer mongo.Close()

	manager := engine.NewManager(conf.GameConf.Score)
	aiTimeout := time.Duration(conf.GameConf.AITurnTimeoutMS) * time.Millisecond
	apiServer := api.NewServer(manager, gameStore, mongo, aiTimeout)

	if conf.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	apiServer.Routes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", conf.HttpPort),
		Handler: router,
	}

	go func() {
		logx.Info("启动 HTTP 服务器, 端口: %d", conf.HttpPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal("HTTP 服务器启动失败: %v", err)
		}
	}()

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logx.Error("HTTP 服务器关闭失败: %v", err)
		} else {
			logx.Info("HTTP 服务器已优雅关闭")
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)
	for {
		select {
		case <-ctx.Done():
			stop()
			return nil
		case s := <-c:
			switch s {
			case syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT:
				stop()
				logx.Info("中断信号，服务停止")
				return nil
			case syscall.SIGHUP:
				stop()
				logx.Info("挂起信号，服务停止")
				return nil
			default:
				return nil
			}
		}
	}
}
