package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"pathmania/config"
	"pathmania/leaderboard"
	"pathmania/level"
	"pathmania/logger"
	"pathmania/server"
)

// Pathmania 入口：加载配置与关卡表，启动 HTTP + WebSocket 服务
func main() {
	var cfgPath, addr string
	flag.StringVar(&cfgPath, "config", "", "path to config.yaml (defaults only when empty)")
	flag.StringVar(&addr, "addr", "", "server listen address, overrides server.addr")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := logger.Init(cfg.Server.LogFile, cfg.Server.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()

	levels := level.Default()
	if cfg.LevelsFile != "" {
		if levels, err = level.Load(cfg.LevelsFile); err != nil {
			logger.Log.Fatalf("levels: %v", err)
		}
		w, err := level.Watch(cfg.LevelsFile, levels)
		if err != nil {
			logger.Log.Warnf("levels: hot reload disabled: %v", err)
		} else {
			defer w.Close()
		}
	}

	var board *leaderboard.Board
	if cfg.LeaderboardFile != "" {
		if board, err = leaderboard.Open(cfg.LeaderboardFile); err != nil {
			logger.Log.Fatalf("leaderboard: %v", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	mgr := server.NewSessionManager(cfg, levels, board)
	router := server.NewRouter(server.NewHandlers(mgr))
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}

	go func() {
		logger.Log.Infof("Pathmania listening on %s; connect ws://localhost%v/ws?player=you", cfg.Server.Addr, cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Warnf("shutdown: %v", err)
	}
	mgr.CloseAll()
}
