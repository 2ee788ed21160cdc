package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pacnav/config"
	"pacnav/game"
	"pacnav/server"
)

// pacnav 入口：加载关卡配置，启动 HTTP + WebSocket 服务，并初始化房间管理器
func main() {
	var cfgPath, addr string
	flag.StringVar(&cfgPath, "config", "config.yaml", "path to YAML config with rules and level layout")
	flag.StringVar(&addr, "addr", "", "server listen address, overrides server.addr, e.g. :8080")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	// 使用 zap 日志写入滚动文件
	if err := server.InitLogger(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer server.SyncLogger()

	// 先构建一次世界，非法关卡在启动时即失败
	if _, err := cfg.BuildWorld(nil); err != nil {
		server.Log.Fatalw("invalid level", "config", cfgPath, "err", err)
	}

	rm := server.InitRoomManager(func() (*game.World, error) {
		return cfg.BuildWorld(server.Log.Named("world"))
	}, cfg.Server.TickRate)
	defer rm.Close()

	server.DefaultRoomID = cfg.Server.DefaultRoom
	// 预创建默认房间，便于快速试跑
	if _, err := rm.GetOrCreateRoom(cfg.Server.DefaultRoom); err != nil {
		server.Log.Fatalw("create default room", "err", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.HandleWS)
	mux.Handle("/", http.FileServer(http.Dir(cfg.Server.StaticDir)))
	// 管理与监控接口
	mux.HandleFunc("/admin/config", server.HandleAdminConfig)
	mux.HandleFunc("/metrics", server.HandleMetrics)
	mux.HandleFunc("/state", server.HandleState)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	go func() {
		server.Log.Infof("pacnav listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Warnw("shutdown", "err", err)
	}
}
