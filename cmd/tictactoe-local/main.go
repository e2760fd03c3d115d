package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tictactoe/internal/config"
	"tictactoe/internal/engine"
	"tictactoe/internal/server/game"
	httpserver "tictactoe/internal/server/http"
	"tictactoe/internal/settings"
)

const (
	sweepInterval = 10 * time.Minute
	maxIdle       = 2 * time.Hour
)

func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default: // linux / bsd
		cmd = exec.Command("xdg-open", url)
	}

	_ = cmd.Start() // 无图形界面时打不开也无所谓
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// browserURL 把 ":2888" 这类只有端口的地址补成本机地址
func browserURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := newLogger(cfg.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	var store settings.Store = settings.NewMemoryStore()
	if cfg.SettingsPath != "" {
		store = settings.NewFileStore(cfg.SettingsPath)
	}

	games := game.NewManager()
	h := httpserver.NewHandler(httpserver.Options{
		Logger:         log,
		Engine:         engine.NewEngine(engine.WithCacheLimit(cfg.CacheLimit), engine.WithLogger(log.Named("engine"))),
		Games:          games,
		Settings:       store,
		AIPacing:       cfg.AIPacing,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpserver.NewRouter(h, cfg.WebDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		t := time.NewTicker(sweepInterval)
		defer t.Stop()
		for {
			select {
			case <-sigCtx.Done():
				return
			case <-t.C:
				if n := games.Sweep(maxIdle); n > 0 {
					log.Info("swept idle games", zap.Int("removed", n), zap.Int("left", games.Len()))
				}
			}
		}
	}()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	log.Info("listening",
		zap.String("addr", cfg.Addr),
		zap.String("web", cfg.WebDir),
		zap.String("settings", cfg.SettingsPath),
		zap.Int("cache_limit", cfg.CacheLimit),
	)

	if cfg.OpenBrowser {
		// 稍等一下，服务器还没起来时浏览器会打开失败页
		go func() {
			time.Sleep(100 * time.Millisecond)
			openBrowser(browserURL(cfg.Addr))
		}()
	}

	var runErr error
	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	case <-sigCtx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Warn("forced close failed", zap.Error(closeErr))
		}
	}
	if runErr != nil {
		log.Error("server stopped", zap.Error(runErr))
		log.Sync()
		os.Exit(1)
	}
}
