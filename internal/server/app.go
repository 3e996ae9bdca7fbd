package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tari-sdk/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Config struct {
	HttpPort        string
	ShutdownTimeout time.Duration
}

// BackgroundTask 与 HTTP 服务同生命周期的后台任务 (例如 Relay)
type BackgroundTask func(ctx context.Context)

type App struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	tasks           []BackgroundTask
}

func New(cfg Config, httpHandler *gin.Engine, tasks ...BackgroundTask) *App {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return &App{
		httpServer: &http.Server{
			Addr:              ":" + cfg.HttpPort,
			Handler:           httpHandler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		tasks:           tasks,
	}
}

// Run 启动服务并阻塞，直到收到关闭信号
func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Serve(ctx); err != nil {
		logger.Fatal("HTTP Server failure", zap.Error(err))
	}
}

// Serve 运行到 ctx 结束后优雅退出
func (a *App) Serve(ctx context.Context) error {
	taskCtx, cancelTasks := context.WithCancel(ctx)
	defer cancelTasks()

	// 1. Start background tasks
	done := make(chan struct{}, len(a.tasks))
	for _, task := range a.tasks {
		go func(task BackgroundTask) {
			defer func() { done <- struct{}{} }()
			task(taskCtx)
		}(task)
	}

	// 2. Start HTTP
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP Server", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 3. Wait
	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err := <-errCh:
		return err
	}

	// 4. Graceful Shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}
	cancelTasks()
	for range a.tasks {
		select {
		case <-done:
		case <-shutdownCtx.Done():
			logger.Warn("background tasks did not stop in time")
			return nil
		}
	}
	logger.Info("Server exited properly")
	return nil
}
