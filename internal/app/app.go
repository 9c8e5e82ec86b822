package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pagemark/pagemark/internal/browser"
	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/dispatch"
	"github.com/pagemark/pagemark/internal/httpserver"
	"github.com/pagemark/pagemark/internal/httpserver/deps"
	"github.com/pagemark/pagemark/internal/locator"
	"github.com/pagemark/pagemark/internal/logger"
	"github.com/pagemark/pagemark/internal/redis"
	"github.com/pagemark/pagemark/internal/scheduler"
	"github.com/pagemark/pagemark/internal/sources/patterns"
	"github.com/pagemark/pagemark/internal/store"
	redisstore "github.com/pagemark/pagemark/internal/store/redis"
	"github.com/pagemark/pagemark/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	bridge      *browser.Bridge
	sweeper     *scheduler.TabSweeper
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	kv := redisstore.NewKV(redisClient)
	bookmarks := store.NewBookmarks(kv, loggerClient)

	// Viewer fingerprints: built-ins plus the optional patterns file.
	viewerPatterns, err := patterns.LoadPatterns(cfg.PatternsFile)
	if err != nil {
		loggerClient.Errorf("Failed to load viewer patterns: %v", err)
		os.Exit(1)
	}

	// The browser link is optional: without it the save/get/delete actions
	// still work, only capture/restore report "No browser attached".
	var (
		bridge  *browser.Bridge
		sweeper *scheduler.TabSweeper
		opener  dispatch.PageOpener
		ping    deps.Pinger
	)
	bridge, err = browser.New(browser.Options{
		CDPURL:     cfg.CDPURL,
		Headless:   cfg.Headless,
		ProfileDir: cfg.ProfileDir,
		Patterns:   viewerPatterns,
	}, loggerClient)
	if err != nil {
		loggerClient.Warnf("Browser unavailable, position actions disabled: %v", err)
		bridge = nil
	} else {
		opener = bridge
		ping = bridge
		sweeper = scheduler.NewTabSweeper(bridge, loggerClient, cfg.SweepInterval)
	}

	engine := locator.NewEngine(loggerClient, locator.Options{
		SettleDelay:  cfg.SettleDelay,
		SmoothScroll: cfg.SmoothScroll,
	})

	dispatcher := dispatch.New(bookmarks, engine, opener, cfg.ActionTimeout, loggerClient)

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		Dispatcher:     dispatcher,
		Store:          bookmarks,
		StorePing:      kv,
		BrowserPing:    ping,
		AuthToken:      cfg.AuthToken,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		TrustProxy:     cfg.TrustProxy,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		bridge:      bridge,
		sweeper:     sweeper,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Pagemark v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Pagemark %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.sweeper != nil {
		if err := a.sweeper.Start(ctx); err != nil {
			return fmt.Errorf("failed to start tab sweeper: %w", err)
		}
		a.logger.Info("tab sweeper started",
			logger.Duration("interval", a.cfg.SweepInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.sweeper != nil {
		a.sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.bridge != nil {
		a.bridge.Close()
		a.logger.Info("✅ Browser link closed")
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Pagemark stopped cleanly")
	return nil
}
