package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chat "github.com/Muadeel56/localconnect-plus"
	"github.com/Muadeel56/localconnect-plus/config"
	"github.com/Muadeel56/localconnect-plus/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", "error", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	db, err := openDB(cfg, log)
	if err != nil {
		return err
	}
	rdb, err := openRedis(cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	opts := []chat.Option{
		chat.WithDB(db),
		chat.WithLogger(log),
		chat.WithJWTSecret(cfg.JWTSecret),
		chat.WithNodeID(cfg.NodeID),
		chat.WithAllowedOrigins(cfg.AllowedOrigins...),
		chat.WithServiceDebug(!cfg.IsProduction()),
	}
	if rdb != nil {
		opts = append(opts, chat.WithRDB(rdb))
	}
	engine, err := chat.NewEngine(opts...)
	if err != nil {
		return err
	}
	// sqlite 仅本地开发，没有账号服务，顺带建用户表
	if err := chat.Migrate(db, cfg.DBDriver == "sqlite"); err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(engine.HTTPMiddlewares()...)
	engine.RegisterRoutes(r)
	if !cfg.IsProduction() {
		chat.RegisterSwagger(r, "")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Start(gctx)
	})
	g.Go(func() error {
		log.Info("server started", "addr", srv.Addr, "db", cfg.DBDriver, "redis", rdb != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("server shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		engine.WsServer.Close()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
