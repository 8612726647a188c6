package main

import (
	"context"

	"github.com/cinematch/cinematch/internal/app"
	"github.com/cinematch/cinematch/internal/cache"
	"github.com/cinematch/cinematch/internal/catalog"
	"github.com/cinematch/cinematch/internal/config"
	"github.com/cinematch/cinematch/internal/db"
	"github.com/cinematch/cinematch/internal/logger"
	"github.com/cinematch/cinematch/internal/server"
	"github.com/cinematch/cinematch/internal/service/auth"
	"github.com/cinematch/cinematch/internal/service/friends"
	"github.com/cinematch/cinematch/internal/service/interests"
	"github.com/cinematch/cinematch/internal/service/match"
	"github.com/cinematch/cinematch/internal/service/movies"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// External movie catalog
	catalogClient := catalog.New(cfg)

	// Inject shared deps into app context
	appCtx := app.New(database, redisCache, log)

	// Token secret shared by login and the auth middleware
	server.InitAuth(cfg.Auth.JWTSecret)

	registrars := []server.Registrar{
		auth.NewRegistrar(appCtx, cfg.Auth.TokenTTL),
		friends.NewRegistrar(appCtx),
		interests.NewRegistrar(appCtx),
		movies.NewRegistrar(appCtx, catalogClient),
		match.NewRegistrar(appCtx, catalogClient),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedDemoData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, log, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
