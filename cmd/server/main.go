package main

import (
	"context"
	"os"

	"github.com/userhubapp/userhub/internal/auth"
	"github.com/userhubapp/userhub/internal/handler"
	"github.com/userhubapp/userhub/internal/user"
	"github.com/userhubapp/userhub/migrations"
	"github.com/userhubapp/userhub/pkg/config"
	"github.com/userhubapp/userhub/pkg/cookie"
	"github.com/userhubapp/userhub/pkg/httpserver"
	"github.com/userhubapp/userhub/pkg/logger"
	"github.com/userhubapp/userhub/pkg/pg"
	"github.com/userhubapp/userhub/pkg/redis"
	"github.com/userhubapp/userhub/pkg/session"
)

type appConfig struct {
	Logger  logger.Config
	HTTP    httpserver.Config
	PG      pg.Config
	Redis   redis.Config
	Cookie  cookie.Config
	Session session.Config
	OAuth   auth.GoogleOAuthConfig
}

func main() {
	ctx := context.Background()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Logger, logger.WithService("userhub"))
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		log.ErrorContext(ctx, "failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, migrations.FS, log); err != nil {
		log.ErrorContext(ctx, "failed to run migrations", logger.Error(err))
		os.Exit(1)
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.ErrorContext(ctx, "failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}
	defer redisClient.Close()

	cookieMgr, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		log.ErrorContext(ctx, "failed to create cookie manager", logger.Error(err))
		os.Exit(1)
	}

	sessionMgr := session.NewFromConfig(cfg.Session,
		session.WithStore(session.NewRedisStore(redisClient)),
		session.WithCookieManager(cookieMgr),
	)

	userStore := user.NewStore(pool)
	authSvc := auth.NewService(userStore, auth.NewHasher(), auth.WithServiceLogger(log))

	handlerOpts := []handler.Option{handler.WithLogger(log)}
	if cfg.OAuth.Enabled() {
		handlerOpts = append(handlerOpts, handler.WithGoogleOAuth(
			auth.NewGoogleOAuthService(cfg.OAuth, auth.WithOAuthLogger(log)),
		))
	}

	h := handler.New(authSvc, userStore, sessionMgr, cookieMgr, handlerOpts...)

	router := h.Router()
	router.Get("/healthz", httpserver.HealthCheckHandler(ctx, log,
		func(ctx context.Context) error { return pool.Ping(ctx) },
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	))

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	if err := srv.Run(ctx, router); err != nil {
		log.ErrorContext(ctx, "server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}
