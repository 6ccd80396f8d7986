package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"petsoft/internal/adapters/storage/postgres"
	"petsoft/internal/platform/config"
	"petsoft/internal/platform/logger"
	"petsoft/internal/platform/session"
	"petsoft/internal/platform/viewcache"
	"petsoft/internal/router"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    "petsoft",
	})

	// Sesiones + view cache: redis si está configurado, memoria si no.
	var (
		sessionStore session.Store
		views        viewcache.Cache
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Error("redis unreachable", map[string]any{"addr": cfg.RedisAddr, "error": err.Error()})
			os.Exit(1)
		}
		cancel()
		defer rdb.Close()

		sessionStore = session.NewRedisStore(rdb)
		views = viewcache.NewRedis(rdb)
		log.Info("using redis", map[string]any{"addr": cfg.RedisAddr})
	} else {
		sessionStore = session.NewMemoryStore()
		views = viewcache.NewMemory()
		log.Warn("redis not configured, sessions and views are in-memory", nil)
	}
	sessions := session.NewManager(sessionStore, "petsoft_session", cfg.SessionTTL, cfg.IsProduction())

	// Storage: postgres si hay DSN, memoria si no (dev/handoff).
	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = postgres.Open(cfg.DBDSN)
		if err != nil {
			log.Error("postgres unreachable", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer db.Close()
		log.Info("using postgres", nil)
	} else {
		log.Warn("DB_DSN not set, using in-memory repos", nil)
	}

	h := router.NewRouter(router.Options{
		Log:           log,
		Sessions:      sessions,
		Views:         views,
		DB:            db,
		WebhookSecret: cfg.StripeWebhookSecret,
		ActionDelay:   cfg.ActionDelay,
		Production:    cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      h,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	log.Info("starting server", map[string]any{"addr": cfg.AppAddr, "env": cfg.AppEnv})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
