package router

import (
	"database/sql"
	"net/http"
	"time"

	mem "petsoft/internal/adapters/storage/memory"
	pg "petsoft/internal/adapters/storage/postgres"
	"petsoft/internal/domain/billing"
	"petsoft/internal/domain/pets"
	"petsoft/internal/domain/users"
	"petsoft/internal/middleware"
	"petsoft/internal/platform/logger"
	"petsoft/internal/platform/session"
	"petsoft/internal/platform/viewcache"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

type Options struct {
	Log logger.Logger

	// Sessions == nil => modo dev: header X-Debug-User-ID.
	Sessions *session.Manager

	// Views == nil => sin cache de vistas (se recomputa siempre).
	Views viewcache.Cache

	// DB == nil => repos in-memory.
	DB *sql.DB

	WebhookSecret string
	ActionDelay   time.Duration
	Production    bool
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecureHeaders(opts.Production))
	r.Use(middleware.AuthContext(opts.Sessions))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		userRepo users.Repository
		petRepo  pets.Repository
	)
	if opts.DB != nil {
		userRepo = pg.NewUsersRepo(opts.DB)
		petRepo = pg.NewPetsRepo(opts.DB)
	} else {
		userRepo = mem.NewUserRepo()
		petRepo = mem.NewPetRepo()
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo)
	petsSvc := pets.NewService(petRepo, opts.Views, log, opts.ActionDelay)

	// Endpoints que reciben credenciales o payloads externos van con rate limit
	r.Group(func(gr chi.Router) {
		gr.Use(httprate.Limit(20, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		users.RegisterRoutes(gr, usersSvc, opts.Sessions, log)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(httprate.Limit(120, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		billing.RegisterRoutes(gr, usersSvc, opts.WebhookSecret, log)
	})

	pets.RegisterRoutes(r, petsSvc)

	return r
}
