package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/Reissam/ajuda-tech-hub/internal/config"
	"github.com/Reissam/ajuda-tech-hub/internal/database"
	"github.com/Reissam/ajuda-tech-hub/internal/handlers"
	"github.com/Reissam/ajuda-tech-hub/internal/identity"
	"github.com/Reissam/ajuda-tech-hub/internal/lifecycle"
	"github.com/Reissam/ajuda-tech-hub/internal/metrics"
	"github.com/Reissam/ajuda-tech-hub/internal/notify"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
	"github.com/Reissam/ajuda-tech-hub/internal/repository/memory"
	"github.com/Reissam/ajuda-tech-hub/internal/repository/postgres"
	"github.com/Reissam/ajuda-tech-hub/internal/router"
	"github.com/Reissam/ajuda-tech-hub/internal/service"
	"github.com/Reissam/ajuda-tech-hub/internal/session"
	"github.com/Reissam/ajuda-tech-hub/internal/tickets"
	"github.com/Reissam/ajuda-tech-hub/pkg/logger"
)

type repos struct {
	tickets  repository.TicketRepository
	profiles repository.ProfileRepository
	accounts repository.AccountRepository
	clients  repository.ClientRepository
}

func main() {
	// config + logger
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	l := logger.New(logger.Options{Env: cfg.Env, Level: cfg.LogLevel, Console: cfg.LogConsole})

	ctx := context.Background()
	checks := map[string]handlers.Pinger{}

	// storage
	var rs repos
	switch cfg.Storage {
	case config.StorageMemory:
		l.Warn().Msg("using in-memory storage; data is lost on restart")
		rs = repos{
			tickets:  memory.NewTicketRepo(),
			profiles: memory.NewProfileRepo(),
			accounts: memory.NewAccountRepo(),
			clients:  memory.NewClientRepo(),
		}
	default:
		pool, err := database.Open(ctx, cfg)
		if err != nil {
			l.Fatal().Err(err).Msg("db connect failed")
		}
		defer pool.Close()
		if cfg.AutoMigrate {
			if err := database.MigratePool(ctx, pool, "up"); err != nil {
				l.Fatal().Err(err).Msg("migrations failed")
			}
		}
		checks["db"] = pool
		rs = repos{
			tickets:  postgres.NewTicketRepo(pool),
			profiles: postgres.NewProfileRepo(pool),
			accounts: postgres.NewAccountRepo(pool),
			clients:  postgres.NewClientRepo(pool),
		}
	}

	// session registry
	var registry session.Registry = session.NewMemoryRegistry()
	if cfg.RedisURL != "" {
		rc, err := session.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			l.Fatal().Err(err).Msg("redis connect failed")
		}
		defer rc.Close()
		rr := session.NewRedisRegistry(rc)
		registry = rr
		checks["redis"] = rr
	} else {
		l.Info().Msg("REDIS_URL not set; sessions do not survive restarts")
	}

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	machine, err := lifecycle.ParsePolicy(cfg.Tickets.Transitions, cfg.Tickets.AllowClosed)
	if err != nil {
		l.Fatal().Err(err).Msg("ticket lifecycle")
	}

	notifier := notify.NewLogNotifier(l)
	resolver := identity.NewResolver(rs.profiles, notifier, m, l)
	sessions := session.NewManager(session.Config{
		Registry: registry,
		Profiles: resolver,
		Tickets:  rs.tickets,
		Clients:  rs.clients,
		TicketOptions: tickets.Options{
			Machine:                   machine,
			Users:                     resolver,
			RefetchAfterWrite:         cfg.Tickets.RefetchAfterWrite,
			RequireTechnicianAssignee: cfg.Tickets.RequireTechnicianAssignee,
		},
		Notifier: notifier,
		Metrics:  m,
		Log:      l,
		TTL:      cfg.SessionTTL,
	})
	unsubscribe := sessions.Subscribe(logSessions(l))
	defer unsubscribe()

	auth := service.NewAuthService(rs.accounts, rs.profiles, resolver, sessions, cfg.SessionSecret, notifier, l)

	// http
	r := router.New(router.Deps{
		Log:      l,
		Config:   cfg,
		Metrics:  m,
		Gatherer: reg,
		Auth:     auth,
		Sessions: sessions,
		Profiles: rs.profiles,
		Checks:   checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().
			Str("addr", srv.Addr).
			Str("storage", cfg.Storage).
			Bool("guarded_transitions", machine.Guarded()).
			Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	go sessions.RunJanitor(janitorCtx, cfg.SessionSweep)

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	stopJanitor()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	l.Info().Msg("shutdown complete")
}

func logSessions(l zerolog.Logger) session.Listener {
	return func(ev session.Event, ws *session.Workspace) {
		e := l.Info().Str("event", string(ev))
		if ws != nil {
			e = e.Str("user_id", ws.User.ID).Str("role", ws.User.Role.String())
		}
		e.Msg("session")
	}
}
