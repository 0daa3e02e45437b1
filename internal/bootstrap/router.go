package bootstrap

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/vinnesia/domainform-backend/config"
	httpapi "github.com/vinnesia/domainform-backend/internal/api/http"
	reqmw "github.com/vinnesia/domainform-backend/internal/api/http/middleware"
	"github.com/vinnesia/domainform-backend/internal/api/http/routes"
	authhttp "github.com/vinnesia/domainform-backend/internal/auth/http"
	authmw "github.com/vinnesia/domainform-backend/internal/auth/middleware"
	authrepo "github.com/vinnesia/domainform-backend/internal/auth/repository"
	authsvc "github.com/vinnesia/domainform-backend/internal/auth/service"
	"github.com/vinnesia/domainform-backend/internal/auth/session"
	"github.com/vinnesia/domainform-backend/internal/relay"
	"github.com/vinnesia/domainform-backend/internal/submissions/cache"
	"github.com/vinnesia/domainform-backend/internal/submissions/dashboard"
	subhttp "github.com/vinnesia/domainform-backend/internal/submissions/http"
	"github.com/vinnesia/domainform-backend/internal/submissions/repository"
	"github.com/vinnesia/domainform-backend/internal/submissions/service"
)

// Pool is the pgx surface the router needs. *pgxpool.Pool satisfies it.
type Pool interface {
	repository.Querier
	Ping(ctx context.Context) error
}

// AuthClient verifies ID tokens and revokes sessions. *auth.Client satisfies it.
type AuthClient interface {
	authmw.TokenVerifier
	authhttp.TokenRevoker
}

type RouterDeps struct {
	ServiceName string
	Config      *config.Config
	Pool        Pool
	SQL         *sql.DB
	Redis       *redis.Client
	Auth        AuthClient
	Scheduler   *dashboard.Scheduler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	cfg := dep.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqmw.RequestIDMiddleware())
	r.Use(relay.CORS())

	forwarder := relay.NewForwarder(cfg.Relay)

	health := httpapi.HealthDeps{Redis: dep.Redis, Relay: forwarder}
	if dep.Pool != nil {
		health.DB = dep.Pool
	}
	httpapi.NewHealthHandler(dep.ServiceName, cfg.App.Version, health).RegisterRoutes(r)

	relay.NewHandler(forwarder, cfg.App.IsProduction()).Register(r)

	var notifier service.Notifier = relay.NewLocalNotifier(forwarder)
	if cfg.Relay.EndpointURL != "" {
		notifier = relay.NewClient(cfg.Relay.EndpointURL, cfg.Relay.Timeout)
	}

	var listCache service.ListingCache
	var broker session.Broker = session.NewLocalBroker()
	if dep.Redis != nil {
		listCache = cache.NewListCache(dep.Redis, cfg.Dashboard.RefreshInterval)
		broker = session.NewRedisBroker(dep.Redis)
	}

	submissions := service.NewSubmissionService(repository.NewSubmissionRepository(dep.Pool), listCache, notifier)
	views := dashboard.NewService(submissions, cfg.Dashboard.MatchEmail, time.UTC)

	subHandler := subhttp.New(submissions, views, dep.Scheduler, broker, subhttp.Options{
		MatchEmail: cfg.Dashboard.MatchEmail,
		Production: cfg.App.IsProduction(),
	})
	applicants := authsvc.NewApplicantService(authrepo.NewApplicantRepository(dep.SQL))
	authHandler := authhttp.New(applicants, dep.Auth, broker)

	routes.RegisterV1(r, routes.V1Deps{
		Verifier:    dep.Auth,
		Submissions: subHandler,
		Auth:        authHandler,
	})

	return r
}
