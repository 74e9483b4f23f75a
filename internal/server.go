package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/justuscbyok/fitnesstracker/internal/auth"
	"github.com/justuscbyok/fitnesstracker/internal/config"
	"github.com/justuscbyok/fitnesstracker/internal/fitness"
	"github.com/justuscbyok/fitnesstracker/internal/fitness/exercises"
	"github.com/justuscbyok/fitnesstracker/internal/fitness/plans"
	"github.com/justuscbyok/fitnesstracker/internal/fitness/progress"
	"github.com/justuscbyok/fitnesstracker/internal/fitness/users"
	"github.com/justuscbyok/fitnesstracker/internal/fitness/workouts"
	"github.com/justuscbyok/fitnesstracker/internal/middleware"
	"github.com/justuscbyok/fitnesstracker/internal/misc"
	"github.com/justuscbyok/fitnesstracker/internal/telemetry/metrics"
	"github.com/justuscbyok/fitnesstracker/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

const (
	// session tokens and rate limit counters are tiny, these sizes are
	// mostly headroom
	sessionsCacheSize  = 10 * 1024 * 1024
	rateLimitCacheSize = 2 * 1024 * 1024
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	store  *fitness.Store

	authService  *auth.Service
	loginChecker *auth.LoginChecker
	rateLimiter  *middleware.RateLimiter

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config      *config.Config
	VersionInfo string
}

func NewServer(params NewServerParams) (*Server, error) {
	promRegistry := metrics.NewRegistry()
	metricsManager := metrics.NewManager("fitnesstracker", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // will be set to 1 when all is set and ran

	// sessions expire through the cache TTL, there is no cleanup loop
	sessionsCache := freecache.NewCache(sessionsCacheSize)
	sessionTTL := time.Duration(params.Config.SessionTTLMinutes) * time.Minute
	authService := auth.NewAuthService(sessionTTL, sessionsCache)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.Config.HoneycombEnabled, "fitness-tracker")
	if err != nil {
		return nil, err
	}

	store := fitness.NewStore()
	if params.Config.LoadSampleData {
		store = fitness.NewStoreWithSampleData()
		log.Debugln("store seeded with sample data")
	}

	return &Server{
		config:      params.Config,
		versionInfo: params.VersionInfo,
		store:       store,

		authService:  authService,
		loginChecker: auth.NewLoginChecker(sessionsCache),
		rateLimiter:  middleware.NewRateLimiter(freecache.NewCache(rateLimitCacheSize)),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	miscHandler := misc.NewHandler(s.versionInfo)
	miscHandler.SetupRoutes(r)

	usersHandler := users.NewHandler(s.store, s.authService, s.metricsManager)
	usersHandler.SetupRoutes(r, s.rateLimiter, s.config.LoginRateLimitPerMin)

	exercisesHandler := exercises.NewHandler(s.store)
	exercisesHandler.SetupRoutes(r)

	workoutsHandler := workouts.NewHandler(s.store, s.metricsManager)
	workoutsHandler.SetupRoutes(r)

	plansHandler := plans.NewHandler(s.store)
	plansHandler.SetupRoutes(r)

	progressHandler := progress.NewHandler(s.store, s.metricsManager)
	progressHandler.SetupRoutes(r)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker, s.store)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.ProcessTime())
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(host, strconv.Itoa(s.config.PrometheusPort))
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
