package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/auth"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/blog"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/comments"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/config"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/contact"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/db"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/middleware"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/render"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/telemetry/metrics"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/users"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	adminEmail        string

	config   *config.Config
	dbPool   *pgxpool.Pool
	renderer *render.Renderer
	mailer   contact.Mailer

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	usersRepo    *users.Repo
	postsRepo    *blog.Repo
	commentsRepo *comments.Repo

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
}

type NewServerParams struct {
	Config         *config.Config
	AdminEmail     string
	ContactEmail   string
	RedisPassword  string
	SMTPUsername   string
	SMTPPassword   string
	TracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if err := db.EnsureSchema(ctx, dbPool); err != nil {
		return nil, fmt.Errorf("ensure db schema: %w", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("blog", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewService(auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	renderer, err := render.New()
	if err != nil {
		return nil, fmt.Errorf("new renderer: %w", err)
	}

	return &Server{
		config:     params.Config,
		adminEmail: params.AdminEmail,
		dbPool:     dbPool,
		renderer:   renderer,
		mailer: contact.NewSMTPMailer(
			params.Config.SMTPHost,
			params.Config.SMTPPort,
			params.SMTPUsername,
			params.SMTPPassword,
			params.ContactEmail,
		),

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(auth.DefaultTTL, rdb),

		usersRepo:    users.NewRepo(dbPool),
		postsRepo:    blog.NewRepo(dbPool),
		commentsRepo: comments.NewRepo(dbPool),

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	adminOnly := middleware.AdminOnly(s.renderer)

	blogHandler := blog.NewHandler(
		s.postsRepo,
		s.commentsRepo,
		s.renderer,
		s.metricsManager,
	)
	blogHandler.SetupRoutes(r, adminOnly)

	contactHandler := contact.NewHandler(s.mailer, s.renderer, s.metricsManager)
	contactHandler.SetupRoutes(r)

	// credential routes sit on a rate limited subrouter so password
	// guessing does not get free rein
	usersHandler := users.NewHandler(
		s.usersRepo,
		s.authService,
		s.renderer,
		s.metricsManager,
		s.adminEmail,
		auth.DefaultTTL,
	)
	usersRouter := r.NewRoute().Subrouter()
	usersRouter.Use(middleware.RateLimit(
		redis_rate.NewLimiter(s.redisClient),
		"user-auth",
		s.config.AuthRateLimitAllowedPerMin,
		s.metricsManager,
	))
	usersHandler.SetupRoutes(usersRouter)

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker, s.usersRepo)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(authMiddleware.ResolvePrincipal())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(_ context.Context, host string, port int) {
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
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
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

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

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
