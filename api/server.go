package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/call-notifier/internal/util"
	"github.com/katatrina/call-notifier/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisPinger is satisfied by *redis.Client.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type Server struct {
	router          *gin.Engine
	httpServer      *http.Server
	config          *util.Config
	redisClient     RedisPinger
	taskDistributor worker.TaskDistributor
	taskInspector   worker.TaskInspector
	tokenValidator  IDTokenValidator
}

// NewServer creates a new HTTP server and set up routing.
// tokenValidator may be nil when config.EventAudience is empty.
func NewServer(config *util.Config, redisClient RedisPinger, taskDistributor worker.TaskDistributor, taskInspector worker.TaskInspector, tokenValidator IDTokenValidator) *Server {
	server := &Server{
		config:          config,
		redisClient:     redisClient,
		taskDistributor: taskDistributor,
		taskInspector:   taskInspector,
		tokenValidator:  tokenValidator,
	}

	server.setupRouter()
	server.httpServer = &http.Server{
		Addr:    config.HTTPServerAddress,
		Handler: server.router,
	}
	return server
}

// setupRouter configures the HTTP server routes.
func (server *Server) setupRouter() *gin.Engine {
	if server.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	router.GET("/healthz", server.healthCheck)

	server.router = router

	// Everything under /v1 requires a google id token unless auth is explicitly disabled.
	v1 := router.Group("/v1")
	switch {
	case server.config.EventAudience != "":
		v1.Use(eventAuthMiddleware(server.tokenValidator, server.config.EventAudience, server.config.EventInvokerEmail))
	case server.config.EventAuthDisabled:
		log.Warn().Msg("authentication is disabled for /v1 routes")
	default:
		log.Warn().Msg("EVENT_AUDIENCE is not set, /v1 routes are not registered")
		return router
	}

	// Firestore document-created events for the calls collection
	v1.POST("/events/calls", server.handleCallCreatedEvent)
	v1.GET("/queues/:queue", server.getQueueStats)

	return router
}

// Start runs the HTTP server on the configured address until Shutdown is called.
func (server *Server) Start() error {
	log.Info().Str("address", server.httpServer.Addr).Msg("HTTP server started 🚀")

	err := server.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (server *Server) Shutdown(ctx context.Context) error {
	return server.httpServer.Shutdown(ctx)
}
