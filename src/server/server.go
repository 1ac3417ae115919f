package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"astrografia/src/analysis"
	"astrografia/src/auth"
	"astrografia/src/interfaces"
	"astrografia/src/logger"
	"astrografia/src/models"
	"astrografia/src/narrative"
	"astrografia/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const shutdownTimeout = 5 * time.Second

// Dependencies are the services the HTTP handlers call into.
type Dependencies struct {
	Facade      *analysis.AnalysisFacade
	Database    interfaces.IDatabase
	Tokens      *auth.TokenManager
	Interpreter *narrative.Interpreter
	Geocoder    interfaces.IGeocoder
}

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	deps   Dependencies
	engine *gin.Engine
	http   *http.Server

	// sky feed subscribers, owned by the hub goroutine
	clients     map[*subscriber]struct{}
	connections atomic.Int64
	broadcast   chan *models.MSkySnapshot
	register    chan *subscriber
	unregister  chan *subscriber
	direct      chan directMessage
	done        chan struct{}
	stopOnce    sync.Once
	hubOnce     sync.Once

	// Local cache
	latestState *models.MSkySnapshot
	history     *utils.RingBuffer[*models.MSkySnapshot]
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, deps Dependencies, log *logger.Logger) *APIServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:  cfg,
		Logger:  log,
		deps:    deps,
		engine:  gin.New(),
		clients: make(map[*subscriber]struct{}),
		// Buffered so a burst of snapshots never blocks the producer
		broadcast:  make(chan *models.MSkySnapshot, 256),
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		direct:     make(chan directMessage, 64),
		done:       make(chan struct{}),
		history:    utils.NewRingBuffer[*models.MSkySnapshot](cfg.Sky.HistorySize),
	}

	s.engine.Use(gin.Recovery(), s.requestID(), s.cors())
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

// requestID tags every request and logs it once completed.
func (s *APIServer) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)

		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s %d %v request_id=%s", c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start), id)
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) cors() gin.HandlerFunc {
	allowed := make(map[string]bool, len(s.Config.CORSOrigins))
	for _, o := range s.Config.CORSOrigins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	api := s.engine.Group("/api")

	api.GET("/health", s.getHealth)

	api.GET("/astro/positions", s.getPositions)
	api.POST("/astro/positions", s.postPositions)
	api.POST("/interpret/chart", s.interpretChart)
	api.GET("/geo/coordinates", s.getCoordinates)

	api.GET("/sky/current", s.getSkyCurrent)
	api.GET("/sky/history", s.getSkyHistory)

	if s.deps.Tokens != nil && s.deps.Database != nil {
		access := auth.Middleware(s.deps.Tokens, auth.Access)
		refresh := auth.Middleware(s.deps.Tokens, auth.Refresh)

		authGroup := api.Group("/auth")
		authGroup.POST("/register", s.registerUser)
		authGroup.POST("/login", s.loginUser)
		authGroup.POST("/refresh", refresh, s.refresh)
		authGroup.GET("/protected", access, s.protected)

		api.GET("/perspectives", access, s.listPerspectives)
		api.POST("/perspectives", access, s.createPerspective)
		api.GET("/interpret/perspective/:id", access, s.interpretPerspective)
	}

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Handler exposes the router, mainly for tests.
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------

// RunHub starts the websocket hub loop once.
func (s *APIServer) RunHub() {
	s.hubOnce.Do(func() {
		go s.handleWebsockets()
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	s.Logger.Info("Starting server on %s", s.http.Addr)
	s.RunHub()

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = s.http.Shutdown(ctx)
	})
	return err
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	var timestamp int64
	if s.latestState != nil {
		timestamp = s.latestState.Timestamp
	}
	s.stateMutex.RUnlock()

	database := "disabled"
	if s.deps.Database != nil {
		database = "ok"
		if err := s.deps.Database.Ping(c.Request.Context()); err != nil {
			s.Logger.Warning("database ping failed: %v", err)
			database = "unavailable"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   s.connections.Load(),
		"latest_update": timestamp,
		"database":      database,
	})
}
