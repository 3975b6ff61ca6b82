package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kode4food/courier/internal/autonav"
	"github.com/kode4food/courier/internal/event"
	"github.com/kode4food/courier/internal/flow"
	"github.com/kode4food/courier/internal/registry"
	"github.com/kode4food/courier/internal/screens"
	"github.com/kode4food/courier/pkg/api"
)

type (
	// Server implements the inspector HTTP API for one session's flow
	Server struct {
		store    *flow.Store
		engine   *autonav.Engine
		screens  *registry.Registry[screens.Screen]
		gatherer prometheus.Gatherer
		name     string
		version  string
	}

	// Dependencies contains everything the inspector reads from or drives
	Dependencies struct {
		Store    *flow.Store
		Engine   *autonav.Engine
		Screens  *registry.Registry[screens.Screen]
		Gatherer prometheus.Gatherer
		Name     string
		Version  string
	}
)

var (
	ErrInvalidJSON = errors.New("invalid JSON request")
	ErrNoStore     = errors.New("flow store is required")
	ErrNoEngine    = errors.New("auto-navigation engine is required")
	ErrNoScreens   = errors.New("screen registry is required")
)

// NewServer creates a new inspector server
func NewServer(deps Dependencies) (*Server, error) {
	switch {
	case deps.Store == nil:
		return nil, ErrNoStore
	case deps.Engine == nil:
		return nil, ErrNoEngine
	case deps.Screens == nil:
		return nil, ErrNoScreens
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		store:    deps.Store,
		engine:   deps.Engine,
		screens:  deps.Screens,
		gatherer: gatherer,
		name:     deps.Name,
		version:  deps.Version,
	}, nil
}

// SetupRoutes configures and returns the HTTP router with all endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(
		promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}),
	))

	fl := router.Group("/flow")
	{
		fl.GET("", s.getFlow)
		fl.POST("/start", s.startFlow)
		fl.POST("/service", s.startService)
		fl.POST("/next", s.nextStep)
		fl.POST("/back", s.prevStep)
		fl.POST("/goto", s.goTo)
		fl.POST("/stop", s.stopFlow)
		fl.POST("/reset", s.resetFlow)
		fl.POST("/job", s.assignJob)
		fl.PUT("/origin", s.setOrigin)
		fl.PUT("/destination", s.setDestination)
		fl.PUT("/phone", s.setPhone)
		fl.PUT("/ride-type", s.setRideType)
	}

	router.POST("/events", s.postEvent)

	st := router.Group("/steps")
	{
		st.GET("", s.listSteps)
		st.GET("/coverage", s.stepCoverage)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Status:  "healthy",
		Service: s.name,
		Version: s.version,
		Session: s.store.Session().ID(),
	})
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	c.JSON(status, api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, flow.ErrNotActive),
		errors.Is(err, flow.ErrNoService):
		return http.StatusConflict
	case errors.Is(err, flow.ErrInvalidRole),
		errors.Is(err, flow.ErrInvalidService),
		errors.Is(err, flow.ErrForeignStep),
		errors.Is(err, api.ErrInvalidLocation),
		errors.Is(err, api.ErrInvalidJobID):
		return http.StatusBadRequest
	case errors.Is(err, event.ErrQueueClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
