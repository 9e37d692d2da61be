package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/scsmash3r/fresh-seo/internal/manifest"
	"github.com/scsmash3r/fresh-seo/internal/models"
	"github.com/scsmash3r/fresh-seo/internal/storage"
	"github.com/scsmash3r/fresh-seo/internal/utils"
)

// Options configures the HTTP server.
type Options struct {
	Port      int
	BaseURL   string
	Manifest  *manifest.Manifest
	Overrides []models.Override // applied before stored overrides
	StaticDir string
	Ignore    []string // route names kept out of the sitemap; nil means sitemap.DefaultIgnore
	Store     storage.Store // optional; override endpoints answer 503 without it
	Logger    *utils.Logger
}

type Server struct {
	router *gin.Engine
	port   int
	server *http.Server
	logger *utils.Logger
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	apiLogger := logger.WithComponent("api")

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(apiLogger))

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	handler := NewHandler(opts, logger)

	router.GET("/sitemap.xml", handler.Sitemap)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		api.GET("/routes", handler.ListRoutes)
		api.POST("/sitemap/save", handler.SaveSitemap)

		overrides := api.Group("/overrides")
		{
			overrides.GET("", handler.ListOverrides)
			overrides.POST("", handler.CreateOverride)
			overrides.GET("/:id", handler.GetOverride)
			overrides.DELETE("/:id", handler.DeleteOverride)
		}
	}

	return &Server{
		router: router,
		port:   opts.Port,
		logger: apiLogger,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().Int("port", s.port).Msg("Starting API server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func requestLogger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
