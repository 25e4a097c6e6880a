package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"polygon-service/internal/http/middleware"
	"polygon-service/internal/service"
)

type RouterOptions struct {
	Environment string
	CORSOrigin  string
	RateLimiter *middleware.RateLimiter
	Log         zerolog.Logger
}

func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	switch opts.Environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(opts.CORSOrigin)))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(opts.Log))
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Middleware())
	}

	router.GET("/health-check", func(c *gin.Context) {
		c.JSON(http.StatusOK, service.Success[any]("Service is healthy", nil, http.StatusOK))
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, service.Failure[any]("Not Found", nil, http.StatusNotFound))
	})

	handler.Register(router)

	return router
}

func corsConfig(origin string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if origin == "*" || origin == "" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = []string{origin}
	cfg.AllowCredentials = true
	return cfg
}
