// Package server exposes the user-management REST API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gongmax/lexitrail/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type Server struct {
	Echo     *echo.Echo
	verifier auth.Verifier
}

type Options struct {
	Verifier       auth.Verifier
	AllowedOrigins []string
	// RateLimit is requests per second per client IP; zero disables limiting.
	RateLimit float64
	RateBurst int
}

func New(opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	e.Use(middleware.Recover())
	e.Use(requestID())
	e.Use(requestLogger())
	if len(opts.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: opts.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		}))
	}
	if opts.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig(opts.RateLimit, opts.RateBurst)))
	}

	s := &Server{Echo: e, verifier: opts.Verifier}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/healthz", s.handleHealth)

	users := s.Echo.Group("/users", s.authenticate)
	users.POST("", s.handleCreateUser)
	users.GET("", s.handleGetUsers)
	users.GET("/:email", s.handleGetUser)
	users.PUT("/:email", s.handleUpdateUser)
	users.DELETE("/:email", s.handleDeleteUser)
}

func (s *Server) Start(address string) error {
	return s.Echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "lexitrail",
		"time":    time.Now().Format(time.RFC3339),
	})
}

func rateLimiterConfig(limit float64, burst int) middleware.RateLimiterConfig {
	return middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(limit),
				Burst:     burst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}
}
