package server

import (
	"net/http"
	"strings"

	"github.com/gongmax/lexitrail/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// contextKeyEmail holds the authenticated identity's email for the lifetime
// of a request. Populated by authenticate, read by the handlers.
const contextKeyEmail = "authenticated_email"

// authenticate verifies the bearer credential in the Authorization header and
// stores the asserted email in the request context. Requests without a valid
// token never reach a handler.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
		}
		rawToken, found := strings.CutPrefix(header, "Bearer ")
		if !found || rawToken == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be a bearer token")
		}

		claims, err := s.verifier.Verify(c.Request().Context(), rawToken)
		if err != nil {
			logger.Debug("token verification failed", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set(contextKeyEmail, claims.Email)
		return next(c)
	}
}

func authenticatedEmail(c echo.Context) string {
	email, _ := c.Get(contextKeyEmail).(string)
	return email
}

// validateUserAccess rejects requests whose authenticated identity does not
// own the target email. A nil return means proceed.
func validateUserAccess(c echo.Context, email string) error {
	if authenticatedEmail(c) != email {
		return echo.NewHTTPError(http.StatusForbidden, "Unauthorized: You can only access your own account")
	}
	return nil
}

func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(c)
		}
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return nil
		},
	})
}
