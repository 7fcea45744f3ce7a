package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/metrics"
)

// RequestID propagates X-Request-ID, generating one when the client sent none
func RequestID() echo.MiddlewareFunc {
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

// Recover turns a panic into a 500 response
func Recover(log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					panicErr, ok := r.(error)
					if !ok {
						panicErr = fmt.Errorf("%v", r)
					}
					log.WithFields(logrus.Fields{
						"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
						"path":       c.Request().URL.Path,
						"stack":      string(debug.Stack()),
					}).WithError(panicErr).Error("Recovered from panic")
					err = InternalServerErrorResponse(c)
				}
			}()
			return next(c)
		}
	}
}

// Observe logs every request and records HTTP metrics against the route pattern
func Observe(access *logger.AccessLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()
			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			latency := time.Since(start)
			metrics.RecordHTTPRequest(req.Method, path, status, latency)
			access.LogRequest(c.Response().Header().Get(echo.HeaderXRequestID), req.Method, req.URL.Path, status, latency, c.RealIP())

			return err
		}
	}
}

// RateLimit rejects requests beyond the limiter's budget with 429
func RateLimit(limiter *rate.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				metrics.RecordRateLimited()
				return errorJSON(c, http.StatusTooManyRequests, CodeRateLimited, "Too many requests, slow down.")
			}
			return next(c)
		}
	}
}
