// Package api exposes the prediction service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/creasty/defaults"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/chase-predictor/internal/health"
	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/metrics"
)

// Options configures Server. Zero values are replaced by the defaults.
type Options struct {
	Host              string        `default:"0.0.0.0"`
	Port              int           `default:"5000"`
	ReadTimeout       time.Duration `default:"10s"`
	WriteTimeout      time.Duration `default:"10s"`
	RateLimitEnabled  bool
	RequestsPerSecond float64 `default:"50"`
	Burst             int     `default:"100"`
	MetricsEnabled    bool
	MetricsPath       string `default:"/metrics"`
	Teams             []string
	Cities            []string
}

// Server wraps the echo HTTP server
type Server struct {
	echo   *echo.Echo
	opts   Options
	logger *logrus.Logger
	errs   chan error
}

// NewServer wires middleware, prediction routes, health endpoints and
// optionally metrics. hs may be nil.
func NewServer(opts Options, predictor Predictor, hs *health.Server, log *logrus.Logger) (*Server, error) {
	if err := defaults.Set(&opts); err != nil {
		return nil, fmt.Errorf("failed to apply server defaults: %w", err)
	}
	if predictor == nil {
		return nil, errors.New("predictor is required")
	}
	if log == nil {
		log = logger.Discard()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Server.ReadTimeout = opts.ReadTimeout
	e.Server.WriteTimeout = opts.WriteTimeout

	e.Use(RequestID())
	e.Use(Observe(logger.NewAccessLogger(log)))
	e.Use(Recover(log))

	var routeMiddleware []echo.MiddlewareFunc
	if opts.RateLimitEnabled {
		routeMiddleware = append(routeMiddleware, RateLimit(rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst)))
	}
	NewHandler(predictor, opts.Teams, opts.Cities, log).RegisterRoutes(e, routeMiddleware...)

	if hs != nil {
		e.GET("/health", echo.WrapHandler(http.HandlerFunc(hs.HandleHealth)))
		e.GET("/live", echo.WrapHandler(http.HandlerFunc(hs.HandleLive)))
		e.GET("/ready", echo.WrapHandler(http.HandlerFunc(hs.HandleReady)))
	}

	if opts.MetricsEnabled {
		metrics.InitRegistry()
		e.GET(opts.MetricsPath, echo.WrapHandler(metrics.Handler()))
	}

	return &Server{echo: e, opts: opts, logger: log, errs: make(chan error, 1)}, nil
}

// Address returns the listen address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
}

// Start binds the listen address and serves in the background. Bind
// failures are returned; later serve failures arrive on Errors.
func (s *Server) Start() error {
	addr := s.Address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.echo.Listener = ln

	go func() {
		s.logger.WithField("addr", ln.Addr().String()).Info("HTTP server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("HTTP server error")
			s.errs <- err
		}
	}()

	return nil
}

// Errors delivers a serve failure after Start has returned
func (s *Server) Errors() <-chan error {
	return s.errs
}

// ListenAddr returns the bound address once Start has succeeded
func (s *Server) ListenAddr() net.Addr {
	if s.echo.Listener == nil {
		return nil
	}
	return s.echo.Listener.Addr()
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// Echo returns the underlying Echo instance
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
