package api

import (
	"context"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/chase-predictor/internal/models"
)

// Predictor scores a live chase
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error)
}

// Handler serves the prediction endpoints
type Handler struct {
	predictor Predictor
	teams     []string
	cities    []string
	logger    *logrus.Logger
}

// NewHandler creates a handler; teams and cities are served sorted
func NewHandler(predictor Predictor, teams, cities []string, log *logrus.Logger) *Handler {
	return &Handler{
		predictor: predictor,
		teams:     sorted(teams),
		cities:    sorted(cities),
		logger:    log,
	}
}

// RegisterRoutes mounts the handler's routes behind the given middleware
func (h *Handler) RegisterRoutes(e *echo.Echo, m ...echo.MiddlewareFunc) {
	e.POST("/predict", h.Predict, m...)
	e.POST("/api/v1/predict", h.Predict, m...)
	e.GET("/api/v1/options", h.Options, m...)
}

// Predict handles POST /predict with a JSON or form body
func (h *Handler) Predict(c echo.Context) error {
	var req models.PredictionRequest
	if err := c.Bind(&req); err != nil {
		h.logger.WithError(err).Warn("Failed to read prediction request")
		return InternalServerErrorResponse(c)
	}

	result, err := h.predictor.Predict(c.Request().Context(), req)
	if err != nil {
		if !models.IsValidation(err) {
			h.logger.WithError(err).Error("Prediction failed")
		}
		return AppErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// Options handles GET /api/v1/options
func (h *Handler) Options(c echo.Context) error {
	return c.JSON(http.StatusOK, OptionsResponse{
		Success: true,
		Teams:   h.teams,
		Cities:  h.cities,
	})
}

func sorted(values []string) []string {
	out := append([]string{}, values...)
	sort.Strings(out)
	return out
}
