package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yourusername/chase-predictor/internal/models"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeValidation       = "validation_error"
	CodeRateLimited      = "rate_limited"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeInternal         = "internal_error"
)

const internalMessage = "Something went wrong"

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// OptionsResponse lists the values offered by the prediction form
type OptionsResponse struct {
	Success bool     `json:"success"`
	Teams   []string `json:"teams"`
	Cities  []string `json:"cities"`
}

func errorJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorResponse{Success: false, Error: message, Code: code})
}

// AppErrorResponse maps err onto the error taxonomy: validation failures are
// the caller's fault, everything else is ours
func AppErrorResponse(c echo.Context, err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return errorJSON(c, http.StatusBadRequest, CodeValidation, verr.Message)
	}
	if models.IsValidation(err) {
		return errorJSON(c, http.StatusBadRequest, CodeValidation, err.Error())
	}
	return InternalServerErrorResponse(c)
}

// InternalServerErrorResponse writes a generic 500
func InternalServerErrorResponse(c echo.Context) error {
	return errorJSON(c, http.StatusInternalServerError, CodeInternal, internalMessage)
}

// HTTPErrorHandler renders errors that escape handlers in the ErrorResponse shape
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		_ = InternalServerErrorResponse(c)
		return
	}

	code := CodeInternal
	message := internalMessage
	switch he.Code {
	case http.StatusNotFound:
		code, message = CodeNotFound, http.StatusText(he.Code)
	case http.StatusMethodNotAllowed:
		code, message = CodeMethodNotAllowed, http.StatusText(he.Code)
	case http.StatusTooManyRequests:
		code, message = CodeRateLimited, http.StatusText(he.Code)
	default:
		if he.Code < http.StatusInternalServerError {
			code, message = CodeValidation, http.StatusText(he.Code)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = errorJSON(c, he.Code, code, message)
}
