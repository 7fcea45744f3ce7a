package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/chase-predictor/internal/health"
	"github.com/yourusername/chase-predictor/internal/models"
	"github.com/yourusername/chase-predictor/internal/service"
)

type fixedModel struct {
	proba [2]float64
}

func (m fixedModel) PredictProba(models.FeatureRow) ([2]float64, error) { return m.proba, nil }

type predictorFunc func(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error)

func (f predictorFunc) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	return f(ctx, req)
}

const validBody = `{"batting_team":"Mumbai Indians","bowling_team":"Chennai Super Kings","city":"Mumbai","target":180,"score":100,"overs_done":"12.3","wickets_fallen":3}`

func newTestServer(t *testing.T, opts Options, p Predictor) *Server {
	t.Helper()
	if p == nil {
		p = service.NewInferenceService(fixedModel{proba: [2]float64{0.375, 0.625}}, nil, nil)
	}
	hs := health.NewServer(health.Config{ServiceName: "chase-server"})
	hs.SetReady(true)

	s, err := NewServer(opts, p, hs, nil)
	require.NoError(t, err)
	return s
}

func do(s *Server, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestPredictSuccess(t *testing.T) {
	s := newTestServer(t, Options{}, nil)

	rec := do(s, http.MethodPost, "/predict", echo.MIMEApplicationJSON, validBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.PredictionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "Mumbai Indians", result.BattingTeam)
	assert.Equal(t, "Chennai Super Kings", result.BowlingTeam)
	assert.Equal(t, 62, result.WinProb)
	assert.Equal(t, 38, result.LossProb)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestPredictFormBody(t *testing.T) {
	s := newTestServer(t, Options{}, nil)

	form := url.Values{
		"batting_team":   {"Mumbai Indians"},
		"bowling_team":   {"Chennai Super Kings"},
		"city":           {"Mumbai"},
		"target":         {"180"},
		"score":          {"100"},
		"overs_done":     {"12.3"},
		"wickets_fallen": {"3"},
	}
	rec := do(s, http.MethodPost, "/predict", echo.MIMEApplicationForm, form.Encode())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"win_prob":62`)
}

func TestPredictValidationErrors(t *testing.T) {
	s := newTestServer(t, Options{}, nil)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "same teams",
			body:    `{"batting_team":"Mumbai Indians","bowling_team":"Mumbai Indians","city":"Mumbai","target":180,"score":100,"overs_done":"12.3","wickets_fallen":3}`,
			message: "Batting and bowling teams must be different.",
		},
		{
			name:    "bad overs",
			body:    `{"batting_team":"Mumbai Indians","bowling_team":"Chennai Super Kings","city":"Mumbai","target":180,"score":100,"overs_done":"12.7","wickets_fallen":3}`,
			message: "balls must be between 0 and 5 (use format like 10.2)",
		},
		{
			name:    "no ball bowled",
			body:    `{"batting_team":"Mumbai Indians","bowling_team":"Chennai Super Kings","city":"Mumbai","target":180,"score":0,"overs_done":"0","wickets_fallen":0}`,
			message: "Enter overs completed (e.g. 10.2).",
		},
		{
			name:    "wickets out of range",
			body:    `{"batting_team":"Mumbai Indians","bowling_team":"Chennai Super Kings","city":"Mumbai","target":180,"score":100,"overs_done":"12.3","wickets_fallen":12}`,
			message: "wickets_fallen must be between 0 and 10.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/predict", echo.MIMEApplicationJSON, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decodeError(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, CodeValidation, resp.Code)
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestPredictInternalErrors(t *testing.T) {
	failing := predictorFunc(func(context.Context, models.PredictionRequest) (*models.PredictionResult, error) {
		return nil, errors.New("model exploded")
	})
	panicking := predictorFunc(func(context.Context, models.PredictionRequest) (*models.PredictionResult, error) {
		panic("unexpected")
	})

	tests := []struct {
		name      string
		predictor Predictor
		body      string
	}{
		{name: "model failure", predictor: failing, body: validBody},
		{name: "panic", predictor: panicking, body: validBody},
		{name: "malformed body", predictor: failing, body: `{"target": "lots"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Options{}, tt.predictor)
			rec := do(s, http.MethodPost, "/predict", echo.MIMEApplicationJSON, tt.body)

			require.Equal(t, http.StatusInternalServerError, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, CodeInternal, resp.Code)
			assert.Equal(t, internalMessage, resp.Error)
			assert.NotContains(t, rec.Body.String(), "exploded")
		})
	}
}

func TestOptionsAreSorted(t *testing.T) {
	s := newTestServer(t, Options{
		Teams:  []string{"Sunrisers Hyderabad", "Chennai Super Kings", "Mumbai Indians"},
		Cities: []string{"Pune", "Delhi"},
	}, nil)

	rec := do(s, http.MethodGet, "/api/v1/options", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp OptionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Chennai Super Kings", "Mumbai Indians", "Sunrisers Hyderabad"}, resp.Teams)
	assert.Equal(t, []string{"Delhi", "Pune"}, resp.Cities)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Options{RateLimitEnabled: true, RequestsPerSecond: 0.001, Burst: 1}, nil)

	first := do(s, http.MethodPost, "/predict", echo.MIMEApplicationJSON, validBody)
	assert.Equal(t, http.StatusOK, first.Code)

	second := do(s, http.MethodPost, "/predict", echo.MIMEApplicationJSON, validBody)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, CodeRateLimited, decodeError(t, second).Code)

	health := do(s, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	s := newTestServer(t, Options{MetricsEnabled: true}, nil)

	for _, path := range []string{"/health", "/live", "/ready"} {
		rec := do(s, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	do(s, http.MethodPost, "/predict", echo.MIMEApplicationJSON, validBody)
	rec := do(s, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chase_predictor_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, Options{}, nil)

	rec := do(s, http.MethodGet, "/nope", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, rec).Code)

	rec = do(s, http.MethodGet, "/predict", "", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, CodeMethodNotAllowed, decodeError(t, rec).Code)
}

func TestNewServerDefaults(t *testing.T) {
	s := newTestServer(t, Options{}, nil)
	assert.Equal(t, "0.0.0.0:5000", s.Address())

	_, err := NewServer(Options{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestStartOccupiedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	s := newTestServer(t, Options{Host: "127.0.0.1", Port: port}, nil)

	err = s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
	assert.Nil(t, s.ListenAddr())
}

func TestStartServesAndStops(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	s := newTestServer(t, Options{Host: "127.0.0.1", Port: port}, nil)
	require.NoError(t, s.Start())
	require.NotNil(t, s.ListenAddr())

	resp, err := http.Get("http://" + s.ListenAddr().String() + "/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	select {
	case err := <-s.Errors():
		t.Fatalf("unexpected serve error: %v", err)
	default:
	}
}
