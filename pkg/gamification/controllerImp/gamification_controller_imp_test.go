package controllerImp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"farmtech/pkg/gamification/service"
	"farmtech/pkg/irrigation"
)

type stubSvc struct {
	err       error
	gotWater  float64
	gotCrop   string
	gotLatLon [2]float64
}

func (s *stubSvc) Weather(ctx context.Context, lat, lon float64) ([]service.WidgetDay, error) {
	s.gotLatLon = [2]float64{lat, lon}
	if s.err != nil {
		return nil, s.err
	}
	return []service.WidgetDay{{Date: "Fri Jan 02", Temp: 21, Pop: 40}}, nil
}

func (s *stubSvc) Simulate(ctx context.Context, lat, lon, water float64, crop string) (irrigation.Result, error) {
	s.gotWater, s.gotCrop = water, crop
	if s.err != nil {
		return irrigation.Result{}, s.err
	}
	return irrigation.Result{Forecast: []irrigation.DayResult{}, Summary: irrigation.Summary{EfficiencyScore: 90, TotalWaste: 10}}, nil
}

func do(t *testing.T, h echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestWeather_OK(t *testing.T) {
	svc := &stubSvc{}
	ctrl := NewGamificationController(svc, zap.NewNop())

	rec := do(t, ctrl.Weather, "/api/gamification/weather?lat=18.52&lon=73.85")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"date":"Fri Jan 02","temp":21,"rain":0,"pop":40}]`, rec.Body.String())
	assert.Equal(t, [2]float64{18.52, 73.85}, svc.gotLatLon)
}

func TestWeather_UpstreamFailure(t *testing.T) {
	ctrl := NewGamificationController(&stubSvc{err: errors.New("x")}, zap.NewNop())
	rec := do(t, ctrl.Weather, "/?lat=1&lon=2")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch weather."}`, rec.Body.String())
}

func TestSimulate_OK(t *testing.T) {
	svc := &stubSvc{}
	ctrl := NewGamificationController(svc, zap.NewNop())

	rec := do(t, ctrl.Simulate, "/?lat=1&lon=2&plannedWater=12.5&cropType=rice")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Forecast []irrigation.DayResult `json:"forecast"`
		Summary  irrigation.Summary     `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, irrigation.Summary{EfficiencyScore: 90, TotalWaste: 10}, body.Summary)
	assert.Equal(t, 12.5, svc.gotWater)
	assert.Equal(t, "rice", svc.gotCrop)
}

func TestSimulate_BadInput(t *testing.T) {
	ctrl := NewGamificationController(&stubSvc{}, zap.NewNop())
	for _, q := range []string{
		"/?lat=1&lon=2&plannedWater=lots",
		"/?lat=1&lon=2",
		"/?lat=1&lon=2&plannedWater=NaN",
		"/?lat=abc&lon=2&plannedWater=3",
		"/?lat=91&lon=2&plannedWater=3",
	} {
		rec := do(t, ctrl.Simulate, q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestSimulate_UpstreamFailure(t *testing.T) {
	ctrl := NewGamificationController(&stubSvc{err: errors.New("x")}, zap.NewNop())
	rec := do(t, ctrl.Simulate, "/?lat=1&lon=2&plannedWater=3")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch data."}`, rec.Body.String())
}
