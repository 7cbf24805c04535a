package controllerImp

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"farmtech/pkg/gamification/controller"
	"farmtech/pkg/gamification/service"
)

type gamificationCtrl struct {
	svc service.GamificationService
	log *zap.Logger
}

func NewGamificationController(svc service.GamificationService, log *zap.Logger) controller.GamificationController {
	return &gamificationCtrl{svc: svc, log: log.Named("gamification")}
}

func parseFloatParam(c echo.Context, name string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(c.QueryParam(name)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseCoords(c echo.Context) (lat, lon float64, ok bool) {
	lat, okLat := parseFloatParam(c, "lat")
	lon, okLon := parseFloatParam(c, "lon")
	if !okLat || !okLon || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

// GET /api/gamification/weather?lat&lon
func (h *gamificationCtrl) Weather(c echo.Context) error {
	lat, lon, ok := parseCoords(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "lat and lon must be valid coordinates"})
	}
	days, err := h.svc.Weather(c.Request().Context(), lat, lon)
	if err != nil {
		h.log.Error("weather widget", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch weather."})
	}
	return c.JSON(http.StatusOK, days)
}

// GET /api/gamification/simulate?lat&lon&plannedWater&cropType
func (h *gamificationCtrl) Simulate(c echo.Context) error {
	lat, lon, ok := parseCoords(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "lat and lon must be valid coordinates"})
	}
	water, ok := parseFloatParam(c, "plannedWater")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "plannedWater must be a number"})
	}
	res, err := h.svc.Simulate(c.Request().Context(), lat, lon, water, c.QueryParam("cropType"))
	if err != nil {
		h.log.Error("simulation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch data."})
	}
	return c.JSON(http.StatusOK, res)
}
