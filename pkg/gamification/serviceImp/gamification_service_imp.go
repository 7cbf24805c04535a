package serviceImp

import (
	"context"

	"farmtech/pkg/gamification/service"
	"farmtech/pkg/irrigation"
	"farmtech/pkg/weather"
)

// ForecastSource is satisfied by *weather.Client.
type ForecastSource interface {
	Forecast(ctx context.Context, lat, lon float64) ([]weather.ForecastEntry, error)
}

type gamificationSvc struct {
	src    ForecastSource
	engine *irrigation.Engine
}

func NewGamificationService(src ForecastSource, engine *irrigation.Engine) service.GamificationService {
	return &gamificationSvc{src: src, engine: engine}
}

func (s *gamificationSvc) daily(ctx context.Context, lat, lon float64) ([]weather.ForecastEntry, error) {
	list, err := s.src.Forecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	return weather.Daily(list), nil
}

func (s *gamificationSvc) Weather(ctx context.Context, lat, lon float64) ([]service.WidgetDay, error) {
	days, err := s.daily(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	out := make([]service.WidgetDay, 0, len(days))
	for _, d := range weather.ToDays(days) {
		out = append(out, service.WidgetDay{
			Date: irrigation.DayLabel(d.Time),
			Temp: irrigation.Round(d.TempC),
			Rain: d.RainMm,
			Pop:  irrigation.Round(d.Pop * 100),
		})
	}
	return out, nil
}

func (s *gamificationSvc) Simulate(ctx context.Context, lat, lon, plannedWaterMm float64, cropType string) (irrigation.Result, error) {
	days, err := s.daily(ctx, lat, lon)
	if err != nil {
		return irrigation.Result{}, err
	}
	return s.engine.Run(weather.ToDays(days), plannedWaterMm, cropType), nil
}
