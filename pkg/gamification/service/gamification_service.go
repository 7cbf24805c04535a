package service

import (
	"context"

	"farmtech/pkg/irrigation"
)

// WidgetDay is one card of the 5-day weather widget. Pop is a percentage.
type WidgetDay struct {
	Date string  `json:"date"`
	Temp float64 `json:"temp"`
	Rain float64 `json:"rain"`
	Pop  float64 `json:"pop"`
}

type GamificationService interface {
	Weather(ctx context.Context, lat, lon float64) ([]WidgetDay, error)
	Simulate(ctx context.Context, lat, lon, plannedWaterMm float64, cropType string) (irrigation.Result, error)
}
