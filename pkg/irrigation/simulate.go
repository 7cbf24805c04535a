// Package irrigation runs the day-by-day soil-moisture game over a short
// weather forecast. Everything here is pure: no I/O, no shared state.
package irrigation

import (
	"math"
	"time"
)

const (
	InitialMoisture = 50.0

	overwaterWeight  = 3.0
	underwaterWeight = 2.5
)

type Status string

const (
	StatusOptimal     Status = "Optimal"
	StatusThirsty     Status = "Thirsty"
	StatusOverwatered Status = "Overwatered"
)

// DayWeather is one sampled forecast entry.
type DayWeather struct {
	Time   time.Time
	TempC  float64
	RainMm float64
	Pop    float64 // 0..1
}

type DayResult struct {
	Date         string  `json:"date"`
	Temp         float64 `json:"temp"`
	Moisture     float64 `json:"moisture"`
	Status       Status  `json:"status"`
	WastePenalty int     `json:"wastePenalty"`
	Rain         float64 `json:"rain"`
}

type Summary struct {
	EfficiencyScore int `json:"efficiencyScore"`
	TotalWaste      int `json:"totalWaste"`
}

type Result struct {
	Forecast []DayResult `json:"forecast"`
	Summary  Summary     `json:"summary"`
}

// DayLabel formats a forecast timestamp as "Mon Jan 02" in UTC.
func DayLabel(t time.Time) string { return t.UTC().Format("Mon Jan 02") }

// Round rounds half up, so -2.5 becomes -2.
func Round(x float64) float64 {
	f := math.Floor(x)
	if x-f >= 0.5 {
		return f + 1
	}
	return f
}

// Simulate plays the forecast day by day starting from InitialMoisture.
func Simulate(forecast []DayWeather, plannedWaterMm float64, crop CropProfile) Result {
	moisture := InitialMoisture
	total := 0
	days := make([]DayResult, 0, len(forecast))

	for _, d := range forecast {
		et := d.TempC / 2 * crop.Kc
		potential := moisture + plannedWaterMm + d.RainMm - et

		penalty := 0
		switch {
		case potential > crop.MaxMoisture:
			penalty = int(Round((potential - crop.MaxMoisture) * overwaterWeight))
		case potential < crop.MinMoisture:
			penalty = int(Round((crop.MinMoisture - potential) * underwaterWeight))
		}
		total += penalty

		moisture = math.Max(0, math.Min(100, potential))

		days = append(days, DayResult{
			Date:         DayLabel(d.Time),
			Temp:         Round(d.TempC),
			Moisture:     Round(moisture),
			Status:       statusFor(moisture, crop),
			WastePenalty: penalty,
			Rain:         d.RainMm,
		})
	}

	return Result{
		Forecast: days,
		Summary: Summary{
			EfficiencyScore: max(0, 100-total),
			TotalWaste:      total,
		},
	}
}

// status comes from the clamped moisture, not the pre-clamp potential
func statusFor(moisture float64, crop CropProfile) Status {
	switch {
	case moisture > crop.MaxMoisture:
		return StatusOverwatered
	case moisture < crop.MinMoisture:
		return StatusThirsty
	}
	return StatusOptimal
}

// Engine resolves crop names against a read-only profile table.
type Engine struct {
	crops map[string]CropProfile
}

// NewEngine copies crops; a nil or empty map means DefaultCrops.
func NewEngine(crops map[string]CropProfile) *Engine {
	if len(crops) == 0 {
		crops = DefaultCrops()
	}
	cp := make(map[string]CropProfile, len(crops))
	for k, v := range crops {
		cp[k] = v
	}
	if _, ok := cp[FallbackCrop]; !ok {
		cp[FallbackCrop] = DefaultCrops()[FallbackCrop]
	}
	return &Engine{crops: cp}
}

// Profile looks cropType up case-sensitively, falling back to wheat.
func (e *Engine) Profile(cropType string) CropProfile {
	if p, ok := e.crops[cropType]; ok {
		return p
	}
	return e.crops[FallbackCrop]
}

func (e *Engine) Run(forecast []DayWeather, plannedWaterMm float64, cropType string) Result {
	return Simulate(forecast, plannedWaterMm, e.Profile(cropType))
}
