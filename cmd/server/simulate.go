package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"farmtech/pkg/irrigation"
	"farmtech/pkg/weather"
)

func newSimulateCmd() *cobra.Command {
	var (
		crop     string
		water    float64
		forecast string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the irrigation game on a saved OpenWeather forecast",
		Example: `  farmtech simulate --crop rice --water 10 --forecast pune.json
  curl "$OW/forecast?lat=18.52&lon=73.85&units=metric&appid=$KEY" | farmtech simulate --forecast -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readForecast(cmd, forecast)
			if err != nil {
				return err
			}
			crops, err := irrigation.LoadCrops(cfg.CropProfilesPath)
			if err != nil {
				return err
			}
			days := weather.ToDays(weather.Daily(payload.List))
			res := irrigation.NewEngine(crops).Run(days, water, crop)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&crop, "crop", irrigation.FallbackCrop, "crop type (rice, wheat, sugarcane, ...)")
	cmd.Flags().Float64Var(&water, "water", 0, "planned irrigation per day in mm")
	cmd.Flags().StringVar(&forecast, "forecast", "", "OpenWeather /forecast JSON file, or - for stdin")
	_ = cmd.MarkFlagRequired("forecast")
	return cmd
}

func readForecast(cmd *cobra.Command, path string) (weather.ForecastPayload, error) {
	var p weather.ForecastPayload
	in := cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return p, err
		}
		defer f.Close()
		in = f
	}
	if err := json.NewDecoder(in).Decode(&p); err != nil {
		return p, fmt.Errorf("decode forecast %s: %w", path, err)
	}
	return p, nil
}
