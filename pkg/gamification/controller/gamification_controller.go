package controller

import "github.com/labstack/echo/v4"

type GamificationController interface {
	Weather(c echo.Context) error
	Simulate(c echo.Context) error
}
