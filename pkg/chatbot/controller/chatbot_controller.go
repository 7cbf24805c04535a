package controller

import "github.com/labstack/echo/v4"

type ChatbotController interface {
	Weather(c echo.Context) error
	Chat(c echo.Context) error
}
