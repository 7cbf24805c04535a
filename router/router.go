package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	authctrl "farmtech/pkg/auth/controller"
	chatctrl "farmtech/pkg/chatbot/controller"
	chatctrlImp "farmtech/pkg/chatbot/controllerImp"
	gamectrl "farmtech/pkg/gamification/controller"
	healthctrl "farmtech/pkg/health/controller"
	kbctrl "farmtech/pkg/kb/controller"
	"farmtech/pkg/middleware"
	profilectrl "farmtech/pkg/profile/controller"
	resourcectrl "farmtech/pkg/resource/controller"
)

type Controllers struct {
	Auth         authctrl.AuthController
	Health       healthctrl.HealthController
	Resource     resourcectrl.ResourceController
	Profile      profilectrl.ProfileController
	Gamification gamectrl.GamificationController
	Chatbot      chatctrl.ChatbotController
	KB           kbctrl.KBController
}

type Options struct {
	// Auth guards the resource, KB and whoami routes.
	Auth      echo.MiddlewareFunc
	DevLogin  bool
	BodyLimit string
	Log       *zap.Logger
}

func New(e *echo.Echo, ctl Controllers, opt Options) *echo.Echo {
	e.HideBanner = true
	e.Validator = middleware.NewValidator()
	e.HTTPErrorHandler = errorHandler(opt.Log)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(opt.Log))
	e.Use(echomw.CORS())
	if opt.BodyLimit != "" {
		e.Use(echomw.BodyLimit(opt.BodyLimit))
	}

	e.GET("/health", ctl.Health.Health)
	e.GET("/whoami", ctl.Auth.WhoAmI, opt.Auth)
	if opt.DevLogin {
		e.GET("/devlogin", ctl.Auth.DevLogin)
	}

	api := e.Group("/api")

	chat := api.Group("/chatbot")
	chat.GET("/weather", ctl.Chatbot.Weather)
	chat.POST("/chat", ctl.Chatbot.Chat)
	api.GET("/weather", ctl.Chatbot.Weather)
	api.POST("/chat", ctl.Chatbot.Chat)

	profile := api.Group("/profile")
	profile.GET("/:userId", ctl.Profile.Get)
	profile.PUT("/:userId", ctl.Profile.Update)
	profile.POST("/:userId", ctl.Profile.Update)

	game := api.Group("/gamification")
	game.GET("/weather", ctl.Gamification.Weather)
	game.GET("/simulate", ctl.Gamification.Simulate)

	res := api.Group("/resources", opt.Auth)
	res.GET("", ctl.Resource.List)
	res.GET("/my", ctl.Resource.ListMine)
	res.POST("", ctl.Resource.Create)
	res.PUT("/:id", ctl.Resource.Update)
	res.DELETE("/:id", ctl.Resource.Delete)
	res.PATCH("/:id/availability", ctl.Resource.ToggleAvailability)
	res.GET("/:id", ctl.Resource.Get)

	kb := api.Group("/kb", opt.Auth)
	kb.GET("/docs", ctl.KB.ListDocs)
	kb.POST("/ingest", ctl.KB.IngestText)
	kb.POST("/ingest/url", ctl.KB.IngestURL)
	kb.GET("/search", ctl.KB.Search)

	return e
}

// errorHandler renders framework errors (404, 405, 413, panics) as {"error": msg}.
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := http.StatusInternalServerError, "Something went wrong on the server."
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		}
		if code == http.StatusRequestEntityTooLarge {
			msg = chatctrlImp.TooLargeMessage
		}
		if code >= http.StatusInternalServerError {
			log.Error("unhandled error", zap.Error(err), zap.String("uri", c.Request().RequestURI))
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{"error": msg})
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}
