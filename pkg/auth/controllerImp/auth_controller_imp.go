package controllerImp

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"farmtech/pkg/auth/controller"
	"farmtech/pkg/middleware"
)

type authCtrl struct{}

func NewAuthController() controller.AuthController { return &authCtrl{} }

// DevLogin pins a uid cookie; only mounted when dev auth is enabled.
func (h *authCtrl) DevLogin(c echo.Context) error {
	uid := strings.TrimSpace(c.QueryParam("uid"))
	if uid == "" {
		uid = middleware.DevDefaultID
	}
	c.SetCookie(&http.Cookie{Name: middleware.DevUIDCookie, Value: uid, Path: "/", HttpOnly: true})
	return c.JSON(http.StatusOK, map[string]string{"uid": uid})
}

func (h *authCtrl) WhoAmI(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	return c.JSON(http.StatusOK, map[string]string{"uid": uid})
}
