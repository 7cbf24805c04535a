package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	DevUIDHeader = "X-User-Id"
	DevUIDCookie = "uid"
	DevDefaultID = "dev-user"
)

// DevLogin stands in for Bearer on local setups: the uid comes from the
// X-User-Id header, then the uid cookie, then a fixed default.
func DevLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := c.Request().Header.Get(DevUIDHeader)
			if uid == "" {
				if ck, err := c.Cookie(DevUIDCookie); err == nil {
					uid = ck.Value
				}
			}
			if uid == "" {
				uid = DevDefaultID
				c.SetCookie(&http.Cookie{Name: DevUIDCookie, Value: uid, Path: "/"})
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}
