package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type BearerConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	Log      *zap.Logger
}

// Bearer verifies Supabase-issued HS256 access tokens and stores the
// subject as "uid" on the context.
func Bearer(cfg BearerConfig) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (any, error) { return cfg.Secret, nil }
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			raw = strings.TrimSpace(raw)
			if !ok || raw == "" {
				return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "message": "No token provided."})
			}
			var claims jwt.RegisteredClaims
			if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil || claims.Subject == "" {
				log.Debug("rejected bearer token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid or expired session. Please log in again."})
			}
			c.Set("uid", claims.Subject)
			return next(c)
		}
	}
}
