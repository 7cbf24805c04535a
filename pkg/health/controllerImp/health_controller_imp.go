package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"

	"farmtech/pkg/health/controller"
)

var appStart = time.Now()

const pingBudget = 800 * time.Millisecond

// Pinger is one optional dependency checked by /health.
type Pinger func(ctx context.Context) error

type HealthCtrl struct {
	db     *gorm.DB
	extras map[string]Pinger
}

func NewHealthCtrl(db *gorm.DB, extras map[string]Pinger) controller.HealthController {
	return &HealthCtrl{db: db, extras: extras}
}

// MongoPinger checks the primary of a connected client.
func MongoPinger(c *mongo.Client) Pinger {
	return func(ctx context.Context) error { return c.Ping(ctx, readpref.Primary()) }
}

type sub struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pingBudget)
	defer cancel()

	checks := map[string]sub{"database": h.database(ctx)}
	for name, ping := range h.extras {
		if err := ping(ctx); err != nil {
			checks[name] = sub{Err: "ping: " + err.Error()}
		} else {
			checks[name] = sub{OK: true}
		}
	}

	allOK := true
	for _, s := range checks {
		allOK = allOK && s.OK
	}
	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, map[string]any{
		"status":     map[string]any{"ok": allOK},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks":     checks,
		"time":       time.Now().Format(time.RFC3339),
	})
}

func (h *HealthCtrl) database(ctx context.Context) sub {
	if h.db == nil {
		return sub{Err: "gorm db is nil"}
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return sub{Err: "db.DB(): " + err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return sub{Err: "ping: " + err.Error()}
	}
	return sub{OK: true}
}
