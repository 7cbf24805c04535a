package controllerImp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"farmtech/pkg/profile/controller"
	"farmtech/pkg/profile/repository"
	"farmtech/pkg/profile/service"
)

type profileCtrl struct {
	svc service.ProfileService
	log *zap.Logger
}

func NewProfileController(svc service.ProfileService, log *zap.Logger) controller.ProfileController {
	return &profileCtrl{svc: svc, log: log.Named("profile")}
}

// GET /api/profile/:userId
func (h *profileCtrl) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user id"})
		}
		h.log.Error("fetch profile", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch profile"})
	}
	if p == nil {
		return c.JSON(http.StatusOK, map[string]any{})
	}
	return c.JSON(http.StatusOK, p)
}

// stringFields flattens scalar JSON values; land_size often arrives as a number.
func stringFields(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch x := v.(type) {
		case string:
			out[k] = x
		case json.Number:
			out[k] = x.String()
		case float64:
			out[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(x)
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(x)
		}
	}
	return out
}

// PUT|POST /api/profile/:userId
func (h *profileCtrl) Update(c echo.Context) error {
	userID := c.Param("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user id"})
	}
	var raw map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	p, err := h.svc.Upsert(c.Request().Context(), userID, stringFields(raw))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user id"})
		}
		h.log.Error("update profile", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update profile"})
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Profile updated successfully", "data": p})
}
