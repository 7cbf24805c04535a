package controllerImp

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"farmtech/entities"
	"farmtech/pkg/middleware"
	"farmtech/pkg/resource/controller"
	"farmtech/pkg/resource/repository"
	"farmtech/pkg/resource/service"
	"farmtech/pkg/response"
)

const notOwned = "Resource not found or you are not the owner."

type resourceCtrl struct {
	svc service.ResourceService
	log *zap.Logger
}

func NewResourceController(svc service.ResourceService, log *zap.Logger) controller.ResourceController {
	return &resourceCtrl{svc: svc, log: log.Named("resource")}
}

type locationReq struct {
	Village   string               `json:"village" validate:"required" msg:"Village name is required"`
	Latitude  middleware.FlexFloat `json:"latitude" validate:"required,gte=-90,lte=90" msg:"Valid latitude is required"`
	Longitude middleware.FlexFloat `json:"longitude" validate:"required,gte=-180,lte=180" msg:"Valid longitude is required"`
}

type createReq struct {
	Type         string               `json:"type" validate:"oneof=Tractor Labour 'Irrigation Equipment'" msg:"Invalid resource type"`
	ServiceType  string               `json:"serviceType" validate:"oneof=Sowing Ploughing Irrigation Fertilization" msg:"Invalid service type"`
	PricingUnit  string               `json:"pricingUnit" validate:"oneof=per_hour per_acre" msg:"Pricing unit must be per_hour or per_acre"`
	PricePerHour middleware.FlexFloat `json:"pricePerHour"`
	PricePerAcre middleware.FlexFloat `json:"pricePerAcre"`
	Location     locationReq          `json:"location"`
	Phone        string               `json:"phone" validate:"required" msg:"Phone number is required"`
	Description  string               `json:"description"`
}

type locationPatchReq struct {
	Village   *string              `json:"village"`
	Latitude  middleware.FlexFloat `json:"latitude"`
	Longitude middleware.FlexFloat `json:"longitude"`
}

type updateReq struct {
	Type         *string              `json:"type"`
	ServiceType  *string              `json:"serviceType"`
	PricingUnit  *string              `json:"pricingUnit"`
	PricePerHour middleware.FlexFloat `json:"pricePerHour"`
	PricePerAcre middleware.FlexFloat `json:"pricePerAcre"`
	Location     *locationPatchReq    `json:"location"`
	Phone        *string              `json:"phone"`
	Description  *string              `json:"description"`
}

func uid(c echo.Context) string {
	s, _ := c.Get("uid").(string)
	return s
}

// fail maps service errors onto the envelope.
func (h *resourceCtrl) fail(c echo.Context, err error, notFound, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return response.Error(c, http.StatusNotFound, notFound)
	case errors.Is(err, entities.ErrInvalidResource):
		return response.Error(c, http.StatusUnprocessableEntity, err.Error())
	}
	h.log.Error(fallback, zap.Error(err), zap.String("uid", uid(c)))
	return response.Error(c, http.StatusInternalServerError, fallback)
}

// GET /api/resources
func (h *resourceCtrl) List(c echo.Context) error {
	f, err := parseFilters(c)
	if err != nil {
		return response.Error(c, http.StatusUnprocessableEntity, err.Error())
	}
	rs, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, err, "Resource not found.", "Failed to fetch resources.")
	}
	return response.Success(c, http.StatusOK, "Resources fetched", map[string]any{
		"count":     len(rs),
		"resources": rs,
	})
}

// GET /api/resources/my
func (h *resourceCtrl) ListMine(c echo.Context) error {
	rs, err := h.svc.ListMine(c.Request().Context(), uid(c))
	if err != nil {
		return h.fail(c, err, "Resource not found.", "Failed to fetch your resources.")
	}
	return response.Success(c, http.StatusOK, "Your resources fetched", map[string]any{"resources": rs})
}

// GET /api/resources/:id
func (h *resourceCtrl) Get(c echo.Context) error {
	r, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err, "Resource not found.", "Failed to fetch resource.")
	}
	return response.Success(c, http.StatusOK, "Resource fetched", map[string]any{"resource": r})
}

// POST /api/resources
func (h *resourceCtrl) Create(c echo.Context) error {
	var req createReq
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body.")
	}
	req.Location.Village = strings.TrimSpace(req.Location.Village)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := c.Validate(&req); err != nil {
		return response.Error(c, http.StatusUnprocessableEntity, err.Error())
	}

	unit := entities.PricingUnit(req.PricingUnit)
	price := req.PricePerHour
	if unit == entities.PerAcre {
		price = req.PricePerAcre
	}
	if !price.Valid {
		return response.Error(c, http.StatusUnprocessableEntity, "Price is required for the selected pricing unit")
	}

	r, err := h.svc.Create(c.Request().Context(), entities.ResourceInput{
		ProviderID:  uid(c),
		Type:        entities.ResourceType(req.Type),
		ServiceType: entities.ServiceType(req.ServiceType),
		PricingUnit: unit,
		Price:       price.Val,
		Location: entities.Location{
			Village:   req.Location.Village,
			Latitude:  req.Location.Latitude.Val,
			Longitude: req.Location.Longitude.Val,
		},
		Phone:       req.Phone,
		Description: req.Description,
	})
	if err != nil {
		return h.fail(c, err, "Resource not found.", "Failed to create resource.")
	}
	return response.Success(c, http.StatusCreated, "Resource created successfully", map[string]any{"resource": r})
}

func (req updateReq) toPatch() (service.ResourcePatch, error) {
	var p service.ResourcePatch
	nonEmpty := func(s *string) bool { return s != nil && strings.TrimSpace(*s) != "" }

	if nonEmpty(req.Type) {
		t, err := entities.ParseResourceType(strings.TrimSpace(*req.Type))
		if err != nil {
			return p, err
		}
		p.Type = &t
	}
	if nonEmpty(req.ServiceType) {
		t, err := entities.ParseServiceType(strings.TrimSpace(*req.ServiceType))
		if err != nil {
			return p, err
		}
		p.ServiceType = &t
	}
	if nonEmpty(req.PricingUnit) {
		u, err := entities.ParsePricingUnit(strings.TrimSpace(*req.PricingUnit))
		if err != nil {
			return p, err
		}
		p.PricingUnit = &u
	}
	if req.PricePerHour.Malformed || req.PricePerAcre.Malformed {
		return p, fmt.Errorf("%w: price must be a number", entities.ErrInvalidResource)
	}
	p.PricePerHour = req.PricePerHour.Ptr()
	p.PricePerAcre = req.PricePerAcre.Ptr()

	p.Phone = req.Phone
	p.Description = req.Description
	if l := req.Location; l != nil {
		if l.Latitude.Malformed || l.Longitude.Malformed {
			return p, fmt.Errorf("%w: coordinates must be numbers", entities.ErrInvalidResource)
		}
		p.Location = &service.LocationPatch{
			Village:   l.Village,
			Latitude:  l.Latitude.Ptr(),
			Longitude: l.Longitude.Ptr(),
		}
	}
	return p, nil
}

// PUT /api/resources/:id
func (h *resourceCtrl) Update(c echo.Context) error {
	var req updateReq
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body.")
	}
	patch, err := req.toPatch()
	if err != nil {
		return response.Error(c, http.StatusUnprocessableEntity, err.Error())
	}
	r, err := h.svc.Update(c.Request().Context(), uid(c), c.Param("id"), patch)
	if err != nil {
		return h.fail(c, err, notOwned, "Failed to update resource.")
	}
	return response.Success(c, http.StatusOK, "Resource updated successfully", map[string]any{"resource": r})
}

// DELETE /api/resources/:id
func (h *resourceCtrl) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), uid(c), c.Param("id")); err != nil {
		return h.fail(c, err, notOwned, "Failed to delete resource.")
	}
	return response.Success(c, http.StatusOK, "Resource deleted successfully.", nil)
}

// PATCH /api/resources/:id/availability
func (h *resourceCtrl) ToggleAvailability(c echo.Context) error {
	r, err := h.svc.ToggleAvailability(c.Request().Context(), uid(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err, notOwned, "Failed to update availability.")
	}
	state := "Busy"
	if r.IsAvailable {
		state = "Available"
	}
	return response.Success(c, http.StatusOK, "Resource marked as "+state, map[string]any{"resource": r})
}
