package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResourceType string

const (
	ResourceTractor             ResourceType = "Tractor"
	ResourceLabour              ResourceType = "Labour"
	ResourceIrrigationEquipment ResourceType = "Irrigation Equipment"
)

func ParseResourceType(s string) (ResourceType, error) {
	switch t := ResourceType(s); t {
	case ResourceTractor, ResourceLabour, ResourceIrrigationEquipment:
		return t, nil
	}
	return "", fmt.Errorf("%w: resource type %q", ErrInvalidResource, s)
}

type ServiceType string

const (
	ServiceSowing        ServiceType = "Sowing"
	ServicePloughing     ServiceType = "Ploughing"
	ServiceIrrigation    ServiceType = "Irrigation"
	ServiceFertilization ServiceType = "Fertilization"
)

func ParseServiceType(s string) (ServiceType, error) {
	switch t := ServiceType(s); t {
	case ServiceSowing, ServicePloughing, ServiceIrrigation, ServiceFertilization:
		return t, nil
	}
	return "", fmt.Errorf("%w: service type %q", ErrInvalidResource, s)
}

type PricingUnit string

const (
	PerHour PricingUnit = "per_hour"
	PerAcre PricingUnit = "per_acre"
)

func ParsePricingUnit(s string) (PricingUnit, error) {
	switch u := PricingUnit(s); u {
	case PerHour, PerAcre:
		return u, nil
	}
	return "", fmt.Errorf("%w: pricing unit %q", ErrInvalidResource, s)
}

// ErrInvalidResource wraps every invariant violation on a listing.
var ErrInvalidResource = errors.New("invalid resource")

type Location struct {
	Village   string  `json:"village" bson:"village"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Resource is one equipment or labour offering owned by a provider.
// Exactly one of PricePerHour/PricePerAcre is set, matching PricingUnit.
type Resource struct {
	ID            string       `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	ProviderID    string       `gorm:"index;not null" json:"provider" bson:"provider"`
	Type          ResourceType `gorm:"not null" json:"type" bson:"type"`
	ServiceType   ServiceType  `gorm:"not null" json:"serviceType" bson:"serviceType"`
	PricingUnit   PricingUnit  `gorm:"not null" json:"pricingUnit" bson:"pricingUnit"`
	PricePerHour  *float64     `json:"pricePerHour,omitempty" bson:"pricePerHour,omitempty"`
	PricePerAcre  *float64     `json:"pricePerAcre,omitempty" bson:"pricePerAcre,omitempty"`
	Location      Location     `gorm:"embedded;embeddedPrefix:location_" json:"location" bson:"location"`
	Phone         string       `gorm:"not null" json:"phone" bson:"phone"`
	Description   string       `json:"description,omitempty" bson:"description,omitempty"`
	IsAvailable   bool         `gorm:"index" json:"isAvailable" bson:"isAvailable"`
	RatingTotal   float64      `json:"ratingTotal" bson:"ratingTotal"`
	RatingCount   int          `json:"ratingCount" bson:"ratingCount"`
	RatingAverage float64      `json:"ratingAverage" bson:"ratingAverage"`
	CreatedAt     time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// ResourceInput carries the provider-supplied fields of a new listing.
type ResourceInput struct {
	ProviderID  string
	Type        ResourceType
	ServiceType ServiceType
	PricingUnit PricingUnit
	Price       float64
	Location    Location
	Phone       string
	Description string
}

// NewResource builds an available listing with default ratings and the
// price stored in the field selected by the pricing unit.
func NewResource(in ResourceInput) (*Resource, error) {
	r := &Resource{
		ProviderID:    in.ProviderID,
		Type:          in.Type,
		ServiceType:   in.ServiceType,
		Location:      in.Location,
		Phone:         strings.TrimSpace(in.Phone),
		Description:   strings.TrimSpace(in.Description),
		IsAvailable:   true,
		RatingAverage: 5.0,
	}
	r.Location.Village = strings.TrimSpace(r.Location.Village)
	r.SetPrice(in.PricingUnit, in.Price)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// SetPrice switches the pricing unit and clears the other price field.
func (r *Resource) SetPrice(unit PricingUnit, price float64) {
	p := price
	r.PricingUnit = unit
	switch unit {
	case PerHour:
		r.PricePerHour, r.PricePerAcre = &p, nil
	case PerAcre:
		r.PricePerAcre, r.PricePerHour = &p, nil
	}
}

// EffectivePrice is the price implied by the pricing unit.
func (r *Resource) EffectivePrice() float64 {
	switch r.PricingUnit {
	case PerHour:
		if r.PricePerHour != nil {
			return *r.PricePerHour
		}
	case PerAcre:
		if r.PricePerAcre != nil {
			return *r.PricePerAcre
		}
	}
	return 0
}

func (r *Resource) Validate() error {
	if r.ProviderID == "" {
		return fmt.Errorf("%w: provider is required", ErrInvalidResource)
	}
	if _, err := ParseResourceType(string(r.Type)); err != nil {
		return err
	}
	if _, err := ParseServiceType(string(r.ServiceType)); err != nil {
		return err
	}
	if _, err := ParsePricingUnit(string(r.PricingUnit)); err != nil {
		return err
	}
	switch {
	case r.PricingUnit == PerHour && (r.PricePerHour == nil || r.PricePerAcre != nil):
		return fmt.Errorf("%w: per_hour listing must set only pricePerHour", ErrInvalidResource)
	case r.PricingUnit == PerAcre && (r.PricePerAcre == nil || r.PricePerHour != nil):
		return fmt.Errorf("%w: per_acre listing must set only pricePerAcre", ErrInvalidResource)
	}
	if r.EffectivePrice() < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidResource)
	}
	if r.Location.Village == "" {
		return fmt.Errorf("%w: village is required", ErrInvalidResource)
	}
	if r.Location.Latitude < -90 || r.Location.Latitude > 90 {
		return fmt.Errorf("%w: latitude out of range", ErrInvalidResource)
	}
	if r.Location.Longitude < -180 || r.Location.Longitude > 180 {
		return fmt.Errorf("%w: longitude out of range", ErrInvalidResource)
	}
	if r.Phone == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidResource)
	}
	return nil
}

func (r *Resource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r *Resource) BeforeSave(tx *gorm.DB) error { return r.Validate() }
