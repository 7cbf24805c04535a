package entities

import (
	"strings"
	"time"
)

// Profile mirrors the Supabase `profiles` row keyed by the auth user id.
type Profile struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id" db:"id"`
	FullName        string    `json:"full_name" db:"full_name"`
	Phone           string    `json:"phone" db:"phone"`
	Language        string    `json:"language" db:"language"`
	Village         string    `json:"village" db:"village"`
	District        string    `json:"district" db:"district"`
	LandSize        string    `json:"land_size" db:"land_size"`
	SoilType        string    `json:"soil_type" db:"soil_type"`
	Irrigation      string    `json:"irrigation" db:"irrigation"`
	ProfileImageURL string    `json:"profile_image_url" db:"profile_image_url"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Apply overwrites the fields named in in; unknown keys and id are ignored.
func (p *Profile) Apply(in map[string]string) {
	for k, v := range in {
		v = strings.TrimSpace(v)
		switch k {
		case "full_name":
			p.FullName = v
		case "phone":
			p.Phone = v
		case "language":
			p.Language = v
		case "village":
			p.Village = v
		case "district":
			p.District = v
		case "land_size":
			p.LandSize = v
		case "soil_type":
			p.SoilType = v
		case "irrigation":
			p.Irrigation = v
		case "profile_image_url":
			p.ProfileImageURL = v
		}
	}
}
