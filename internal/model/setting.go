package model

import "time"

// Well-known setting keys used for receipt branding.
const (
	SettingClinicName    = "clinic_name"
	SettingClinicAddress = "clinic_address"
	SettingClinicPhone   = "clinic_phone"
	SettingClinicLogo    = "clinic_logo"
)

// Setting is a free-form key/value configuration entry.
type Setting struct {
	ID          uint   `gorm:"primaryKey"`
	Key         string `gorm:"size:100;uniqueIndex;not null"`
	Value       *string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
