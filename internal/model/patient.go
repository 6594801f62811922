package model

import (
	"time"
)

type Patient struct {
	ID           uint       `gorm:"primaryKey"`
	Name         string     `gorm:"size:200;not null;index"`
	DateOfBirth  *time.Time
	Gender       *string `gorm:"size:10"`
	Phone        *string `gorm:"size:30;index"`
	Address      *string
	MedicalNotes *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PatientPatch is a partial update; nil fields are left untouched.
type PatientPatch struct {
	Name         *string
	DateOfBirth  *time.Time
	Gender       *string
	Phone        *string
	Address      *string
	MedicalNotes *string
}

func (p PatientPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.DateOfBirth != nil {
		cols["date_of_birth"] = *p.DateOfBirth
	}
	if p.Gender != nil {
		cols["gender"] = *p.Gender
	}
	if p.Phone != nil {
		cols["phone"] = *p.Phone
	}
	if p.Address != nil {
		cols["address"] = *p.Address
	}
	if p.MedicalNotes != nil {
		cols["medical_notes"] = *p.MedicalNotes
	}
	return cols
}
