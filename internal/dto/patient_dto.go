package dto

type PatientFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=200"`
}

type CreatePatientRequest struct {
	Name         string  `json:"name"          validate:"required,max=200"`
	DateOfBirth  *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender       *string `json:"gender"        validate:"omitempty,oneof=male female"`
	Phone        *string `json:"phone"         validate:"omitempty,max=30"`
	Address      *string `json:"address"`
	MedicalNotes *string `json:"medical_notes"`
}

type UpdatePatientRequest struct {
	Name         *string `json:"name"          validate:"omitempty,min=1,max=200"`
	DateOfBirth  *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender       *string `json:"gender"        validate:"omitempty,oneof=male female"`
	Phone        *string `json:"phone"         validate:"omitempty,max=30"`
	Address      *string `json:"address"`
	MedicalNotes *string `json:"medical_notes"`
}

type PatientResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	DateOfBirth  *string `json:"date_of_birth"`
	Gender       *string `json:"gender"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	MedicalNotes *string `json:"medical_notes"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type PatientListResponse struct {
	Data  []PatientResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
