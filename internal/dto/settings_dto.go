package dto

type UpsertSettingRequest struct {
	Value       *string `json:"value"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type SettingResponse struct {
	ID          uint    `json:"id"`
	Key         string  `json:"key"`
	Value       *string `json:"value"`
	Description *string `json:"description"`
	UpdatedAt   string  `json:"updated_at"`
}
