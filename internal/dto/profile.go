package dto

type UpdateProfileRequest struct {
	FullName *string `json:"fullName,omitempty"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}
