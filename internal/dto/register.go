package dto

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
}

type RegisterResponse struct {
	UserID                    int64  `json:"userId"`
	RequiresEmailVerification bool   `json:"requiresEmailVerification"`
	Message                   string `json:"message"`
}
