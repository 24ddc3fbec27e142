package impl

import (
	"errors"
	"fmt"

	"sheily-auth/internal/domain"
)

var (
	ErrEmptyPassword = errors.New("empty password")

	ErrUsernameTooShort = fmt.Errorf("%w: username must be at least 3 characters", domain.ErrValidation)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	ErrInvalidEmail     = fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	ErrNoProfileFields  = fmt.Errorf("%w: no updatable fields supplied", domain.ErrValidation)
	ErrEmptyBranchName  = fmt.Errorf("%w: branch name is required", domain.ErrValidation)
	ErrEmptyMessage     = fmt.Errorf("%w: message is required", domain.ErrValidation)
)
