package domain

import "time"

type User struct {
	ID            int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username      string  `gorm:"size:50;uniqueIndex:ux_users_username;not null" json:"username"`
	Email         string  `gorm:"size:100;uniqueIndex:ux_users_email;not null" json:"email"`
	PasswordHash  string  `gorm:"size:255;not null" json:"-"`
	FullName      *string `gorm:"size:100" json:"fullName,omitempty"`
	Role          string  `gorm:"size:20;not null;default:user" json:"role"`
	Tokens        int     `gorm:"not null;default:100" json:"tokens"`
	Level         int     `gorm:"not null;default:1" json:"level"`
	IsActive      bool    `gorm:"not null;default:true" json:"isActive"`
	EmailVerified bool    `gorm:"not null;default:false" json:"emailVerified"`

	VerificationToken    *string    `gorm:"size:64;index" json:"-"`
	ResetPasswordToken   *string    `gorm:"size:64;index" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`

	CreatedAt time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"not null" json:"updatedAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string { return "users" }

// Profile returns the public projection of a user: everything a client
// may see, never the password hash or recovery tokens.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		Tokens:   u.Tokens,
		Level:    u.Level,
	}
}

type UserProfile struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName *string `json:"fullName,omitempty"`
	Role     string  `json:"role"`
	Tokens   int     `json:"tokens"`
	Level    int     `json:"level"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
