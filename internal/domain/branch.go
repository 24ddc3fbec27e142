package domain

import "time"

// Branch is taxonomy metadata only; the branch content itself lives
// outside this service.
type Branch struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex:ux_branches_name;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Keywords    string    `gorm:"type:text" json:"keywords"` // JSON-encoded string list
	Enabled     bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
}

func (Branch) TableName() string { return "branches" }
