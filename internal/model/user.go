package model

import "time"

// Roles assignable to a user. Admins may delete other users.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an authenticated user in the system.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:30;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Name         string    `json:"name,omitempty" gorm:"size:255"`
	Role         string    `json:"role,omitempty" gorm:"size:50;default:'user'"`
	Provider     string    `json:"provider,omitempty" gorm:"size:50"` // Empty for local accounts, else "github"/"google"
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Profile      *Profile      `json:"profile,omitempty" gorm:"foreignKey:UserID"`
	Transactions []Transaction `json:"-" gorm:"foreignKey:UserID"`
}

// IsAdmin reports whether the user may perform administrative operations.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
