package model

import "time"

// DefaultAvatar is the placeholder avatar assigned to every new profile.
const DefaultAvatar = "default.jpg"

// Profile is the one-to-one extension of a User. Exactly one profile exists
// per user; it is created synchronously when the user is created and removed
// when the user is deleted.
type Profile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Bio       string    `json:"bio" gorm:"type:text"`
	Avatar    string    `json:"avatar" gorm:"size:255;not null;default:'default.jpg'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
