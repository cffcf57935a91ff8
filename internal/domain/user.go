package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:150;not null;uniqueIndex"`
	Email        string    `json:"email" gorm:"size:254;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"size:20;not null;default:user"`
	Bio          string    `json:"bio" gorm:"size:500"`
	ProfileImage *string   `json:"profile_image,omitempty" gorm:"size:500"`
	DateJoined   time.Time `json:"date_joined" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// IsStaff reports whether the user may manage the catalog.
func (u *User) IsStaff() bool {
	return u != nil && u.Role == RoleAdmin
}
