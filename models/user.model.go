package models

import (
	"gorm.io/gorm"
)

const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

// User is a single entity for every role. Role-specific columns stay zero
// for the roles that do not use them.
type User struct {
	gorm.Model
	Name            string `gorm:"default:''" json:"name"`
	Email           string `gorm:"unique;not null" json:"email"`
	Password        string `gorm:"not null" json:"-"`
	Role            string `gorm:"default:'STUDENT'" json:"role"` // STUDENT, INSTRUCTOR, ADMIN
	Bio             string `gorm:"type:text" json:"bio"`
	Headline        string `json:"headline"`
	ProfileImage    string `gorm:"default:''" json:"profileImage"`
	IsEmailVerified bool   `gorm:"default:false" json:"isEmailVerified"`

	// Instructor aggregates, in minor currency units. Mutated only inside
	// the enrollment transaction.
	Expertise           string `json:"expertise,omitempty"`
	TotalIncome         int64  `gorm:"default:0" json:"totalIncome,omitempty"`
	StudentsTaughtCount int64  `gorm:"default:0" json:"studentsTaughtCount,omitempty"`

	IsDeleted bool `gorm:"default:false" json:"-"`
}
