package models

import (
	"time"

	"gorm.io/gorm"
)

// PurchasedCourse is one entry of a user's purchased set. The composite
// unique index carries the no-duplicate-purchase invariant into the schema.
type PurchasedCourse struct {
	gorm.Model
	UserID      uint      `json:"userId" gorm:"uniqueIndex:idx_purchase_user_course;not null"`
	CourseID    uint      `json:"courseId" gorm:"uniqueIndex:idx_purchase_user_course;not null"`
	PurchasedAt time.Time `json:"purchasedAt" gorm:"not null"`

	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (PurchasedCourse) TableName() string {
	return "purchased_courses"
}

// CourseProgress tracks a user's progress in one enrolled course.
// Created at most once per (user, course).
type CourseProgress struct {
	gorm.Model
	UserID     uint      `json:"userId" gorm:"uniqueIndex:idx_progress_user_course;not null"`
	CourseID   uint      `json:"courseId" gorm:"uniqueIndex:idx_progress_user_course;not null"`
	Progress   float64   `json:"progress" gorm:"default:0"` // completion percentage (0-100)
	LastViewed time.Time `json:"lastViewed"`
}

func (CourseProgress) TableName() string {
	return "course_progress"
}

// CartItem is one course waiting in a user's cart.
type CartItem struct {
	gorm.Model
	UserID   uint `json:"userId" gorm:"uniqueIndex:idx_cart_user_course;not null"`
	CourseID uint `json:"courseId" gorm:"uniqueIndex:idx_cart_user_course;not null"`

	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// WishlistItem is one course saved to a user's wishlist.
type WishlistItem struct {
	gorm.Model
	UserID   uint `json:"userId" gorm:"uniqueIndex:idx_wishlist_user_course;not null"`
	CourseID uint `json:"courseId" gorm:"uniqueIndex:idx_wishlist_user_course;not null"`

	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}
