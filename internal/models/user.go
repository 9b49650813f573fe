package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is an account with prepaid analysis credits. Access is by code
// lookup; there is no password flow in this service.
type User struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Email      string         `json:"email" gorm:"uniqueIndex"`
	AccessCode string         `json:"-" gorm:"uniqueIndex;size:32"`
	Credits    int            `json:"credits"`
	Plan       string         `json:"plan" gorm:"default:free"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// AnalysisRecord stores one executed analysis for bookkeeping and audit.
type AnalysisRecord struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	UserID     uint           `json:"user_id" gorm:"index"`
	FixtureID  int            `json:"fixture_id" gorm:"index"`
	Request    datatypes.JSON `json:"request"`
	Response   datatypes.JSON `json:"response"`
	Confidence float64        `json:"confidence"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ErrNoCredits is returned when a debit would take a user below zero.
var ErrNoCredits = errors.New("no analysis credits remaining")

// GetUserByID loads a user by primary key.
func GetUserByID(db *gorm.DB, id uint) (*User, error) {
	var user User
	if err := db.First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return &user, nil
}

// GetUserByAccessCode resolves a login code to a user.
func GetUserByAccessCode(db *gorm.DB, code string) (*User, error) {
	var user User
	if err := db.Where("access_code = ?", code).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to look up access code: %w", err)
	}
	return &user, nil
}
