package models

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Account represents a user account in the system
type Account struct {
	Username   string         `gorm:"primaryKey;size:30;not null" json:"username"`
	Email      string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPass string         `gorm:"size:255;not null" json:"-"`
	Premium    bool           `gorm:"not null;default:false" json:"premium"`
	LastLogin  time.Time      `gorm:"not null" json:"lastLogin"`
	CreatedAt  time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time      `gorm:"not null" json:"-"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "account"
}

// SetDefaults fills the timestamps of a new account
func (a *Account) SetDefaults(now time.Time) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	if a.LastLogin.IsZero() {
		a.LastLogin = now
	}
}

// BeforeCreate hook is called before creating a new account
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	a.SetDefaults(time.Now())
	return nil
}

// BeforeSave hook is called before saving the account
func (a *Account) BeforeSave(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return nil
}

// SetPassword hashes and stores the password
func (a *Account) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	a.HashedPass = string(hash)
	return nil
}

// VerifyPassword compares password with the stored hash
func (a *Account) VerifyPassword(password string) bool {
	if a.HashedPass == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.HashedPass), []byte(password)) == nil
}

// CreateAccountRequest represents the data needed to create a new account
type CreateAccountRequest struct {
	Username string `json:"username" binding:"required,alphanum,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the credentials exchanged for a token
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new access token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}
