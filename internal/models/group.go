package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JoinCodeLength is the number of characters in a group invite code
const JoinCodeLength = 8

const joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Group is a named collection of members that reminders can target
type Group struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Owner       string    `gorm:"size:30;not null;index" json:"-"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	JoinCode    string    `gorm:"size:16;not null;uniqueIndex" json:"joinCode"`
	MemberCount int       `gorm:"-" json:"memberCount"`
	InviteLink  string    `gorm:"-" json:"inviteLink,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"-"`
}

// TableName specifies the table name for the Group model
func (Group) TableName() string {
	return "group"
}

// SetDefaults fills the id, join code and timestamps of a new group
func (g *Group) SetDefaults(now time.Time) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.JoinCode == "" {
		code, err := GenerateJoinCode()
		if err != nil {
			return err
		}
		g.JoinCode = code
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = now
	}
	return nil
}

// BeforeCreate hook is called before inserting a group
func (g *Group) BeforeCreate(tx *gorm.DB) error {
	return g.SetDefaults(time.Now())
}

// BeforeSave hook is called before saving the group
func (g *Group) BeforeSave(tx *gorm.DB) error {
	g.UpdatedAt = time.Now()
	return nil
}

// Ref returns the denormalized reference stored on reminders
func (g *Group) Ref() GroupRef {
	return GroupRef{ID: g.ID, Name: g.Name}
}

// WithInviteLink sets InviteLink from the public base URL
func (g *Group) WithInviteLink(baseURL string) {
	if baseURL == "" || g.JoinCode == "" {
		return
	}
	g.InviteLink = fmt.Sprintf("%s/invite/%s", strings.TrimRight(baseURL, "/"), g.JoinCode)
}

// GenerateJoinCode creates a random alphanumeric invite code
func GenerateJoinCode() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := 0; i < JoinCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		sb.WriteByte(joinCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// CreateGroupRequest represents the data needed to create a new group
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateGroupRequest is a partial group update
type UpdateGroupRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// ApplyTo merges the update into g
func (req *UpdateGroupRequest) ApplyTo(g *Group) {
	if req.Name != nil {
		g.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		g.Description = *req.Description
	}
}
