package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberRole is the role a member has inside a group
type MemberRole string

const (
	RoleAdmin  MemberRole = "Admin"
	RoleMember MemberRole = "Member"
)

// MemberStatus tells whether a member has been accepted into the group
type MemberStatus string

const (
	MemberActive  MemberStatus = "Active"
	MemberPending MemberStatus = "Pending"
)

// Member belongs to exactly one group
type Member struct {
	ID             string       `gorm:"primaryKey;size:36" json:"id"`
	GroupID        string       `gorm:"size:36;not null;index;uniqueIndex:idx_member_group_email" json:"groupId"`
	Name           string       `gorm:"size:100;not null" json:"name"`
	Email          string       `gorm:"size:255;uniqueIndex:idx_member_group_email" json:"email"`
	Phone          string       `gorm:"size:32" json:"phone,omitempty"`
	TelegramChatID int64        `json:"telegramChatId,omitempty"`
	Role           MemberRole   `gorm:"size:10;not null" json:"role"`
	Status         MemberStatus `gorm:"size:10;not null" json:"status"`
	JoinedAt       time.Time    `gorm:"not null" json:"joinedAt"`
}

// TableName specifies the table name for the Member model
func (Member) TableName() string {
	return "member"
}

// SetDefaults fills id, role, status and join time of a new member
func (m *Member) SetDefaults(now time.Time) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Role == "" {
		m.Role = RoleMember
	}
	if m.Status == "" {
		m.Status = MemberPending
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = now
	}
}

// BeforeCreate hook is called before inserting a member
func (m *Member) BeforeCreate(tx *gorm.DB) error {
	m.SetDefaults(time.Now())
	return nil
}

// Contact returns the member's delivery details
func (m *Member) Contact() Contact {
	return Contact{
		Name:           m.Name,
		Phone:          m.Phone,
		Email:          m.Email,
		TelegramChatID: m.TelegramChatID,
	}
}

// MemberRequest represents the data needed to add a member to a group
type MemberRequest struct {
	Name           string       `json:"name" binding:"required,max=100"`
	Email          string       `json:"email" binding:"required,email"`
	Phone          string       `json:"phone" binding:"max=32"`
	TelegramChatID int64        `json:"telegramChatId"`
	Role           MemberRole   `json:"role" binding:"omitempty,oneof=Admin Member"`
	Status         MemberStatus `json:"status" binding:"omitempty,oneof=Active Pending"`
}

// ToMember builds a new member of groupID
func (req *MemberRequest) ToMember(groupID string) *Member {
	return &Member{
		GroupID:        groupID,
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          req.Phone,
		TelegramChatID: req.TelegramChatID,
		Role:           req.Role,
		Status:         req.Status,
	}
}

// UpdateMemberRequest is a partial member update
type UpdateMemberRequest struct {
	Name           *string       `json:"name" binding:"omitempty,min=1,max=100"`
	Email          *string       `json:"email" binding:"omitempty,email"`
	Phone          *string       `json:"phone" binding:"omitempty,max=32"`
	TelegramChatID *int64        `json:"telegramChatId"`
	Role           *MemberRole   `json:"role" binding:"omitempty,oneof=Admin Member"`
	Status         *MemberStatus `json:"status" binding:"omitempty,oneof=Active Pending"`
}

// ApplyTo merges the update into m
func (req *UpdateMemberRequest) ApplyTo(m *Member) {
	if req.Name != nil {
		m.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		m.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		m.Phone = *req.Phone
	}
	if req.TelegramChatID != nil {
		m.TelegramChatID = *req.TelegramChatID
	}
	if req.Role != nil {
		m.Role = *req.Role
	}
	if req.Status != nil {
		m.Status = *req.Status
	}
}

// JoinRequest is the body of an invite redemption
type JoinRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"max=32"`
	TelegramChatID int64  `json:"telegramChatId"`
}

// ToMember builds a pending member of groupID
func (req *JoinRequest) ToMember(groupID string) *Member {
	return &Member{
		GroupID:        groupID,
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          req.Phone,
		TelegramChatID: req.TelegramChatID,
		Role:           RoleMember,
		Status:         MemberPending,
	}
}
