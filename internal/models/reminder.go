package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotToggleable is returned when a reminder that was already sent or failed is toggled
var ErrNotToggleable = errors.New("reminder status cannot be toggled")

// ReminderType tells whether a reminder targets a single contact or a group
type ReminderType string

const (
	PersonalReminder ReminderType = "personal"
	GroupReminder    ReminderType = "group"
)

// ReminderStatus is the delivery state of a reminder
type ReminderStatus string

const (
	StatusScheduled ReminderStatus = "scheduled"
	StatusSent      ReminderStatus = "sent"
	StatusPaused    ReminderStatus = "paused"
	StatusFailed    ReminderStatus = "failed"
)

// Channel is a delivery medium
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelPush     Channel = "push"
)

// AllChannels lists every supported channel in display order
var AllChannels = []Channel{ChannelEmail, ChannelSMS, ChannelWhatsApp, ChannelPush}

// RepeatType is the recurrence rule of a reminder
type RepeatType string

const (
	RepeatNone   RepeatType = "none"
	RepeatHourly RepeatType = "hourly"
	RepeatDaily  RepeatType = "daily"
	RepeatWeekly RepeatType = "weekly"
	RepeatCustom RepeatType = "custom"
)

// RepeatFrequency is the unit of a custom repeat interval
type RepeatFrequency string

const (
	FrequencyDay   RepeatFrequency = "day"
	FrequencyWeek  RepeatFrequency = "week"
	FrequencyMonth RepeatFrequency = "month"
)

// Weekday is a three letter lowercase day code ("mon" ... "sun")
type Weekday string

var weekdayCodes = map[Weekday]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// TimeWeekday converts the code to a time.Weekday
func (w Weekday) TimeWeekday() (time.Weekday, bool) {
	d, ok := weekdayCodes[Weekday(strings.ToLower(string(w)))]
	return d, ok
}

// Contact is the recipient of a personal reminder
type Contact struct {
	Name           string `gorm:"size:100" json:"name"`
	Phone          string `gorm:"size:32" json:"phone"`
	Email          string `gorm:"size:255" json:"email" binding:"omitempty,email"`
	TelegramChatID int64  `json:"telegramChatId,omitempty"`
}

// IsZero reports whether no contact detail is set
func (c Contact) IsZero() bool {
	return c.Name == "" && c.Phone == "" && c.Email == "" && c.TelegramChatID == 0
}

// GroupRef is the denormalized group a group reminder targets
type GroupRef struct {
	ID   string `gorm:"size:36;index" json:"id"`
	Name string `gorm:"size:100" json:"name"`
}

// ChannelList is stored as a JSON array
type ChannelList []Channel

func (c ChannelList) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Channel(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *ChannelList) Scan(value interface{}) error {
	if value == nil {
		*c = make(ChannelList, 0)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported type for ChannelList: %T", value)
	}
}

// Contains reports whether ch is in the list
func (c ChannelList) Contains(ch Channel) bool {
	for _, existing := range c {
		if existing == ch {
			return true
		}
	}
	return false
}

// Dedupe returns the list without repeated channels, keeping first occurrences
func (c ChannelList) Dedupe() ChannelList {
	out := make(ChannelList, 0, len(c))
	for _, ch := range c {
		if !out.Contains(ch) {
			out = append(out, ch)
		}
	}
	return out
}

// CustomRepeatConfig describes a custom recurrence such as "every 2 weeks on fri"
type CustomRepeatConfig struct {
	Interval   int             `json:"interval" binding:"required,min=1"`
	Frequency  RepeatFrequency `json:"frequency" binding:"required,oneof=day week month"`
	DaysOfWeek []Weekday       `json:"daysOfWeek,omitempty" binding:"omitempty,dive,oneof=mon tue wed thu fri sat sun"`
}

func (c CustomRepeatConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *CustomRepeatConfig) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported type for CustomRepeatConfig: %T", value)
	}
}

// Reminder is a scheduled notification with recipients, channels and timing
type Reminder struct {
	ID           string              `gorm:"primaryKey;size:36" json:"id"`
	Owner        string              `gorm:"size:30;not null;index" json:"-"`
	Title        string              `gorm:"size:200;not null" json:"title"`
	Type         ReminderType        `gorm:"size:10;not null" json:"type"`
	Message      string              `gorm:"type:text" json:"message"`
	DateTime     time.Time           `gorm:"not null;index" json:"dateTime"`
	Status       ReminderStatus      `gorm:"size:10;not null;index" json:"status"`
	Contact      Contact             `gorm:"embedded;embeddedPrefix:contact_" json:"contact"`
	Group        GroupRef            `gorm:"embedded;embeddedPrefix:group_" json:"group"`
	Channels     ChannelList         `gorm:"type:json" json:"channels"`
	Repeat       RepeatType          `gorm:"size:10;not null;default:none" json:"repeat"`
	CustomRepeat *CustomRepeatConfig `gorm:"type:json" json:"customRepeat,omitempty"`
	CreatedAt    time.Time           `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time           `gorm:"not null" json:"updatedAt"`
}

// TableName specifies the table name for the Reminder model
func (Reminder) TableName() string {
	return "reminder"
}

// SetDefaults fills the id, status, repeat and timestamps of a new reminder
func (r *Reminder) SetDefaults(now time.Time) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = StatusScheduled
	}
	if r.Repeat == "" {
		r.Repeat = RepeatNone
	}
	if r.Channels == nil {
		r.Channels = ChannelList{}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}
}

// BeforeCreate hook is called before inserting a reminder
func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	r.SetDefaults(time.Now())
	return nil
}

// BeforeSave hook is called before saving the reminder
func (r *Reminder) BeforeSave(tx *gorm.DB) error {
	r.DateTime = r.DateTime.UTC()
	r.UpdatedAt = time.Now()
	return nil
}

// IsToggleable reports whether the reminder can be paused or resumed
func (r *Reminder) IsToggleable() bool {
	return r.Status == StatusScheduled || r.Status == StatusPaused
}

// ToggleStatus flips a reminder between scheduled and paused
func (r *Reminder) ToggleStatus() error {
	switch r.Status {
	case StatusScheduled:
		r.Status = StatusPaused
	case StatusPaused:
		r.Status = StatusScheduled
	default:
		return fmt.Errorf("%w: status is %s", ErrNotToggleable, r.Status)
	}
	return nil
}

// IsRepeating reports whether the reminder has a recurrence rule
func (r *Reminder) IsRepeating() bool {
	switch r.Repeat {
	case RepeatHourly, RepeatDaily, RepeatWeekly:
		return true
	case RepeatCustom:
		return r.CustomRepeat != nil && r.CustomRepeat.Interval > 0
	}
	return false
}

// ReminderRequest represents the data needed to create a reminder
type ReminderRequest struct {
	Title        string              `json:"title" binding:"required,max=200"`
	Type         ReminderType        `json:"type" binding:"required,oneof=personal group"`
	Message      string              `json:"message" binding:"max=2000"`
	DateTime     time.Time           `json:"dateTime" binding:"required"`
	Contact      Contact             `json:"contact"`
	Group        GroupRef            `json:"group"`
	Channels     ChannelList         `json:"channels" binding:"required,min=1,dive,oneof=email sms whatsapp push"`
	Repeat       RepeatType          `json:"repeat" binding:"omitempty,oneof=none hourly daily weekly custom"`
	CustomRepeat *CustomRepeatConfig `json:"customRepeat"`
}

// Validate checks the rules that span several fields
func (req *ReminderRequest) Validate() error {
	if req.Type == GroupReminder && req.Group.ID == "" {
		return errors.New("group reminders need a group id")
	}
	if req.Repeat == RepeatCustom && req.CustomRepeat == nil {
		return errors.New("customRepeat is required when repeat is custom")
	}
	return nil
}

// ToReminder builds a new scheduled reminder owned by owner
func (req *ReminderRequest) ToReminder(owner string) *Reminder {
	r := &Reminder{
		Owner:    owner,
		Title:    strings.TrimSpace(req.Title),
		Type:     req.Type,
		Message:  req.Message,
		DateTime: req.DateTime,
		Status:   StatusScheduled,
		Channels: req.Channels.Dedupe(),
		Repeat:   req.Repeat,
	}
	if r.Repeat == "" {
		r.Repeat = RepeatNone
	}
	switch req.Type {
	case PersonalReminder:
		r.Contact = req.Contact
	case GroupReminder:
		r.Group = req.Group
	}
	if r.Repeat == RepeatCustom {
		r.CustomRepeat = req.CustomRepeat
	}
	return r
}

// UpdateReminderRequest is a partial update: omitted fields keep their value
type UpdateReminderRequest struct {
	Title        *string             `json:"title" binding:"omitempty,min=1,max=200"`
	Type         *ReminderType       `json:"type" binding:"omitempty,oneof=personal group"`
	Message      *string             `json:"message" binding:"omitempty,max=2000"`
	DateTime     *time.Time          `json:"dateTime"`
	Status       *ReminderStatus     `json:"status" binding:"omitempty,oneof=scheduled sent paused failed"`
	Contact      *Contact            `json:"contact"`
	Group        *GroupRef           `json:"group"`
	Channels     ChannelList         `json:"channels" binding:"omitempty,min=1,dive,oneof=email sms whatsapp push"`
	Repeat       *RepeatType         `json:"repeat" binding:"omitempty,oneof=none hourly daily weekly custom"`
	CustomRepeat *CustomRepeatConfig `json:"customRepeat"`
}

// ApplyTo merges the update into r and re-checks the cross-field rules
func (req *UpdateReminderRequest) ApplyTo(r *Reminder) error {
	if req.Title != nil {
		r.Title = strings.TrimSpace(*req.Title)
	}
	if req.Type != nil {
		r.Type = *req.Type
	}
	if req.Message != nil {
		r.Message = *req.Message
	}
	if req.DateTime != nil {
		r.DateTime = *req.DateTime
	}
	if req.Status != nil {
		r.Status = *req.Status
	}
	if req.Contact != nil {
		r.Contact = *req.Contact
	}
	if req.Group != nil {
		r.Group = *req.Group
	}
	switch r.Type {
	case PersonalReminder:
		r.Group = GroupRef{}
	case GroupReminder:
		r.Contact = Contact{}
	}
	if req.Channels != nil {
		if len(req.Channels) == 0 {
			return errors.New("at least one channel is required")
		}
		r.Channels = req.Channels.Dedupe()
	}
	if req.Repeat != nil {
		r.Repeat = *req.Repeat
	}
	if req.CustomRepeat != nil {
		r.CustomRepeat = req.CustomRepeat
	}
	if r.Repeat != RepeatCustom {
		r.CustomRepeat = nil
	}

	if r.Type == GroupReminder && r.Group.ID == "" {
		return errors.New("group reminders need a group id")
	}
	if r.Repeat == RepeatCustom && r.CustomRepeat == nil {
		return errors.New("customRepeat is required when repeat is custom")
	}
	return nil
}

// StatusRequest sets a reminder's status directly
type StatusRequest struct {
	Status ReminderStatus `json:"status" binding:"required,oneof=scheduled sent paused failed"`
}
