package models

import (
	"time"

	"gorm.io/datatypes"
)

// DeliveryStatus is the outcome of a single send
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// Delivery records one send of a reminder occurrence to one recipient over one channel.
// The dispatcher checks it to avoid sending the same occurrence twice.
type Delivery struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ReminderID string         `gorm:"size:36;not null;index:idx_delivery_occurrence" json:"reminderId"`
	Occurrence time.Time      `gorm:"not null;index:idx_delivery_occurrence" json:"occurrence"`
	Channel    Channel        `gorm:"size:10;not null" json:"channel"`
	Recipient  string         `gorm:"size:255;not null" json:"recipient"`
	Status     DeliveryStatus `gorm:"size:10;not null" json:"status"`
	Error      string         `gorm:"type:text" json:"error,omitempty"`
	Detail     datatypes.JSON `json:"detail,omitempty"`
	SentAt     time.Time      `gorm:"not null" json:"sentAt"`
}

// TableName specifies the table name for the Delivery model
func (Delivery) TableName() string {
	return "delivery"
}
