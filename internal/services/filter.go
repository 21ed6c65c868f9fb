package services

import (
	"sort"
	"strings"

	"hatirlat/internal/models"
)

// ReminderFilter holds conjunctive criteria; zero fields match everything
type ReminderFilter struct {
	Query   string                `form:"q"`
	Status  models.ReminderStatus `form:"status" binding:"omitempty,oneof=scheduled sent paused failed"`
	Type    models.ReminderType   `form:"type" binding:"omitempty,oneof=personal group"`
	Channel models.Channel        `form:"channel" binding:"omitempty,oneof=email sms whatsapp push"`
	Sort    string                `form:"sort" binding:"omitempty,oneof=asc desc"`
}

// Matches reports whether r satisfies every set criterion
func (f ReminderFilter) Matches(r *models.Reminder) bool {
	if q := strings.TrimSpace(f.Query); q != "" &&
		!strings.Contains(strings.ToLower(r.Title), strings.ToLower(q)) {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Channel != "" && !r.Channels.Contains(f.Channel) {
		return false
	}
	return true
}

// Apply returns the matching reminders ordered by dateTime, newest first unless Sort is "asc".
// The input slice is not modified.
func (f ReminderFilter) Apply(reminders []models.Reminder) []models.Reminder {
	out := make([]models.Reminder, 0, len(reminders))
	for i := range reminders {
		if f.Matches(&reminders[i]) {
			out = append(out, reminders[i])
		}
	}

	asc := f.Sort == "asc"
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return out[i].DateTime.Before(out[j].DateTime)
		}
		return out[i].DateTime.After(out[j].DateTime)
	})
	return out
}
