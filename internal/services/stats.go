package services

import (
	"time"

	"hatirlat/internal/models"
)

// ReminderStats is the dashboard summary of a reminder collection
type ReminderStats struct {
	Total     int                    `json:"total"`
	Active    int                    `json:"active"`
	Completed int                    `json:"completed"`
	Overdue   int                    `json:"overdue"`
	Today     int                    `json:"today"`
	Groups    int                    `json:"groups"`
	Paused    int                    `json:"paused"`
	Failed    int                    `json:"failed"`
	ByChannel map[models.Channel]int `json:"byChannel"`
}

// ComputeStats aggregates reminders relative to now. Calendar days are taken in now's location.
func ComputeStats(reminders []models.Reminder, now time.Time) ReminderStats {
	stats := ReminderStats{
		Total:     len(reminders),
		ByChannel: make(map[models.Channel]int, len(models.AllChannels)),
	}
	for _, ch := range models.AllChannels {
		stats.ByChannel[ch] = 0
	}

	groups := make(map[string]struct{})
	for i := range reminders {
		r := &reminders[i]

		switch r.Status {
		case models.StatusScheduled:
			stats.Active++
			if r.DateTime.Before(now) {
				stats.Overdue++
			}
			if sameDay(r.DateTime, now) {
				stats.Today++
			}
		case models.StatusSent:
			stats.Completed++
		case models.StatusPaused:
			stats.Paused++
		case models.StatusFailed:
			stats.Failed++
		}

		if r.Group.ID != "" {
			groups[r.Group.ID] = struct{}{}
		}
		for _, ch := range r.Channels.Dedupe() {
			stats.ByChannel[ch]++
		}
	}
	stats.Groups = len(groups)
	return stats
}

func sameDay(t, now time.Time) bool {
	y1, m1, d1 := t.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
