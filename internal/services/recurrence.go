package services

import (
	"sort"
	"time"

	"hatirlat/internal/models"
)

// maxSteps bounds the walk from an old dateTime to the first occurrence after a given time
const maxSteps = 100000

// NextOccurrence returns the first occurrence of r strictly after after, stepping from r.DateTime.
// Calendar steps and weekdays are evaluated in loc; nil means UTC.
// It returns false when r does not repeat.
func NextOccurrence(r *models.Reminder, after time.Time, loc *time.Location) (time.Time, bool) {
	if !r.IsRepeating() {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	start := r.DateTime.In(loc)
	after = after.In(loc)

	switch r.Repeat {
	case models.RepeatHourly:
		return stepFixed(start, after, time.Hour), true
	case models.RepeatDaily:
		return stepDates(start, after, func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }), true
	case models.RepeatWeekly:
		return stepDates(start, after, func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }), true
	}

	cfg := r.CustomRepeat
	switch cfg.Frequency {
	case models.FrequencyDay:
		return stepDates(start, after, func(t time.Time) time.Time { return t.AddDate(0, 0, cfg.Interval) }), true
	case models.FrequencyMonth:
		for k := 1; k <= maxSteps; k++ {
			next := addMonthsClamped(start, k*cfg.Interval)
			if next.After(after) {
				return next, true
			}
		}
		return time.Time{}, false
	case models.FrequencyWeek:
		days := mondayIndexes(cfg.DaysOfWeek)
		if len(days) == 0 {
			return stepDates(start, after, func(t time.Time) time.Time { return t.AddDate(0, 0, 7*cfg.Interval) }), true
		}
		return stepDates(start, after, func(t time.Time) time.Time { return nextListedDay(t, days, cfg.Interval) }), true
	}
	return time.Time{}, false
}

// stepFixed jumps straight to the first multiple of step past after
func stepFixed(start, after time.Time, step time.Duration) time.Time {
	if start.After(after) {
		return start.Add(step)
	}
	n := after.Sub(start)/step + 1
	return start.Add(n * step)
}

func stepDates(start, after time.Time, step func(time.Time) time.Time) time.Time {
	next := step(start)
	for i := 0; i < maxSteps && !next.After(after); i++ {
		next = step(next)
	}
	return next
}

// nextListedDay moves to the next listed weekday in t's Monday-start week,
// or to the first listed weekday interval weeks later
func nextListedDay(t time.Time, days []int, interval int) time.Time {
	current := mondayIndex(t.Weekday())
	for _, d := range days {
		if d > current {
			return t.AddDate(0, 0, d-current)
		}
	}
	monday := t.AddDate(0, 0, -current)
	return monday.AddDate(0, 0, 7*interval+days[0])
}

func mondayIndexes(codes []models.Weekday) []int {
	seen := make(map[int]bool, len(codes))
	var out []int
	for _, code := range codes {
		wd, ok := code.TimeWeekday()
		if !ok {
			continue
		}
		idx := mondayIndex(wd)
		if !seen[idx] {
			seen[idx] = true
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// addMonthsClamped adds months keeping the day of month, clamped to the month's last day
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
