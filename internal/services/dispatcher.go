package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"hatirlat/internal/logger"
	"hatirlat/internal/models"
	"hatirlat/internal/store"

	"github.com/jmhodges/clock"
	"gorm.io/datatypes"
)

// DispatchResult summarizes one dispatcher pass
type DispatchResult struct {
	Due        int `json:"due"`
	Sent       int `json:"sent"`
	Advanced   int `json:"advanced"`
	Failed     int `json:"failed"`
	Deliveries int `json:"deliveries"`
	Skipped    int `json:"skipped"`
}

// Dispatcher delivers due reminders over their channels and records every send
type Dispatcher struct {
	store       store.Store
	notifiers   Notifiers
	clock       clock.Clock
	sendTimeout time.Duration
	location    *time.Location
	mu          sync.Mutex
}

// NewDispatcher builds a dispatcher. Recurrence is evaluated in loc.
// sendTimeout bounds each notifier call; providers whose client has no context
// support get it as their HTTP client timeout instead.
func NewDispatcher(s store.Store, notifiers Notifiers, clk clock.Clock, loc *time.Location, sendTimeout time.Duration) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Dispatcher{
		store:       s,
		notifiers:   notifiers,
		clock:       clk,
		sendTimeout: sendTimeout,
		location:    loc,
	}
}

// Tick runs a pass unless one is already running. It is the cron job.
func (d *Dispatcher) Tick() {
	if !d.mu.TryLock() {
		logger.Warn("Dispatch pass still running, skipping tick")
		return
	}
	defer d.mu.Unlock()

	result, err := d.run(context.Background())
	if err != nil {
		logger.Error("Dispatch pass failed", "err", err)
		return
	}
	if result.Due > 0 {
		logger.Info("Dispatch pass finished", "due", result.Due, "sent", result.Sent,
			"advanced", result.Advanced, "failed", result.Failed, "skipped", result.Skipped, "deliveries", result.Deliveries)
	}
}

// DispatchDue runs one pass, waiting for a running pass to finish first
func (d *Dispatcher) DispatchDue(ctx context.Context) (DispatchResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.run(ctx)
}

func (d *Dispatcher) run(ctx context.Context) (DispatchResult, error) {
	now := d.clock.Now()
	due, err := d.store.DueReminders(ctx, now)
	if err != nil {
		return DispatchResult{}, err
	}

	result := DispatchResult{Due: len(due)}
	for i := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		r := &due[i]
		if err := d.dispatchOne(ctx, r, now, &result); err != nil {
			logger.Error("Failed to dispatch reminder", "reminder", r.ID, "err", err)
		}
	}
	return result, nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, r *models.Reminder, now time.Time, result *DispatchResult) error {
	occurrence := r.DateTime

	delivered, err := d.store.HasDelivery(ctx, r.ID, occurrence)
	if err != nil {
		return err
	}

	var anySent bool
	if delivered {
		// sent before a crash; only the status update is missing
		anySent, err = d.occurrenceSent(ctx, r.ID, occurrence)
		if err != nil {
			return err
		}
	} else {
		recipients, err := d.recipients(ctx, r)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			logger.Warn("Reminder group no longer exists", "reminder", r.ID, "group", r.Group.ID)
		}
		if len(recipients) == 0 {
			logger.Warn("Reminder has no recipients", "reminder", r.ID, "type", r.Type)
		}
		anySent = d.deliver(ctx, r, recipients, result)
	}

	status, next := models.StatusSent, time.Time{}
	switch {
	case !anySent:
		status = models.StatusFailed
	case r.IsRepeating():
		if t, ok := NextOccurrence(r, now, d.location); ok {
			status, next = models.StatusScheduled, t
		}
	}

	// the reminder may have been edited, paused or deleted while sending
	applied, err := d.store.FinishOccurrence(ctx, r.ID, occurrence, status, next)
	if err != nil {
		return fmt.Errorf("finish occurrence: %w", err)
	}
	if !applied {
		logger.Info("Reminder changed during dispatch, keeping the new state", "reminder", r.ID)
		result.Skipped++
		return nil
	}

	switch {
	case status == models.StatusFailed:
		result.Failed++
	case !next.IsZero():
		result.Advanced++
	default:
		result.Sent++
	}
	return nil
}

// recipients resolves who receives r. Group reminders go to Active members only.
func (d *Dispatcher) recipients(ctx context.Context, r *models.Reminder) ([]models.Contact, error) {
	if r.Type != models.GroupReminder {
		if r.Contact.IsZero() {
			return nil, nil
		}
		return []models.Contact{r.Contact}, nil
	}

	if _, err := d.store.GetGroup(ctx, r.Owner, r.Group.ID); err != nil {
		return nil, err
	}
	members, err := d.store.ListMembers(ctx, r.Group.ID)
	if err != nil {
		return nil, err
	}
	var out []models.Contact
	for i := range members {
		if members[i].Status == models.MemberActive {
			out = append(out, members[i].Contact())
		}
	}
	return out, nil
}

// deliver sends every (recipient, channel) pair and reports whether at least one succeeded
func (d *Dispatcher) deliver(ctx context.Context, r *models.Reminder, recipients []models.Contact, result *DispatchResult) bool {
	msg := Message{
		ReminderID: r.ID,
		Title:      r.Title,
		Body:       r.Message,
		Occurrence: r.DateTime,
	}

	anySent := false
	for _, to := range recipients {
		for _, ch := range r.Channels.Dedupe() {
			delivery := d.send(ctx, to, ch, msg)
			if err := d.store.RecordDelivery(ctx, delivery); err != nil {
				logger.Error("Failed to record delivery", "reminder", r.ID, "channel", ch, "err", err)
			}
			result.Deliveries++
			if delivery.Status == models.DeliverySent {
				anySent = true
			}
		}
	}
	return anySent
}

func (d *Dispatcher) send(ctx context.Context, to models.Contact, ch models.Channel, msg Message) *models.Delivery {
	delivery := &models.Delivery{
		ReminderID: msg.ReminderID,
		Occurrence: msg.Occurrence,
		Channel:    ch,
		Recipient:  Address(to, ch),
		Status:     models.DeliverySent,
	}
	if delivery.Recipient == "" {
		delivery.Recipient = to.Name
	}

	notifier, ok := d.notifiers[ch]
	if !ok {
		delivery.Status = models.DeliveryFailed
		delivery.Error = fmt.Sprintf("no notifier for channel %s", ch)
		delivery.SentAt = d.clock.Now()
		return delivery
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	detail, err := notifier.Send(sendCtx, to, msg)
	cancel()

	delivery.SentAt = d.clock.Now()
	if err != nil {
		delivery.Status = models.DeliveryFailed
		delivery.Error = err.Error()
		logger.Warn("Delivery failed", "reminder", msg.ReminderID, "channel", ch, "to", delivery.Recipient, "err", err)
	}
	if len(detail) > 0 {
		if b, err := json.Marshal(detail); err == nil {
			delivery.Detail = datatypes.JSON(b)
		}
	}
	return delivery
}

func (d *Dispatcher) occurrenceSent(ctx context.Context, reminderID string, occurrence time.Time) (bool, error) {
	deliveries, err := d.store.ListDeliveries(ctx, reminderID)
	if err != nil {
		return false, err
	}
	for _, del := range deliveries {
		if del.Occurrence.Equal(occurrence) && del.Status == models.DeliverySent {
			return true, nil
		}
	}
	return false, nil
}
