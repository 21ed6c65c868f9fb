// Package store persists reminders, groups, members, accounts and the delivery log.
//
// Two implementations exist: GormStore on top of postgres or sqlite, and
// MemoryStore, the dummy mode used when no database is configured.
package store

import (
	"context"
	"errors"
	"time"

	"hatirlat/internal/models"
)

var (
	// ErrNotFound is returned when the requested entity does not exist or is not visible to the owner
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique value is already taken
	ErrConflict = errors.New("already exists")
)

// Store is the persistence boundary used by handlers and the dispatcher.
// Reads scoped by owner only return entities created by that account.
type Store interface {
	ListReminders(ctx context.Context, owner string) ([]models.Reminder, error)
	GetReminder(ctx context.Context, owner, id string) (*models.Reminder, error)
	CreateReminder(ctx context.Context, r *models.Reminder) error
	SaveReminder(ctx context.Context, r *models.Reminder) error
	DeleteReminder(ctx context.Context, owner, id string) error
	// FinishOccurrence sets status, and dateTime when next is non-zero, only if the reminder
	// is still scheduled at occurrence. It reports false when the row was deleted or changed.
	FinishOccurrence(ctx context.Context, id string, occurrence time.Time, status models.ReminderStatus, next time.Time) (bool, error)
	// DueReminders returns scheduled reminders of every owner whose dateTime is not after now
	DueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error)

	ListGroups(ctx context.Context, owner string) ([]models.Group, error)
	GetGroup(ctx context.Context, owner, id string) (*models.Group, error)
	GetGroupByJoinCode(ctx context.Context, code string) (*models.Group, error)
	CreateGroup(ctx context.Context, g *models.Group) error
	SaveGroup(ctx context.Context, g *models.Group) error
	// DeleteGroup removes the group and its members; reminders keep their reference
	DeleteGroup(ctx context.Context, owner, id string) error

	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)
	GetMember(ctx context.Context, groupID, memberID string) (*models.Member, error)
	FindMemberByEmail(ctx context.Context, groupID, email string) (*models.Member, error)
	CreateMember(ctx context.Context, m *models.Member) error
	SaveMember(ctx context.Context, m *models.Member) error
	DeleteMember(ctx context.Context, groupID, memberID string) error

	GetAccount(ctx context.Context, username string) (*models.Account, error)
	CreateAccount(ctx context.Context, a *models.Account) error
	TouchLogin(ctx context.Context, username string, at time.Time) error

	RecordDelivery(ctx context.Context, d *models.Delivery) error
	ListDeliveries(ctx context.Context, reminderID string) ([]models.Delivery, error)
	HasDelivery(ctx context.Context, reminderID string, occurrence time.Time) (bool, error)
}
