package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hatirlat/internal/models"

	"gorm.io/gorm"
)

// GormStore implements Store on a relational database
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an opened and migrated database
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListReminders(ctx context.Context, owner string) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := s.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("date_time DESC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

func (s *GormStore) GetReminder(ctx context.Context, owner, id string) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := s.db.WithContext(ctx).
		Where("id = ? AND owner = ?", id, owner).
		First(&reminder).Error; err != nil {
		return nil, translate(err, "get reminder")
	}
	return &reminder, nil
}

func (s *GormStore) CreateReminder(ctx context.Context, r *models.Reminder) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return translate(err, "create reminder")
	}
	return nil
}

func (s *GormStore) SaveReminder(ctx context.Context, r *models.Reminder) error {
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return translate(err, "save reminder")
	}
	return nil
}

func (s *GormStore) DeleteReminder(ctx context.Context, owner, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND owner = ?", id, owner).
		Delete(&models.Reminder{})
	if result.Error != nil {
		return fmt.Errorf("delete reminder: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) FinishOccurrence(ctx context.Context, id string, occurrence time.Time, status models.ReminderStatus, next time.Time) (bool, error) {
	updates := map[string]any{"status": status, "updated_at": time.Now()}
	if !next.IsZero() {
		updates["date_time"] = next.UTC()
	}
	result := s.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id = ? AND status = ? AND date_time = ?", id, models.StatusScheduled, occurrence.UTC()).
		UpdateColumns(updates)
	if result.Error != nil {
		return false, fmt.Errorf("finish occurrence: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *GormStore) DueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := s.db.WithContext(ctx).
		Where("status = ? AND date_time <= ?", models.StatusScheduled, now.UTC()).
		Order("date_time ASC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("due reminders: %w", err)
	}
	return reminders, nil
}

func (s *GormStore) ListGroups(ctx context.Context, owner string) ([]models.Group, error) {
	var groups []models.Group
	if err := s.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("created_at DESC").
		Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	if err := s.fillMemberCounts(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *GormStore) GetGroup(ctx context.Context, owner, id string) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).
		Where("id = ? AND owner = ?", id, owner).
		First(&group).Error; err != nil {
		return nil, translate(err, "get group")
	}
	groups := []models.Group{group}
	if err := s.fillMemberCounts(ctx, groups); err != nil {
		return nil, err
	}
	return &groups[0], nil
}

func (s *GormStore) GetGroupByJoinCode(ctx context.Context, code string) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).
		Where("join_code = ?", code).
		First(&group).Error; err != nil {
		return nil, translate(err, "get group by join code")
	}
	groups := []models.Group{group}
	if err := s.fillMemberCounts(ctx, groups); err != nil {
		return nil, err
	}
	return &groups[0], nil
}

func (s *GormStore) CreateGroup(ctx context.Context, g *models.Group) error {
	if err := s.db.WithContext(ctx).Create(g).Error; err != nil {
		return translate(err, "create group")
	}
	return nil
}

func (s *GormStore) SaveGroup(ctx context.Context, g *models.Group) error {
	if err := s.db.WithContext(ctx).Save(g).Error; err != nil {
		return translate(err, "save group")
	}
	return nil
}

func (s *GormStore) DeleteGroup(ctx context.Context, owner, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND owner = ?", id, owner).Delete(&models.Group{})
		if result.Error != nil {
			return fmt.Errorf("delete group: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.Member{}).Error; err != nil {
			return fmt.Errorf("delete group members: %w", err)
		}
		return nil
	})
}

func (s *GormStore) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	var members []models.Member
	if err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (s *GormStore) GetMember(ctx context.Context, groupID, memberID string) (*models.Member, error) {
	var member models.Member
	if err := s.db.WithContext(ctx).
		Where("id = ? AND group_id = ?", memberID, groupID).
		First(&member).Error; err != nil {
		return nil, translate(err, "get member")
	}
	return &member, nil
}

func (s *GormStore) FindMemberByEmail(ctx context.Context, groupID, email string) (*models.Member, error) {
	var member models.Member
	if err := s.db.WithContext(ctx).
		Where("group_id = ? AND email = ?", groupID, strings.ToLower(email)).
		First(&member).Error; err != nil {
		return nil, translate(err, "find member")
	}
	return &member, nil
}

func (s *GormStore) CreateMember(ctx context.Context, m *models.Member) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return translate(err, "create member")
	}
	return nil
}

func (s *GormStore) SaveMember(ctx context.Context, m *models.Member) error {
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return translate(err, "save member")
	}
	return nil
}

func (s *GormStore) DeleteMember(ctx context.Context, groupID, memberID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND group_id = ?", memberID, groupID).
		Delete(&models.Member{})
	if result.Error != nil {
		return fmt.Errorf("delete member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).
		Where("username = ?", username).
		First(&account).Error; err != nil {
		return nil, translate(err, "get account")
	}
	return &account, nil
}

func (s *GormStore) CreateAccount(ctx context.Context, a *models.Account) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return translate(err, "create account")
	}
	return nil
}

func (s *GormStore) TouchLogin(ctx context.Context, username string, at time.Time) error {
	if err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("username = ?", username).
		Update("last_login", at).Error; err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (s *GormStore) RecordDelivery(ctx context.Context, d *models.Delivery) error {
	d.Occurrence = d.Occurrence.UTC()
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

func (s *GormStore) ListDeliveries(ctx context.Context, reminderID string) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	if err := s.db.WithContext(ctx).
		Where("reminder_id = ?", reminderID).
		Order("sent_at DESC, id DESC").
		Find(&deliveries).Error; err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return deliveries, nil
}

func (s *GormStore) HasDelivery(ctx context.Context, reminderID string, occurrence time.Time) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("reminder_id = ? AND occurrence = ?", reminderID, occurrence.UTC()).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check delivery: %w", err)
	}
	return count > 0, nil
}

// fillMemberCounts sets MemberCount on each group with one grouped query
func (s *GormStore) fillMemberCounts(ctx context.Context, groups []models.Group) error {
	if len(groups) == 0 {
		return nil
	}
	ids := make([]string, len(groups))
	for i := range groups {
		ids[i] = groups[i].ID
	}

	var rows []struct {
		GroupID string
		Count   int
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Member{}).
		Select("group_id, COUNT(*) AS count").
		Where("group_id IN ?", ids).
		Group("group_id").
		Scan(&rows).Error; err != nil {
		return fmt.Errorf("count members: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.GroupID] = row.Count
	}
	for i := range groups {
		groups[i].MemberCount = counts[groups[i].ID]
	}
	return nil
}

// translate maps gorm errors onto the store's sentinel errors
func translate(err error, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "duplicate key"),
		strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
