package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hatirlat/internal/config"
	"hatirlat/internal/logger"
	"hatirlat/internal/models"
)

// DemoOwner owns the dummy dataset when no admin account is configured
const DemoOwner = "demo"

// SeedAdmin creates the configured admin account if it does not exist yet
func SeedAdmin(ctx context.Context, s Store, admin config.AdminConfig) error {
	if admin.Username == "" || admin.Password == "" {
		return nil
	}
	if _, err := s.GetAccount(ctx, admin.Username); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	email := admin.Email
	if email == "" {
		email = admin.Username + "@localhost"
	}
	account := &models.Account{Username: admin.Username, Email: email, Premium: true}
	if err := account.SetPassword(admin.Password); err != nil {
		return err
	}
	if err := s.CreateAccount(ctx, account); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("Admin account created", "username", admin.Username)
	return nil
}

// SeedDummy loads the demo groups, members and reminders for owner, with times relative to now
func SeedDummy(ctx context.Context, s Store, owner string, now time.Time) error {
	groups := []models.Group{
		{ID: "1", Owner: owner, Name: "Aile Grubu", Description: "Aile üyeleri için önemli hatırlatmalar", CreatedAt: now},
		{ID: "2", Owner: owner, Name: "İş Arkadaşları", Description: "Proje teslim tarihleri ve toplantılar", CreatedAt: now},
	}
	for i := range groups {
		if err := s.CreateGroup(ctx, &groups[i]); err != nil {
			return fmt.Errorf("seed group %s: %w", groups[i].ID, err)
		}
	}

	members := []models.Member{
		{ID: "101", GroupID: "1", Name: "Ahmet Yılmaz", Email: "ahmet@example.com", Role: models.RoleAdmin, Status: models.MemberActive, JoinedAt: now},
		{ID: "102", GroupID: "1", Name: "Ayşe Kaya", Email: "ayse@example.com", Role: models.RoleMember, Status: models.MemberActive, JoinedAt: now},
		{ID: "201", GroupID: "2", Name: "Mehmet Çelik", Email: "mehmet@example.com", Role: models.RoleAdmin, Status: models.MemberActive, JoinedAt: now},
	}
	for i := range members {
		if err := s.CreateMember(ctx, &members[i]); err != nil {
			return fmt.Errorf("seed member %s: %w", members[i].ID, err)
		}
	}

	reminders := []models.Reminder{
		{
			ID:       "rem1",
			Owner:    owner,
			Title:    "Quarterly Team Sync",
			Type:     models.GroupReminder,
			Message:  "Discuss Q3 goals and roadmap. Please come prepared with your updates.",
			DateTime: now.Add(2 * time.Hour),
			Status:   models.StatusScheduled,
			Group:    models.GroupRef{ID: "2", Name: "İş Arkadaşları"},
			Channels: models.ChannelList{models.ChannelEmail},
			Repeat:   models.RepeatCustom,
			CustomRepeat: &models.CustomRepeatConfig{
				Interval:   2,
				Frequency:  models.FrequencyWeek,
				DaysOfWeek: []models.Weekday{"fri"},
			},
		},
		{
			ID:       "rem2",
			Owner:    owner,
			Title:    "Doctor's Appointment",
			Type:     models.PersonalReminder,
			Message:  "Annual check-up with Dr. Smith.",
			DateTime: now.Add(24 * time.Hour),
			Status:   models.StatusScheduled,
			Contact:  models.Contact{Name: "John Doe", Phone: "+15551234567", Email: "john.d@example.com"},
			Channels: models.ChannelList{models.ChannelSMS, models.ChannelEmail},
			Repeat:   models.RepeatNone,
		},
		{
			ID:       "rem3",
			Owner:    owner,
			Title:    "Pay Electricity Bill",
			Type:     models.PersonalReminder,
			Message:  "Final day to pay the electricity bill to avoid late fees.",
			DateTime: now.Add(-24 * time.Hour),
			Status:   models.StatusSent,
			Contact:  models.Contact{Name: "Self", Email: "my.email@example.com"},
			Channels: models.ChannelList{models.ChannelEmail},
			Repeat:   models.RepeatNone,
		},
		{
			ID:       "rem4",
			Owner:    owner,
			Title:    "Family Dinner",
			Type:     models.GroupReminder,
			Message:  "Don't forget our weekly family dinner at 7 PM tonight!",
			DateTime: now.Add(5 * time.Hour),
			Status:   models.StatusPaused,
			Group:    models.GroupRef{ID: "1", Name: "Aile Grubu"},
			Channels: models.ChannelList{models.ChannelWhatsApp},
			Repeat:   models.RepeatWeekly,
		},
	}
	for i := range reminders {
		if err := s.CreateReminder(ctx, &reminders[i]); err != nil {
			return fmt.Errorf("seed reminder %s: %w", reminders[i].ID, err)
		}
	}

	logger.Info("Dummy data loaded", "owner", owner, "groups", len(groups), "members", len(members), "reminders", len(reminders))
	return nil
}
