package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleStatusIsAnInvolution(t *testing.T) {
	for _, status := range []ReminderStatus{StatusScheduled, StatusPaused} {
		r := &Reminder{Status: status}
		require.True(t, r.IsToggleable())
		require.NoError(t, r.ToggleStatus())
		assert.NotEqual(t, status, r.Status)
		require.NoError(t, r.ToggleStatus())
		assert.Equal(t, status, r.Status)
	}
}

func TestToggleStatusRejectsFinishedReminders(t *testing.T) {
	for _, status := range []ReminderStatus{StatusSent, StatusFailed} {
		r := &Reminder{Status: status}
		assert.False(t, r.IsToggleable())
		assert.ErrorIs(t, r.ToggleStatus(), ErrNotToggleable)
		assert.Equal(t, status, r.Status)
	}
}

func TestChannelListJSONColumn(t *testing.T) {
	list := ChannelList{ChannelEmail, ChannelSMS}
	v, err := list.Value()
	require.NoError(t, err)
	assert.Equal(t, `["email","sms"]`, v)

	var scanned ChannelList
	require.NoError(t, scanned.Scan([]byte(`["push"]`)))
	assert.Equal(t, ChannelList{ChannelPush}, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned)
	assert.Error(t, scanned.Scan(42))

	v, err = ChannelList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestChannelListDedupe(t *testing.T) {
	got := ChannelList{ChannelSMS, ChannelEmail, ChannelSMS}.Dedupe()
	assert.Equal(t, ChannelList{ChannelSMS, ChannelEmail}, got)
	assert.True(t, got.Contains(ChannelEmail))
	assert.False(t, got.Contains(ChannelPush))
}

func TestWeekdayCodes(t *testing.T) {
	d, ok := Weekday("fri").TimeWeekday()
	require.True(t, ok)
	assert.Equal(t, time.Friday, d)

	d, ok = Weekday("SUN").TimeWeekday()
	require.True(t, ok)
	assert.Equal(t, time.Sunday, d)

	_, ok = Weekday("funday").TimeWeekday()
	assert.False(t, ok)
}

func TestReminderRequest(t *testing.T) {
	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	req := ReminderRequest{
		Title:    "  Team sync ",
		Type:     GroupReminder,
		DateTime: at,
		Contact:  Contact{Name: "ignored"},
		Group:    GroupRef{ID: "2", Name: "Work"},
		Channels: ChannelList{ChannelEmail, ChannelEmail},
		Repeat:   RepeatWeekly,
		CustomRepeat: &CustomRepeatConfig{
			Interval:  1,
			Frequency: FrequencyDay,
		},
	}
	require.NoError(t, req.Validate())

	r := req.ToReminder("alice")
	assert.Equal(t, "alice", r.Owner)
	assert.Equal(t, "Team sync", r.Title)
	assert.Equal(t, StatusScheduled, r.Status)
	assert.Equal(t, ChannelList{ChannelEmail}, r.Channels)
	assert.True(t, r.Contact.IsZero(), "group reminders carry no contact")
	assert.Nil(t, r.CustomRepeat, "custom config only applies to custom repeat")

	req.Group = GroupRef{}
	assert.Error(t, req.Validate())

	req = ReminderRequest{Type: PersonalReminder, Repeat: RepeatCustom}
	assert.Error(t, req.Validate())
}

func TestIsRepeating(t *testing.T) {
	assert.False(t, (&Reminder{Repeat: RepeatNone}).IsRepeating())
	assert.True(t, (&Reminder{Repeat: RepeatHourly}).IsRepeating())
	assert.False(t, (&Reminder{Repeat: RepeatCustom}).IsRepeating())
	assert.True(t, (&Reminder{Repeat: RepeatCustom, CustomRepeat: &CustomRepeatConfig{Interval: 2, Frequency: FrequencyWeek}}).IsRepeating())
}

func TestUpdateReminderRequestApplyTo(t *testing.T) {
	r := &Reminder{
		Title:        "Old",
		Type:         PersonalReminder,
		Channels:     ChannelList{ChannelSMS},
		Repeat:       RepeatCustom,
		CustomRepeat: &CustomRepeatConfig{Interval: 1, Frequency: FrequencyDay},
	}

	title := "New"
	require.NoError(t, (&UpdateReminderRequest{Title: &title}).ApplyTo(r))
	assert.Equal(t, "New", r.Title)
	assert.Equal(t, ChannelList{ChannelSMS}, r.Channels)
	assert.NotNil(t, r.CustomRepeat)

	daily := RepeatDaily
	require.NoError(t, (&UpdateReminderRequest{Repeat: &daily}).ApplyTo(r))
	assert.Nil(t, r.CustomRepeat)

	group := GroupReminder
	assert.Error(t, (&UpdateReminderRequest{Type: &group}).ApplyTo(r))
	assert.Error(t, (&UpdateReminderRequest{Channels: ChannelList{}}).ApplyTo(r))
}

func TestUpdateReminderRequestClearsOtherTarget(t *testing.T) {
	r := &Reminder{
		Type:     GroupReminder,
		Group:    GroupRef{ID: "1", Name: "Aile Grubu"},
		Channels: ChannelList{ChannelEmail},
		Repeat:   RepeatNone,
	}

	personal := PersonalReminder
	contact := Contact{Name: "Mom", Email: "mom@example.com"}
	require.NoError(t, (&UpdateReminderRequest{Type: &personal, Contact: &contact}).ApplyTo(r))
	assert.Equal(t, GroupRef{}, r.Group)
	assert.Equal(t, contact, r.Contact)

	group := GroupReminder
	ref := GroupRef{ID: "2"}
	require.NoError(t, (&UpdateReminderRequest{Type: &group, Group: &ref}).ApplyTo(r))
	assert.True(t, r.Contact.IsZero())
	assert.Equal(t, "2", r.Group.ID)
}
