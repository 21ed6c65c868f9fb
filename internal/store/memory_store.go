package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hatirlat/internal/models"
)

// MemoryStore keeps everything in process memory. It backs dummy mode and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	reminders  map[string]models.Reminder
	groups     map[string]models.Group
	members    map[string]models.Member
	accounts   map[string]models.Account
	deliveries []models.Delivery
	nextID     uint
	now        func() time.Time
}

// NewMemoryStore returns an empty store. now stamps created entities; nil means time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		reminders: make(map[string]models.Reminder),
		groups:    make(map[string]models.Group),
		members:   make(map[string]models.Member),
		accounts:  make(map[string]models.Account),
		now:       now,
	}
}

func (s *MemoryStore) ListReminders(ctx context.Context, owner string) ([]models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Reminder, 0)
	for _, r := range s.reminders {
		if r.Owner == owner {
			out = append(out, cloneReminder(r))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateTime.After(out[j].DateTime)
	})
	return out, nil
}

func (s *MemoryStore) GetReminder(ctx context.Context, owner, id string) (*models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reminders[id]
	if !ok || r.Owner != owner {
		return nil, ErrNotFound
	}
	r = cloneReminder(r)
	return &r, nil
}

func (s *MemoryStore) CreateReminder(ctx context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.SetDefaults(s.now())
	if _, exists := s.reminders[r.ID]; exists {
		return ErrConflict
	}
	s.reminders[r.ID] = cloneReminder(*r)
	return nil
}

func (s *MemoryStore) SaveReminder(ctx context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.SetDefaults(s.now())
	r.UpdatedAt = s.now()
	s.reminders[r.ID] = cloneReminder(*r)
	return nil
}

func (s *MemoryStore) DeleteReminder(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok || r.Owner != owner {
		return ErrNotFound
	}
	delete(s.reminders, id)
	return nil
}

func (s *MemoryStore) FinishOccurrence(ctx context.Context, id string, occurrence time.Time, status models.ReminderStatus, next time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok || r.Status != models.StatusScheduled || !r.DateTime.Equal(occurrence) {
		return false, nil
	}
	r.Status = status
	if !next.IsZero() {
		r.DateTime = next.UTC()
	}
	r.UpdatedAt = s.now()
	s.reminders[id] = r
	return true, nil
}

func (s *MemoryStore) DueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Reminder, 0)
	for _, r := range s.reminders {
		if r.Status == models.StatusScheduled && !r.DateTime.After(now) {
			out = append(out, cloneReminder(r))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateTime.Before(out[j].DateTime)
	})
	return out, nil
}

func (s *MemoryStore) ListGroups(ctx context.Context, owner string) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Group, 0)
	for _, g := range s.groups {
		if g.Owner == owner {
			g.MemberCount = s.countMembers(g.ID)
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) GetGroup(ctx context.Context, owner, id string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok || g.Owner != owner {
		return nil, ErrNotFound
	}
	g.MemberCount = s.countMembers(g.ID)
	return &g, nil
}

func (s *MemoryStore) GetGroupByJoinCode(ctx context.Context, code string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.groups {
		if g.JoinCode == code {
			g.MemberCount = s.countMembers(g.ID)
			return &g, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateGroup(ctx context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := g.SetDefaults(s.now()); err != nil {
		return err
	}
	if _, exists := s.groups[g.ID]; exists {
		return ErrConflict
	}
	for _, existing := range s.groups {
		if existing.JoinCode == g.JoinCode {
			return ErrConflict
		}
	}
	s.groups[g.ID] = *g
	return nil
}

func (s *MemoryStore) SaveGroup(ctx context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := g.SetDefaults(s.now()); err != nil {
		return err
	}
	g.UpdatedAt = s.now()
	s.groups[g.ID] = *g
	return nil
}

func (s *MemoryStore) DeleteGroup(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok || g.Owner != owner {
		return ErrNotFound
	}
	delete(s.groups, id)
	for memberID, m := range s.members {
		if m.GroupID == id {
			delete(s.members, memberID)
		}
	}
	return nil
}

func (s *MemoryStore) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Member, 0)
	for _, m := range s.members {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (s *MemoryStore) GetMember(ctx context.Context, groupID, memberID string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[memberID]
	if !ok || m.GroupID != groupID {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) FindMemberByEmail(ctx context.Context, groupID, email string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, m := range s.members {
		if m.GroupID == groupID && m.Email == email {
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateMember(ctx context.Context, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.SetDefaults(s.now())
	if _, exists := s.members[m.ID]; exists || s.emailTaken(m) {
		return ErrConflict
	}
	s.members[m.ID] = *m
	return nil
}

func (s *MemoryStore) SaveMember(ctx context.Context, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.SetDefaults(s.now())
	if s.emailTaken(m) {
		return ErrConflict
	}
	s.members[m.ID] = *m
	return nil
}

func (s *MemoryStore) DeleteMember(ctx context.Context, groupID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[memberID]
	if !ok || m.GroupID != groupID {
		return ErrNotFound
	}
	delete(s.members, memberID)
	return nil
}

func (s *MemoryStore) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) CreateAccount(ctx context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.Username]; exists {
		return ErrConflict
	}
	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return ErrConflict
		}
	}
	a.SetDefaults(s.now())
	s.accounts[a.Username] = *a
	return nil
}

func (s *MemoryStore) TouchLogin(ctx context.Context, username string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[username]
	if !ok {
		return ErrNotFound
	}
	a.LastLogin = at
	s.accounts[username] = a
	return nil
}

func (s *MemoryStore) RecordDelivery(ctx context.Context, d *models.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	d.ID = s.nextID
	d.Occurrence = d.Occurrence.UTC()
	if d.SentAt.IsZero() {
		d.SentAt = s.now()
	}
	s.deliveries = append(s.deliveries, *d)
	return nil
}

func (s *MemoryStore) ListDeliveries(ctx context.Context, reminderID string) ([]models.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Delivery, 0)
	for i := len(s.deliveries) - 1; i >= 0; i-- {
		if s.deliveries[i].ReminderID == reminderID {
			out = append(out, s.deliveries[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) HasDelivery(ctx context.Context, reminderID string, occurrence time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.deliveries {
		if d.ReminderID == reminderID && d.Occurrence.Equal(occurrence) {
			return true, nil
		}
	}
	return false, nil
}

// emailTaken reports whether another member of m's group uses m's email. Lock must be held.
func (s *MemoryStore) emailTaken(m *models.Member) bool {
	for id, other := range s.members {
		if id != m.ID && other.GroupID == m.GroupID && strings.EqualFold(other.Email, m.Email) {
			return true
		}
	}
	return false
}

// countMembers must be called with the lock held
func (s *MemoryStore) countMembers(groupID string) int {
	n := 0
	for _, m := range s.members {
		if m.GroupID == groupID {
			n++
		}
	}
	return n
}

func cloneReminder(r models.Reminder) models.Reminder {
	if r.Channels != nil {
		r.Channels = append(models.ChannelList(nil), r.Channels...)
	}
	if r.CustomRepeat != nil {
		cr := *r.CustomRepeat
		cr.DaysOfWeek = append([]models.Weekday(nil), cr.DaysOfWeek...)
		r.CustomRepeat = &cr
	}
	return r
}
