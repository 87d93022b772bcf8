package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/vcscsvcscs/medimind-backend/internal/audit"
	"github.com/vcscsvcscs/medimind-backend/internal/gamification"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
	"go.uber.org/zap"
)

// testNow is 2026-03-10 20:00 local
func testNow() time.Time {
	return time.Date(2026, time.March, 10, 20, 0, 0, 0, time.Local)
}

func today() time.Time {
	return model.DateOf(testNow())
}

// memStore is an in-memory MedicineStore and UserStore
type memStore struct {
	mu        sync.Mutex
	medicines map[string]model.Medicine
	users     map[string]model.User
	failWrite bool
}

func newMemStore() *memStore {
	return &memStore{
		medicines: make(map[string]model.Medicine),
		users:     make(map[string]model.User),
	}
}

var errWrite = errors.New("write failed")

func (s *memStore) addUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addMedicine(m model.Medicine) model.Medicine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	s.medicines[m.ID] = m
	return m
}

func (s *memStore) medicine(id string) model.Medicine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.medicines[id]
}

func (s *memStore) user(id string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *memStore) Create(ctx context.Context, med *model.Medicine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return errWrite
	}
	s.medicines[med.ID] = *med
	return nil
}

func (s *memStore) FindByUserID(ctx context.Context, userID string) ([]model.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Medicine{}
	for _, m := range s.medicines {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) FindByID(ctx context.Context, medicineID string) (*model.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.medicines[medicineID]
	if !ok {
		return nil, fmt.Errorf("medicine %s: %w", medicineID, ErrNotFound)
	}
	return &m, nil
}

func (s *memStore) Update(ctx context.Context, med *model.Medicine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return errWrite
	}
	s.medicines[med.ID] = *med
	return nil
}

func (s *memStore) SetSlotTaken(ctx context.Context, medicineID string, slot int, taken bool, takenAt *time.Time) (*model.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return nil, errWrite
	}
	m, ok := s.medicines[medicineID]
	if !ok {
		return nil, fmt.Errorf("medicine %s: %w", medicineID, ErrNotFound)
	}
	m.Slots[slot-1].Taken = taken
	m.Slots[slot-1].TakenAt = takenAt
	s.medicines[medicineID] = m
	return &m, nil
}

func (s *memStore) Delete(ctx context.Context, medicineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.medicines, medicineID)
	return nil
}

func (s *memStore) ResetTakenFlags(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, m := range s.medicines {
		if userID != "" && m.UserID != userID {
			continue
		}
		for i := range m.Slots {
			m.Slots[i].Taken = false
			m.Slots[i].TakenAt = nil
		}
		s.medicines[id] = m
		n++
	}
	return n, nil
}

// userStore returns the UserStore view of the same store
func (s *memStore) userStore() *memUsers {
	return &memUsers{s}
}

// memUsers adapts memStore to UserStore; method names overlap with MedicineStore
type memUsers struct {
	s *memStore
}

func (u *memUsers) Create(ctx context.Context, user *model.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if u.s.failWrite {
		return errWrite
	}
	u.s.users[user.ID] = *user
	return nil
}

func (u *memUsers) FindByID(ctx context.Context, userID string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return &user, nil
}

func (u *memUsers) UpdateProfile(ctx context.Context, userID string, p model.ProfileUpdate) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if u.s.failWrite {
		return errWrite
	}
	user, ok := u.s.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	user.Name = p.Name
	user.Email = p.Email
	user.NotificationSound = p.NotificationSound
	user.NotificationsEnabled = p.NotificationsEnabled
	if p.WaterIntake != nil {
		user.WaterIntake = *p.WaterIntake
	}
	u.s.users[userID] = user
	return nil
}

func (u *memUsers) UpdateGameState(ctx context.Context, userID string, state model.GameState) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if u.s.failWrite {
		return errWrite
	}
	user := u.s.users[userID]
	user.GameState = state
	u.s.users[userID] = user
	return nil
}

func (u *memUsers) IncrementWaterIntake(ctx context.Context, userID string) (int, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[userID]
	if !ok {
		return 0, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	user.WaterIntake++
	u.s.users[userID] = user
	return user.WaterIntake, nil
}

func (u *memUsers) NotificationSound(ctx context.Context, userID string) (string, error) {
	user, err := u.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.NotificationSound, nil
}

func (u *memUsers) ListReminderRecipients(ctx context.Context) ([]string, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	out := []string{}
	for id, user := range u.s.users {
		if user.NotificationsEnabled {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

// MockRecorder is a testify mock of audit.Recorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, entry audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockEvaluator is a testify mock of AchievementEvaluator
type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Reevaluate(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// fixture wires real services over one memStore
type fixture struct {
	store        *memStore
	users        *memUsers
	engine       *gamification.Engine
	achievements *AchievementService
	medicines    *MedicineService
	userService  *UserService
	hydration    *HydrationService
}

func newFixture() *fixture {
	store := newMemStore()
	users := store.userStore()
	logger := zap.NewNop()

	engine := gamification.NewEngine(users, nil, nil, logger).WithClock(testNow)
	achievements := NewAchievementService(store, users, engine, audit.Nop{}, logger)

	return &fixture{
		store:        store,
		users:        users,
		engine:       engine,
		achievements: achievements,
		medicines:    NewMedicineService(store, users, achievements, audit.Nop{}, logger).WithClock(testNow),
		userService:  NewUserService(users, engine, achievements, nil, audit.Nop{}, logger),
		hydration:    NewHydrationService(users, achievements, audit.Nop{}, logger),
	}
}

func (f *fixture) newUser() model.User {
	return f.store.addUser(model.User{
		Name:                 "Test User",
		Email:                "test@example.com",
		NotificationSound:    "default",
		NotificationsEnabled: true,
		GameState:            model.GameState{Level: model.LevelBronze},
	})
}

func (f *fixture) newMedicine(userID string, times ...string) model.Medicine {
	med := model.Medicine{
		UserID:       userID,
		Name:         "Aspirin",
		Dosage:       "100mg",
		DurationDays: 30,
		StartDate:    today().AddDate(0, 0, -1),
	}
	for i, t := range times {
		med.Slots[i].Time = t
	}
	return f.store.addMedicine(med)
}
