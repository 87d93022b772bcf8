package handler

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vcscsvcscs/medimind-backend/internal/audit"
	"github.com/vcscsvcscs/medimind-backend/internal/gamification"
	"github.com/vcscsvcscs/medimind-backend/internal/service"
	"github.com/vcscsvcscs/medimind-backend/pkg/api"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
)

type MockMedicineService struct {
	mock.Mock
}

func (m *MockMedicineService) AddMedicine(ctx context.Context, req api.AddMedicineRequest) (*model.Medicine, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Medicine), args.Error(1)
}

func (m *MockMedicineService) ListMedicines(ctx context.Context, userID string) ([]model.Medicine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Medicine), args.Error(1)
}

func (m *MockMedicineService) TodaySchedule(ctx context.Context, userID string) ([]model.DoseOccurrence, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DoseOccurrence), args.Error(1)
}

func (m *MockMedicineService) Summary(ctx context.Context, userID string) (*model.AdherenceSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdherenceSummary), args.Error(1)
}

func (m *MockMedicineService) Reminders(ctx context.Context, userID string) ([]model.DoseOccurrence, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DoseOccurrence), args.Error(1)
}

func (m *MockMedicineService) UpdateMedicine(ctx context.Context, medicineID string, req api.UpdateMedicineRequest) (*model.Medicine, error) {
	args := m.Called(ctx, medicineID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Medicine), args.Error(1)
}

func (m *MockMedicineService) ToggleDose(ctx context.Context, medicineID string, slot int) (*model.Medicine, []string, error) {
	args := m.Called(ctx, medicineID, slot)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var achievements []string
	if args.Get(1) != nil {
		achievements = args.Get(1).([]string)
	}
	return args.Get(0).(*model.Medicine), achievements, args.Error(2)
}

func (m *MockMedicineService) DeleteMedicine(ctx context.Context, medicineID string) error {
	args := m.Called(ctx, medicineID)
	return args.Error(0)
}

func (m *MockMedicineService) ResetDay(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) GenerateReport(ctx context.Context, userID string) (*service.Report, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Report), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, req api.CreateUserRequest) (*model.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, req api.UpdateUserRequest) (*model.User, []string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var achievements []string
	if args.Get(1) != nil {
		achievements = args.Get(1).([]string)
	}
	return args.Get(0).(*model.User), achievements, args.Error(2)
}

func (m *MockUserService) ClaimToday(ctx context.Context, userID string) (*api.ClaimResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.ClaimResponse), args.Error(1)
}

func (m *MockUserService) ClaimStatus(ctx context.Context, userID string) (*gamification.ClaimStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gamification.ClaimStatus), args.Error(1)
}

func (m *MockUserService) AuditTrail(ctx context.Context, userID string, limit int) ([]audit.Entry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Entry), args.Error(1)
}

type MockHydrationService struct {
	mock.Mock
}

func (m *MockHydrationService) LogGlass(ctx context.Context, userID string) (*api.HydrationResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.HydrationResponse), args.Error(1)
}

type MockToneSource struct {
	mock.Mock
}

func (m *MockToneSource) WAVByName(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

