package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/medimind-backend/internal/audit"
	"github.com/vcscsvcscs/medimind-backend/internal/pdf"
	"go.uber.org/zap"
)

type MockReportArchive struct {
	mock.Mock
}

func (m *MockReportArchive) UploadReport(ctx context.Context, filename string, data []byte) (string, error) {
	args := m.Called(ctx, filename, data)
	return args.String(0), args.Error(1)
}

type MockReportGenerator struct {
	mock.Mock
}

func (m *MockReportGenerator) Generate(data *pdf.ReportData) ([]byte, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestGenerateReport_ArchivesPDF(t *testing.T) {
	f := newFixture()
	user := f.newUser()
	f.newMedicine(user.ID, "08:00", "20:00")

	archive := new(MockReportArchive)
	filename := "adherence_" + user.ID + "_20260310.pdf"
	archive.On("UploadReport", mock.Anything, filename, mock.Anything).Return("reports/"+filename, nil)

	recorder := new(MockRecorder)
	recorder.On("Record", mock.Anything, mock.MatchedBy(func(e audit.Entry) bool {
		return e.OperationType == audit.OperationExport && e.ResourceID == filename
	})).Return(nil)

	svc := NewReportService(f.store, f.users, pdf.NewPDFGenerator(zap.NewNop()), archive, recorder, zap.NewNop()).WithClock(testNow)

	report, err := svc.GenerateReport(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Equal(t, filename, report.Filename)
	assert.Equal(t, "reports/"+filename, report.BlobPath)
	assert.Equal(t, "%PDF", string(report.Data[:4]))
	archive.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestGenerateReport_PassesTodaysData(t *testing.T) {
	f := newFixture()
	user := f.newUser()
	med := f.newMedicine(user.ID, "08:00", "20:00")
	med.Slots[0].Taken = true
	f.store.addMedicine(med)

	generator := new(MockReportGenerator)
	generator.On("Generate", mock.MatchedBy(func(d *pdf.ReportData) bool {
		return d.UserName == "Test User" &&
			len(d.Schedule) == 2 &&
			d.Summary.TakenDoses == 1 &&
			d.Summary.AdherencePercentage == 50 &&
			d.Day.Equal(testNow())
	})).Return([]byte("%PDF-1.3"), nil)

	svc := NewReportService(f.store, f.users, generator, nil, nil, zap.NewNop()).WithClock(testNow)

	report, err := svc.GenerateReport(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Empty(t, report.BlobPath, "no archive configured")
	generator.AssertExpectations(t)
}

func TestGenerateReport_ArchiveFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	user := f.newUser()

	archive := new(MockReportArchive)
	archive.On("UploadReport", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("storage unavailable"))

	svc := NewReportService(f.store, f.users, pdf.NewPDFGenerator(zap.NewNop()), archive, nil, zap.NewNop()).WithClock(testNow)

	report, err := svc.GenerateReport(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Empty(t, report.BlobPath)
	assert.NotEmpty(t, report.Data)
}

func TestGenerateReport_GeneratorFailure(t *testing.T) {
	f := newFixture()
	user := f.newUser()

	generator := new(MockReportGenerator)
	generator.On("Generate", mock.Anything).Return(nil, errors.New("font missing"))

	svc := NewReportService(f.store, f.users, generator, nil, nil, zap.NewNop()).WithClock(testNow)

	_, err := svc.GenerateReport(context.Background(), user.ID)
	assert.ErrorContains(t, err, "failed to generate PDF")
}
