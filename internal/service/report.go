package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vcscsvcscs/medimind-backend/internal/adherence"
	"github.com/vcscsvcscs/medimind-backend/internal/audit"
	"github.com/vcscsvcscs/medimind-backend/internal/pdf"
	"go.uber.org/zap"
)

// ReportArchive stores generated report PDFs
type ReportArchive interface {
	UploadReport(ctx context.Context, filename string, data []byte) (string, error)
}

// ReportGenerator renders report data to PDF
type ReportGenerator interface {
	Generate(data *pdf.ReportData) ([]byte, error)
}

// Report is a generated adherence report
type Report struct {
	Filename string
	BlobPath string
	Data     []byte
}

// ReportService generates adherence reports
type ReportService struct {
	medicines MedicineStore
	users     UserStore
	generator ReportGenerator
	archive   ReportArchive
	audit     audit.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService creates a new ReportService. archive may be nil when blob storage is not configured.
func NewReportService(medicines MedicineStore, users UserStore, generator ReportGenerator, archive ReportArchive, recorder audit.Recorder, logger *zap.Logger) *ReportService {
	return &ReportService{
		medicines: medicines,
		users:     users,
		generator: generator,
		archive:   archive,
		audit:     recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the wall clock, for tests
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// GenerateReport renders today's adherence report for the user. Archiving is best effort.
func (s *ReportService) GenerateReport(ctx context.Context, userID string) (*Report, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	medicines, err := s.medicines.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get medicines for report",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to get medicines: %w", err)
	}

	now := s.now()
	schedule := adherence.BuildSchedule(medicines, now)

	data, err := s.generator.Generate(&pdf.ReportData{
		UserName:    user.Name,
		Day:         now,
		GeneratedAt: now,
		Schedule:    schedule,
		Summary:     adherence.Summarize(schedule),
		Medicines:   medicines,
		WaterIntake: user.WaterIntake,
		GameState:   user.GameState,
	})
	if err != nil {
		s.logger.Error("failed to generate PDF",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	report := &Report{
		Filename: fmt.Sprintf("adherence_%s_%s.pdf", userID, now.Format("20060102")),
		Data:     data,
	}

	if s.archive != nil {
		blobPath, err := s.archive.UploadReport(ctx, report.Filename, data)
		if err != nil {
			s.logger.Warn("failed to archive report",
				zap.Error(err),
				zap.String("user_id", userID),
				zap.String("filename", report.Filename),
			)
		} else {
			report.BlobPath = blobPath
		}
	}

	recordAudit(ctx, s.audit, audit.Entry{
		UserID:         userID,
		OperationType:  audit.OperationExport,
		ResourceType:   audit.ResourceReport,
		ResourceID:     report.Filename,
		AdditionalData: map[string]interface{}{"archived": report.BlobPath != ""},
	})

	s.logger.Info("adherence report generated",
		zap.String("user_id", userID),
		zap.Int("size_bytes", len(data)),
		zap.String("blob_path", report.BlobPath),
	)

	return report, nil
}
