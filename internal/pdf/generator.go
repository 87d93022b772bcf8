package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/vcscsvcscs/medimind-backend/pkg/model"
	"go.uber.org/zap"
)

// PDFGenerator generates adherence reports
type PDFGenerator struct {
	logger *zap.Logger
}

// NewPDFGenerator creates a new PDFGenerator
func NewPDFGenerator(logger *zap.Logger) *PDFGenerator {
	return &PDFGenerator{
		logger: logger,
	}
}

// ReportData contains all data needed for report generation
type ReportData struct {
	UserName    string
	Day         time.Time
	GeneratedAt time.Time
	Schedule    []model.DoseOccurrence
	Summary     model.AdherenceSummary
	Medicines   []model.Medicine
	WaterIntake int
	GameState   model.GameState
}

// Generate creates a PDF report from the provided data
func (g *PDFGenerator) Generate(data *ReportData) ([]byte, error) {
	g.logger.Info("generating adherence report",
		zap.String("user_name", data.UserName),
		zap.String("day", data.Day.Format(model.DateLayout)),
	)

	generatedAt := data.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Core fonts are cp1252; pictographs in names would render as garbage
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	g.addTitle(pdf, tr, data, generatedAt)
	g.addSummary(pdf, data.Summary, data.WaterIntake)
	g.addSchedule(pdf, tr, data.Schedule)
	g.addMedicineList(pdf, tr, data.Medicines, data.Day)
	g.addRewards(pdf, data.GameState)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("adherence report generated",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

func (g *PDFGenerator) addTitle(pdf *gofpdf.Fpdf, tr func(string) string, data *ReportData, generatedAt time.Time) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, "Medication Adherence Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Patient: %s", data.UserName)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Day: %s", data.Day.Format(model.DateLayout)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

func (g *PDFGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

func (g *PDFGenerator) addSummary(pdf *gofpdf.Fpdf, summary model.AdherenceSummary, water int) {
	g.addSectionHeader(pdf, "Adherence Summary")

	pdf.CellFormat(0, 6, fmt.Sprintf("Active medicines: %d", summary.TotalMedicines), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Doses taken: %d of %d", summary.TakenDoses, summary.TotalDoses), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Doses remaining: %d", summary.RemainingDoses), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Adherence: %d%%", summary.AdherencePercentage), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Water: %d glasses", water), "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

func (g *PDFGenerator) addSchedule(pdf *gofpdf.Fpdf, tr func(string) string, schedule []model.DoseOccurrence) {
	g.addSectionHeader(pdf, "Today's Schedule")

	if len(schedule) == 0 {
		pdf.CellFormat(0, 8, "No doses scheduled today.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(20, 7, "Time", "B", 0, "L", false, 0, "")
	pdf.CellFormat(70, 7, "Medicine", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Dosage", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Status", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)

	for _, dose := range schedule {
		status := "Pending"
		if dose.Taken {
			status = "Taken"
			if dose.TakenAt != nil {
				status = fmt.Sprintf("Taken at %s", dose.TakenAt.Format(model.ClockLayout))
			}
		}

		pdf.CellFormat(20, 6, dose.ScheduledTime, "", 0, "L", false, 0, "")
		pdf.CellFormat(70, 6, tr(dose.MedicineName), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, tr(dose.Dosage), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, status, "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

func (g *PDFGenerator) addMedicineList(pdf *gofpdf.Fpdf, tr func(string) string, medicines []model.Medicine, day time.Time) {
	g.addSectionHeader(pdf, "Medicine List")

	if len(medicines) == 0 {
		pdf.CellFormat(0, 8, "No medicines recorded.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, med := range medicines {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, tr(med.Name), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		if med.Dosage != "" {
			pdf.CellFormat(0, 5, tr(fmt.Sprintf("  Dosage: %s", med.Dosage)), "", 1, "L", false, 0, "")
		}
		pdf.CellFormat(0, 5, fmt.Sprintf("  Course: %s to %s (%d days)",
			med.StartDate.Format(model.DateLayout),
			med.EndDate().AddDate(0, 0, -1).Format(model.DateLayout),
			med.DurationDays), "", 1, "L", false, 0, "")
		if med.ActiveOn(day) {
			pdf.CellFormat(0, 5, fmt.Sprintf("  Days remaining: %d", med.DaysRemaining(day)), "", 1, "L", false, 0, "")
		} else {
			pdf.CellFormat(0, 5, "  Not active on this day", "", 1, "L", false, 0, "")
		}
		if med.Notes != nil && *med.Notes != "" {
			pdf.CellFormat(0, 5, tr(fmt.Sprintf("  Notes: %s", *med.Notes)), "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}
	pdf.Ln(5)
}

func (g *PDFGenerator) addRewards(pdf *gofpdf.Fpdf, state model.GameState) {
	g.addSectionHeader(pdf, "Rewards")

	pdf.CellFormat(0, 6, fmt.Sprintf("Points: %d (%s)", state.Points, state.Level), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Daily streak: %d", state.Streak), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Perfect days: %d", state.PerfectDays), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Perfect medicine days: %d", state.PerfectMedicineDays), "", 1, "L", false, 0, "")
	pdf.Ln(5)
}
