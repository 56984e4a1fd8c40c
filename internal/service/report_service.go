package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-gpa-api/internal/models"
	appErrors "github.com/noah-isme/sma-gpa-api/pkg/errors"
	"github.com/noah-isme/sma-gpa-api/pkg/export"
)

// Report formats accepted by ReportService.Render.
const (
	ReportFormatJSON = "json"
	ReportFormatCSV  = "csv"
	ReportFormatPDF  = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

// ReportFile is a rendered report ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportService builds the school GPA roster.
type ReportService struct {
	students StudentRepository
	courses  CourseRepository
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService constructs a report service. Nil renderers fall back to the pkg/export defaults.
func NewReportService(students StudentRepository, courses CourseRepository, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ReportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{students: students, courses: courses, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Roster lists every student ordered by name with their GPA and the school average.
func (s *ReportService) Roster(ctx context.Context) (*models.GPARoster, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	sortByName(students)
	lookup := indexLookup(courseIndex(courses))

	roster := &models.GPARoster{GeneratedAt: s.now().UTC(), Rows: make([]models.GPARosterRow, 0, len(students))}
	gpas := make([]float64, 0, len(students))
	for _, student := range students {
		gpa := weightedGPA(student.Enrollments, lookup)
		gpas = append(gpas, gpa)
		roster.Rows = append(roster.Rows, models.GPARosterRow{
			StudentID:   student.ID,
			Name:        student.Name,
			Email:       student.Email,
			Enrollments: len(student.Enrollments),
			GPA:         gpa,
		})
	}
	roster.AverageGPA = mean(gpas)
	return roster, nil
}

// Render produces the roster as a CSV or PDF file.
func (s *ReportService) Render(ctx context.Context, format string) (*ReportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}

	roster, err := s.Roster(ctx)
	if err != nil {
		return nil, err
	}
	dataset := rosterDataset(roster)
	stamp := roster.GeneratedAt.Format("20060102T150405Z")

	var body []byte
	file := &ReportFile{Filename: fmt.Sprintf("gpa-roster-%s.%s", stamp, format)}
	if format == ReportFormatCSV {
		file.ContentType = "text/csv"
		body, err = s.csv.Render(dataset)
	} else {
		file.ContentType = "application/pdf"
		body, err = s.pdf.Render(dataset, "GPA Roster", "Generated "+roster.GeneratedAt.Format(time.RFC1123))
	}
	if err != nil {
		s.logger.Error("render gpa roster", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	file.Body = body
	return file, nil
}

func rosterDataset(roster *models.GPARoster) export.Dataset {
	data := export.Dataset{
		Headers: []string{"Student ID", "Name", "Email", "Enrollments", "GPA"},
		Rows:    make([][]string, 0, len(roster.Rows)),
		Footer:  []string{"", "School average", "", "", formatGPA(roster.AverageGPA)},
	}
	for _, row := range roster.Rows {
		data.Rows = append(data.Rows, []string{
			strconv.Itoa(row.StudentID),
			row.Name,
			row.Email,
			strconv.Itoa(row.Enrollments),
			formatGPA(row.GPA),
		})
	}
	return data
}

func formatGPA(gpa float64) string {
	return strconv.FormatFloat(gpa, 'f', 2, 64)
}
