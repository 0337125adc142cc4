package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unidesk/attendance-panel-api/internal/models"
	appErrors "github.com/unidesk/attendance-panel-api/pkg/errors"
	"github.com/unidesk/attendance-panel-api/pkg/export"
)

// ExportFormat enumerates supported roster download formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	if f == ExportFormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

type rosterSource interface {
	Roster(session models.SessionContext) ([]models.Employee, models.ScopeKey)
}

type positionResolver interface {
	PositionName(ctx context.Context, session models.SessionContext, id *int) string
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered roster ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the active scope's roster as a downloadable file.
// Rendering is synchronous; the roster a staff member can see is small
// enough that background jobs would be overhead.
type ExportService struct {
	roster    rosterSource
	reference positionResolver
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
	enabled   bool
}

// NewExportService constructs an ExportService.
func NewExportService(roster rosterSource, reference positionResolver, logger *zap.Logger, enabled bool) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		roster:    roster,
		reference: reference,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		enabled:   enabled,
	}
}

// Generate renders the current roster in the requested format. Exporting
// without a selected scope is a validation error, not an empty file.
func (s *ExportService) Generate(ctx context.Context, session models.SessionContext, format ExportFormat) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "roster export is disabled")
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	employees, scope := s.roster.Roster(session)
	if !scope.IsSet() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "select a department before exporting")
	}

	dataset := s.buildDataset(ctx, session, employees)
	title := fmt.Sprintf("Teachers of department %s", scope)

	var (
		payload []byte
		err     error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster export")
	}

	s.logger.Info("roster exported",
		zap.String("email", session.Email),
		zap.String("scope", string(scope)),
		zap.String("format", string(format)),
		zap.Int("rows", len(employees)))

	return &ExportResult{
		Filename:    s.buildFilename(scope, format),
		ContentType: format.ContentType(),
		Payload:     payload,
	}, nil
}

func (s *ExportService) buildDataset(ctx context.Context, session models.SessionContext, employees []models.Employee) export.Dataset {
	rows := make([]map[string]string, 0, len(employees))
	for _, emp := range employees {
		rows = append(rows, map[string]string{
			"Surname":     emp.Surname,
			"Name":        emp.Name,
			"Second Name": emp.SecondName,
			"Birth Date":  models.DisplayDate(emp.BirthDate),
			"Email":       emp.Email,
			"Position":    s.reference.PositionName(ctx, session, emp.PositionID),
		})
	}
	return export.Dataset{
		Headers: []string{"Surname", "Name", "Second Name", "Birth Date", "Email", "Position"},
		Rows:    rows,
	}
}

func (s *ExportService) buildFilename(scope models.ScopeKey, format ExportFormat) string {
	timestamp := time.Now().UTC().Format("20060102")
	return fmt.Sprintf("teachers-%s-%s.%s", scope, timestamp, format)
}
