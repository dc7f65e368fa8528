package http

import (
	goerrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "ibkrcli/internal/errors"

	"ibkrcli/internal/services"
	"ibkrcli/pkg/contracts/domain"
)

// StatementRequest is the JSON body of POST /api/statements. The payload
// mirrors the forwarded broker mail: raw CSV plus the subject line that
// carries the report date.
type StatementRequest struct {
	CSVContent string `json:"csv_content" validate:"required"`
	Subject    string `json:"subject" validate:"required"`
}

// StatementResponse summarizes a processed statement. Full table contents
// stay in storage; the response reports counts and metrics.
type StatementResponse struct {
	Success    bool                   `json:"success"`
	ReportDate string                 `json:"report_date"`
	DataDate   string                 `json:"data_date"`
	Metrics    domain.MetricsSnapshot `json:"metrics"`
	RowCounts  map[string]int         `json:"row_counts"`
	Warnings   []domain.Warning       `json:"warnings,omitempty"`
}

// StatementHandler handles statement ingestion requests.
type StatementHandler struct {
	service  StatementProcessor
	validate *validator.Validate
	errors   *apierrors.ErrorHandler
	logger   *slog.Logger
}

// NewStatementHandler creates a statement handler.
func NewStatementHandler(service StatementProcessor, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *StatementHandler {
	return &StatementHandler{
		service:  service,
		validate: validator.New(),
		errors:   errorHandler,
		logger:   logger.With(slog.String("component", "statement_handler")),
	}
}

// Create handles POST /api/statements.
func (h *StatementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req StatementRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errors.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.errors.HandleError(w, r, h.validationError(err))
		return
	}

	result, err := h.service.ProcessContent(r.Context(), req.CSVContent, req.Subject)
	if err != nil {
		h.errors.HandleError(w, r, h.mapServiceError(err))
		return
	}

	rowCounts := make(map[string]int, len(result.Tables))
	for name, table := range result.Tables {
		rowCounts[name] = len(table.Rows)
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, StatementResponse{
		Success:    true,
		ReportDate: result.ReportDate,
		DataDate:   result.DataDate,
		Metrics:    result.Metrics,
		RowCounts:  rowCounts,
		Warnings:   result.Warnings,
	})
}

func (h *StatementHandler) validationError(err error) *apierrors.APIError {
	var fieldErrs validator.ValidationErrors
	if goerrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return apierrors.ErrValidation(jsonField(first.Field()), "failed "+first.Tag()+" validation")
	}
	return apierrors.ErrValidationFailed
}

func (h *StatementHandler) mapServiceError(err error) error {
	if goerrors.Is(err, services.ErrPersist) {
		return apierrors.ErrInternalServer
	}
	// Anything the pipeline itself refuses, including an unresolvable
	// report date or a missing forex section, is a problem with the
	// submitted statement.
	return apierrors.StatementRejected(err)
}

func jsonField(name string) string {
	switch name {
	case "CSVContent":
		return "csv_content"
	case "Subject":
		return "subject"
	}
	return name
}
