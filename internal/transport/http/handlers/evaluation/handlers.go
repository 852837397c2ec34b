package evaluationhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/audit"
	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/evaluation"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

const (
	defaultDashboardLimit = 20
	maxDashboardLimit     = 100
)

type Service interface {
	GetPeriod(ctx context.Context, periodID string) (evaluation.Period, error)
	EmployeeSummary(ctx context.Context, periodID, employeeID string) (evaluation.Summary, error)
	PeriodDashboard(ctx context.Context, periodID string, limit, offset int) (evaluation.Dashboard, error)
	PreviewGrade(ctx context.Context, periodID string, score float64) (evaluation.GradePreview, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   AuditRecorder
}

func NewHandler(service Service, perms middleware.PermissionStore, auditSvc AuditRecorder) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluation/periods/{periodID}", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEvaluationRead, h.Perms)).Get("/", h.handleGetPeriod)
		r.With(middleware.RequirePermission(auth.PermEvaluationRead, h.Perms)).Get("/employees/{employeeID}/summary", h.handleSummary)
		r.With(middleware.RequirePermission(auth.PermEvaluationRead, h.Perms)).Get("/employees/{employeeID}/summary.pdf", h.handleSummaryPDF)
		r.With(middleware.RequirePermission(auth.PermEvaluationDashboard, h.Perms)).Get("/dashboard", h.handleDashboard)
		r.With(middleware.RequirePermission(auth.PermEvaluationRead, h.Perms)).Post("/grade", h.handlePreviewGrade)
	})
}

type periodResponse struct {
	Period     evaluation.Period      `json:"period"`
	BandIssues []evaluation.BandIssue `json:"bandIssues"`
}

func (h *Handler) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	validator := shared.NewValidator()
	periodID := validator.UUID("periodId", chi.URLParam(r, "periodID"))
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	period, err := h.Service.GetPeriod(r.Context(), periodID)
	if err != nil {
		h.fail(w, r, err, "period_failed", "failed to load evaluation period")
		return
	}
	issues := evaluation.ValidateGradeBands(period.GradeBands)
	if issues == nil {
		issues = []evaluation.BandIssue{}
	}
	api.Success(w, periodResponse{Period: period, BandIssues: issues}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	periodID, employeeID, ok := h.summaryTarget(w, r)
	if !ok {
		return
	}
	summary, err := h.Service.EmployeeSummary(r.Context(), periodID, employeeID)
	if err != nil {
		h.fail(w, r, err, "summary_failed", "failed to build evaluation summary")
		return
	}
	h.record(r, audit.ActionSummaryView, audit.EntityEmployeeSummary, periodID+"/"+employeeID, nil)
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummaryPDF(w http.ResponseWriter, r *http.Request) {
	periodID, employeeID, ok := h.summaryTarget(w, r)
	if !ok {
		return
	}
	period, err := h.Service.GetPeriod(r.Context(), periodID)
	if err != nil {
		h.fail(w, r, err, "summary_failed", "failed to build evaluation summary")
		return
	}
	summary, err := h.Service.EmployeeSummary(r.Context(), periodID, employeeID)
	if err != nil {
		h.fail(w, r, err, "summary_failed", "failed to build evaluation summary")
		return
	}

	var buf bytes.Buffer
	if err := evaluation.RenderSummaryPDF(&buf, period, summary); err != nil {
		h.fail(w, r, err, "pdf_failed", "failed to render summary pdf")
		return
	}
	h.record(r, audit.ActionSummaryExport, audit.EntityEmployeeSummary, periodID+"/"+employeeID, map[string]any{"format": "pdf"})
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "evaluation-summary-"+employeeID+".pdf"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("write summary pdf failed", "err", err)
	}
}

// summaryTarget validates the path and enforces that users without
// evaluation.read_all only see their own summary.
func (h *Handler) summaryTarget(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return "", "", false
	}

	validator := shared.NewValidator()
	periodID := validator.UUID("periodId", chi.URLParam(r, "periodID"))
	employeeID := validator.UUID("employeeId", chi.URLParam(r, "employeeID"))
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return "", "", false
	}

	if !h.Perms.HasPermission(user.RoleName, auth.PermEvaluationReadAll) && user.EmployeeID != employeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's evaluation", middleware.GetRequestID(r.Context()))
		return "", "", false
	}
	return periodID, employeeID, true
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	validator := shared.NewValidator()
	periodID := validator.UUID("periodId", chi.URLParam(r, "periodID"))
	page := validator.Pagination(r, defaultDashboardLimit, maxDashboardLimit)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	dashboard, err := h.Service.PeriodDashboard(r.Context(), periodID, page.Limit, page.Offset)
	if err != nil {
		h.fail(w, r, err, "dashboard_failed", "failed to build evaluation dashboard")
		return
	}
	h.record(r, audit.ActionDashboardView, audit.EntityPeriod, periodID, map[string]any{"limit": page.Limit, "offset": page.Offset})
	api.Success(w, dashboard, middleware.GetRequestID(r.Context()))
}

type gradeRequest struct {
	Score *float64 `json:"score"`
}

func (h *Handler) handlePreviewGrade(w http.ResponseWriter, r *http.Request) {
	var payload gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	periodID := validator.UUID("periodId", chi.URLParam(r, "periodID"))
	validator.FiniteNumber("score", payload.Score)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	preview, err := h.Service.PreviewGrade(r.Context(), periodID, *payload.Score)
	if err != nil {
		h.fail(w, r, err, "grade_failed", "failed to resolve grade")
		return
	}
	api.Success(w, preview, middleware.GetRequestID(r.Context()))
}

func (h *Handler) record(r *http.Request, action, entityType, entityID string, details any) {
	if h.Audit == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	err := h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    user.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         middleware.ClientIPKey(r),
		Details:    details,
	})
	if err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, evaluation.ErrPeriodNotFound):
		api.Fail(w, http.StatusNotFound, "period_not_found", "evaluation period not found", reqID)
	case errors.Is(err, evaluation.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
	case errors.Is(err, evaluation.ErrNegativeWeight),
		errors.Is(err, evaluation.ErrInvalidWeight),
		errors.Is(err, evaluation.ErrInvalidScore),
		errors.Is(err, evaluation.ErrInvalidMaxRate):
		slog.Warn("evaluation data rejected", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_evaluation_data", "evaluation data is invalid", reqID)
	default:
		slog.Error(code, "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}
