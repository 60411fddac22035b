package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ginjaninja78/paxml-exporter/internal/config"
	"github.com/ginjaninja78/paxml-exporter/internal/converter"
	"github.com/ginjaninja78/paxml-exporter/internal/store"
	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	exporter *converter.Exporter
	source   store.Source
	auth     config.AuthConfig
	logger   *logrus.Logger
	tracer   trace.Tracer
}

type errorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

type validateResponse struct {
	IsValid      bool                    `json:"isValid"`
	HasErrors    bool                    `json:"hasErrors"`
	HasWarnings  bool                    `json:"hasWarnings"`
	TotalRecords int                     `json:"totalRecords"`
	Issues       []types.ValidationIssue `json:"issues"`
}

func NewHandler(exporter *converter.Exporter, source store.Source, auth config.AuthConfig, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		exporter: exporter,
		source:   source,
		auth:     auth,
		logger:   logger,
		tracer:   otel.Tracer("github.com/ginjaninja78/paxml-exporter/internal/httpapi"),
	}
}

// Routes returns the router. Tracing is added by the caller with otelhttp.
func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(LoggingMiddleware(h.logger))

	router.Get("/healthz", h.health)

	router.Group(func(r chi.Router) {
		if h.auth.JWTSecret != "" {
			r.Use(AuthMiddleware(h.auth.JWTSecret))
			r.Use(RequireRole(h.auth.ExportRoles...))
		}

		r.Get("/api/paxml/export", h.export)
		r.Post("/api/paxml/export", h.export)
		r.Get("/api/paxml/validate", h.validate)
		r.Post("/api/paxml/validate", h.validate)
	})

	return router
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	req, err := parseExportRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ctx, span := h.tracer.Start(r.Context(), "paxml.export", trace.WithAttributes(requestAttributes(req)...))
	defer span.End()

	result, err := h.exporter.ExportFrom(ctx, h.source, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		h.logger.WithError(err).Error("Failed to load export records")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load records")
		return
	}
	span.SetAttributes(resultAttributes(result)...)

	if result.Blocked {
		span.SetStatus(codes.Error, "validation failed")
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "Validation failed",
			Details: result.Details(),
		})
		return
	}

	exportID := uuid.NewString()
	span.SetAttributes(attribute.String("paxml.export_id", exportID))
	h.logger.WithFields(logrus.Fields{
		"export_id":    exportID,
		"file":         result.Filename,
		"transactions": len(result.Transactions),
	}).Info("Export served")

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("X-Export-ID", exportID)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result.Document)
}

// validate runs the same pipeline as export and reports the findings without
// producing a document.
func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	req, err := parseExportRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ctx, span := h.tracer.Start(r.Context(), "paxml.validate", trace.WithAttributes(requestAttributes(req)...))
	defer span.End()

	result, err := h.exporter.ExportFrom(ctx, h.source, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		h.logger.WithError(err).Error("Failed to load records for validation")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load records")
		return
	}
	span.SetAttributes(resultAttributes(result)...)

	issues := result.Issues
	if issues == nil {
		issues = []types.ValidationIssue{}
	}
	writeJSON(w, http.StatusOK, validateResponse{
		IsValid:      result.Summary.IsValid,
		HasErrors:    result.Summary.HasErrors,
		HasWarnings:  result.Summary.HasWarnings,
		TotalRecords: result.Summary.TotalRecords,
		Issues:       issues,
	})
}

// parseExportRequest reads the request from a JSON body (POST) or from the
// query string: employeeIds (comma separated or repeated), startDate,
// endDate, includeSchedules.
func parseExportRequest(r *http.Request) (types.ExportRequest, error) {
	var req types.ExportRequest
	if r.Method == http.MethodPost {
		decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return types.ExportRequest{}, fmt.Errorf("invalid JSON body: %w", err)
		}
		return req, nil
	}

	query := r.URL.Query()
	for _, value := range query["employeeIds"] {
		for _, id := range strings.Split(value, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.EmployeeIDs = append(req.EmployeeIDs, id)
			}
		}
	}
	req.StartDate = strings.TrimSpace(query.Get("startDate"))
	req.EndDate = strings.TrimSpace(query.Get("endDate"))
	if raw := strings.TrimSpace(query.Get("includeSchedules")); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return types.ExportRequest{}, fmt.Errorf("includeSchedules must be true or false, got %q", raw)
		}
		req.IncludeSchedules = include
	}
	return req, nil
}

func requestAttributes(req types.ExportRequest) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("paxml.employee_filter", len(req.EmployeeIDs)),
		attribute.String("paxml.start_date", req.StartDate),
		attribute.String("paxml.end_date", req.EndDate),
		attribute.Bool("paxml.include_schedules", req.IncludeSchedules),
	}
}

func resultAttributes(result converter.Result) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("paxml.transactions", len(result.Transactions)),
		attribute.Int("paxml.errors", result.Summary.ErrorCount),
		attribute.Int("paxml.warnings", result.Summary.WarningCount),
		attribute.Bool("paxml.blocked", result.Blocked),
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
