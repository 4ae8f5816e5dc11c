package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"wallabag_importer/internal/domain"
	"wallabag_importer/internal/service"
)

type SettingsManager interface {
	Get(ctx context.Context) (*service.SettingsView, error)
	Update(ctx context.Context, in service.SettingsInput) (*service.SettingsView, []service.FieldError, error)
}

type Runner interface {
	Run(ctx context.Context) (*domain.RunStats, error)
}

type errorBody struct {
	Error string `json:"error"`
}

type settingsErrorBody struct {
	Error    string                `json:"error"`
	Fields   []service.FieldError  `json:"fields"`
	Settings *service.SettingsView `json:"settings"`
}

// AdminHandler serves the operator settings form and on-demand runs.
type AdminHandler struct {
	settings   SettingsManager
	runner     Runner
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewAdminHandler(settings SettingsManager, runner Runner, runTimeout time.Duration, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		settings:   settings,
		runner:     runner,
		runTimeout: runTimeout,
		logger:     logger.With("component", "admin"),
	}
}

// GetSettings handles GET /settings.
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	view, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// UpdateSettings handles PUT /settings. Valid fields are saved even when
// others are rejected; the response is then 422 with the field errors.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in service.SettingsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	view, fieldErrs, err := h.settings.Update(r.Context(), in)
	if err != nil {
		h.logger.Error("failed to update settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, settingsErrorBody{
			Error:    "some fields were rejected",
			Fields:   fieldErrs,
			Settings: view,
		})
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Run handles POST /run.
func (h *AdminHandler) Run(w http.ResponseWriter, r *http.Request) {
	// A dropped client must not cut the run short.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.runTimeout)
	defer cancel()

	stats, err := h.runner.Run(ctx)
	if err != nil {
		h.logger.Error("on-demand import failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	status := http.StatusOK
	if stats.Outcome == domain.OutcomeLocked {
		status = http.StatusConflict
	}
	writeJSON(w, status, stats)
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
