package admin

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fob/internal/click"
	"fob/internal/errx"
	"fob/internal/httpx"
	"fob/internal/killswitch"
)

const (
	recentLimit         = 5
	exportLimit         = 1000
	maxDestinationChars = 60
	dayFormat           = "2006-01-02"
)

// RecentClick is one entry in the recent-clicks response.
type RecentClick struct {
	TS          string `json:"ts"`
	Slug        string `json:"slug"`
	Destination string `json:"destination"`
}

// Handler provides the HTTP handlers for the admin surface.
type Handler struct {
	auth       *Authenticator
	killSwitch *killswitch.Switch
	store      click.Store
	logger     *slog.Logger
	now        func() time.Time
}

// HandlerConfig holds configuration for the handler. Store may be nil
// when persistence is disabled; read endpoints then answer with a
// storage error.
type HandlerConfig struct {
	Auth       *Authenticator
	KillSwitch *killswitch.Switch
	Store      click.Store
	Logger     *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		auth:       cfg.Auth,
		killSwitch: cfg.KillSwitch,
		store:      cfg.Store,
		logger:     logger,
		now:        time.Now,
	}
}

// Kill handles POST requests engaging the kill switch.
func (h *Handler) Kill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	if !h.authorize(ctx, w, r, logger) {
		return
	}

	h.killSwitch.Kill()
	logger.InfoContext(ctx, "kill switch engaged")
	httpx.WriteText(w, http.StatusOK, "killed")
}

// Unkill handles POST requests releasing the kill switch.
func (h *Handler) Unkill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	if !h.authorize(ctx, w, r, logger) {
		return
	}

	h.killSwitch.Unkill()
	logger.InfoContext(ctx, "kill switch released")
	httpx.WriteText(w, http.StatusOK, "unkilled")
}

// Stats handles GET requests for per-slug click counts, ordered by
// count descending.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	if !h.authorize(ctx, w, r, logger) {
		return
	}
	if !h.requireStore(ctx, w, logger) {
		return
	}

	rows, err := h.store.StatsBySlug(ctx)
	if err != nil {
		h.writeStoreError(ctx, w, logger, err)
		return
	}
	if rows == nil {
		rows = []click.SlugCount{}
	}

	httpx.WriteJSON(w, http.StatusOK, rows)
}

// Last handles GET requests for the most recent clicks, newest first.
// Destinations are truncated for display.
func (h *Handler) Last(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	if !h.authorize(ctx, w, r, logger) {
		return
	}
	if !h.requireStore(ctx, w, logger) {
		return
	}

	events, err := h.store.Recent(ctx, recentLimit)
	if err != nil {
		h.writeStoreError(ctx, w, logger, err)
		return
	}

	out := make([]RecentClick, 0, len(events))
	for _, ev := range events {
		out = append(out, RecentClick{
			TS:          ev.Time.UTC().Format(time.RFC3339),
			Slug:        ev.Slug,
			Destination: truncate(ev.Destination, maxDestinationChars),
		})
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

// Export handles GET requests for a CSV document of the most recent
// clicks, newest first.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	if !h.authorize(ctx, w, r, logger) {
		return
	}
	if !h.requireStore(ctx, w, logger) {
		return
	}

	events, err := h.store.Recent(ctx, exportLimit)
	if err != nil {
		h.writeStoreError(ctx, w, logger, err)
		return
	}

	h.writeCSV(ctx, w, logger, events, "clicks.csv")
}

// ExportDay handles GET requests for a CSV document of one UTC day's
// clicks, ordered by insertion id. The day query parameter defaults to
// the current UTC day.
func (h *Handler) ExportDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	if !h.authorize(ctx, w, r, logger) {
		return
	}

	day := h.now().UTC()
	if raw := r.URL.Query().Get("day"); raw != "" {
		parsed, err := time.Parse(dayFormat, raw)
		if err != nil {
			logger.WarnContext(ctx, "invalid day parameter", "day", raw)
			httpx.WriteError(w, http.StatusBadRequest, "invalid_input",
				"day must be YYYY-MM-DD", nil)
			return
		}
		day = parsed
	}

	if !h.requireStore(ctx, w, logger) {
		return
	}

	events, err := h.store.OnDay(ctx, day)
	if err != nil {
		h.writeStoreError(ctx, w, logger, err)
		return
	}

	filename := fmt.Sprintf("clicks-%s.csv", day.Format(dayFormat))
	h.writeCSV(ctx, w, logger, events, filename)
}

// authorize checks the admin credential and writes the uniform
// forbidden response when it does not match.
func (h *Handler) authorize(ctx context.Context, w http.ResponseWriter, r *http.Request, logger *slog.Logger) bool {
	if h.auth.Authenticate(r.Header.Get(CredentialHeader)) {
		return true
	}

	logger.WarnContext(ctx, "admin authentication failed")
	httpx.WriteError(w, http.StatusForbidden, "forbidden", "forbidden", nil)
	return false
}

// requireStore rejects the request when persistence is disabled.
func (h *Handler) requireStore(ctx context.Context, w http.ResponseWriter, logger *slog.Logger) bool {
	if h.store != nil {
		return true
	}

	logger.WarnContext(ctx, "admin read with persistence disabled")
	httpx.WriteError(w, http.StatusInternalServerError, "storage_error",
		"persistence is not configured", nil)
	return false
}

func (h *Handler) writeStoreError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.ErrorContext(ctx, "click store query failed",
		"error", err.Error(),
		"error_kind", errx.KindOf(err),
		"operation", errx.OpOf(err),
	)
	httpx.WriteError(w, http.StatusInternalServerError, "storage_error",
		"click store unavailable",
		map[string]string{"op": errx.OpOf(err)})
}

// writeCSV builds the whole document in memory before sending so a
// failure never produces a partial response.
func (h *Handler) writeCSV(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, events []click.Event, filename string) {
	doc, err := clicksCSV(events)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build csv document",
			"error", err.Error(),
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"failed to build export", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		logger.ErrorContext(ctx, "failed to write csv response",
			"error", err.Error(),
		)
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

func clicksCSV(events []click.Event) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write([]string{"id", "ts", "slug", "destination", "client_addr", "user_agent"}); err != nil {
		return nil, err
	}
	for _, ev := range events {
		rec := []string{
			strconv.FormatInt(ev.ID, 10),
			ev.Time.UTC().Format(time.RFC3339Nano),
			ev.Slug,
			ev.Destination,
			ev.ClientAddr,
			ev.UserAgent,
		}
		if err := cw.Write(rec); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// truncate shortens s to at most max characters.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
