package redirect

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"fob/internal/httpx"
)

// Limiter admits or rejects a request for one client identity.
type Limiter interface {
	Allow(key string) bool
}

// Recorder accepts a click for background persistence.
type Recorder interface {
	Record(slug, destination, clientAddr, userAgent string)
}

// Handler serves the public redirect endpoint.
type Handler struct {
	validator *Validator
	limiter   Limiter
	recorder  Recorder
	clicks    *prometheus.CounterVec
	logger    *slog.Logger
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Validator *Validator
	Limiter   Limiter
	Recorder  Recorder
	Clicks    *prometheus.CounterVec
	Logger    *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		validator: cfg.Validator,
		limiter:   cfg.Limiter,
		recorder:  cfg.Recorder,
		clicks:    cfg.Clicks,
		logger:    logger,
	}
}

// Redirect handles GET requests for a slug, answering 302 to the
// validated destination. The click is recorded in the background and
// never delays or fails the response.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requestID := httpx.GetRequestID(ctx)

	logger := h.logger.With(
		"request_id", requestID,
		"method", r.Method,
		"path", r.URL.Path,
	)

	identity := httpx.ClientIP(r)
	if !h.limiter.Allow(identity) {
		logger.WarnContext(ctx, "redirect rate limited",
			"client_addr", identity,
		)
		httpx.WriteError(w, http.StatusTooManyRequests, "rate_limited",
			"too many requests, slow down", nil)
		return
	}

	slug := r.PathValue("slug")
	dest := r.URL.Query().Get("dest")
	resolved := h.validator.Resolve(dest)

	h.recorder.Record(slug, resolved, identity, r.UserAgent())
	if h.clicks != nil {
		h.clicks.WithLabelValues(slug).Inc()
	}

	logger.InfoContext(ctx, "redirect issued",
		"slug", slug,
		"destination", resolved,
		"client_addr", identity,
	)

	http.Redirect(w, r, resolved, http.StatusFound)
}
