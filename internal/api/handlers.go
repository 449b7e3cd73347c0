package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"consent-expiry/internal/consent"
	"consent-expiry/internal/expiry"
	"consent-expiry/internal/health"
	"consent-expiry/internal/logs"
	"consent-expiry/internal/metrics"
	"consent-expiry/internal/store"
	"consent-expiry/internal/sweep"
)

const defaultLogLimit = 100

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	backend         store.Backend
	checker         *expiry.Checker
	sweeper         *sweep.Sweeper
	metrics         *metrics.Registry
	prometheus      http.Handler
	analyzer        *health.Analyzer
	logs            *logs.Buffer
	log             *zap.Logger
	requiredVendors string
}

// NewHandler creates a new API handler.
func NewHandler(
	backend store.Backend,
	checker *expiry.Checker,
	sweeper *sweep.Sweeper,
	reg *metrics.Registry,
	buf *logs.Buffer,
	log *zap.Logger,
	requiredVendors string,
) *Handler {
	return &Handler{
		backend:         backend,
		checker:         checker,
		sweeper:         sweeper,
		metrics:         reg,
		prometheus:      promhttp.HandlerFor(metrics.NewPrometheusRegistry(reg), promhttp.HandlerOpts{}),
		analyzer:        health.NewAnalyzer(reg, buf),
		logs:            buf,
		log:             log.Named("api"),
		requiredVendors: requiredVendors,
	}
}

func (h *Handler) namespace(r *http.Request) store.Store {
	return h.backend.Namespace(r.URL.Query().Get("ns"))
}

/* ---------------- PUT /prefs/{key} ---------------- */

type setRequest struct {
	Value string `json:"value"`
}

func (h *Handler) SetPref(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body")
		return
	}

	if err := h.namespace(r).Set(r.Context(), key, req.Value); err != nil {
		h.log.Warn("store write failed", zap.String("key", key), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "store write failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/* ---------------- GET /prefs/{key} ---------------- */

func (h *Handler) GetPref(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, ok, err := h.namespace(r).Get(r.Context(), key)
	if err != nil {
		h.log.Warn("store read failed", zap.String("key", key), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "store read failed")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "key not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"value": value})
}

/* ---------------- DELETE /prefs/{key} ---------------- */

func (h *Handler) DeletePref(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := h.namespace(r).Remove(r.Context(), key); err != nil {
		h.log.Warn("store delete failed", zap.String("key", key), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "store delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/* ---------------- GET /admin/prefs ---------------- */

func (h *Handler) ListPrefs(w http.ResponseWriter, r *http.Request) {
	values, err := h.namespace(r).List(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "store list failed")
		return
	}
	writeJSON(w, http.StatusOK, values)
}

/* ---------------- POST /admin/expiry/check ---------------- */

func (h *Handler) CheckExpiry(w http.ResponseWriter, r *http.Request) {
	res, err := h.checker.CheckAndExpire(r.Context(), h.namespace(r))
	if err != nil {
		writeCheckError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

/* ---------------- POST /admin/sweep ---------------- */

func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.sweeper.RunOnce(r.Context())
	status := http.StatusOK
	if err != nil {
		// partial failures still carry a useful report
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, report)
}

/* ---------------- GET /admin/ad-configuration ---------------- */

func (h *Handler) GetAdConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := consent.DetectAdConfiguration(r.Context(), h.namespace(r), h.requiredVendors)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]consent.AdConfiguration{"ad_configuration": cfg})
}

/* ---------------- GET /admin/consent-status ---------------- */

func (h *Handler) GetConsentStatus(w http.ResponseWriter, r *http.Request) {
	status, err := consent.PreviousStatus(r.Context(), h.namespace(r))
	switch {
	case errors.Is(err, consent.ErrInvalidStatus):
		writeError(w, http.StatusUnprocessableEntity, "invalid_status", err.Error())
		return
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]consent.Status{"consent_status": status})
}

/* ---------------- GET /admin/logs ---------------- */

func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	n := defaultLogLimit
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", "n must be a non-negative integer")
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, h.logs.GetLast(n))
}

/* ---------------- GET /metrics ---------------- */

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.prometheus.ServeHTTP(w, r)
}

func (h *Handler) GetMetricsSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}

/* ---------------- GET /health ---------------- */

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analyzer.Analyze())
}
