package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/refgraph/internal/config"
	"github.com/gyaneshwarpardhi/refgraph/internal/engine"
	"github.com/gyaneshwarpardhi/refgraph/internal/growth"
	"github.com/gyaneshwarpardhi/refgraph/internal/ledger"
	"github.com/gyaneshwarpardhi/refgraph/internal/metrics"
)

const defaultK = 10

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng        *engine.Engine
	configPath string
	mux        *http.ServeMux
}

// New creates an HTTP handler and registers all routes. configPath is re-read
// by the reload endpoint; empty disables it.
func New(eng *engine.Engine, configPath string) http.Handler {
	h := &Handler{eng: eng, configPath: configPath, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/users", h.addUser)
	h.mux.HandleFunc("POST /v1/referrals", h.addReferral)
	h.mux.HandleFunc("GET /v1/users/{key}/referrals", h.referrals)
	h.mux.HandleFunc("GET /v1/users/{key}/reach", h.reach)
	h.mux.HandleFunc("GET /v1/analytics/top", h.top)
	h.mux.HandleFunc("GET /v1/analytics/coverage", h.coverage)
	h.mux.HandleFunc("GET /v1/analytics/centrality", h.centrality)
	h.mux.HandleFunc("GET /v1/stats", h.stats)
	h.mux.HandleFunc("POST /v1/simulations", h.simulate)
	h.mux.HandleFunc("POST /v1/simulations/days-to-target", h.daysToTarget)
	h.mux.HandleFunc("POST /v1/bonus/optimize", h.optimize)
	h.mux.HandleFunc("POST /v1/config/reload", h.reload)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// POST /v1/users
func (h *Handler) addUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decode(w, r, &req) {
		return
	}
	created := h.eng.AddUser(req.Key)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"key": req.Key, "created": created})
}

// POST /v1/referrals — 409 with a reason when the ledger rejects the edge.
func (h *Handler) addReferral(w http.ResponseWriter, r *http.Request) {
	var req referralRequest
	if !decode(w, r, &req) {
		return
	}
	rec, err := h.eng.AddReferral(req.Referrer, req.Candidate)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, rec)
	case errors.Is(err, ledger.ErrInvalidInput):
		writeRejection(w, http.StatusBadRequest, ledger.Reason(err), err)
	default:
		writeRejection(w, http.StatusConflict, ledger.Reason(err), err)
	}
}

// GET /v1/users/{key}/referrals
func (h *Handler) referrals(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	resp := map[string]any{
		"user":      key,
		"referrals": h.eng.Referrals(key),
	}
	if ref, ok := h.eng.Referrer(key); ok {
		resp["referrer"] = ref
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /v1/users/{key}/reach
func (h *Handler) reach(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.Reach(r.PathValue("key")))
}

// GET /v1/analytics/top?k=
func (h *Handler) top(w http.ResponseWriter, r *http.Request) {
	k, ok := queryK(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"k": k, "users": h.eng.TopReferrers(k)})
}

// GET /v1/analytics/coverage?k=
func (h *Handler) coverage(w http.ResponseWriter, r *http.Request) {
	k, ok := queryK(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"k": k, "selected": h.eng.Coverage(k)})
}

// GET /v1/analytics/centrality?kind=flow|betweenness
func (h *Handler) centrality(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	scores, err := h.eng.Centrality(kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if kind == "" {
		kind = engine.KindFlow
	}
	writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "scores": scores})
}

// GET /v1/stats
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.Stats())
}

// POST /v1/simulations — one run, or a Monte-Carlo batch when trials > 0.
func (h *Handler) simulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Trials == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"p":          req.P,
			"days":       req.Days,
			"cumulative": h.eng.Simulate(req.P, req.Days),
		})
		return
	}
	batch, err := h.eng.RunTrials(r.Context(), req.P, req.Days, req.Trials)
	if err != nil {
		status := http.StatusGatewayTimeout
		if errors.Is(err, engine.ErrQueueFull) {
			status = http.StatusTooManyRequests
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// POST /v1/simulations/days-to-target
func (h *Handler) daysToTarget(w http.ResponseWriter, r *http.Request) {
	var req daysToTargetRequest
	if !decode(w, r, &req) {
		return
	}
	days, err := h.eng.DaysToTarget(req.P, req.Target)
	if errors.Is(err, growth.ErrUnreachable) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":     err.Error(),
			"reachable": false,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days, "reachable": true})
}

// POST /v1/bonus/optimize
func (h *Handler) optimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.eng.OptimizeBonus(engine.OptimizeRequest{
		Days:    req.Days,
		Target:  req.Target,
		Formula: req.Formula,
		Eps:     req.Eps,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /v1/config/reload — re-read the config file and rebuild the ledger.
func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	if h.configPath == "" {
		writeError(w, http.StatusNotFound, "no config file to reload")
		return
	}
	cfg, err := config.Load(h.configPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := config.Validate(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.eng.Reload(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	st := h.eng.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"reloaded": true,
		"users":    st.Users,
		"edges":    st.Edges,
	})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 if the trial queue is more than 80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.TrialQueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ready",
		"queue_utilization": util,
	})
}

// queryK parses the k query parameter, defaulting to 10.
func queryK(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("k")
	if raw == "" {
		return defaultK, true
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("k must be a non-negative integer, got %q", raw))
		return 0, false
	}
	return k, true
}
