package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/poyrazK/cfddns/internal/core/domain"
	"github.com/poyrazK/cfddns/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIHandler handles HTTP requests for account, zone and settings management.
type APIHandler struct {
	svc ports.ConfigService
}

// NewAPIHandler creates and returns a new APIHandler instance.
func NewAPIHandler(svc ports.ConfigService) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers the API routes with the provided ServeMux.
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /metrics", h.Metrics)

	mux.HandleFunc("GET /accounts", h.ListAccounts)
	mux.HandleFunc("POST /accounts", h.CreateAccount)
	mux.HandleFunc("GET /accounts/{id}", h.GetAccount)
	mux.HandleFunc("PUT /accounts/{id}", h.UpdateAccount)
	mux.HandleFunc("DELETE /accounts/{id}", h.DeleteAccount)
	mux.HandleFunc("PUT /accounts/{id}/auth", h.UpdateAuthentication)

	mux.HandleFunc("GET /accounts/{id}/zones", h.ListZones)
	mux.HandleFunc("POST /accounts/{id}/zones", h.CreateZone)
	mux.HandleFunc("GET /accounts/{id}/zones/{zone_id}", h.GetZone)
	mux.HandleFunc("PUT /accounts/{id}/zones/{zone_id}", h.UpdateZone)
	mux.HandleFunc("DELETE /accounts/{id}/zones/{zone_id}", h.DeleteZone)

	mux.HandleFunc("GET /settings", h.GetSettings)
	mux.HandleFunc("PUT /settings", h.UpdateSettings)

	// Read-only snapshot for the DNS reconciler.
	mux.HandleFunc("GET /config", h.GetConfig)
}

// accountRequest is the payload for account create and full-replace update.
type accountRequest struct {
	Authentication domain.Authentication `json:"authentication"`
	Zones          []ports.ZoneInput     `json:"zones"`
}

// response is the uniform envelope every endpoint returns.
type response struct {
	Error   bool        `json:"error"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// Metrics handles Prometheus metrics scraping requests.
func (h *APIHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// HealthCheck reports liveness of the service and its store.
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.HealthCheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, response{Error: true, Message: "store unavailable: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response{Message: "OK"})
}

func (h *APIHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Accounts retrieved successfully", map[string]interface{}{"accounts": accounts})
}

func (h *APIHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: true, Message: "invalid request body: " + err.Error()})
		return
	}

	account, err := h.svc.CreateAccount(r.Context(), req.Authentication, req.Zones)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Account added successfully", map[string]interface{}{"account": account})
}

func (h *APIHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Account retrieved successfully", map[string]interface{}{"account": account})
}

func (h *APIHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: true, Message: "invalid request body: " + err.Error()})
		return
	}

	account, err := h.svc.UpdateAccount(r.Context(), r.PathValue("id"), req.Authentication, req.Zones)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Account updated successfully", map[string]interface{}{"account": account})
}

func (h *APIHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Account deleted successfully", nil)
}

func (h *APIHandler) UpdateAuthentication(w http.ResponseWriter, r *http.Request) {
	var auth domain.Authentication
	if err := json.NewDecoder(r.Body).Decode(&auth); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: true, Message: "invalid request body: " + err.Error()})
		return
	}

	account, err := h.svc.UpdateAuthentication(r.Context(), r.PathValue("id"), auth)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Authentication updated successfully", map[string]interface{}{"account": account})
}

func (h *APIHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.svc.ListZones(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Zones retrieved successfully", map[string]interface{}{"zones": zones})
}

func (h *APIHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var req ports.ZoneInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: true, Message: "invalid request body: " + err.Error()})
		return
	}

	zone, err := h.svc.AddZone(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Zone created successfully", map[string]interface{}{"zone": zone})
}

func (h *APIHandler) GetZone(w http.ResponseWriter, r *http.Request) {
	zone, err := h.svc.GetZone(r.Context(), r.PathValue("id"), r.PathValue("zone_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Zone retrieved successfully", map[string]interface{}{"zone": zone})
}

func (h *APIHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	var req ports.ZoneInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: true, Message: "invalid request body: " + err.Error()})
		return
	}

	zone, err := h.svc.UpdateZone(r.Context(), r.PathValue("id"), r.PathValue("zone_id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Zone updated successfully", map[string]interface{}{"zone": zone})
}

func (h *APIHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteZone(r.Context(), r.PathValue("id"), r.PathValue("zone_id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Zone deleted successfully", nil)
}

func (h *APIHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.GetSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Settings retrieved successfully", map[string]interface{}{"settings": settings})
}

func (h *APIHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: true, Message: "invalid request body: " + err.Error()})
		return
	}

	updated, err := h.svc.UpdateSettings(r.Context(), settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Settings updated successfully", map[string]interface{}{"settings": updated})
}

func (h *APIHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Configuration retrieved successfully", map[string]interface{}{"config": cfg})
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, response{Data: data, Message: message})
}

// writeError maps the domain error taxonomy onto HTTP statuses:
// validation 422, not found 404, conflict 409, anything else 500.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, response{
			Error:   true,
			Data:    map[string]interface{}{"field": ve.Field, "reason": ve.Reason},
			Message: ve.Error(),
		})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, response{Error: true, Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, response{Error: true, Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, response{Error: true, Message: "Internal Server Error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
