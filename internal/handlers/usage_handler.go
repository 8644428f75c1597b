package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/chartnote/chartnote/internal/models"
	"github.com/chartnote/chartnote/internal/services/usage"
)

// UsageHandler serves the usage ledger endpoints
type UsageHandler struct {
	usage  *usage.Service
	logger arbor.ILogger
}

// NewUsageHandler creates a new UsageHandler
func NewUsageHandler(usageService *usage.Service, logger arbor.ILogger) *UsageHandler {
	return &UsageHandler{
		usage:  usageService,
		logger: logger,
	}
}

type recordUsageRequest struct {
	Usage []models.UsageItem `json:"usage"`
}

// RecordUsageHandler handles POST /usage (batch append)
func (h *UsageHandler) RecordUsageHandler(w http.ResponseWriter, r *http.Request) {
	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	var req recordUsageRequest
	if err := DecodeJSONBody(r, &req); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := h.usage.Record(r.Context(), clientID, req.Usage); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status":   "success",
		"recorded": len(req.Usage),
	})
}

// ListUsageHandler handles GET /usage
func (h *UsageHandler) ListUsageHandler(w http.ResponseWriter, r *http.Request) {
	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	records, err := h.usage.List(r.Context(), clientID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"usage": records,
		"total": len(records),
	})
}

// UsageRouteHandler dispatches POST and GET on /usage
func (h *UsageHandler) UsageRouteHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		h.RecordUsageHandler(w, r)
	case "GET":
		h.ListUsageHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
