package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/chartnote/chartnote/internal/interfaces"
	"github.com/chartnote/chartnote/internal/models"
	"github.com/chartnote/chartnote/internal/services/usage"
)

// maxUploadBytes bounds multipart parsing memory for chart uploads
const maxUploadBytes = 16 << 20

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// GeminiHandler serves the chart analysis endpoints
type GeminiHandler struct {
	analyzer interfaces.Analyzer
	usage    *usage.Service
	logger   arbor.ILogger
}

// NewGeminiHandler creates a new GeminiHandler
func NewGeminiHandler(analyzer interfaces.Analyzer, usageService *usage.Service, logger arbor.ILogger) *GeminiHandler {
	return &GeminiHandler{
		analyzer: analyzer,
		usage:    usageService,
		logger:   logger,
	}
}

// AnalyzeWithRationaleHandler handles POST /gemini/analyze-with-rationale.
// Multipart form: trade_data (JSON object text), image (PNG/JPEG/WEBP),
// optional plan_type, optional prompt override. All input validation
// happens before the upstream call.
func (h *GeminiHandler) AnalyzeWithRationaleHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	tradeData := r.FormValue("trade_data")
	var tradeObject map[string]interface{}
	if err := json.Unmarshal([]byte(tradeData), &tradeObject); err != nil {
		WriteError(w, http.StatusBadRequest, "trade_data must be a JSON object")
		return
	}

	planType := r.FormValue("plan_type")
	promptOverride := r.FormValue("prompt")

	image, mimeType, ok := h.readImage(w, r)
	if !ok {
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), interfaces.AnalyzeRequest{
		TradeContext:   tradeData,
		PlanType:       planType,
		PromptOverride: promptOverride,
		Image:          image,
		MimeType:       mimeType,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	h.recordUsage(r, clientID, "image_upload", result.Usage)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"plan_type":  planType,
		"trade_data": tradeObject,
		"output":     result,
	})
}

// AnalyzeImageOnlyHandler handles POST /gemini/analyze-image-only
func (h *GeminiHandler) AnalyzeImageOnlyHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	clientID, ok := RequireClientID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	image, mimeType, ok := h.readImage(w, r)
	if !ok {
		return
	}

	result, err := h.analyzer.AnalyzeImageOnly(r.Context(), image, mimeType)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	h.recordUsage(r, clientID, "image_upload", result.Usage)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"output": result,
	})
}

// readImage pulls the image part, rejecting disallowed content types
// before the bytes are read
func (h *GeminiHandler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	file, header, err := r.FormFile("image")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "image file is required")
		return nil, "", false
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !allowedImageTypes[mimeType] {
		WriteError(w, http.StatusBadRequest, "image must be PNG, JPEG, or WEBP")
		return nil, "", false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "failed to read image data")
		return nil, "", false
	}

	return data, mimeType, true
}

// recordUsage appends the ledger row for a successful analysis. A failed
// write is logged but never fails the analysis response.
func (h *GeminiHandler) recordUsage(r *http.Request, clientID, action string, tokenUsage models.TokenUsage) {
	if err := h.usage.RecordAnalysis(r.Context(), clientID, action, tokenUsage); err != nil {
		h.logger.Warn().Err(err).Str("client_id", clientID).Msg("Failed to record usage")
	}
}
