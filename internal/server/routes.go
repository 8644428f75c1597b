package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Authentication
	mux.HandleFunc("/auth/register", s.app.AuthHandler.RegisterHandler)
	mux.HandleFunc("/auth/login", s.app.AuthHandler.LoginHandler)

	// Chart analysis
	mux.HandleFunc("/gemini/analyze-with-rationale", s.app.GeminiHandler.AnalyzeWithRationaleHandler)
	mux.HandleFunc("/gemini/analyze-image-only", s.app.GeminiHandler.AnalyzeImageOnlyHandler)

	// Sheets and rationales
	mux.HandleFunc("/sheets", s.handleSheetsRoute)  // GET (list), POST (create)
	mux.HandleFunc("/sheets/", s.handleSheetRoutes) // upload, rationales, /{id} subpaths

	// Usage ledger
	mux.HandleFunc("/usage", s.app.UsageHandler.UsageRouteHandler)

	// System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleSheetsRoute routes the collection endpoint
func (s *Server) handleSheetsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.app.SheetHandler.ListSheetsHandler(w, r)
	case "POST":
		s.app.SheetHandler.CreateSheetHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSheetRoutes routes sheet subpaths to the appropriate handler
func (s *Server) handleSheetRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sheets/")

	// POST /sheets/upload
	if rest == "upload" {
		s.app.SheetHandler.UploadSheetHandler(w, r)
		return
	}

	// POST /sheets/rationales
	if rest == "rationales" {
		s.app.SheetHandler.UpsertRationaleHandler(w, r)
		return
	}

	if sub, ok := strings.CutPrefix(rest, "rationales/"); ok {
		s.handleRationaleRoutes(w, r, sub)
		return
	}

	parts := strings.Split(strings.Trim(rest, "/"), "/")
	switch {
	// GET/DELETE /sheets/{id}
	case len(parts) == 1 && parts[0] != "":
		switch r.Method {
		case "GET":
			s.app.SheetHandler.GetSheetHandler(w, r, parts[0])
		case "DELETE":
			s.app.SheetHandler.DeleteSheetHandler(w, r, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	// PUT /sheets/{id}/processed-rows
	case len(parts) == 2 && parts[1] == "processed-rows":
		if r.Method != "PUT" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.app.SheetHandler.UpdateProcessedRowsHandler(w, r, parts[0])

	// GET /sheets/{id}/export.pdf
	case len(parts) == 2 && parts[1] == "export.pdf":
		if r.Method != "GET" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.app.SheetHandler.ExportPDFHandler(w, r, parts[0])

	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleRationaleRoutes routes rationale subpaths
func (s *Server) handleRationaleRoutes(w http.ResponseWriter, r *http.Request, sub string) {
	// GET /sheets/rationales/sheet/{sheet_id}
	if sheetID, ok := strings.CutPrefix(sub, "sheet/"); ok {
		if r.Method != "GET" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.app.SheetHandler.ListRationalesHandler(w, r, sheetID)
		return
	}

	parts := strings.Split(strings.Trim(sub, "/"), "/")
	switch {
	// GET /sheets/rationales/{sheet_id}/{row_index}
	case len(parts) == 2:
		if r.Method != "GET" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.app.SheetHandler.GetRationaleHandler(w, r, parts[0], parts[1])

	// PUT/DELETE /sheets/rationales/{rationale_id}
	case len(parts) == 1 && parts[0] != "":
		switch r.Method {
		case "PUT":
			s.app.SheetHandler.UpdateRationaleHandler(w, r, parts[0])
		case "DELETE":
			s.app.SheetHandler.DeleteRationaleHandler(w, r, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}
