package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartnote/chartnote/internal/app"
	"github.com/chartnote/chartnote/internal/common"
)

// setupTestServer boots a full application against a throwaway store and
// returns the handler with the middleware chain applied
func setupTestServer(t *testing.T) (http.Handler, func()) {
	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = t.TempDir() + "/badger"
	config.Gemini.APIKey = "test-key"
	config.Maintenance.Enabled = false

	application, err := app.New(config, common.GetLogger())
	require.NoError(t, err)

	srv := New(application)

	cleanup := func() {
		application.Close()
	}

	return srv.server.Handler, cleanup
}

func do(handler http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, body)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestServer_PublicRoutes(t *testing.T) {
	handler, cleanup := setupTestServer(t)
	defer cleanup()

	w := do(handler, "GET", "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(handler, "GET", "/api/version", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(handler, "POST", "/auth/register", "", map[string]string{
		"username": "trader1",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestServer_ProtectedRoutesRequireToken(t *testing.T) {
	handler, cleanup := setupTestServer(t)
	defer cleanup()

	for _, route := range []struct {
		method string
		path   string
	}{
		{"GET", "/sheets"},
		{"POST", "/sheets/rationales"},
		{"GET", "/usage"},
		{"POST", "/gemini/analyze-with-rationale"},
	} {
		w := do(handler, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}

	w := do(handler, "GET", "/sheets", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_AuthenticatedSheetFlow(t *testing.T) {
	handler, cleanup := setupTestServer(t)
	defer cleanup()

	w := do(handler, "POST", "/auth/register", "", map[string]string{
		"username": "trader1",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(handler, "POST", "/auth/login", "", map[string]string{
		"username": "trader1",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	token := login["token"]
	require.NotEmpty(t, token)

	// Create a sheet through the mux
	w = do(handler, "POST", "/sheets", token, map[string]interface{}{
		"file_name":   "trades.csv",
		"upload_date": "2026-08-31",
		"rows_data":   []map[string]interface{}{{"Symbol": "AAPL"}, {"Symbol": "TSLA"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sheet struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sheet))
	require.NotEmpty(t, sheet.ID)

	// Subpath dispatch: get, processed rows, rationales, export
	w = do(handler, "GET", "/sheets/"+sheet.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(handler, "PUT", "/sheets/"+sheet.ID+"/processed-rows", token, []int{1})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(handler, "POST", "/sheets/rationales", token, map[string]interface{}{
		"sheet_id":       sheet.ID,
		"row_index":      0,
		"rationale_text": "Trend supports the entry",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var rationale struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rationale))

	w = do(handler, "GET", "/sheets/rationales/sheet/"+sheet.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(handler, "GET", "/sheets/rationales/"+sheet.ID+"/0", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(handler, "PUT", "/sheets/rationales/"+rationale.ID, token, map[string]string{
		"editable_rationale": "edited",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(handler, "GET", "/sheets/"+sheet.ID+"/export.pdf", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	w = do(handler, "DELETE", "/sheets/rationales/"+rationale.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(handler, "DELETE", "/sheets/"+sheet.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestServer_UnknownAPIRoute(t *testing.T) {
	handler, cleanup := setupTestServer(t)
	defer cleanup()

	w := do(handler, "POST", "/auth/register", "", map[string]string{
		"username": "trader1",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(handler, "POST", "/auth/login", "", map[string]string{
		"username": "trader1",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = do(handler, "GET", "/api/nope", login["token"], nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(handler, "GET", "/sheets/a/b/c", login["token"], nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	handler, cleanup := setupTestServer(t)
	defer cleanup()

	r := httptest.NewRequest("OPTIONS", "/sheets", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	// Preflight succeeds without a token
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
