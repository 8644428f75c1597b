package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/chartnote/chartnote/internal/common"
	"github.com/chartnote/chartnote/internal/services/auth"
	badgerstorage "github.com/chartnote/chartnote/internal/storage/badger"
)

func newAuthTestHandler(t *testing.T) (*AuthHandler, *auth.Service, func()) {
	config := &common.BadgerConfig{
		Path: t.TempDir() + "/badger",
	}

	logger := arbor.NewLogger()
	manager, err := badgerstorage.NewManager(logger, config)
	require.NoError(t, err)

	authService := auth.NewService(manager.ClientStorage(), logger)

	cleanup := func() {
		manager.Close()
	}

	return NewAuthHandler(authService, logger), authService, cleanup
}

func credentialsBody(username, password string) *bytes.Reader {
	data, _ := json.Marshal(map[string]string{"username": username, "password": password})
	return bytes.NewReader(data)
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	handler, authService, cleanup := newAuthTestHandler(t)
	defer cleanup()

	w := httptest.NewRecorder()
	handler.RegisterHandler(w, httptest.NewRequest("POST", "/auth/register", credentialsBody("trader1", "correct horse battery")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var registered map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.Equal(t, "trader1", registered["username"])
	assert.NotEmpty(t, registered["id"])
	assert.NotContains(t, w.Body.String(), "password")

	w = httptest.NewRecorder()
	handler.LoginHandler(w, httptest.NewRequest("POST", "/auth/login", credentialsBody("trader1", "correct horse battery")))
	require.Equal(t, http.StatusOK, w.Code)

	var login map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login["token"])
	assert.Equal(t, "bearer", login["token_type"])

	clientID, err := authService.Authenticate(httptest.NewRequest("GET", "/", nil).Context(), login["token"])
	require.NoError(t, err)
	assert.Equal(t, registered["id"], clientID)
}

func TestAuthHandler_RegisterRejectsWeakInput(t *testing.T) {
	handler, _, cleanup := newAuthTestHandler(t)
	defer cleanup()

	w := httptest.NewRecorder()
	handler.RegisterHandler(w, httptest.NewRequest("POST", "/auth/register", credentialsBody("", "long enough password")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	handler.RegisterHandler(w, httptest.NewRequest("POST", "/auth/register", credentialsBody("trader1", "short")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_LoginRejectsBadCredentials(t *testing.T) {
	handler, _, cleanup := newAuthTestHandler(t)
	defer cleanup()

	w := httptest.NewRecorder()
	handler.RegisterHandler(w, httptest.NewRequest("POST", "/auth/register", credentialsBody("trader1", "correct horse battery")))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	handler.LoginHandler(w, httptest.NewRequest("POST", "/auth/login", credentialsBody("trader1", "wrong password here")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	handler.LoginHandler(w, httptest.NewRequest("POST", "/auth/login", credentialsBody("nobody", "correct horse battery")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_RequirePOST(t *testing.T) {
	handler, _, cleanup := newAuthTestHandler(t)
	defer cleanup()

	w := httptest.NewRecorder()
	handler.RegisterHandler(w, httptest.NewRequest("GET", "/auth/register", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	handler.LoginHandler(w, httptest.NewRequest("GET", "/auth/login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
