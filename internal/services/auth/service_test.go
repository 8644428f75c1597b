package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/chartnote/chartnote/internal/common"
	badgerstorage "github.com/chartnote/chartnote/internal/storage/badger"
)

func setupTestService(t *testing.T) (*Service, func()) {
	config := &common.BadgerConfig{
		Path: t.TempDir() + "/badger",
	}

	logger := arbor.NewLogger()
	manager, err := badgerstorage.NewManager(logger, config)
	require.NoError(t, err)

	service := NewService(manager.ClientStorage(), logger)

	cleanup := func() {
		manager.Close()
	}

	return service, cleanup
}

func TestService_RegisterLoginAuthenticate(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	client, err := service.Register(ctx, "trader1", "correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, client.ID)
	assert.Equal(t, "trader1", client.Username)

	// Hash, not the password, is stored
	assert.NotEmpty(t, client.PasswordHash)
	assert.NotContains(t, client.PasswordHash, "correct horse battery")

	token, err := service.Login(ctx, "trader1", "correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	clientID, err := service.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, client.ID, clientID)
}

func TestService_RegisterValidation(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	var ve *common.ValidationError

	_, err := service.Register(ctx, "", "long enough password")
	require.ErrorAs(t, err, &ve)

	_, err = service.Register(ctx, "trader1", "short")
	require.ErrorAs(t, err, &ve)

	_, err = service.Register(ctx, "trader1", "long enough password")
	require.NoError(t, err)

	// Duplicate usernames are rejected
	_, err = service.Register(ctx, "trader1", "another long password")
	require.ErrorAs(t, err, &ve)
}

func TestService_LoginRejectsBadCredentials(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, err := service.Register(ctx, "trader1", "correct horse battery")
	require.NoError(t, err)

	// Unknown user and wrong password produce the same error
	var ve *common.ValidationError
	_, err = service.Login(ctx, "nobody", "correct horse battery")
	require.ErrorAs(t, err, &ve)
	unknownUser := ve.Detail

	_, err = service.Login(ctx, "trader1", "wrong password here")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, unknownUser, ve.Detail)
}

func TestService_AuthenticateRejectsUnknownTokens(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	var nfe *common.NotFoundError

	_, err := service.Authenticate(ctx, "")
	require.ErrorAs(t, err, &nfe)

	_, err = service.Authenticate(ctx, "not-a-real-token")
	require.ErrorAs(t, err, &nfe)
}

func TestService_EachLoginIssuesFreshToken(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	client, err := service.Register(ctx, "trader1", "correct horse battery")
	require.NoError(t, err)

	first, err := service.Login(ctx, "trader1", "correct horse battery")
	require.NoError(t, err)
	second, err := service.Login(ctx, "trader1", "correct horse battery")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Both stay valid
	id, err := service.Authenticate(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, client.ID, id)
	id, err = service.Authenticate(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, client.ID, id)
}
