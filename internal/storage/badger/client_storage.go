package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/chartnote/chartnote/internal/common"
	"github.com/chartnote/chartnote/internal/interfaces"
	"github.com/chartnote/chartnote/internal/models"
)

// ClientStorage implements the ClientStorage interface for Badger.
// Tokens are stored keyed by the token string itself, prefixed to keep
// them out of the client key space.
type ClientStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewClientStorage creates a new ClientStorage instance
func NewClientStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ClientStorage {
	return &ClientStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ClientStorage) CreateClient(ctx context.Context, client *models.Client) error {
	if client.Username == "" {
		return common.NewValidationError("username is required")
	}

	existing, err := s.GetClientByUsername(ctx, client.Username)
	if err == nil && existing != nil {
		return common.NewValidationError("username already registered: %s", client.Username)
	}

	if client.ID == "" {
		client.ID = common.NewClientID()
	}
	client.CreatedAt = time.Now()

	if err := s.db.Store().Insert(client.ID, client); err != nil {
		return fmt.Errorf("failed to save client: %w", err)
	}

	s.logger.Debug().Str("client_id", client.ID).Str("username", client.Username).Msg("Client registered")
	return nil
}

func (s *ClientStorage) GetClientByUsername(ctx context.Context, username string) (*models.Client, error) {
	var clients []models.Client
	if err := s.db.Store().Find(&clients, badgerhold.Where("Username").Eq(username)); err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	if len(clients) == 0 {
		return nil, common.NewNotFoundError("client", username)
	}
	return &clients[0], nil
}

func (s *ClientStorage) GetClientByID(ctx context.Context, id string) (*models.Client, error) {
	var client models.Client
	if err := s.db.Store().Get(id, &client); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, common.NewNotFoundError("client", id)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &client, nil
}

func (s *ClientStorage) SaveToken(ctx context.Context, token *models.APIToken) error {
	if token.Token == "" || token.ClientID == "" {
		return fmt.Errorf("token and client ID are required")
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(tokenKey(token.Token), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *ClientStorage) GetToken(ctx context.Context, token string) (*models.APIToken, error) {
	var apiToken models.APIToken
	if err := s.db.Store().Get(tokenKey(token), &apiToken); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, common.NewNotFoundError("token", "")
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &apiToken, nil
}

func tokenKey(token string) string {
	return "tok_" + token
}
