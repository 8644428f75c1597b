package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"golang.org/x/crypto/bcrypt"

	"github.com/chartnote/chartnote/internal/common"
	"github.com/chartnote/chartnote/internal/interfaces"
	"github.com/chartnote/chartnote/internal/models"
)

// Service manages client registration, login, and token resolution
type Service struct {
	clients interfaces.ClientStorage
	logger  arbor.ILogger
}

// NewService creates a new auth service
func NewService(clients interfaces.ClientStorage, logger arbor.ILogger) *Service {
	return &Service{
		clients: clients,
		logger:  logger,
	}
}

// Register creates a new client with a bcrypt-hashed password
func (s *Service) Register(ctx context.Context, username, password string) (*models.Client, error) {
	if username == "" {
		return nil, common.NewValidationError("username is required")
	}
	if len(password) < 8 {
		return nil, common.NewValidationError("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	client := &models.Client{
		Username:     username,
		PasswordHash: string(hash),
	}

	if err := s.clients.CreateClient(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info().Str("client_id", client.ID).Str("username", username).Msg("Client registered")
	return client, nil
}

// Login verifies credentials and issues an opaque bearer token
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	client, err := s.clients.GetClientByUsername(ctx, username)
	if err != nil {
		var nfe *common.NotFoundError
		if errors.As(err, &nfe) {
			return "", common.NewValidationError("invalid username or password")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(password)); err != nil {
		return "", common.NewValidationError("invalid username or password")
	}

	token := common.NewToken()
	if err := s.clients.SaveToken(ctx, &models.APIToken{
		Token:    token,
		ClientID: client.ID,
	}); err != nil {
		return "", err
	}

	s.logger.Debug().Str("client_id", client.ID).Msg("Client logged in")
	return token, nil
}

// Authenticate resolves a bearer token to the owning client ID
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.NewNotFoundError("token", "")
	}

	apiToken, err := s.clients.GetToken(ctx, token)
	if err != nil {
		return "", err
	}

	return apiToken.ClientID, nil
}
