package usage

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/chartnote/chartnote/internal/common"
	"github.com/chartnote/chartnote/internal/interfaces"
	"github.com/chartnote/chartnote/internal/models"
)

// Service records and reports client token usage
type Service struct {
	storage interfaces.UsageStorage
	logger  arbor.ILogger
}

// NewService creates a new usage service
func NewService(storage interfaces.UsageStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Record appends a batch of usage items for a client. An empty batch is a
// no-op, not an error.
func (s *Service) Record(ctx context.Context, clientID string, items []models.UsageItem) error {
	if len(items) == 0 {
		return nil
	}

	records := make([]*models.UsageRecord, 0, len(items))
	for _, item := range items {
		if item.Action == "" {
			return common.NewValidationError("usage action is required")
		}
		if item.TokensUsed < 0 {
			return common.NewValidationError("tokens_used must not be negative")
		}
		records = append(records, &models.UsageRecord{
			ClientID:   clientID,
			Action:     item.Action,
			TokensUsed: item.TokensUsed,
		})
	}

	return s.storage.AppendUsage(ctx, records)
}

// RecordAnalysis appends one record produced by an analyzer call, carrying
// the endpoint and model of the upstream request
func (s *Service) RecordAnalysis(ctx context.Context, clientID, action string, usage models.TokenUsage) error {
	record := &models.UsageRecord{
		ClientID:   clientID,
		Action:     action,
		TokensUsed: usage.TotalTokens,
		Endpoint:   usage.Endpoint,
		Model:      usage.Model,
	}
	return s.storage.AppendUsage(ctx, []*models.UsageRecord{record})
}

// List returns a client's usage records newest first
func (s *Service) List(ctx context.Context, clientID string) ([]*models.UsageRecord, error) {
	return s.storage.ListUsage(ctx, clientID)
}
