package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/chartnote/chartnote/internal/common"
	"github.com/chartnote/chartnote/internal/interfaces"
	"github.com/chartnote/chartnote/internal/models"
)

// UsageStorage implements the UsageStorage interface for Badger.
// Records are append-only; nothing updates or deletes them.
type UsageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewUsageStorage creates a new UsageStorage instance
func NewUsageStorage(db *BadgerDB, logger arbor.ILogger) interfaces.UsageStorage {
	return &UsageStorage{
		db:     db,
		logger: logger,
	}
}

func (s *UsageStorage) AppendUsage(ctx context.Context, records []*models.UsageRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	for _, record := range records {
		if record.ID == "" {
			record.ID = common.NewUsageID()
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
	}

	// All rows of a batch land together or not at all
	err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		for _, record := range records {
			if err := s.db.Store().TxInsert(txn, record.ID, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append usage records: %w", err)
	}

	s.logger.Debug().Int("count", len(records)).Msg("Usage records appended")
	return nil
}

func (s *UsageStorage) ListUsage(ctx context.Context, clientID string) ([]*models.UsageRecord, error) {
	var records []models.UsageRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("ClientID").Eq(clientID)); err != nil {
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	result := make([]*models.UsageRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}
