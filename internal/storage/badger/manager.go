package badger

import (
	"github.com/chartnote/chartnote/internal/common"
	"github.com/chartnote/chartnote/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db        *BadgerDB
	sheet     interfaces.SheetStorage
	rationale interfaces.RationaleStorage
	usage     interfaces.UsageStorage
	client    interfaces.ClientStorage
	logger    arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:        db,
		sheet:     NewSheetStorage(db, logger),
		rationale: NewRationaleStorage(db, logger),
		usage:     NewUsageStorage(db, logger),
		client:    NewClientStorage(db, logger),
		logger:    logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// SheetStorage returns the Sheet storage interface
func (m *Manager) SheetStorage() interfaces.SheetStorage {
	return m.sheet
}

// RationaleStorage returns the Rationale storage interface
func (m *Manager) RationaleStorage() interfaces.RationaleStorage {
	return m.rationale
}

// UsageStorage returns the Usage storage interface
func (m *Manager) UsageStorage() interfaces.UsageStorage {
	return m.usage
}

// ClientStorage returns the Client storage interface
func (m *Manager) ClientStorage() interfaces.ClientStorage {
	return m.client
}

// DB returns the underlying database connection
func (m *Manager) DB() interface{} {
	if m.db != nil {
		return m.db.Store()
	}
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
