package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/chartnote/chartnote/internal/common"
	"github.com/chartnote/chartnote/internal/handlers"
	"github.com/chartnote/chartnote/internal/interfaces"
	"github.com/chartnote/chartnote/internal/services/analyzer"
	"github.com/chartnote/chartnote/internal/services/auth"
	"github.com/chartnote/chartnote/internal/services/maintenance"
	"github.com/chartnote/chartnote/internal/services/sheets"
	"github.com/chartnote/chartnote/internal/services/usage"
	badgerstorage "github.com/chartnote/chartnote/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Services
	AnalyzerService    interfaces.Analyzer
	SheetService       *sheets.Service
	UsageService       *usage.Service
	AuthService        *auth.Service
	MaintenanceService *maintenance.Service

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	AuthHandler   *handlers.AuthHandler
	GeminiHandler *handlers.GeminiHandler
	SheetHandler  *handlers.SheetHandler
	UsageHandler  *handlers.UsageHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize handlers
	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	// Start the value log GC schedule AFTER everything else is wired
	if err := app.MaintenanceService.Start(); err != nil {
		return nil, fmt.Errorf("failed to start maintenance service: %w", err)
	}

	logger.Info().
		Str("model", cfg.Gemini.Model).
		Str("storage", cfg.Storage.Badger.Path).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := badgerstorage.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes all business services
func (a *App) initServices() error {
	analyzerService, err := analyzer.NewService(&a.Config.Gemini, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create analyzer service: %w", err)
	}
	a.AnalyzerService = analyzerService

	a.SheetService = sheets.NewService(a.StorageManager.SheetStorage(), a.StorageManager.RationaleStorage(), a.Logger)
	a.UsageService = usage.NewService(a.StorageManager.UsageStorage(), a.Logger)
	a.AuthService = auth.NewService(a.StorageManager.ClientStorage(), a.Logger)

	store, ok := a.StorageManager.DB().(*badgerhold.Store)
	if !ok {
		return fmt.Errorf("storage manager does not expose a badgerhold store")
	}
	a.MaintenanceService = maintenance.NewService(store, &a.Config.Maintenance, a.Logger)

	a.Logger.Debug().Msg("Services initialized")
	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler()
	a.AuthHandler = handlers.NewAuthHandler(a.AuthService, a.Logger)
	a.GeminiHandler = handlers.NewGeminiHandler(a.AnalyzerService, a.UsageService, a.Logger)
	a.SheetHandler = handlers.NewSheetHandler(a.SheetService, a.UsageService, a.Logger)
	a.UsageHandler = handlers.NewUsageHandler(a.UsageService, a.Logger)

	a.Logger.Debug().Msg("Handlers initialized")
	return nil
}

// Close releases application resources
func (a *App) Close() error {
	if a.MaintenanceService != nil {
		a.MaintenanceService.Stop()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage manager")
			return err
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
