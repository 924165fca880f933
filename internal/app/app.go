package app

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"bananaserver/internal/config"
	"bananaserver/internal/logger"
	"bananaserver/internal/repository"
	fsrepo "bananaserver/internal/repository/firestore"
	"bananaserver/internal/repository/sqlite"
	"bananaserver/internal/routes"
	"bananaserver/internal/services/ai"
	"bananaserver/internal/services/storage"
)

// App wires configuration, the detector, the storage adapters and the HTTP
// surface together.
type App struct {
	config   *config.Config
	logger   *logger.Logger
	detector *ai.Detector
	uploader storage.Uploader
	store    repository.DetectionStore
	db       *sqlite.DB
	fs       *fsrepo.Store
}

// NewApp builds the application from environment configuration. Missing
// cloud credentials disable the best-effort save rather than failing
// startup; detection and history keep working against the local store.
func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	for _, dir := range []string{cfg.UploadDir, cfg.ModelDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	a := &App{
		config:   cfg,
		logger:   log,
		detector: ai.NewDetector(cfg, log),
	}

	uploader, err := storage.NewCloudinaryUploader(cfg, log)
	if err != nil {
		log.Warning("Image uploads disabled: %v", err)
	} else {
		a.uploader = uploader
	}

	if err := a.setupStore(); err != nil {
		return nil, err
	}

	return a, nil
}

// setupStore selects the metadata store: Firestore when credentials are
// configured (or forced via STORE_DRIVER), SQLite otherwise.
func (a *App) setupStore() error {
	cfg := a.config

	useFirestore := cfg.StoreDriver == "firestore" ||
		(cfg.StoreDriver == "" && cfg.FirebaseCredentials != "")

	if useFirestore {
		store, err := fsrepo.New(context.Background(), cfg, a.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to firestore: %w", err)
		}
		a.fs = store
		a.store = store
		return nil
	}

	db, err := sqlite.New(cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to open detection database: %w", err)
	}
	a.db = db
	a.store = sqlite.NewDetectionRepository(db)
	a.logger.Info("Using SQLite detection store at %s", cfg.SQLitePath)
	return nil
}

// Run warms the detector and serves HTTP until the listener fails.
func (a *App) Run() error {
	if err := a.detector.Warm(); err != nil {
		// /api/test and /api/history still work; detection requests will
		// keep surfacing this error per request.
		a.logger.Warning("Could not initialize detection model: %v", err)
	}

	router := routes.SetupRoutes(a.config, a.detector, a.uploader, a.store, a.logger)

	addr := fmt.Sprintf("%s:%d", a.config.Host, a.config.Port)
	fmt.Printf("🍌 Banana Detection Backend\n")
	fmt.Printf("🚀 Server running on http://%s\n", addr)
	fmt.Printf("🤖 Model: %s\n", a.config.ModelPath)
	fmt.Printf("⚙️  Debug mode: %v\n", a.config.Debug)

	return http.ListenAndServe(addr, router)
}

// Close releases the store connections.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Failed to close database: %v", err)
		}
	}
	if a.fs != nil {
		if err := a.fs.Close(); err != nil {
			a.logger.Error("Failed to close firestore client: %v", err)
		}
	}
}
