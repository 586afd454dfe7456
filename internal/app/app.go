package app

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"framecore/internal/config"
	"framecore/internal/gesture"
	"framecore/internal/replay"
	"framecore/internal/storage"
	"framecore/internal/store"
)

// App holds the opened store and the engine built on it.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Dir    string
	Store  *store.Store
	Engine *storage.Engine
}

type Options struct {
	Dir     string // overrides FRAMECORE_DIR
	Session string // overrides FRAMECORE_SESSION
	Create  bool   // create the store when the directory is not initialized
}

// New loads configuration and opens the store for the project directory.
func New(opts Options) (*App, error) {
	dir, err := ResolveDir(opts.Dir)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		return nil, err
	}
	if opts.Session != "" {
		cfg.App.Session = opts.Session
	}

	logger := setupLogger(cfg.App.LogLevel)

	if !opts.Create && !store.Exists(dir) {
		return nil, fmt.Errorf("not initialized - run 'framecore init' first")
	}

	st, err := store.New(dir,
		store.WithQuota(cfg.Storage.QuotaBytes),
		store.WithSession(cfg.App.Session),
		store.WithSessionTTL(cfg.Storage.SessionTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	logger.Debug("store opened",
		"dir", dir,
		"env", cfg.App.Environment,
		"session", st.SessionID(),
	)

	engine := storage.New(st,
		storage.WithLogger(logger),
		storage.WithMaxLinks(cfg.Storage.MaxLinks),
	)

	return &App{
		Config: cfg,
		Logger: logger,
		Dir:    st.Dir(),
		Store:  st,
		Engine: engine,
	}, nil
}

// LoadConfig loads dir/.env where the environment allows it and then the
// configuration from the environment.
func LoadConfig(dir string) (*config.Config, error) {
	if err := loadEnv(dir); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// ResolveDir picks the project directory: the explicit one, then
// FRAMECORE_DIR, then the working directory.
func ResolveDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if dir = os.Getenv("FRAMECORE_DIR"); dir != "" {
		return dir, nil
	}
	return os.Getwd()
}

// ReplayOptions maps the gesture and viewport configuration onto the replay
// driver.
func (a *App) ReplayOptions() replay.Options {
	g := a.Config.Gesture
	return replay.Options{
		Shake: gesture.ShakeConfig{
			Threshold: g.ShakeThreshold,
			Throttle:  g.ShakeThrottle,
			Cooldown:  g.ShakeCooldown,
		},
		Swipe: gesture.SwipeConfig{
			Threshold:   g.SwipeThreshold,
			MinVelocity: g.SwipeMinVelocity,
		},
		LongPressDelay:   g.LongPressDelay,
		KeyboardMinInset: a.Config.Viewport.KeyboardMinInset,
		Logger:           a.Logger,
	}
}

// Close closes the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// loadEnv loads dir/.env only in non-production environments.
func loadEnv(dir string) error {
	env := os.Getenv("FRAMECORE_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level. Output
// goes to stderr so command output on stdout stays clean.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}
