package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/acta/internal/adapters/storage/jsonfile"
	"github.com/evanschultz/acta/internal/adapters/storage/memory"
	"github.com/evanschultz/acta/internal/adapters/storage/sqlite"
	"github.com/evanschultz/acta/internal/apiclient"
	"github.com/evanschultz/acta/internal/app"
	"github.com/evanschultz/acta/internal/auth"
	"github.com/evanschultz/acta/internal/config"
	"github.com/evanschultz/acta/internal/mailer"
	"github.com/evanschultz/acta/internal/platform"
	"github.com/evanschultz/acta/internal/prefs"
	"github.com/evanschultz/acta/internal/theme"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// session holds everything one command run needs, opened in dependency order.
type session struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger

	kv      auth.KV
	closeKV func() error
	prefs   *prefs.Store
	tokens  *auth.TokenStore

	repo *memory.Repository
	svc  *app.Service
}

// resolvePaths applies the --app and --dev flags.
func (c *cli) resolvePaths() (platform.Paths, error) {
	return platform.Resolve(platform.Options{
		AppName: c.flags.appName,
		DevMode: c.flags.devMode,
	})
}

// openSession loads config and opens storage. Callers must Close the session.
func (c *cli) openSession(ctx context.Context, command string) (*session, error) {
	paths, err := c.resolvePaths()
	if err != nil {
		return nil, err
	}

	configPath := strings.TrimSpace(c.flags.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(c.getenv("ACTA_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	if err := config.LoadDotEnv(".env", paths.EnvPath); err != nil {
		return nil, err
	}

	defaults := config.Default(paths.DBPath)
	defaults.Prefs.FilePath = paths.PrefsPath
	cfg, err := config.Load(configPath, defaults)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	cfg, err = config.ApplyEnv(cfg, c.getenv)
	if err != nil {
		return nil, err
	}
	if dbPath := strings.TrimSpace(c.flags.dbPath); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(c.stderr, c.flags.appName, c.flags.devMode, cfg.Logging, c.now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// The dashboard owns the terminal; runtime events go to the dev file only.
		logger.SetConsoleEnabled(false)
	}
	logger.Info("configuration loaded", "command", command, "config_path", configPath, "prefs_backend", cfg.Prefs.Backend, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Debug("dev file logging enabled", "path", devPath)
	}

	s := &session{
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
	}
	if err := s.openKV(c.flags.noPersist); err != nil {
		_ = logger.Close()
		return nil, err
	}

	s.prefs = prefs.NewStore(s.kv, theme.ValidName)
	if _, err := s.prefs.Load(ctx); err != nil {
		logger.Warn("ui preferences unavailable, using defaults", "err", err)
	}
	s.tokens = auth.NewTokenStore(s.kv)

	s.repo = memory.New()
	s.svc = app.NewService(s.repo, uuid.NewString, c.now)
	if err := s.loadTasks(ctx, strings.TrimSpace(c.flags.tasksFile)); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// loadTasks fills the in-memory collection from a snapshot file, or from the mock seed when enabled.
func (s *session) loadTasks(ctx context.Context, tasksFile string) error {
	if tasksFile != "" {
		snap, err := readSnapshot(tasksFile)
		if err != nil {
			return err
		}
		created, _, err := s.svc.ImportSnapshot(ctx, snap)
		if err != nil {
			return fmt.Errorf("import tasks file: %w", err)
		}
		s.logger.Info("tasks loaded from snapshot", "path", tasksFile, "count", created)
		return nil
	}
	if !s.cfg.Tasks.SeedMock {
		return nil
	}
	added, err := s.svc.Seed(ctx, app.SeedTasks())
	if err != nil {
		return fmt.Errorf("seed tasks: %w", err)
	}
	s.logger.Debug("mock tasks seeded", "count", added)
	return nil
}

// openKV picks the preference/token backend.
func (s *session) openKV(noPersist bool) error {
	switch {
	case noPersist:
		s.kv = prefs.NewMemoryKV()
		s.logger.Info("persistence disabled, preferences kept in memory")
	case s.cfg.Prefs.Backend == config.PrefsBackendFile:
		store, err := jsonfile.Open(s.cfg.Prefs.FilePath)
		if err != nil {
			s.logger.Error("prefs file open failed", "path", s.cfg.Prefs.FilePath, "err", err)
			return fmt.Errorf("open prefs file: %w", err)
		}
		s.kv = store
		s.logger.Info("prefs file ready", "path", store.Path())
	default:
		store, err := sqlite.Open(s.cfg.Database.Path)
		if err != nil {
			s.logger.Error("sqlite open failed", "db_path", s.cfg.Database.Path, "err", err)
			return fmt.Errorf("open sqlite store: %w", err)
		}
		s.kv = store
		s.closeKV = store.Close
		s.logger.Info("sqlite store ready", "db_path", s.cfg.Database.Path)
	}
	return nil
}

// simulator builds the local auth simulator over the session token store.
func (s *session) simulator(delay time.Duration) (*auth.Simulator, error) {
	return auth.NewSimulator(s.tokens, auth.Options{
		SigningKey: []byte(s.cfg.Auth.SigningKey),
		Delay:      delay,
		Clock:      time.Now,
	})
}

// apiClient builds the backend client with a private metrics registry.
func (s *session) apiClient(c *cli) (*apiclient.Client, error) {
	return apiclient.New(apiclient.Config{
		BaseURL:    s.cfg.API.BaseURL,
		Timeout:    time.Duration(s.cfg.API.TimeoutSeconds) * time.Second,
		HTTPClient: c.httpClient,
		Tokens:     s.tokens,
		OnAuthFailure: func(redirect string) {
			s.logger.Warn("session expired, sign in again", "redirect", redirect)
		},
		Registerer: prometheus.NewRegistry(),
		Logger:     s.logger.Library(),
	})
}

// mailer builds the contact mailer from the email section.
func (s *session) mailer(c *cli) *mailer.Mailer {
	opts := []mailer.Option{mailer.WithLogger(s.logger.Library())}
	if c.httpClient != nil {
		opts = append(opts, mailer.WithHTTPClient(c.httpClient))
	}
	opts = append(opts, c.mailOptions...)
	return mailer.New(mailer.Config{
		ServiceID:  s.cfg.Email.ServiceID,
		TemplateID: s.cfg.Email.TemplateID,
		PublicKey:  s.cfg.Email.PublicKey,
	}, opts...)
}

// Close releases storage and the log file.
func (s *session) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.closeKV != nil {
		if err := s.closeKV(); err != nil {
			s.logger.Warn("prefs store close failed", "err", err)
			errs = append(errs, err)
		}
	}
	if err := s.logger.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close runtime log sink: %w", err))
	}
	return errors.Join(errs...)
}
