package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// PrefsBackend selects where UI preferences and tokens are stored.
type PrefsBackend string

const (
	PrefsBackendSQLite PrefsBackend = "sqlite"
	PrefsBackendFile   PrefsBackend = "file"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Prefs    PrefsConfig    `toml:"prefs"`
	Logging  LoggingConfig  `toml:"logging"`
	API      APIConfig      `toml:"api"`
	Email    EmailConfig    `toml:"email"`
	Tasks    TasksConfig    `toml:"tasks"`
	UI       UIConfig       `toml:"ui"`
	Auth     AuthConfig     `toml:"auth"`
	Keys     KeyConfig      `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type PrefsConfig struct {
	Backend  PrefsBackend `toml:"backend"`
	FilePath string       `toml:"file_path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type EmailConfig struct {
	ServiceID  string `toml:"service_id"`
	TemplateID string `toml:"template_id"`
	PublicKey  string `toml:"public_key"`
}

type TasksConfig struct {
	SeedMock bool `toml:"seed_mock"`
}

type UIConfig struct {
	ToastSeconds int  `toml:"toast_seconds"`
	Sound        bool `toml:"sound"`
}

type AuthConfig struct {
	SigningKey string `toml:"signing_key"`
}

type KeyConfig struct {
	CommandPalette string `toml:"command_palette"`
	Undo           string `toml:"undo"`
	Search         string `toml:"search"`
}

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Prefs: PrefsConfig{
			Backend: PrefsBackendSQLite,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".acta/log",
			},
		},
		API: APIConfig{
			BaseURL:        "http://localhost:8000/api",
			TimeoutSeconds: 30,
		},
		Tasks: TasksConfig{
			SeedMock: true,
		},
		UI: UIConfig{
			ToastSeconds: 4,
			Sound:        true,
		},
		Auth: AuthConfig{
			SigningKey: "acta-local-demo-key",
		},
		Keys: KeyConfig{
			CommandPalette: ":",
			Undo:           "u",
			Search:         "/",
		},
	}
}

// Load decodes path over defaults. A missing or empty file yields the defaults.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadDotEnv loads each existing .env file into the process environment. Variables that are already set win.
func LoadDotEnv(paths ...string) error {
	existing := make([]string, 0, len(paths))
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// ApplyEnv overrides file values with ACTA_* variables read through getenv.
func ApplyEnv(cfg Config, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("ACTA_DB_PATH", &cfg.Database.Path)
	backend := string(cfg.Prefs.Backend)
	str("ACTA_PREFS_BACKEND", &backend)
	cfg.Prefs.Backend = PrefsBackend(backend)
	str("ACTA_PREFS_FILE", &cfg.Prefs.FilePath)
	str("ACTA_LOG_LEVEL", &cfg.Logging.Level)
	str("ACTA_API_BASE_URL", &cfg.API.BaseURL)
	num("ACTA_API_TIMEOUT_SECONDS", &cfg.API.TimeoutSeconds)
	str("ACTA_EMAILJS_SERVICE_ID", &cfg.Email.ServiceID)
	str("ACTA_EMAILJS_TEMPLATE_ID", &cfg.Email.TemplateID)
	str("ACTA_EMAILJS_PUBLIC_KEY", &cfg.Email.PublicKey)
	flag("ACTA_SEED_MOCK", &cfg.Tasks.SeedMock)
	num("ACTA_TOAST_SECONDS", &cfg.UI.ToastSeconds)
	flag("ACTA_UI_SOUND", &cfg.UI.Sound)
	str("ACTA_AUTH_SIGNING_KEY", &cfg.Auth.SigningKey)

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("apply env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	switch c.Prefs.Backend {
	case PrefsBackendSQLite:
	case PrefsBackendFile:
		if strings.TrimSpace(c.Prefs.FilePath) == "" {
			return errors.New("prefs.file_path is required when prefs.backend is \"file\"")
		}
	default:
		return fmt.Errorf("invalid prefs.backend: %q", c.Prefs.Backend)
	}

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if !slices.Contains(validLogLevels, level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be > 0, got %d", c.API.TimeoutSeconds)
	}
	if c.UI.ToastSeconds <= 0 {
		return fmt.Errorf("ui.toast_seconds must be > 0, got %d", c.UI.ToastSeconds)
	}
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errors.New("auth.signing_key is required")
	}

	seenKeys := map[string]string{}
	for name, binding := range map[string]string{
		"command_palette": c.Keys.CommandPalette,
		"undo":            c.Keys.Undo,
		"search":          c.Keys.Search,
	} {
		if strings.TrimSpace(binding) == "" {
			return fmt.Errorf("keys.%s is required", name)
		}
		if other, ok := seenKeys[binding]; ok {
			return fmt.Errorf("keys.%s duplicates keys.%s: %q", name, other, binding)
		}
		seenKeys[binding] = name
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
