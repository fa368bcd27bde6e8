package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/acta.db")
	if cfg.Database.Path != "/tmp/acta.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Prefs.Backend != PrefsBackendSQLite {
		t.Fatalf("unexpected prefs backend %q", cfg.Prefs.Backend)
	}
	if cfg.API.BaseURL != "http://localhost:8000/api" || cfg.API.TimeoutSeconds != 30 {
		t.Fatalf("unexpected api defaults %#v", cfg.API)
	}
	if !cfg.Tasks.SeedMock || !cfg.UI.Sound || cfg.UI.ToastSeconds != 4 {
		t.Fatalf("unexpected task/ui defaults %#v %#v", cfg.Tasks, cfg.UI)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/acta.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[database]
path = "/custom/acta.db"

[prefs]
backend = "file"
file_path = "/custom/ui.json"

[logging]
level = "debug"

[logging.dev_file]
enabled = false

[email]
service_id = "svc"
template_id = "tpl"
public_key = "pub"

[tasks]
seed_mock = false

[ui]
toast_seconds = 8
sound = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cfg, err := Load(path, Default("/tmp/acta.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/acta.db" || cfg.Prefs.Backend != PrefsBackendFile || cfg.Prefs.FilePath != "/custom/ui.json" {
		t.Fatalf("unexpected storage config %#v %#v", cfg.Database, cfg.Prefs)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.DevFile.Enabled {
		t.Fatalf("unexpected logging config %#v", cfg.Logging)
	}
	if cfg.Email.ServiceID != "svc" || cfg.Tasks.SeedMock || cfg.UI.ToastSeconds != 8 || cfg.UI.Sound {
		t.Fatalf("unexpected overrides %#v", cfg)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Fatalf("expected untouched sections to keep defaults, got %d", cfg.API.TimeoutSeconds)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"backend":   "[prefs]\nbackend = \"cloud\"\n",
		"file":      "[prefs]\nbackend = \"file\"\n",
		"level":     "[logging]\nlevel = \"loud\"\n",
		"timeout":   "[api]\ntimeout_seconds = 0\n",
		"toast":     "[ui]\ntoast_seconds = -1\n",
		"keys":      "[keys]\nundo = \":\"\n",
		"malformed": "[database\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(path, Default("/tmp/acta.db")); err == nil {
				t.Fatal("expected Load() error")
			}
		})
	}
}

func TestApplyEnvOverridesFileValues(t *testing.T) {
	env := map[string]string{
		"ACTA_API_BASE_URL":        "https://api.example.com",
		"ACTA_API_TIMEOUT_SECONDS": "5",
		"ACTA_EMAILJS_SERVICE_ID":  "env-svc",
		"ACTA_SEED_MOCK":           "false",
		"ACTA_PREFS_BACKEND":       "file",
		"ACTA_PREFS_FILE":          "/env/ui.json",
	}
	cfg, err := ApplyEnv(Default("/tmp/acta.db"), func(key string) string { return env[key] })
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com" || cfg.API.TimeoutSeconds != 5 {
		t.Fatalf("unexpected api config %#v", cfg.API)
	}
	if cfg.Email.ServiceID != "env-svc" || cfg.Tasks.SeedMock || cfg.Prefs.FilePath != "/env/ui.json" {
		t.Fatalf("unexpected env overrides %#v", cfg)
	}

	_, err = ApplyEnv(Default("/tmp/acta.db"), func(key string) string {
		if key == "ACTA_TOAST_SECONDS" {
			return "soon"
		}
		return ""
	})
	if err == nil || !strings.Contains(err.Error(), "ACTA_TOAST_SECONDS") {
		t.Fatalf("expected parse error naming the variable, got %v", err)
	}
}

func TestLoadDotEnvKeepsExistingVariables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "ACTA_TEST_DOTENV_NEW=from-file\nACTA_TEST_DOTENV_SET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("ACTA_TEST_DOTENV_SET", "from-env")
	t.Setenv("ACTA_TEST_DOTENV_NEW", "")
	os.Unsetenv("ACTA_TEST_DOTENV_NEW")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("ACTA_TEST_DOTENV_NEW"); got != "from-file" {
		t.Fatalf("expected value loaded from file, got %q", got)
	}
	if got := os.Getenv("ACTA_TEST_DOTENV_SET"); got != "from-env" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "acta", "config.toml")
	if err := EnsureConfigDir(path); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Fatalf("expected config dir created, err = %v", err)
	}
}
