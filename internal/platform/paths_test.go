package platform

import (
	"path/filepath"
	"testing"
)

func TestPathsFor(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		env        map[string]string
		cfgDir     string
		dataDir    string
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux honours xdg",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			cfgDir:     "/home/me/.config",
			dataDir:    "/home/me/.local/share",
			wantConfig: "/xdg/config",
			wantData:   "/xdg/data",
		},
		{
			name:       "linux without xdg",
			goos:       "linux",
			env:        map[string]string{},
			cfgDir:     "/home/me/.config",
			dataDir:    "/home/me/.local/share",
			wantConfig: "/home/me/.config",
			wantData:   "/home/me/.local/share",
		},
		{
			name:       "windows uses appdata",
			goos:       "windows",
			env:        map[string]string{"APPDATA": `C:\Roaming`, "LOCALAPPDATA": `C:\Local`},
			cfgDir:     `C:\fallback\config`,
			dataDir:    `C:\fallback\data`,
			wantConfig: `C:\Roaming`,
			wantData:   `C:\Local`,
		},
		{
			name:       "darwin ignores xdg",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored", "XDG_DATA_HOME": "/ignored"},
			cfgDir:     "/Users/me/Library/Application Support",
			dataDir:    "/Users/me/Library/Application Support",
			wantConfig: "/Users/me/Library/Application Support",
			wantData:   "/Users/me/Library/Application Support",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := PathsFor(tc.goos, lookup(tc.env), BaseDirs{Config: tc.cfgDir, Data: tc.dataDir}, "acta")
			if err != nil {
				t.Fatalf("PathsFor() error = %v", err)
			}
			want := Paths{
				ConfigPath: filepath.Join(tc.wantConfig, "acta", "config.toml"),
				EnvPath:    filepath.Join(tc.wantConfig, "acta", ".env"),
				DataDir:    filepath.Join(tc.wantData, "acta"),
				DBPath:     filepath.Join(tc.wantData, "acta", "acta.db"),
				PrefsPath:  filepath.Join(tc.wantData, "acta", "ui-state.json"),
			}
			if p != want {
				t.Fatalf("PathsFor() = %#v, want %#v", p, want)
			}
		})
	}
}

func lookup(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestPathsForRejectsEmptyInputs(t *testing.T) {
	if _, err := PathsFor("darwin", lookup(nil), BaseDirs{Data: "/tmp/data"}, "acta"); err == nil {
		t.Fatal("expected error for empty dirs")
	}
	if _, err := PathsFor("linux", lookup(nil), BaseDirs{Config: "/cfg", Data: "/data"}, "  "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

func TestResolveDevMode(t *testing.T) {
	dir := t.TempDir()
	p, err := Resolve(Options{DevMode: true, Getenv: lookup(map[string]string{
		"XDG_CONFIG_HOME": dir,
		"XDG_DATA_HOME":   dir,
		"APPDATA":         dir,
		"LOCALAPPDATA":    dir,
	})})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "acta-dev" {
		t.Fatalf("expected dev config dir suffix, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "acta-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
}
