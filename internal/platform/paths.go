package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the config and data directories.
const DefaultAppName = "acta"

// Paths are the per-user locations one app instance reads and writes.
type Paths struct {
	ConfigPath string
	EnvPath    string
	DataDir    string
	DBPath     string
	PrefsPath  string
}

// Options selects the app directory name. DevMode appends "-dev" so development runs never touch real state.
type Options struct {
	AppName string
	DevMode bool
	// Getenv reads platform overrides such as XDG_CONFIG_HOME. Nil means os.Getenv.
	Getenv func(string) string
}

// BaseDirs are the user-level roots the app directories live under.
type BaseDirs struct {
	Config string
	Data   string
}

// envOverrides lists, per OS, the variables that replace the config and data roots.
var envOverrides = map[string][2]string{
	"linux":   {"XDG_CONFIG_HOME", "XDG_DATA_HOME"},
	"windows": {"APPDATA", "LOCALAPPDATA"},
}

// Resolve computes paths for the running OS and user.
func Resolve(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = DefaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}
	base, err := userBaseDirs()
	if err != nil {
		return Paths{}, err
	}
	return PathsFor(runtime.GOOS, opts.Getenv, base, appName)
}

// userBaseDirs returns the OS defaults. Linux keeps data under ~/.local/share rather than the config root.
func userBaseDirs() (BaseDirs, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return BaseDirs{}, fmt.Errorf("user config dir: %w", err)
	}
	base := BaseDirs{Config: configDir, Data: configDir}
	if runtime.GOOS == "linux" {
		home, err := os.UserHomeDir()
		if err != nil {
			return BaseDirs{}, fmt.Errorf("user home dir: %w", err)
		}
		base.Data = filepath.Join(home, ".local", "share")
	}
	return base, nil
}

// PathsFor lays out appName under base, letting goos-specific variables read through getenv move either root.
func PathsFor(goos string, getenv func(string) string, base BaseDirs, appName string) (Paths, error) {
	if base.Config == "" || base.Data == "" {
		return Paths{}, errors.New("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("empty app name")
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if keys, ok := envOverrides[goos]; ok {
		if v := strings.TrimSpace(getenv(keys[0])); v != "" {
			base.Config = v
		}
		if v := strings.TrimSpace(getenv(keys[1])); v != "" {
			base.Data = v
		}
	}

	configDir := filepath.Join(base.Config, appName)
	dataDir := filepath.Join(base.Data, appName)
	return Paths{
		ConfigPath: filepath.Join(configDir, "config.toml"),
		EnvPath:    filepath.Join(configDir, ".env"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, appName+".db"),
		PrefsPath:  filepath.Join(dataDir, "ui-state.json"),
	}, nil
}
