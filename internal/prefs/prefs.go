package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// StorageKey is the fixed key the UI state blob is stored under.
const StorageKey = "acta-ui-storage"

// KV is the key-value persistence port behind the store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ColorMode selects light, dark, or terminal-detected rendering.
type ColorMode string

const (
	ColorModeLight  ColorMode = "light"
	ColorModeDark   ColorMode = "dark"
	ColorModeSystem ColorMode = "system"
)

var colorModes = []ColorMode{ColorModeLight, ColorModeDark, ColorModeSystem}

// IsValid reports whether m is a known colour mode.
func (m ColorMode) IsValid() bool {
	return slices.Contains(colorModes, m)
}

// Next cycles light -> dark -> system.
func (m ColorMode) Next() ColorMode {
	idx := slices.Index(colorModes, m)
	return colorModes[(idx+1)%len(colorModes)]
}

// TaskViewMode selects the task page layout.
type TaskViewMode string

const (
	TaskViewList   TaskViewMode = "list"
	TaskViewKanban TaskViewMode = "kanban"
)

// IsValid reports whether m is a known view mode.
func (m TaskViewMode) IsValid() bool {
	return m == TaskViewList || m == TaskViewKanban
}

// Toggle switches between list and kanban.
func (m TaskViewMode) Toggle() TaskViewMode {
	if m == TaskViewKanban {
		return TaskViewList
	}
	return TaskViewKanban
}

// UIState is the persisted preference blob.
type UIState struct {
	SidebarCollapsed bool         `json:"sidebarCollapsed"`
	ColorMode        ColorMode    `json:"colorMode"`
	ThemePreset      string       `json:"themePreset"`
	TaskViewMode     TaskViewMode `json:"taskViewMode"`
}

// DefaultThemePreset is the preset used until the user picks another.
const DefaultThemePreset = "midnight"

// Defaults returns the first-load state.
func Defaults() UIState {
	return UIState{
		SidebarCollapsed: false,
		ColorMode:        ColorModeSystem,
		ThemePreset:      DefaultThemePreset,
		TaskViewMode:     TaskViewList,
	}
}

// PresetValidator reports whether a theme preset name is known.
type PresetValidator func(string) bool

// Store holds UIState and writes the whole blob through the KV port on every mutation.
type Store struct {
	mu          sync.Mutex
	kv          KV
	state       UIState
	validPreset PresetValidator
}

// NewStore constructs a store with default state. Call Load to read persisted values.
func NewStore(kv KV, validPreset PresetValidator) *Store {
	if validPreset == nil {
		validPreset = func(name string) bool { return name != "" }
	}
	return &Store{kv: kv, state: Defaults(), validPreset: validPreset}
}

// Load reads the persisted blob. Missing or malformed blobs yield defaults; unknown values
// fall back field by field. Only KV failures are returned.
func (s *Store) Load(ctx context.Context) (UIState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return s.state, fmt.Errorf("read ui state: %w", err)
	}
	state := Defaults()
	if ok && raw != "" {
		var decoded UIState
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			state = s.sanitize(decoded)
		}
	}
	s.state = state
	return state, nil
}

// State returns the current state.
func (s *Store) State() UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetSidebarCollapsed persists the sidebar flag.
func (s *Store) SetSidebarCollapsed(ctx context.Context, collapsed bool) (UIState, error) {
	return s.update(ctx, func(st *UIState) error {
		st.SidebarCollapsed = collapsed
		return nil
	})
}

// ToggleSidebar flips and persists the sidebar flag.
func (s *Store) ToggleSidebar(ctx context.Context) (UIState, error) {
	return s.update(ctx, func(st *UIState) error {
		st.SidebarCollapsed = !st.SidebarCollapsed
		return nil
	})
}

// SetColorMode persists the colour mode.
func (s *Store) SetColorMode(ctx context.Context, mode ColorMode) (UIState, error) {
	return s.update(ctx, func(st *UIState) error {
		if !mode.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidColorMode, mode)
		}
		st.ColorMode = mode
		return nil
	})
}

// SetThemePreset persists the theme preset.
func (s *Store) SetThemePreset(ctx context.Context, preset string) (UIState, error) {
	return s.update(ctx, func(st *UIState) error {
		if !s.validPreset(preset) {
			return fmt.Errorf("%w: %q", ErrInvalidThemePreset, preset)
		}
		st.ThemePreset = preset
		return nil
	})
}

// SetTaskViewMode persists the task view mode.
func (s *Store) SetTaskViewMode(ctx context.Context, mode TaskViewMode) (UIState, error) {
	return s.update(ctx, func(st *UIState) error {
		if !mode.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidTaskViewMode, mode)
		}
		st.TaskViewMode = mode
		return nil
	})
}

var (
	ErrInvalidColorMode    = errors.New("invalid color mode")
	ErrInvalidThemePreset  = errors.New("invalid theme preset")
	ErrInvalidTaskViewMode = errors.New("invalid task view mode")
)

// update applies fn to a copy, persists it, and only then swaps it in.
func (s *Store) update(ctx context.Context, fn func(*UIState) error) (UIState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	if err := fn(&next); err != nil {
		return s.state, err
	}
	encoded, err := json.Marshal(next)
	if err != nil {
		return s.state, fmt.Errorf("encode ui state: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(encoded)); err != nil {
		return s.state, fmt.Errorf("write ui state: %w", err)
	}
	s.state = next
	return next, nil
}

func (s *Store) sanitize(in UIState) UIState {
	out := Defaults()
	out.SidebarCollapsed = in.SidebarCollapsed
	if in.ColorMode.IsValid() {
		out.ColorMode = in.ColorMode
	}
	if s.validPreset(in.ThemePreset) {
		out.ThemePreset = in.ThemePreset
	}
	if in.TaskViewMode.IsValid() {
		out.TaskViewMode = in.TaskViewMode
	}
	return out
}
