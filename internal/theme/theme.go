// Package theme maps named presets and a light/dark mode to colour tokens.
package theme

import (
	"errors"
	"fmt"
	"strings"
)

// Preset names one colour preset.
type Preset string

// Known presets. Midnight is the default.
const (
	Midnight  Preset = "midnight"
	Forest    Preset = "forest"
	Sunset    Preset = "sunset"
	Lavender  Preset = "lavender"
	Nordic    Preset = "nordic"
	Cyberpunk Preset = "cyberpunk"
)

// ErrUnknownPreset is returned by ParsePreset for names outside Presets().
var ErrUnknownPreset = errors.New("unknown theme preset")

// TokenSet holds hex colour strings for every role the UI paints.
type TokenSet struct {
	Background  string
	Foreground  string
	Primary     string
	Accent      string
	Muted       string
	Border      string
	Success     string
	Warning     string
	Destructive string
}

type palette struct {
	label string
	light TokenSet
	dark  TokenSet
}

var presetOrder = []Preset{Midnight, Forest, Sunset, Lavender, Nordic, Cyberpunk}

var palettes = map[Preset]palette{
	Midnight: {
		label: "Midnight",
		light: TokenSet{"#f8fafc", "#0f172a", "#2563eb", "#0ea5e9", "#64748b", "#cbd5e1", "#16a34a", "#d97706", "#dc2626"},
		dark:  TokenSet{"#0b1120", "#e2e8f0", "#3b82f6", "#38bdf8", "#94a3b8", "#1e293b", "#22c55e", "#f59e0b", "#ef4444"},
	},
	Forest: {
		label: "Forest",
		light: TokenSet{"#f6faf5", "#14281d", "#2f7d4f", "#8aa93b", "#5d7262", "#c6d8c4", "#2f9e44", "#c08a1e", "#c23b2e"},
		dark:  TokenSet{"#0e1a13", "#dce8dc", "#4caf74", "#a7c957", "#88a08d", "#1f3327", "#51cf66", "#e0a536", "#e35d4f"},
	},
	Sunset: {
		label: "Sunset",
		light: TokenSet{"#fff7f0", "#3b1d12", "#ea580c", "#db2777", "#8a6a5c", "#f3d2bf", "#15803d", "#ca8a04", "#b91c1c"},
		dark:  TokenSet{"#1c0f0b", "#fde8dc", "#fb923c", "#f472b6", "#c4a091", "#3a2219", "#4ade80", "#facc15", "#f87171"},
	},
	Lavender: {
		label: "Lavender",
		light: TokenSet{"#faf7ff", "#2a1f3d", "#7c3aed", "#c026d3", "#76698c", "#ddd3ef", "#16a34a", "#d97706", "#dc2626"},
		dark:  TokenSet{"#15101f", "#ece6f8", "#a78bfa", "#e879f9", "#a397b8", "#2b2140", "#4ade80", "#fbbf24", "#f87171"},
	},
	Nordic: {
		label: "Nordic",
		light: TokenSet{"#eceff4", "#2e3440", "#5e81ac", "#88c0d0", "#6b7385", "#d8dee9", "#a3be8c", "#d08770", "#bf616a"},
		dark:  TokenSet{"#2e3440", "#eceff4", "#81a1c1", "#88c0d0", "#a3abb9", "#434c5e", "#a3be8c", "#ebcb8b", "#bf616a"},
	},
	Cyberpunk: {
		label: "Cyberpunk",
		light: TokenSet{"#fdfaff", "#1a0b2e", "#d6007e", "#00a3c4", "#6f5a86", "#e6d3f2", "#00a86b", "#c79100", "#e0004c"},
		dark:  TokenSet{"#0d0221", "#f5e9ff", "#ff2a6d", "#05d9e8", "#9d8cb8", "#261447", "#01ffc3", "#f9c80e", "#ff124f"},
	},
}

// Presets returns every preset in display order.
func Presets() []Preset {
	return append([]Preset(nil), presetOrder...)
}

// IsValid reports whether p is a known preset.
func (p Preset) IsValid() bool {
	_, ok := palettes[p]
	return ok
}

// Label returns the display name.
func (p Preset) Label() string {
	if pal, ok := palettes[p]; ok {
		return pal.label
	}
	return string(p)
}

// Next returns the preset after p, wrapping around. Unknown presets restart at the default.
func (p Preset) Next() Preset {
	for idx, candidate := range presetOrder {
		if candidate == p {
			return presetOrder[(idx+1)%len(presetOrder)]
		}
	}
	return Midnight
}

// ParsePreset parses a preset name case-insensitively.
func ParsePreset(raw string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPreset, raw)
	}
	return p, nil
}

// ValidName reports whether raw names a preset.
func ValidName(raw string) bool {
	_, err := ParsePreset(raw)
	return err == nil
}

// Tokens returns the colour tokens for preset in the requested mode. Unknown presets fall back to Midnight.
func Tokens(preset Preset, dark bool) TokenSet {
	pal, ok := palettes[preset]
	if !ok {
		pal = palettes[Midnight]
	}
	if dark {
		return pal.dark
	}
	return pal.light
}

// ResolveDark decides the effective mode. "system" defers to what the terminal reports.
func ResolveDark(mode string, terminalDark bool) bool {
	switch mode {
	case "dark":
		return true
	case "light":
		return false
	default:
		return terminalDark
	}
}
