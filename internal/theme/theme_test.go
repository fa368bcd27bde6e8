package theme

import (
	"errors"
	"regexp"
	"testing"
)

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestPresetsCoverEveryPaletteWithValidHex(t *testing.T) {
	presets := Presets()
	if len(presets) != 6 || presets[0] != Midnight {
		t.Fatalf("unexpected presets %v", presets)
	}
	for _, p := range presets {
		for _, dark := range []bool{false, true} {
			set := Tokens(p, dark)
			for _, c := range []string{set.Background, set.Foreground, set.Primary, set.Accent, set.Muted, set.Border, set.Success, set.Warning, set.Destructive} {
				if !hexColor.MatchString(c) {
					t.Fatalf("%s dark=%v has invalid colour %q", p, dark, c)
				}
			}
		}
		if Tokens(p, true) == Tokens(p, false) {
			t.Fatalf("%s light and dark tokens should differ", p)
		}
	}
}

func TestTokensIsPureAndFallsBack(t *testing.T) {
	if Tokens(Nordic, true) != Tokens(Nordic, true) {
		t.Fatal("expected identical output for identical input")
	}
	if Tokens("neon", true) != Tokens(Midnight, true) {
		t.Fatal("expected unknown preset to fall back to midnight")
	}
}

func TestParsePreset(t *testing.T) {
	got, err := ParsePreset("  Cyberpunk ")
	if err != nil || got != Cyberpunk {
		t.Fatalf("ParsePreset() = %q, %v", got, err)
	}
	if _, err := ParsePreset("neon"); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestNextWrapsAndResolveDark(t *testing.T) {
	if Cyberpunk.Next() != Midnight || Midnight.Next() != Forest {
		t.Fatal("unexpected preset cycle")
	}
	if !ResolveDark("dark", false) || ResolveDark("light", true) {
		t.Fatal("explicit modes must ignore the terminal")
	}
	if !ResolveDark("system", true) || ResolveDark("system", false) {
		t.Fatal("system mode must follow the terminal")
	}
}
