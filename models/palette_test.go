package models

import (
	"testing"
	"time"
)

func TestColorFromHexRoundTrip(t *testing.T) {
	tests := []struct {
		hex  string
		want [3]uint8
	}{
		{"ff0000", [3]uint8{255, 0, 0}},
		{"#00ff00", [3]uint8{0, 255, 0}},
		{"0000ff", [3]uint8{0, 0, 255}},
		{"777777", [3]uint8{119, 119, 119}},
	}
	for _, tt := range tests {
		color, err := ColorFromHex(tt.hex)
		if err != nil {
			t.Fatalf("ColorFromHex(%q): %v", tt.hex, err)
		}
		if color.RGB != tt.want {
			t.Errorf("ColorFromHex(%q).RGB = %v, want %v", tt.hex, color.RGB, tt.want)
		}
		if color.Percentage != 1.0 {
			t.Errorf("ColorFromHex(%q).Percentage = %v, want 1", tt.hex, color.Percentage)
		}
	}
}

func TestColorFromHexRejectsInvalid(t *testing.T) {
	for _, hex := range []string{"", "fff", "gggggg", "ff00001"} {
		if _, err := ColorFromHex(hex); err == nil {
			t.Errorf("ColorFromHex(%q) accepted invalid input", hex)
		}
	}
}

func TestHex(t *testing.T) {
	color := ColorFromRGB(255, 128, 0, 0.5)
	if got := color.Hex(); got != "#ff8000" {
		t.Errorf("Hex() = %q, want #ff8000", got)
	}
}

func TestNewColorDerivesRGB(t *testing.T) {
	color := NewColor(53.2408, 80.0925, 67.2032, 1.0)
	if color.RGB != [3]uint8{255, 0, 0} {
		t.Errorf("RGB = %v, want [255 0 0]", color.RGB)
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := NewAdminToken("secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ValidateAdminToken(token, "secret")
	if err != nil {
		t.Fatalf("ValidateAdminToken: %v", err)
	}
	if claims.Scope != AdminScope {
		t.Errorf("Scope = %q", claims.Scope)
	}

	if _, err := ValidateAdminToken(token, "other-secret"); err == nil {
		t.Error("token validated with the wrong secret")
	}
}
