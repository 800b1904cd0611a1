package models

import (
	"fmt"
	"time"

	"github.com/huebase/api/colorspace"
)

// Color is one entry of an extracted palette, stored in CIELAB space.
// RGB is derived from the Lab coordinates on construction and is never
// set independently.
type Color struct {
	L            float64  `json:"L" db:"L"`
	A            float64  `json:"a" db:"a"`
	B            float64  `json:"b" db:"b"`
	Percentage   float64  `json:"percentage" db:"percentage"`
	RGB          [3]uint8 `json:"rgb"`
	Name         string   `json:"name,omitempty" db:"name"`
	NameDistance float64  `json:"nameDistance,omitempty" db:"name_distance"`
}

// NewColor builds a Color from Lab coordinates and derives its RGB view.
func NewColor(l, a, b, percentage float64) Color {
	r, g, bl := colorspace.LabToRGB(l, a, b)
	return Color{
		L:          l,
		A:          a,
		B:          b,
		Percentage: percentage,
		RGB:        [3]uint8{r, g, bl},
	}
}

// ColorFromRGB builds a Color from an 8-bit sRGB triple.
func ColorFromRGB(r, g, b uint8, percentage float64) Color {
	l, la, lb := colorspace.RGBToLab(r, g, b)
	return Color{
		L:          l,
		A:          la,
		B:          lb,
		Percentage: percentage,
		RGB:        [3]uint8{r, g, b},
	}
}

// ColorFromHex parses a "rrggbb" or "#rrggbb" hex code.
func ColorFromHex(hex string) (Color, error) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q: want 6 hex digits", hex)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %v", hex, err)
	}
	return ColorFromRGB(r, g, b, 1.0), nil
}

// Hex returns the derived RGB view as a "#rrggbb" string.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.RGB[0], c.RGB[1], c.RGB[2])
}

// Image is a reference to an externally hosted photo. Origin is the stable
// natural key; ID is assigned by the datastore on first creation.
type Image struct {
	ID        int       `json:"id,omitempty" db:"id"`
	Origin    string    `json:"origin" db:"origin"`
	URLBig    string    `json:"urlBig" db:"url_big"`
	URLThumb  string    `json:"urlThumb" db:"url_thumb"`
	IndexedAt time.Time `json:"indexedAt,omitempty" db:"indexed_at"`
}
