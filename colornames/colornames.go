// Package colornames resolves CIELAB points to the nearest entry of a
// fixed catalog of named reference colors.
package colornames

import (
	"fmt"

	"github.com/huebase/api/colorspace"
)

// Namer answers nearest-name lookups against the catalog. The lookup data
// is built once in NewNamer and never mutated afterwards, so a single
// Namer is safe for concurrent use without synchronization.
type Namer struct {
	names []string
	labs  [][3]float64
}

// NewNamer converts the catalog to Lab and returns a ready Namer.
func NewNamer() (*Namer, error) {
	n := &Namer{
		names: make([]string, 0, len(catalog)),
		labs:  make([][3]float64, 0, len(catalog)),
	}
	for _, entry := range catalog {
		r, g, b, err := parseHex(entry.hex)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", entry.name, err)
		}
		l, la, lb := colorspace.RGBToLab(r, g, b)
		n.names = append(n.names, entry.name)
		n.labs = append(n.labs, [3]float64{l, la, lb})
	}
	return n, nil
}

// Nearest returns the catalog name closest to the given Lab point by CIE76
// distance. Ties resolve to the earliest catalog entry.
func (n *Namer) Nearest(l, a, b float64) (string, float64) {
	best := 0
	bestDist := colorspace.Distance(l, a, b, n.labs[0][0], n.labs[0][1], n.labs[0][2])
	for i := 1; i < len(n.labs); i++ {
		d := colorspace.Distance(l, a, b, n.labs[i][0], n.labs[i][1], n.labs[i][2])
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return n.names[best], bestDist
}

// NearestHex looks up the nearest catalog name for an "rrggbb" hex code.
func (n *Namer) NearestHex(hex string) (string, float64, error) {
	r, g, b, err := parseHex(hex)
	if err != nil {
		return "", 0, err
	}
	l, la, lb := colorspace.RGBToLab(r, g, b)
	name, dist := n.Nearest(l, la, lb)
	return name, dist, nil
}

func parseHex(hex string) (uint8, uint8, uint8, error) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q: want 6 hex digits", hex)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q: %v", hex, err)
	}
	return r, g, b, nil
}
