package colornames

import (
	"sync"
	"testing"
)

func TestNearestHexRoundTrip(t *testing.T) {
	namer, err := NewNamer()
	if err != nil {
		t.Fatalf("NewNamer: %v", err)
	}

	tests := []struct {
		hex  string
		want string
	}{
		{hex: "000000", want: "black"},
		{hex: "ffffff", want: "white"},
		{hex: "ff0000", want: "red"},
		{hex: "00ff00", want: "green"},
		{hex: "0000ff", want: "blue"},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			name, dist, err := namer.NearestHex(tt.hex)
			if err != nil {
				t.Fatalf("NearestHex(%q): %v", tt.hex, err)
			}
			if name != tt.want {
				t.Errorf("NearestHex(%q) = %q, want %q", tt.hex, name, tt.want)
			}
			if dist != 0 {
				t.Errorf("NearestHex(%q) distance = %f, want 0 for exact catalog entry", tt.hex, dist)
			}
		})
	}
}

func TestNearestOffCatalogPoint(t *testing.T) {
	namer, err := NewNamer()
	if err != nil {
		t.Fatalf("NewNamer: %v", err)
	}

	// A point slightly off pure black must still be named black, with a
	// small positive distance.
	name, dist, err := namer.NearestHex("020103")
	if err != nil {
		t.Fatal(err)
	}
	if name != "black" {
		t.Errorf("near-black resolved to %q", name)
	}
	if dist <= 0 || dist > 5 {
		t.Errorf("near-black distance = %f, want small positive value", dist)
	}
}

func TestNearestHexRejectsInvalid(t *testing.T) {
	namer, err := NewNamer()
	if err != nil {
		t.Fatalf("NewNamer: %v", err)
	}

	for _, hex := range []string{"", "fff", "zzzzzz", "1234567"} {
		if _, _, err := namer.NearestHex(hex); err == nil {
			t.Errorf("NearestHex(%q) succeeded, want error", hex)
		}
	}
}

func TestConcurrentLookups(t *testing.T) {
	namer, err := NewNamer()
	if err != nil {
		t.Fatalf("NewNamer: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if name, _ := namer.Nearest(50, 10, -10); name == "" {
					t.Error("Nearest returned empty name")
					return
				}
			}
		}()
	}
	wg.Wait()
}
