package extractor

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/huebase/api/colornames"
	"github.com/huebase/api/colorspace"
	"github.com/huebase/api/models"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	namer, err := colornames.NewNamer()
	if err != nil {
		t.Fatalf("NewNamer: %v", err)
	}
	return New(namer).WithSeed(42)
}

func uniformImage(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func quadrantImage(w, h int, colors [4]color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			quadrant := 0
			if x >= w/2 {
				quadrant = 1
			}
			if y >= h/2 {
				quadrant += 2
			}
			img.Set(x, y, colors[quadrant])
		}
	}
	return img
}

func percentageSum(colors []models.Color) float64 {
	sum := 0.0
	for _, c := range colors {
		sum += c.Percentage
	}
	return sum
}

func TestExtractUniformImage(t *testing.T) {
	tests := []struct {
		name  string
		input color.RGBA
	}{
		{name: "red", input: color.RGBA{R: 200, G: 30, B: 40, A: 255}},
		{name: "blue", input: color.RGBA{R: 10, G: 20, B: 220, A: 255}},
		{name: "gray", input: color.RGBA{R: 128, G: 128, B: 128, A: 255}},
	}

	e := newTestExtractor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			colors, err := e.Extract(uniformImage(50, 50, tt.input))
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if len(colors) != 1 {
				t.Fatalf("uniform image produced %d colors, want 1", len(colors))
			}
			if colors[0].Percentage != 1.0 {
				t.Errorf("percentage = %f, want 1.0", colors[0].Percentage)
			}

			wantL, wantA, wantB := colorspace.RGBToLab(tt.input.R, tt.input.G, tt.input.B)
			d := colorspace.Distance(colors[0].L, colors[0].A, colors[0].B, wantL, wantA, wantB)
			if d >= 10 {
				t.Errorf("extracted color is %f away from input in Lab, want < 10", d)
			}
			if colors[0].Name == "" {
				t.Error("extracted color has no name")
			}
		})
	}
}

func TestExtractSinglePixel(t *testing.T) {
	e := newTestExtractor(t)
	colors, err := e.Extract(uniformImage(1, 1, color.RGBA{R: 5, G: 100, B: 200, A: 255}))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(colors) != 1 {
		t.Fatalf("1x1 image produced %d colors, want 1", len(colors))
	}
	if colors[0].Percentage != 1.0 {
		t.Errorf("percentage = %f, want 1.0", colors[0].Percentage)
	}
}

func TestExtractFourQuadrants(t *testing.T) {
	quadrants := [4]color.RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, A: 255},
	}

	e := newTestExtractor(t)
	colors, err := e.Extract(quadrantImage(100, 100, quadrants))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(colors) != 4 {
		t.Fatalf("four-quadrant image produced %d colors, want 4", len(colors))
	}
	for _, c := range colors {
		if math.Abs(c.Percentage-0.25) > 0.02 {
			t.Errorf("quadrant percentage = %f, want ~0.25", c.Percentage)
		}
	}
}

func TestExtractPercentagesSumToOne(t *testing.T) {
	// Gradient exercises the path where raw clusters are dropped and
	// merged; the surviving percentages must still sum to 1.
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 2),
				G: uint8(y * 3),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}

	e := newTestExtractor(t)
	colors, err := e.Extract(img)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(colors) == 0 || len(colors) > MaxClusters {
		t.Fatalf("got %d colors, want between 1 and %d", len(colors), MaxClusters)
	}
	if sum := percentageSum(colors); math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("percentages sum to %f, want 1.0", sum)
	}
}

func TestExtractMergeInvariant(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 7) % 256),
				G: uint8((y * 5) % 256),
				B: uint8((x*y + 13) % 256),
				A: 255,
			})
		}
	}

	e := newTestExtractor(t)
	colors, err := e.Extract(img)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for i := 0; i < len(colors); i++ {
		for j := i + 1; j < len(colors); j++ {
			d := colorspace.Distance(
				colors[i].L, colors[i].A, colors[i].B,
				colors[j].L, colors[j].A, colors[j].B,
			)
			if d < MergeThreshold {
				t.Errorf("colors %d and %d are %f apart, want >= %f", i, j, d, MergeThreshold)
			}
		}
	}
}

func TestExtractDeterministicWithFixedSeed(t *testing.T) {
	quadrants := [4]color.RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, A: 255},
	}
	img := quadrantImage(64, 64, quadrants)

	e := newTestExtractor(t)
	first, err := e.Extract(img)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	second, err := e.Extract(img)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("runs disagree on cluster count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("color %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestMergeSimilar(t *testing.T) {
	tests := []struct {
		name       string
		clusters   []cluster
		wantCounts []int
	}{
		{
			name: "no merge above threshold",
			clusters: []cluster{
				{centroid: labPoint{0, 0, 0}, count: 10},
				{centroid: labPoint{50, 0, 0}, count: 20},
			},
			wantCounts: []int{10, 20},
		},
		{
			name: "smaller absorbed into larger",
			clusters: []cluster{
				{centroid: labPoint{10, 0, 0}, count: 5},
				{centroid: labPoint{15, 0, 0}, count: 20},
			},
			wantCounts: []int{25},
		},
		{
			name: "equal counts keep earlier centroid",
			clusters: []cluster{
				{centroid: labPoint{10, 0, 0}, count: 10},
				{centroid: labPoint{15, 0, 0}, count: 10},
			},
			wantCounts: []int{20},
		},
		{
			name: "chain collapses to one",
			clusters: []cluster{
				{centroid: labPoint{0, 0, 0}, count: 1},
				{centroid: labPoint{15, 0, 0}, count: 2},
				{centroid: labPoint{30, 0, 0}, count: 3},
			},
			wantCounts: []int{6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeSimilar(tt.clusters, MergeThreshold)
			if len(got) != len(tt.wantCounts) {
				t.Fatalf("got %d clusters, want %d", len(got), len(tt.wantCounts))
			}
			for i, want := range tt.wantCounts {
				if got[i].count != want {
					t.Errorf("cluster %d count = %d, want %d", i, got[i].count, want)
				}
			}
		})
	}
}
