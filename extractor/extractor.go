// Package extractor computes weighted palettes of dominant colors from
// images by k-means clustering in CIELAB space.
package extractor

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"

	"golang.org/x/image/draw"

	"github.com/huebase/api/colornames"
	"github.com/huebase/api/colorspace"
	"github.com/huebase/api/models"
)

const (
	// MaxClusters bounds the number of raw k-means clusters per image.
	MaxClusters = 12

	// MergeThreshold is the CIE76 distance under which two cluster
	// centroids are considered the same color and merged.
	MergeThreshold = 20.0

	// thumbnailSize bounds the longer image edge before clustering.
	thumbnailSize = 300

	maxIterations = 25
	convergence   = 0.5
)

// Extractor extracts dominant color palettes from images. It is stateless
// apart from the clustering seed and safe to share across goroutines as
// long as the seed is not changed after construction.
type Extractor struct {
	namer *colornames.Namer
	seed  int64
}

// New returns an Extractor with a fixed default seed, so repeated runs
// over the same image produce the same palette.
func New(namer *colornames.Namer) *Extractor {
	return &Extractor{namer: namer, seed: 1}
}

// WithSeed overrides the clustering seed.
func (e *Extractor) WithSeed(seed int64) *Extractor {
	e.seed = seed
	return e
}

// Extract computes the weighted palette of img. The returned percentages
// sum to 1 and no two returned colors are closer than MergeThreshold.
func (e *Extractor) Extract(img image.Image) ([]models.Color, error) {
	points := e.samplePixels(img)
	if len(points) == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	k := MaxClusters
	if len(points) < k {
		k = len(points)
	}

	rng := rand.New(rand.NewSource(e.seed))
	centroids, counts := kmeans(points, k, maxIterations, convergence, rng)

	clusters := make([]cluster, 0, k)
	for i, c := range centroids {
		if counts[i] == 0 {
			continue
		}
		clusters = append(clusters, cluster{centroid: c, count: counts[i]})
	}

	clusters = mergeSimilar(clusters, MergeThreshold)

	total := 0
	for _, c := range clusters {
		total += c.count
	}

	colors := make([]models.Color, len(clusters))
	for i, c := range clusters {
		col := models.NewColor(c.centroid[0], c.centroid[1], c.centroid[2], float64(c.count)/float64(total))
		col.Name, col.NameDistance = e.namer.Nearest(col.L, col.A, col.B)
		colors[i] = col
	}
	return colors, nil
}

type cluster struct {
	centroid labPoint
	count    int
}

// mergeSimilar collapses clusters whose centroids are closer than the
// threshold. The scan restarts from scratch after every merge; the first
// qualifying pair in iteration order merges, the cluster with fewer pixels
// is absorbed into the larger one (ties keep the earlier cluster's
// centroid), and the absorbed centroid is discarded. A uniform image
// therefore reduces to a single cluster.
func mergeSimilar(clusters []cluster, threshold float64) []cluster {
restart:
	for i := 0; i < len(clusters); i++ {
		for j := i + 1; j < len(clusters); j++ {
			if clusters[i].centroid.distance(clusters[j].centroid) >= threshold {
				continue
			}
			if clusters[i].count >= clusters[j].count {
				clusters[i].count += clusters[j].count
				clusters = append(clusters[:j], clusters[j+1:]...)
			} else {
				clusters[j].count += clusters[i].count
				clusters = append(clusters[:i], clusters[i+1:]...)
			}
			goto restart
		}
	}
	return clusters
}

// samplePixels downscales img so its longer edge is at most thumbnailSize,
// preserving aspect ratio, and converts every remaining pixel to Lab.
func (e *Extractor) samplePixels(img image.Image) []labPoint {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	if width > thumbnailSize || height > thumbnailSize {
		scale := float64(thumbnailSize) / float64(width)
		if height > width {
			scale = float64(thumbnailSize) / float64(height)
		}
		dstW := int(float64(width) * scale)
		dstH := int(float64(height) * scale)
		if dstW < 1 {
			dstW = 1
		}
		if dstH < 1 {
			dstH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		img = dst
		bounds = dst.Bounds()
	}

	points := make([]labPoint, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			l, a, b := colorspace.RGBToLab(c.R, c.G, c.B)
			points = append(points, labPoint{l, a, b})
		}
	}
	return points
}
