package extractor

import (
	"math"
	"math/rand"
)

// labPoint is a point in CIELAB space.
type labPoint [3]float64

func (p labPoint) distance(other labPoint) float64 {
	dl := p[0] - other[0]
	da := p[1] - other[1]
	db := p[2] - other[2]
	return math.Sqrt(dl*dl + da*da + db*db)
}

// kmeans clusters points into at most k groups and returns the final
// centroids with the number of points assigned to each. Clusters may end
// up empty when k exceeds the natural structure of the input; callers are
// expected to drop those.
func kmeans(points []labPoint, k, maxIterations int, convergence float64, rng *rand.Rand) ([]labPoint, []int) {
	centroids := initCentroids(points, k, rng)
	assignments := make([]int, len(points))

	for iter := 0; iter < maxIterations; iter++ {
		changed := 0
		for i, point := range points {
			nearest := nearestCentroid(point, centroids)
			if iter == 0 || assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}

		newCentroids := recalcCentroids(points, assignments, centroids)

		totalMovement := 0.0
		for i := range centroids {
			totalMovement += centroids[i].distance(newCentroids[i])
		}
		centroids = newCentroids

		if iter > 0 && changed == 0 {
			break
		}
		if totalMovement/float64(k) < convergence {
			break
		}
	}

	counts := make([]int, k)
	for _, a := range assignments {
		counts[a]++
	}
	return centroids, counts
}

// initCentroids seeds the clustering with k-means++: the first centroid is
// drawn uniformly, each further one with probability proportional to its
// squared distance from the nearest chosen centroid.
func initCentroids(points []labPoint, k int, rng *rand.Rand) []labPoint {
	centroids := make([]labPoint, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	distances := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, point := range points {
			minDist := math.MaxFloat64
			for _, c := range centroids {
				if d := point.distance(c); d < minDist {
					minDist = d
				}
			}
			distances[i] = minDist * minDist
			total += distances[i]
		}

		if total == 0 {
			// All remaining points coincide with a chosen centroid. The
			// duplicates end up with zero assignments and are dropped later.
			centroids = append(centroids, centroids[len(centroids)-1])
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				centroids = append(centroids, points[i])
				break
			}
		}
	}

	return centroids
}

func nearestCentroid(point labPoint, centroids []labPoint) int {
	nearest := 0
	minDist := math.MaxFloat64
	for i, c := range centroids {
		if d := point.distance(c); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest
}

// recalcCentroids averages each cluster's members. A cluster with no
// members keeps its previous centroid so it can be detected and dropped
// by its zero count instead of being reseeded.
func recalcCentroids(points []labPoint, assignments []int, prev []labPoint) []labPoint {
	k := len(prev)
	sums := make([]labPoint, k)
	counts := make([]int, k)

	for i, point := range points {
		cluster := assignments[i]
		sums[cluster][0] += point[0]
		sums[cluster][1] += point[1]
		sums[cluster][2] += point[2]
		counts[cluster]++
	}

	centroids := make([]labPoint, k)
	for i := 0; i < k; i++ {
		if counts[i] == 0 {
			centroids[i] = prev[i]
			continue
		}
		centroids[i] = labPoint{
			sums[i][0] / float64(counts[i]),
			sums[i][1] / float64(counts[i]),
			sums[i][2] / float64(counts[i]),
		}
	}
	return centroids
}
