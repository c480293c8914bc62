package space

import (
	"math"
	"sort"
)

// Point is a position in the galaxy, in light-years.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Positioned is anything that may have a known galactic position.
// A nil result means the position has not been resolved yet.
type Positioned interface {
	Pos() *Point
}

func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z

	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// WithinRadius keeps items with a known position within radius of origin.
// Items with an unknown position are dropped, never an error.
func WithinRadius[T Positioned](items []T, origin Point, radius float64) []T {
	res := make([]T, 0, len(items))

	for _, it := range items {
		p := it.Pos()

		if p == nil {
			continue
		}

		if Distance(*p, origin) <= radius {
			res = append(res, it)
		}
	}

	return res
}

// SortByDistance orders items by ascending distance from origin, keeping
// the original order for equal distances. Items without a position go last.
func SortByDistance[T Positioned](items []T, origin Point) {
	dist := func(it T) float64 {
		if p := it.Pos(); p != nil {
			return Distance(*p, origin)
		}

		return math.Inf(1)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return dist(items[i]) < dist(items[j])
	})
}
