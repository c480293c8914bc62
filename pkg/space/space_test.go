package space

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type marker struct {
	name string
	pos  *Point
}

func (m *marker) Pos() *Point {
	return m.pos
}

func TestDistance(t *testing.T) {
	a := Point{X: 1, Y: 2, Z: 3}
	b := Point{X: 4, Y: 6, Z: 3}

	assert.Equal(t, 0.0, Distance(a, a))
	assert.InDelta(t, 5.0, Distance(a, b), 1e-9)
	assert.Equal(t, Distance(a, b), Distance(b, a))
}

func TestWithinRadius(t *testing.T) {
	origin := Point{}

	items := []*marker{
		{name: "here", pos: &Point{}},
		{name: "near", pos: &Point{X: 3, Y: 3}},
		{name: "far", pos: &Point{X: 5, Y: 5, Z: 5}},
		{name: "unknown", pos: nil},
	}

	res := WithinRadius(items, origin, 5)

	assert.Len(t, res, 2)
	assert.Equal(t, "here", res[0].name)
	assert.Equal(t, "near", res[1].name)
}

func TestSortByDistance(t *testing.T) {
	origin := Point{}

	items := []*marker{
		{name: "far", pos: &Point{X: 10}},
		{name: "unknown", pos: nil},
		{name: "near", pos: &Point{X: 1}},
		{name: "mid", pos: &Point{X: 5}},
	}

	SortByDistance(items, origin)

	assert.Equal(t, "near", items[0].name)
	assert.Equal(t, "mid", items[1].name)
	assert.Equal(t, "far", items[2].name)
	assert.Equal(t, "unknown", items[3].name)
}

func TestSortByDistanceStable(t *testing.T) {
	origin := Point{}

	items := []*marker{
		{name: "a", pos: &Point{X: 1}},
		{name: "b", pos: &Point{X: 1}},
		{name: "c", pos: &Point{X: 1}},
	}

	SortByDistance(items, origin)

	assert.Equal(t, "a", items[0].name)
	assert.Equal(t, "b", items[1].name)
	assert.Equal(t, "c", items[2].name)
}
