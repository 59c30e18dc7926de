package reachability

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func square(x0, y0, x1, y1 float64) orb.MultiPolygon {
	ring := orb.Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
	return orb.MultiPolygon{orb.Polygon{ring}}
}

func TestUnionOfDisjointSquaresCoversBoth(t *testing.T) {
	a := square(0, 0, 1, 1)
	b := square(5, 5, 6, 6)

	u := Union(a, b)
	assert.True(t, Contains(u, orb.Point{0.5, 0.5}))
	assert.True(t, Contains(u, orb.Point{5.5, 5.5}))
	assert.False(t, Contains(u, orb.Point{3, 3}))
}

func TestUnionWithEmptyReturnsOther(t *testing.T) {
	a := square(0, 0, 1, 1)
	assert.Equal(t, a, Union(nil, a))
	assert.Equal(t, a, Union(a, nil))
}

func TestDiffReturnsOnlyNewlyCoveredArea(t *testing.T) {
	original := square(0, 0, 2, 2)
	withCombus := square(0, 0, 4, 4)

	diff := Diff(original, withCombus)
	assert.True(t, Contains(diff, orb.Point{3, 3}))
	assert.False(t, Contains(diff, orb.Point{1, 1}))
}

func TestDiffWithNoChangeIsEmpty(t *testing.T) {
	region := square(0, 0, 2, 2)
	diff := Diff(region, region)
	assert.Empty(t, diff)
}

func TestMakeValidDropsDegenerateRings(t *testing.T) {
	degenerate := orb.MultiPolygon{orb.Polygon{orb.Ring{{0, 0}, {1, 1}}}}
	assert.Empty(t, MakeValid(degenerate))

	valid := square(0, 0, 1, 1)
	assert.Len(t, MakeValid(valid), 1)
}

func TestContainsChecksInteriorAndExteriorPoints(t *testing.T) {
	region := square(0, 0, 10, 10)
	assert.True(t, Contains(region, orb.Point{5, 5}))
	assert.False(t, Contains(region, orb.Point{20, 20}))
}
