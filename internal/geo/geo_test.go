package geo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceZero(t *testing.T) {
	p := Point{Lat: 35.0, Lng: 135.0}
	require.Equal(t, 0.0, Distance(p, p))
}

func TestDistanceLatitudeOffset(t *testing.T) {
	// 0.00134899 degrees of latitude is almost exactly 150m.
	a := Point{Lat: 35.0, Lng: 135.0}
	b := Point{Lat: 35.00134899, Lng: 135.0}
	require.InDelta(t, 150.0, Distance(a, b), 0.1)
}

func TestDistanceSymmetric(t *testing.T) {
	a := Point{Lat: 35.0, Lng: 135.0}
	b := Point{Lat: 35.001, Lng: 135.002}
	require.Equal(t, Distance(a, b), Distance(b, a))
}

func TestWithinRadiusInclusiveBoundary(t *testing.T) {
	a := Point{Lat: 35.0, Lng: 135.0}
	b := Point{Lat: 35.0005, Lng: 135.0007}
	d := Distance(a, b)

	_, ok := WithinRadius(a, b, d)
	require.True(t, ok, "a point exactly at the radius must pass")

	_, ok = WithinRadius(a, b, d-0.001)
	require.False(t, ok)
}

func TestWithinRadiusOutside(t *testing.T) {
	a := Point{Lat: 35.0, Lng: 135.0}
	b := Point{Lat: 35.00134899, Lng: 135.0}

	d, ok := WithinRadius(a, b, 100)
	require.False(t, ok)
	require.InDelta(t, 150.0, d, 0.1)
}
