package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRing(t *testing.T) {
	// 凹多边形（L 形），x=lon, y=lat
	ring := []Point{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 4}, {Lat: 2, Lon: 4},
		{Lat: 2, Lon: 2}, {Lat: 4, Lon: 2}, {Lat: 4, Lon: 0},
	}
	tests := []struct {
		name string
		pt   Point
		want location
	}{
		{"inside lower arm", Point{Lat: 1, Lon: 3}, inside},
		{"inside upper arm", Point{Lat: 3, Lon: 1}, inside},
		{"notch is outside", Point{Lat: 3, Lon: 3}, outside},
		{"vertex", Point{Lat: 2, Lon: 2}, onBoundary},
		{"inner edge", Point{Lat: 3, Lon: 2}, onBoundary},
		{"closing edge", Point{Lat: 2, Lon: 0}, onBoundary},
		{"ray through vertex", Point{Lat: 2, Lon: -1}, outside},
		{"far away", Point{Lat: 50, Lon: 50}, outside},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyRing(tt.pt, ring))
		})
	}
}

func TestClassifyRingTooShort(t *testing.T) {
	assert.Equal(t, outside, classifyRing(Point{}, []Point{{0, 0}, {1, 1}}))
}

func TestSelfIntersects(t *testing.T) {
	tests := []struct {
		name string
		ring []Point
		want bool
	}{
		{"triangle", []Point{{0, 0}, {0, 1}, {1, 0}}, false},
		{"square", []Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}}, false},
		{"crossing edges", []Point{{0, 0}, {1, 2}, {0, 2}, {2, 0}}, true},
		{"touching vertex", []Point{{0, 0}, {0, 2}, {1, 1}, {2, 2}, {2, 0}, {1, 1}}, true},
		{"spike back along edge", []Point{{0, 0}, {0, 2}, {0, 1}, {2, 2}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selfIntersects(tt.ring))
		})
	}
}

func TestOpenRing(t *testing.T) {
	got := openRing([]Point{{0, 0}, {0, 0}, {0, 1}, {1, 1}, {0, 0}})
	assert.Equal(t, []Point{{0, 0}, {0, 1}, {1, 1}}, got)
}

func TestSignedAreaOrientation(t *testing.T) {
	ccw := []Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0}}
	assert.InDelta(t, 1.0, signedArea(ccw), 1e-12)

	cw := []Point{ccw[3], ccw[2], ccw[1], ccw[0]}
	assert.InDelta(t, -1.0, signedArea(cw), 1e-12)
}
