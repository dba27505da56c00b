package region

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptyShape          = errors.New("region: shape has no polygons")
	ErrNoRings             = errors.New("region: polygon has no rings")
	ErrTooFewVertices      = errors.New("region: ring has fewer than 3 distinct vertices")
	ErrZeroArea            = errors.New("region: ring has zero area")
	ErrSelfIntersecting    = errors.New("region: ring is self-intersecting")
	ErrBadCoordinate       = errors.New("region: vertex coordinate is not finite")
	ErrUnsupportedGeometry = errors.New("region: unsupported geometry type")
)

// Validate 校验选区的每个多边形；任一部分非法则整个选区非法
func (s *Shape) Validate() error {
	if s == nil || len(s.Polys) == 0 {
		return ErrEmptyShape
	}
	for i, p := range s.Polys {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("polygon %d: %w", i, err)
		}
	}
	return nil
}

// Validate 检查外环与洞：至少 3 个不同顶点、面积非零、无自相交
func (p Polygon) Validate() error {
	if len(p.Rings) == 0 {
		return ErrNoRings
	}
	for i, r := range p.Rings {
		if err := validateRing(r); err != nil {
			if i == 0 {
				return fmt.Errorf("outer ring: %w", err)
			}
			return fmt.Errorf("hole %d: %w", i, err)
		}
	}
	return nil
}

func validateRing(ring []Point) error {
	for _, pt := range ring {
		if math.IsNaN(pt.Lat) || math.IsNaN(pt.Lon) || math.IsInf(pt.Lat, 0) || math.IsInf(pt.Lon, 0) {
			return ErrBadCoordinate
		}
	}
	open := openRing(ring)
	if distinctCount(open) < 3 {
		return ErrTooFewVertices
	}
	b := computeBBox([][]Point{open})
	w := b.MaxLon - b.MinLon
	h := b.MaxLat - b.MinLat
	if math.Abs(signedArea(open)) <= eps*(w*w+h*h) {
		return ErrZeroArea
	}
	if selfIntersects(open) {
		return ErrSelfIntersecting
	}
	return nil
}

// openRing 去掉连续重复点与首尾闭合点，返回新切片
func openRing(ring []Point) []Point {
	out := make([]Point, 0, len(ring))
	for _, pt := range ring {
		if len(out) > 0 && out[len(out)-1] == pt {
			continue
		}
		out = append(out, pt)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func distinctCount(ring []Point) int {
	seen := make(map[Point]struct{}, len(ring))
	for _, pt := range ring {
		seen[pt] = struct{}{}
	}
	return len(seen)
}

// 鞋带公式，x 为经度、y 为纬度
func signedArea(ring []Point) float64 {
	var a float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a += ring[i].Lon*ring[j].Lat - ring[j].Lon*ring[i].Lat
	}
	return a / 2
}

// selfIntersects 要求输入为 openRing 的结果；相邻边仅允许共享端点
func selfIntersects(ring []Point) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		a1 := ring[i]
		a2 := ring[(i+1)%n]
		for j := i + 1; j < n; j++ {
			b1 := ring[j]
			b2 := ring[(j+1)%n]
			switch {
			case j == i+1:
				// 相邻边共享 a2，另一端落在对方边上即为折返重叠
				if onSegment(b2, a1, a2) || onSegment(a1, b1, b2) {
					return true
				}
			case i == 0 && j == n-1:
				// 首尾边共享 a1
				if onSegment(b1, a1, a2) || onSegment(a2, b1, b2) {
					return true
				}
			default:
				if segmentsIntersect(a1, a2, b1, b2) {
					return true
				}
			}
		}
	}
	return false
}

func orient(a, b, c Point) float64 {
	return (b.Lon-a.Lon)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lon-a.Lon)
}

func segmentsIntersect(p1, p2, q1, q2 Point) bool {
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return onSegment(p1, q1, q2) || onSegment(p2, q1, q2) || onSegment(q1, p1, p2) || onSegment(q2, p1, p2)
}
