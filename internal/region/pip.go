package region

import "math"

// 点相对环的位置
type location int

const (
	outside location = iota
	onBoundary
	inside
)

// 共线判定容差（相对线段长度平方）
const eps = 1e-12

// 文档注释：点入多边形判定（Even-Odd，闭区域）
// 背景：对绘制选区做精确命中判定；支持洞与多面结构。
// 约束：边界上的点视为命中；严格位于洞内的点不命中，洞的边界属于多边形边界，因此命中。
func pointInPoly(pt Point, poly Polygon) bool {
	if len(poly.Rings) == 0 {
		return false
	}
	switch classifyRing(pt, poly.Rings[0]) {
	case outside:
		return false
	case onBoundary:
		return true
	}
	for i := 1; i < len(poly.Rings); i++ {
		switch classifyRing(pt, poly.Rings[i]) {
		case inside:
			return false
		case onBoundary:
			return true
		}
	}
	return true
}

// 射线法判定点相对环的位置；先检查是否落在任一边上
func classifyRing(pt Point, ring []Point) location {
	n := len(ring)
	if n < 3 {
		return outside
	}
	in := false
	x := pt.Lon
	y := pt.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a := ring[j]
		b := ring[i]
		if onSegment(pt, a, b) {
			return onBoundary
		}
		// 两端纬度不同才可能相交，同时避免除零
		if (b.Lat > y) != (a.Lat > y) {
			xCross := (a.Lon-b.Lon)*(y-b.Lat)/(a.Lat-b.Lat) + b.Lon
			if x < xCross {
				in = !in
			}
		}
	}
	if in {
		return inside
	}
	return outside
}

func onSegment(p, a, b Point) bool {
	dx := b.Lon - a.Lon
	dy := b.Lat - a.Lat
	cross := dx*(p.Lat-a.Lat) - dy*(p.Lon-a.Lon)
	if math.Abs(cross) > eps*math.Max(1, dx*dx+dy*dy) {
		return false
	}
	return p.Lon >= math.Min(a.Lon, b.Lon)-eps && p.Lon <= math.Max(a.Lon, b.Lon)+eps &&
		p.Lat >= math.Min(a.Lat, b.Lat)-eps && p.Lat <= math.Max(a.Lat, b.Lat)+eps
}
