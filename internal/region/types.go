// 包 region：区域选择过滤，判定记录坐标是否落在用户绘制的多边形内
package region

import "math"

// 文档注释：区域选择的最小几何结构
// 背景：承载地图上绘制的多边形/矩形；保持轻量以便每次交互即时判定。
// 约束：内部统一使用具名字段 Lat/Lon，不使用有序数对；(lat,lng) 与 GeoJSON 的 [lon,lat] 仅在边界处转换。
type Point struct {
	Lat float64
	Lon float64
}

// Polygon：按 GeoJSON 约定的环集合，第一环是外环，其后为洞
type Polygon struct {
	Rings [][]Point
	BBox  BBox
}

// BBox：闭区间包围盒
type BBox struct {
	MinLon, MinLat float64
	MaxLon, MaxLat float64
}

// Shape：一个或多个多边形（Polygon/MultiPolygon），选区为各部分的并集
type Shape struct {
	Polys []Polygon
}

func (b BBox) contains(pt Point) bool {
	return pt.Lon >= b.MinLon && pt.Lon <= b.MaxLon && pt.Lat >= b.MinLat && pt.Lat <= b.MaxLat
}

func computeBBox(rings [][]Point) BBox {
	b := BBox{MinLon: math.Inf(1), MinLat: math.Inf(1), MaxLon: math.Inf(-1), MaxLat: math.Inf(-1)}
	for _, r := range rings {
		for _, pt := range r {
			if pt.Lon < b.MinLon {
				b.MinLon = pt.Lon
			}
			if pt.Lat < b.MinLat {
				b.MinLat = pt.Lat
			}
			if pt.Lon > b.MaxLon {
				b.MaxLon = pt.Lon
			}
			if pt.Lat > b.MaxLat {
				b.MaxLat = pt.Lat
			}
		}
	}
	return b
}

// NewPolygon：以外环与可选洞构造多边形并计算包围盒
// 约束：不做合法性校验，校验见 Validate；输入切片不会被修改。
func NewPolygon(outer []Point, holes ...[]Point) Polygon {
	rings := make([][]Point, 0, 1+len(holes))
	rings = append(rings, outer)
	rings = append(rings, holes...)
	return Polygon{Rings: rings, BBox: computeBBox(rings)}
}
