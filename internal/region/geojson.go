package region

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// 文档注释：解析绘制工具导出的 GeoJSON 选区
// 背景：地图绘制插件导出 Feature（last_drawn_feature）或裸 Geometry；矩形导出为 Polygon，圆导出为 Point 不受支持。
// 约束：GeoJSON 坐标顺序为 [lon, lat]，与地图标记的 (lat, lng) 相反；只在此处转换为具名字段。
// 异常：任何解析或校验失败都返回 Nothing 与原因，调用方据此得到空选区而不是报错中断。
func ParseGeoJSON(data []byte) (Region, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Nothing{}, fmt.Errorf("region: decode geojson: %w", err)
	}
	var g orb.Geometry
	switch probe.Type {
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return Nothing{}, fmt.Errorf("region: decode feature: %w", err)
		}
		g = f.Geometry
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return Nothing{}, fmt.Errorf("region: decode feature collection: %w", err)
		}
		var col orb.Collection
		for _, f := range fc.Features {
			col = append(col, f.Geometry)
		}
		g = col
	default:
		gg, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return Nothing{}, fmt.Errorf("region: decode geometry: %w", err)
		}
		g = gg.Geometry()
	}
	s, err := FromOrb(g)
	if err != nil {
		return Nothing{}, err
	}
	return Checked(s)
}

// FromOrb 将 orb 几何转换为选区；支持 Polygon、MultiPolygon、Bound 及其集合
func FromOrb(g orb.Geometry) (*Shape, error) {
	s := &Shape{}
	if err := addGeometry(s, g); err != nil {
		return nil, err
	}
	if len(s.Polys) == 0 {
		return nil, ErrEmptyShape
	}
	return s, nil
}

func addGeometry(s *Shape, g orb.Geometry) error {
	switch v := g.(type) {
	case nil:
		return nil
	case orb.Polygon:
		s.Polys = append(s.Polys, polygonFromOrb(v))
	case orb.MultiPolygon:
		for _, p := range v {
			s.Polys = append(s.Polys, polygonFromOrb(p))
		}
	case orb.Bound:
		s.Polys = append(s.Polys, polygonFromOrb(v.ToPolygon()))
	case orb.Collection:
		for _, part := range v {
			if err := addGeometry(s, part); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
	return nil
}

func polygonFromOrb(p orb.Polygon) Polygon {
	rings := make([][]Point, 0, len(p))
	for _, r := range p {
		rr := make([]Point, 0, len(r))
		for _, op := range r {
			rr = append(rr, Point{Lat: op.Lat(), Lon: op.Lon()})
		}
		rings = append(rings, rr)
	}
	return Polygon{Rings: rings, BBox: computeBBox(rings)}
}

// FromLatLng 以地图组件的 (lat, lng) 顶点序列构造单环选区
func FromLatLng(vertices [][2]float64) *Shape {
	ring := make([]Point, 0, len(vertices))
	for _, v := range vertices {
		ring = append(ring, Point{Lat: v[0], Lon: v[1]})
	}
	return &Shape{Polys: []Polygon{NewPolygon(ring)}}
}

// Orb 转换为 orb 点（x=lon, y=lat）
func (p Point) Orb() orb.Point { return orb.Point{p.Lon, p.Lat} }
