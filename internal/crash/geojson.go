package crash

import "github.com/paulmach/orb/geojson"

// FeatureCollection 将记录转换为点要素集合，属性即地图弹窗展示的字段
func FeatureCollection(records []Record) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range records {
		f := geojson.NewFeature(r.Coord().Orb())
		f.ID = r.ID
		f.Properties["id"] = r.ID
		if r.Year != 0 {
			f.Properties["year"] = r.Year
		}
		if r.Severity != "" {
			f.Properties["severity"] = r.Severity
		}
		if r.Description != "" {
			f.Properties["description"] = r.Description
		}
		fc.Append(f)
	}
	return fc
}
