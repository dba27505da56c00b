package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"crash-map/internal/crash"
	"crash-map/internal/region"
)

var errBadVertex = errors.New("vertex must be a [lat, lng] pair")

// 多值参数：既支持 year=2019&year=2020，也支持 year=2019,2020
// 约束：参数缺省返回 nil（不过滤）；出现但为空返回空切片（一个都不选）
func splitValues(q url.Values, key string) []string {
	raw, ok := q[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func parseCriteria(q url.Values) (crash.Criteria, error) {
	var c crash.Criteria
	if ys := splitValues(q, "year"); ys != nil {
		c.Years = make([]int, 0, len(ys))
		for _, s := range ys {
			y, err := strconv.Atoi(s)
			if err != nil {
				return c, fmt.Errorf("bad year %q", s)
			}
			c.Years = append(c.Years, y)
		}
	}
	c.Severities = splitValues(q, "severity")
	return c, nil
}

func parseLimit(q url.Values, def int) (int, error) {
	s := q.Get("limit")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad limit %q", s)
	}
	return n, nil
}

// 文档注释：解析提交的选区
// 背景：地图组件既可能回传 GeoJSON（Feature/Geometry），也可能回传 (lat,lng) 顶点序列 {"vertices": [[lat,lng],...]}。
// 约束：两种输入都先转换为具名字段再校验；任何失败返回 Nothing 与原因，不中断请求。
func decodeSelection(body []byte) (region.Region, error) {
	var probe struct {
		Vertices *[][]float64 `json:"vertices"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return region.Nothing{}, fmt.Errorf("decode selection: %w", err)
	}
	if probe.Vertices == nil {
		return region.ParseGeoJSON(body)
	}
	vs := make([][2]float64, 0, len(*probe.Vertices))
	for _, v := range *probe.Vertices {
		if len(v) != 2 {
			return region.Nothing{}, errBadVertex
		}
		vs = append(vs, [2]float64{v[0], v[1]})
	}
	return region.Checked(region.FromLatLng(vs))
}

// reasonLabel 将拒绝原因归并为有限的指标标签
func reasonLabel(err error) string {
	switch {
	case errors.Is(err, region.ErrTooFewVertices):
		return "too_few_vertices"
	case errors.Is(err, region.ErrZeroArea):
		return "zero_area"
	case errors.Is(err, region.ErrSelfIntersecting):
		return "self_intersecting"
	case errors.Is(err, region.ErrBadCoordinate):
		return "bad_coordinate"
	case errors.Is(err, region.ErrUnsupportedGeometry):
		return "unsupported_geometry"
	case errors.Is(err, region.ErrEmptyShape), errors.Is(err, region.ErrNoRings):
		return "empty"
	}
	return "unparsable"
}
