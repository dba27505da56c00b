package region

// 文档注释：包含判定策略
// 背景：过滤器只依赖单一的 Contains 能力，多边形、矩形、多面与洞等表示可互换而不改变过滤契约。
// 约束：实现必须无副作用、可并发调用；边界点视为包含。
type Region interface {
	Contains(pt Point) bool
}

// Nothing：非法选区的降级结果，不包含任何点
type Nothing struct{}

func (Nothing) Contains(Point) bool { return false }

// Rect：闭区间矩形（绘制工具的矩形选框）
type Rect struct {
	BBox
}

// NewRect 以任意两个对角点构造矩形
func NewRect(a, b Point) Rect {
	r := Rect{BBox{MinLon: a.Lon, MinLat: a.Lat, MaxLon: b.Lon, MaxLat: b.Lat}}
	if r.MinLon > r.MaxLon {
		r.MinLon, r.MaxLon = r.MaxLon, r.MinLon
	}
	if r.MinLat > r.MaxLat {
		r.MinLat, r.MaxLat = r.MaxLat, r.MinLat
	}
	return r
}

func (r Rect) Contains(pt Point) bool { return r.contains(pt) }

// Contains：任一部分命中即命中；先做包围盒快速过滤
func (s *Shape) Contains(pt Point) bool {
	if s == nil {
		return false
	}
	for i := range s.Polys {
		p := &s.Polys[i]
		if !p.BBox.contains(pt) {
			continue
		}
		if pointInPoly(pt, *p) {
			return true
		}
	}
	return false
}

// Checked 校验选区并返回可用于过滤的 Region；非法时返回 Nothing 与原因
func Checked(s *Shape) (Region, error) {
	if err := s.Validate(); err != nil {
		return Nothing{}, err
	}
	return s, nil
}
