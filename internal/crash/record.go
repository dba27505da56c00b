// 包 crash：事故数据集（记录、侧边栏筛选、地图中心），作为区域过滤的上游数据源
package crash

import (
	"math"
	"sort"

	"crash-map/internal/region"
)

// Record：一条事故观测，加载后只读
type Record struct {
	ID          string            `json:"id"`
	Lat         float64           `json:"lat"`
	Lon         float64           `json:"lon"`
	Year        int               `json:"year,omitempty"`
	Severity    string            `json:"severity,omitempty"`
	Description string            `json:"description,omitempty"`
	Attrs       map[string]string `json:"attrs,omitempty"`
}

func (r Record) Coord() region.Point { return region.Point{Lat: r.Lat, Lon: r.Lon} }

// ValidCoord 检查经纬度为有限值且在取值范围内
func ValidCoord(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// 文档注释：进程启动时加载一次的数据集
// 背景：替代全局缓存加载；由入口显式构建后按引用传给各处理器。
// 约束：记录切片与选项在构建后不再修改，可并发读取。
type Dataset struct {
	records    []Record
	years      []int
	severities []string
}

func NewDataset(records []Record) *Dataset {
	ys := map[int]struct{}{}
	ss := map[string]struct{}{}
	for _, r := range records {
		if r.Year != 0 {
			ys[r.Year] = struct{}{}
		}
		if r.Severity != "" {
			ss[r.Severity] = struct{}{}
		}
	}
	d := &Dataset{records: records}
	for y := range ys {
		d.years = append(d.years, y)
	}
	for s := range ss {
		d.severities = append(d.severities, s)
	}
	sort.Ints(d.years)
	sort.Strings(d.severities)
	return d
}

func (d *Dataset) Len() int { return len(d.records) }

// Records 返回底层切片，调用方不得修改
func (d *Dataset) Records() []Record { return d.records }

// Years 返回去重排序后的报告年份（侧边栏选项）
func (d *Dataset) Years() []int { return append([]int(nil), d.years...) }

// Severities 返回去重排序后的事故等级（侧边栏选项）
func (d *Dataset) Severities() []string { return append([]string(nil), d.severities...) }

// Criteria：侧边栏多选条件；nil 表示该维度不过滤（默认全选）
type Criteria struct {
	Years      []int
	Severities []string
}

// Filter 按年份与等级做 isin 过滤，保持原有顺序
func (d *Dataset) Filter(c Criteria) []Record {
	if c.Years == nil && c.Severities == nil {
		return d.records
	}
	var ys map[int]struct{}
	if c.Years != nil {
		ys = make(map[int]struct{}, len(c.Years))
		for _, y := range c.Years {
			ys[y] = struct{}{}
		}
	}
	var ss map[string]struct{}
	if c.Severities != nil {
		ss = make(map[string]struct{}, len(c.Severities))
		for _, s := range c.Severities {
			ss[s] = struct{}{}
		}
	}
	out := make([]Record, 0, len(d.records))
	for _, r := range d.records {
		if ys != nil {
			if _, ok := ys[r.Year]; !ok {
				continue
			}
		}
		if ss != nil {
			if _, ok := ss[r.Severity]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// Center 返回平均经纬度作为地图中心；无记录时 ok=false
func Center(records []Record) (region.Point, bool) {
	if len(records) == 0 {
		return region.Point{}, false
	}
	var lat, lon float64
	for _, r := range records {
		lat += r.Lat
		lon += r.Lon
	}
	n := float64(len(records))
	return region.Point{Lat: lat / n, Lon: lon / n}, true
}
