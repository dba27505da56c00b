package api

import "crash-map/internal/crash"

// 文档注释：对外返回结构
// 背景：统一对外序列化模型，前端地图与侧边栏直接消费；字段名使用 lat/lon，避免有序数对带来的轴序歧义。
// 约束：字段稳定；新增字段需评估兼容性与前端依赖。
type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type filtersResponse struct {
	Years      []int    `json:"years"`
	Severities []string `json:"severities"`
}

type recordsResponse struct {
	Total   int            `json:"total"`
	Center  *latLon        `json:"center"`
	Records []crash.Record `json:"records"`
}

// selectResponse：区域选择结果
// 约束：valid=false 时 count 恒为 0，reason 给出拒绝原因；drawn 表示该会话是否有过选区
type selectResponse struct {
	Valid   bool           `json:"valid"`
	Drawn   bool           `json:"drawn"`
	Reason  string         `json:"reason,omitempty"`
	Count   int            `json:"count"`
	Records []crash.Record `json:"records"`
}

type errorResponse struct {
	Error string `json:"error"`
}
