// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"crash-map/internal/config"
	"crash-map/internal/crash"
	"crash-map/internal/logger"
	"crash-map/internal/metrics"
	"crash-map/internal/region"
	"crash-map/internal/selection"
)

// 绘制的选区顶点数有限，4MB 足够容纳任意手绘多边形
const maxSelectionBytes = 4 << 20

// Server：路由依赖
// 约束：数据集只读，可被并发请求共享；选区存储由入口按配置注入（Redis 或进程内）
type Server struct {
	ds         *crash.Dataset
	sel        selection.Store
	filter     config.FilterConfig
	sessionTTL time.Duration
}

func NewServer(ds *crash.Dataset, sel selection.Store, fc config.FilterConfig, sessionTTL time.Duration) *Server {
	return &Server{ds: ds, sel: sel, filter: fc, sessionTTL: sessionTTL}
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 API_BASE 前缀
func BuildRoutes(s *Server) *http.ServeMux {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /filters", s.handleFilters)
	apiMux.HandleFunc("GET /records", s.handleRecords)
	apiMux.HandleFunc("GET /records.geojson", s.handleRecordsGeoJSON)
	apiMux.HandleFunc("POST /select", s.handleSelect)
	apiMux.HandleFunc("GET /select", s.handleReselect)
	apiMux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": s.ds.Len()})
	})
	return apiMux
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("filters").Inc()
	res := filtersResponse{Years: s.ds.Years(), Severities: s.ds.Severities()}
	if res.Years == nil {
		res.Years = []int{}
	}
	if res.Severities == nil {
		res.Severities = []string{}
	}
	respondWithJSON(w, http.StatusOK, res)
}

// 侧边栏过滤后的记录预览；total 为过滤后的全量条数（"Showing N crashes"），records 按 limit 截断
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("records").Inc()
	q := r.URL.Query()
	c, err := parseCriteria(q)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseLimit(q, s.filter.PreviewLimit)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs := s.ds.Filter(c)
	res := recordsResponse{Total: len(recs), Records: head(recs, limit)}
	if pt, ok := crash.Center(recs); ok {
		res.Center = &latLon{Lat: pt.Lat, Lon: pt.Lon}
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) handleRecordsGeoJSON(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("records_geojson").Inc()
	c, err := parseCriteria(r.URL.Query())
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := json.Marshal(crash.FeatureCollection(s.ds.Filter(c)))
	if err != nil {
		logger.L().Error("geojson_encode_error", "err", err)
		respondWithError(w, http.StatusInternalServerError, "encode failed")
		return
	}
	w.Header().Set("content-type", "application/geo+json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_, _ = w.Write(b)
}

// 文档注释：提交新绘制的选区
// 背景：地图每次绘制完成回传一次；按当前侧边栏条件过滤后再做区域判定，并记住该会话的选区。
// 约束：选区非法时返回 200 与 valid=false（空选择），不作为请求错误；只有请求本身不合法才返回 4xx。
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("select").Inc()
	metrics.SelectRequestsTotal.Inc()
	q := r.URL.Query()
	c, err := parseCriteria(q)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseLimit(q, s.filter.PreviewLimit)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSelectionBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "selection too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "read body failed")
		return
	}
	session := selection.SessionID(w, r, s.sessionTTL)
	// 语法合法即记住，包括退化选区，使重新应用时与最后一次绘制一致
	if json.Valid(body) {
		if err := s.sel.Save(r.Context(), session, body); err != nil {
			metrics.SelectionStoreErrorsTotal.WithLabelValues("save").Inc()
			logger.L().Error("selection_save_error", "err", err)
		}
	}
	rg, err := decodeSelection(body)
	s.writeSelection(w, s.ds.Filter(c), rg, err, limit)
}

// 重新应用会话记住的选区（页面刷新或侧边栏变化后）
// 约束：无会话、无选区或读取失败均视为未绘制，返回空选择
func (s *Server) handleReselect(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("reselect").Inc()
	q := r.URL.Query()
	c, err := parseCriteria(q)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseLimit(q, s.filter.PreviewLimit)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	notDrawn := selectResponse{Records: []crash.Record{}}
	session, ok := selection.PeekSessionID(r)
	if !ok {
		respondWithJSON(w, http.StatusOK, notDrawn)
		return
	}
	body, ok, err := s.sel.Load(r.Context(), session)
	if err != nil {
		metrics.SelectionStoreErrorsTotal.WithLabelValues("load").Inc()
		logger.L().Error("selection_load_error", "err", err)
	}
	if !ok {
		respondWithJSON(w, http.StatusOK, notDrawn)
		return
	}
	rg, err := decodeSelection(body)
	s.writeSelection(w, s.ds.Filter(c), rg, err, limit)
}

func (s *Server) writeSelection(w http.ResponseWriter, recs []crash.Record, rg region.Region, shapeErr error, limit int) {
	if shapeErr != nil {
		reason := reasonLabel(shapeErr)
		metrics.InvalidShapesTotal.WithLabelValues(reason).Inc()
		logger.L().Debug("select_invalid_shape", "reason", reason, "err", shapeErr)
		respondWithJSON(w, http.StatusOK, selectResponse{Drawn: true, Reason: shapeErr.Error(), Records: []crash.Record{}})
		return
	}
	selected := s.applyRegion(recs, rg)
	metrics.SelectedRecords.Observe(float64(len(selected)))
	logger.L().Debug("select_done", "candidates", len(recs), "selected", len(selected))
	respondWithJSON(w, http.StatusOK, selectResponse{Valid: true, Drawn: true, Count: len(selected), Records: head(selected, limit)})
}

// applyRegion：记录数超过阈值时分片并行判定，结果与顺序判定一致
func (s *Server) applyRegion(recs []crash.Record, rg region.Region) []crash.Record {
	start := time.Now()
	var out []crash.Record
	if s.filter.Workers > 1 && s.filter.ParallelMin > 0 && len(recs) >= s.filter.ParallelMin {
		out = region.FilterParallel(recs, rg, s.filter.Workers)
	} else {
		out = region.Filter(recs, rg)
	}
	metrics.FilterDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	return out
}

func head(recs []crash.Record, limit int) []crash.Record {
	if recs == nil {
		return []crash.Record{}
	}
	if len(recs) > limit {
		return recs[:limit]
	}
	return recs
}

func respondWithJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondWithError(w http.ResponseWriter, status int, msg string) {
	respondWithJSON(w, status, errorResponse{Error: msg})
}
