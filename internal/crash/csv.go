package crash

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"crash-map/internal/logger"
)

// 数据集列名
const (
	ColID          = "Crash ID"
	ColYear        = "Reporting year"
	ColSeverity    = "Degree of crash - detailed"
	ColDescription = "RUM - description"
	ColLatitude    = "Latitude"
	ColLongitude   = "Longitude"
)

var ErrMissingColumn = errors.New("crash: missing required column")

// ReadStats：一次读取的行数统计
type ReadStats struct {
	Rows    int
	Dropped int
}

// 文档注释：读取事故 CSV
// 背景：按表头定位列；坐标缺失、无法解析或越界的行直接丢弃，不进入数据集，区域过滤不再重复校验。
// 约束：必需列为 Crash ID/Latitude/Longitude；其余已知列映射到字段，未知列原样保留在 Attrs。
// 异常：表头缺列返回 ErrMissingColumn；CSV 语法错误直接返回。
func ReadCSV(r io.Reader) ([]Record, ReadStats, error) {
	var st ReadStats
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, st, fmt.Errorf("crash: read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		idx[h] = i
	}
	for _, c := range []string{ColID, ColLatitude, ColLongitude} {
		if _, ok := idx[c]; !ok {
			return nil, st, fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
	}
	known := map[string]bool{ColID: true, ColYear: true, ColSeverity: true, ColDescription: true, ColLatitude: true, ColLongitude: true}
	get := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, st, fmt.Errorf("crash: read row %d: %w", st.Rows+1, err)
		}
		st.Rows++
		lat, e1 := strconv.ParseFloat(get(row, ColLatitude), 64)
		lon, e2 := strconv.ParseFloat(get(row, ColLongitude), 64)
		if e1 != nil || e2 != nil || !ValidCoord(lat, lon) {
			st.Dropped++
			continue
		}
		rec := Record{
			ID:          get(row, ColID),
			Lat:         lat,
			Lon:         lon,
			Year:        parseYear(get(row, ColYear)),
			Severity:    get(row, ColSeverity),
			Description: get(row, ColDescription),
		}
		for i, h := range header {
			if known[h] || i >= len(row) || row[i] == "" {
				continue
			}
			if rec.Attrs == nil {
				rec.Attrs = make(map[string]string)
			}
			rec.Attrs[h] = row[i]
		}
		out = append(out, rec)
	}
	return out, st, nil
}

// 年份列可能被导出为 "2019.0"
func parseYear(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// LoadCSV 打开文件读取并构建数据集
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("crash: open dataset: %w", err)
	}
	defer f.Close()
	recs, st, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}
	logger.L().Info("dataset_csv_read", "path", path, "rows", st.Rows, "kept", len(recs), "dropped", st.Dropped)
	return NewDataset(recs), nil
}
