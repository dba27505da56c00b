package region

import "golang.org/x/sync/errgroup"

// Located：可参与区域过滤的记录
type Located interface {
	Coord() Point
}

// usable 判断 Region 能否参与判定；未经 Checked 的非法 Shape 同样视为空选区
func usable(r Region) bool {
	switch v := r.(type) {
	case nil, Nothing:
		return false
	case *Shape:
		return v.Validate() == nil
	}
	return true
}

// 文档注释：区域过滤
// 背景：对每条记录做一次包含判定，返回命中子集；绘制一次选区调用一次。
// 约束：纯函数，不修改输入；保持原有相对顺序；空输入返回空切片（非 nil）；非法选区返回空切片。
func Filter[T Located](records []T, r Region) []T {
	if !usable(r) {
		return make([]T, 0)
	}
	return filterAll(records, r)
}

func filterAll[T Located](records []T, r Region) []T {
	out := make([]T, 0)
	for _, rec := range records {
		if r.Contains(rec.Coord()) {
			out = append(out, rec)
		}
	}
	return out
}

// 文档注释：分片并行过滤
// 背景：记录量较大时将切片按连续区间分片并发判定，再按分片顺序拼接，结果与 Filter 一致。
// 约束：workers<=1 或记录过少时退化为 Filter；Region 实现需可并发调用。
func FilterParallel[T Located](records []T, r Region, workers int) []T {
	if !usable(r) {
		return make([]T, 0)
	}
	if workers <= 1 || len(records) < 2*workers {
		return filterAll(records, r)
	}
	size := (len(records) + workers - 1) / workers
	parts := make([][]T, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * size
		if lo >= len(records) {
			break
		}
		hi := min(lo+size, len(records))
		g.Go(func() error {
			parts[w] = filterAll(records[lo:hi], r)
			return nil
		})
	}
	g.Wait()
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
