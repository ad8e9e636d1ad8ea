package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"counties/internal/layout"
)

// 文档注释：计算列表布局
// 参数：platform（phone/tablet/tv/watch，缺省为服务默认环境）、width（必填）、items（逗号分隔的各分区单元数，
// 缺省为全部区域的县数）、size_class、content_size 覆盖预设值。
// 约束：未知的 content_size 按 large 计算，不视为错误。
func (s *server) layoutPlan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m := s.Display
	if p := q.Get("platform"); p != "" {
		var err error
		if m, err = layout.Preset(p); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if v := q.Get("size_class"); v != "" {
		sc, err := layout.ParseSizeClass(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		m.SizeClass = sc
	}
	if v := q.Get("content_size"); v != "" {
		m.ContentSizeCategory, _ = layout.ParseContentSizeCategory(v)
	}
	width, err := strconv.ParseFloat(q.Get("width"), 64)
	if err != nil || width <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: bad width %q", errBadRequest, q.Get("width")))
		return
	}
	counts, err := parseCounts(q.Get("items"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if counts == nil {
		for _, reg := range s.Country.Regions {
			counts = append(counts, len(reg.Counties))
		}
	}
	writeJSON(w, http.StatusOK, layout.Compute(m, width, counts))
}

func parseCounts(v string) ([]int, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	parts := strings.Split(v, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad item count %q", errBadRequest, p)
		}
		out = append(out, n)
	}
	return out, nil
}
