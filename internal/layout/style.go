// 包 layout：县列表的响应式布局（网格/表格）与表格尺寸度量
package layout

import (
	"fmt"
	"math"
	"strings"
)

// SizeClass：水平尺寸类别
type SizeClass int

const (
	Compact SizeClass = iota
	Regular
)

func (s SizeClass) String() string {
	if s == Regular {
		return "regular"
	}
	return "compact"
}

func ParseSizeClass(s string) (SizeClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compact":
		return Compact, nil
	case "regular":
		return Regular, nil
	}
	return Compact, fmt.Errorf("unknown size class %q", s)
}

// Style：列表的展示样式
type Style int

const (
	Table Style = iota
	Grid
)

func (s Style) String() string {
	if s == Grid {
		return "grid"
	}
	return "table"
}

// StyleFor：regular -> 网格，其余 -> 表格
func StyleFor(sc SizeClass) Style {
	if sc == Regular {
		return Grid
	}
	return Table
}

type Insets struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TableRowHeight：表格样式下的单元高度
const TableRowHeight = 100

// Host：宿主能力，启动时选定，替代按平台的编译期分支
type Host struct {
	Name               string
	GridInsets         Insets
	EstimatedCellWidth float64
	InteritemSpacing   float64
}

var (
	TouchHost = Host{Name: "touch", GridInsets: Insets{Top: 8, Left: 24, Bottom: 8, Right: 24}, EstimatedCellWidth: 220, InteritemSpacing: 32}
	TVHost    = Host{Name: "tv", GridInsets: Insets{Top: 8, Left: 64, Bottom: 8, Right: 64}, EstimatedCellWidth: 320, InteritemSpacing: 48}
)

// EdgeInsets：网格使用宿主边距，表格无边距
func (h Host) EdgeInsets(s Style) Insets {
	if s == Grid {
		return h.GridInsets
	}
	return Insets{}
}

// LineSpacing：网格行距 48，表格 0
func (h Host) LineSpacing(s Style) float64 {
	if s == Grid {
		return 48
	}
	return 0
}

// ColumnCount：网格列数 floor(可用宽度/估计单元宽度)，至少 1；表格恒为 1
func (h Host) ColumnCount(s Style, width float64) int {
	if s != Grid {
		return 1
	}
	in := h.GridInsets
	avail := width - in.Left - in.Right
	n := int(math.Floor(avail / h.EstimatedCellWidth))
	if n < 1 {
		n = 1
	}
	return n
}

// 文档注释：单元尺寸
// 表格：宽度为整个列表宽度，高度 TableRowHeight。
// 网格：正方形，边长 floor((可用宽度 - (列数-1)*列间距) / 列数)；可用宽度不足时为 0。
func (h Host) ItemSize(s Style, width float64) Size {
	if s != Grid {
		return Size{Width: math.Max(width, 0), Height: TableRowHeight}
	}
	in := h.GridInsets
	avail := width - in.Left - in.Right
	n := float64(h.ColumnCount(s, width))
	side := math.Floor((avail - (n-1)*h.InteritemSpacing) / n)
	if side < 0 {
		side = 0
	}
	return Size{Width: side, Height: side}
}
