package layout

import (
	"fmt"
	"strings"
)

// DisplayMetrics：宿主在启动时选定的显示环境
type DisplayMetrics struct {
	Host                Host
	SizeClass           SizeClass
	ContentSizeCategory ContentSizeCategory
	Scale               float64
	LeadingMargin       float64
	CellContentInset    float64
}

// 常用宿主预设
var (
	Phone  = DisplayMetrics{Host: TouchHost, SizeClass: Compact, ContentSizeCategory: Large, Scale: 3, LeadingMargin: 16, CellContentInset: 12}
	Tablet = DisplayMetrics{Host: TouchHost, SizeClass: Regular, ContentSizeCategory: Large, Scale: 2, LeadingMargin: 20, CellContentInset: 12}
	TV     = DisplayMetrics{Host: TVHost, SizeClass: Regular, ContentSizeCategory: Large, Scale: 1, LeadingMargin: 90, CellContentInset: 20}
	Watch  = DisplayMetrics{Host: TouchHost, SizeClass: Compact, ContentSizeCategory: Medium, Scale: 2, LeadingMargin: 4, CellContentInset: 4}
)

// Preset：按名称取预设（phone/tablet/tv/watch）
func Preset(name string) (DisplayMetrics, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "phone":
		return Phone, nil
	case "tablet":
		return Tablet, nil
	case "tv":
		return TV, nil
	case "watch":
		return Watch, nil
	}
	return DisplayMetrics{}, fmt.Errorf("unknown platform %q", name)
}

// SectionPlan：单个分区的布局
type SectionPlan struct {
	Items         int              `json:"items"`
	BottomPadding float64          `json:"bottom_padding"`
	Separators    []CellSeparators `json:"separators,omitempty"`
}

// Plan：完整布局结果
type Plan struct {
	Style            string        `json:"style"`
	Columns          int           `json:"columns"`
	ItemSize         Size          `json:"item_size"`
	Insets           Insets        `json:"insets"`
	LineSpacing      float64       `json:"line_spacing"`
	InteritemSpacing float64       `json:"interitem_spacing"`
	Table            *TableMetrics `json:"table,omitempty"`
	Sections         []SectionPlan `json:"sections"`
}

// 文档注释：计算列表布局
// 参数：width 为列表宽度；itemCounts 为各分区的单元数。
// 约束：表格样式附带表格尺寸与分隔线；网格样式没有分隔线，也不使用表格尺寸。
func Compute(m DisplayMetrics, width float64, itemCounts []int) Plan {
	style := StyleFor(m.SizeClass)
	p := Plan{
		Style:            style.String(),
		Columns:          m.Host.ColumnCount(style, width),
		ItemSize:         m.Host.ItemSize(style, width),
		Insets:           m.Host.EdgeInsets(style),
		LineSpacing:      m.Host.LineSpacing(style),
		InteritemSpacing: m.Host.InteritemSpacing,
		Sections:         make([]SectionPlan, 0, len(itemCounts)),
	}
	var inset float64
	if style == Table {
		tm := MetricsFor(m.ContentSizeCategory)
		p.Table = &tm
		p.InteritemSpacing = 0
		inset = LeadingSeparatorInset(m.ContentSizeCategory, m.LeadingMargin, m.CellContentInset)
	}
	for i, n := range itemCounts {
		if n < 0 {
			n = 0
		}
		p.Sections = append(p.Sections, SectionPlan{
			Items:         n,
			BottomPadding: SectionBottomPadding(i == len(itemCounts)-1),
			Separators:    Separators(style, n, -1, inset, m.Scale),
		})
	}
	return p
}
