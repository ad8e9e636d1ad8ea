package layout

import "strings"

// ContentSizeCategory：用户的首选字号类别
type ContentSizeCategory string

const (
	ExtraSmall                        ContentSizeCategory = "extraSmall"
	Small                             ContentSizeCategory = "small"
	Medium                            ContentSizeCategory = "medium"
	Large                             ContentSizeCategory = "large"
	ExtraLarge                        ContentSizeCategory = "extraLarge"
	ExtraExtraLarge                   ContentSizeCategory = "extraExtraLarge"
	ExtraExtraExtraLarge              ContentSizeCategory = "extraExtraExtraLarge"
	AccessibilityMedium               ContentSizeCategory = "accessibilityMedium"
	AccessibilityLarge                ContentSizeCategory = "accessibilityLarge"
	AccessibilityExtraLarge           ContentSizeCategory = "accessibilityExtraLarge"
	AccessibilityExtraExtraLarge      ContentSizeCategory = "accessibilityExtraExtraLarge"
	AccessibilityExtraExtraExtraLarge ContentSizeCategory = "accessibilityExtraExtraExtraLarge"
)

// DefaultContentSizeCategory：未知类别按此取值
const DefaultContentSizeCategory = Large

// TableMetrics：表格样式的尺寸
type TableMetrics struct {
	CellHeight                      float64 `json:"cell_height"`
	SectionHeaderFontSize           float64 `json:"section_header_font_size"`
	SectionHeaderHeight             float64 `json:"section_header_height"`
	SectionHeaderLabelBottomPadding float64 `json:"section_header_label_bottom_padding"`
}

var tableMetrics = map[ContentSizeCategory]TableMetrics{
	ExtraSmall:                        {44, 12, 32, 6},
	Small:                             {44, 12, 32, 6},
	Medium:                            {44, 12, 32, 6},
	Large:                             {44, 13, 38, 7},
	ExtraLarge:                        {48, 15, 44, 8},
	ExtraExtraLarge:                   {52, 17, 50, 8},
	ExtraExtraExtraLarge:              {58, 19, 56, 9},
	AccessibilityMedium:               {69, 23, 72, 11},
	AccessibilityLarge:                {81, 27, 84, 11},
	AccessibilityExtraLarge:           {97, 33, 105, 14},
	AccessibilityExtraExtraLarge:      {114, 38, 124, 17},
	AccessibilityExtraExtraExtraLarge: {127, 44, 142, 18},
}

// ParseContentSizeCategory：大小写不敏感；未知值返回 DefaultContentSizeCategory 与 false
func ParseContentSizeCategory(s string) (ContentSizeCategory, bool) {
	for c := range tableMetrics {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return DefaultContentSizeCategory, false
}

// Known：是否为已知类别
func (c ContentSizeCategory) Known() bool {
	_, ok := tableMetrics[c]
	return ok
}

// IsAccessibility：辅助功能字号类别
func (c ContentSizeCategory) IsAccessibility() bool {
	return strings.HasPrefix(string(c), "accessibility") && c.Known()
}

// MetricsFor：按字号类别取表格尺寸；未知类别使用 DefaultContentSizeCategory
func MetricsFor(c ContentSizeCategory) TableMetrics {
	if m, ok := tableMetrics[c]; ok {
		return m
	}
	return tableMetrics[DefaultContentSizeCategory]
}

// SectionBottomPadding：最后一个分区 38，其余 18
func SectionBottomPadding(last bool) float64 {
	if last {
		return 38
	}
	return 18
}

// LeadingSeparatorInset：辅助功能字号下分隔线从布局边距开始，否则再加上单元内容缩进
func LeadingSeparatorInset(c ContentSizeCategory, leadingMargin, contentInset float64) float64 {
	if !c.Known() {
		c = DefaultContentSizeCategory
	}
	if c.IsAccessibility() {
		return leadingMargin
	}
	return leadingMargin + contentInset
}

// RGBA：0..1 颜色分量
type RGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// SectionHeaderTextColour：分区标题文字颜色，随浅色/深色外观变化
func SectionHeaderTextColour(dark bool) RGBA {
	if dark {
		return RGBA{0.56, 0.56, 0.58, 1}
	}
	return RGBA{0.43, 0.43, 0.45, 1}
}
