package layout

// SectionPosition：单元在分区中的位置
type SectionPosition int

const (
	SingleItem SectionPosition = iota
	First
	Middle
	Last
)

func (p SectionPosition) String() string {
	switch p {
	case First:
		return "first"
	case Middle:
		return "middle"
	case Last:
		return "last"
	}
	return "single_item"
}

// PositionFor：item 为分区内下标，count 为分区单元数
func PositionFor(item, count int) SectionPosition {
	switch {
	case item == 0 && count == 1:
		return SingleItem
	case item == 0:
		return First
	case item == count-1:
		return Last
	}
	return Middle
}

// SeparatorWeight：一个物理像素，1/scale；scale 非法时按 1
func SeparatorWeight(scale float64) float64 {
	if scale <= 0 {
		scale = 1
	}
	return 1 / scale
}

// CellSeparators：单元的分隔线
type CellSeparators struct {
	Position    SectionPosition `json:"-"`
	Top         bool            `json:"top"`
	Bottom      bool            `json:"bottom"`
	BottomInset float64         `json:"bottom_inset"`
	Weight      float64         `json:"weight"`
}

// 文档注释：计算一个分区的分隔线
// 背景：首项画顶线；首项与中间项画带前导缩进的底线（下一项高亮时省略）；末项与单项画无缩进底线；
// 高亮项不画任何分隔线。highlighted 为 -1 表示无高亮。网格样式没有分隔线，返回 nil。
func Separators(s Style, count, highlighted int, leadingInset, scale float64) []CellSeparators {
	if s != Table || count <= 0 {
		return nil
	}
	w := SeparatorWeight(scale)
	out := make([]CellSeparators, count)
	for i := range out {
		pos := PositionFor(i, count)
		cs := CellSeparators{Position: pos, Weight: w}
		if i != highlighted {
			switch pos {
			case First, Middle:
				cs.Top = pos == First
				if i+1 != highlighted {
					cs.Bottom = true
					cs.BottomInset = leadingInset
				}
			case Last:
				cs.Bottom = true
			case SingleItem:
				cs.Top = true
				cs.Bottom = true
			}
		}
		out[i] = cs
	}
	return out
}
