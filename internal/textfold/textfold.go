// 包 textfold：忽略大小写与变音符比较所需的文本规范化
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// 文档注释：去除变音符
// 背景：NFD 分解后删除组合记号再 NFC 合成，例如 "Ynys Môn" -> "Ynys Mon"。
// 约束：转换失败时原样返回。
func StripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold：小写并去除变音符
func Fold(s string) string { return strings.ToLower(StripMarks(s)) }

// Words：按非字母数字切分
func Words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
}
