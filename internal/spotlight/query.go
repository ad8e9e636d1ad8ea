package spotlight

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"counties/internal/textfold"
)

// AnyAttribute：匹配任意文本属性（标题或描述）
const AnyAttribute = "**"

// TitleAttribute：只匹配标题（县名）
const TitleAttribute = "title"

var ErrBadQuery = errors.New("bad query string")

// EscapeQueryString：转义用户输入中的 \ 与 "
func EscapeQueryString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// BuildQueryString：文本 -> 任意属性查询串，例如 Kent -> **="Kent*"cwdt
func BuildQueryString(text string) string { return buildQuery(AnyAttribute, text) }

// BuildTitleQueryString：同上，但只匹配县名，例如 Kent -> title="Kent*"cwdt；搜索框使用此形式
func BuildTitleQueryString(text string) string { return buildQuery(TitleAttribute, text) }

func buildQuery(attr, text string) string {
	return attr + `="` + EscapeQueryString(text) + `*"cwdt`
}

// Clause：单条 attribute="value"modifiers 查询
// 约束：Value 已反转义，其中的 * 为通配符
type Clause struct {
	Attribute            string
	Value                string
	CaseInsensitive      bool
	DiacriticInsensitive bool
	WordBased            bool
	Tokenized            bool
}

// 文档注释：解析查询串
// 语法：attribute="value"modifiers；attribute 取 **、title、description；value 内 \\ 与 \" 为转义；
// modifiers 为 c（忽略大小写）、d（忽略变音符）、w（从任一词首匹配）、t（按空白分词，逐词匹配）。
func ParseQuery(q string) (Clause, error) {
	var cl Clause
	eq := strings.IndexByte(q, '=')
	if eq <= 0 {
		return cl, fmt.Errorf("%w: missing attribute", ErrBadQuery)
	}
	cl.Attribute = strings.TrimSpace(q[:eq])
	switch cl.Attribute {
	case AnyAttribute, TitleAttribute, "description":
	default:
		return cl, fmt.Errorf("%w: unknown attribute %q", ErrBadQuery, cl.Attribute)
	}
	rest := q[eq+1:]
	if !strings.HasPrefix(rest, `"`) {
		return cl, fmt.Errorf("%w: value must be quoted", ErrBadQuery)
	}
	var b strings.Builder
	i, closed := 1, false
	for i < len(rest) {
		ch := rest[i]
		if ch == '\\' {
			if i+1 >= len(rest) {
				return cl, fmt.Errorf("%w: dangling escape", ErrBadQuery)
			}
			b.WriteByte(rest[i+1])
			i += 2
			continue
		}
		if ch == '"' {
			closed = true
			i++
			break
		}
		b.WriteByte(ch)
		i++
	}
	if !closed {
		return cl, fmt.Errorf("%w: unterminated value", ErrBadQuery)
	}
	cl.Value = b.String()
	for _, m := range rest[i:] {
		switch m {
		case 'c':
			cl.CaseInsensitive = true
		case 'd':
			cl.DiacriticInsensitive = true
		case 'w':
			cl.WordBased = true
		case 't':
			cl.Tokenized = true
		default:
			return cl, fmt.Errorf("%w: unknown modifier %q", ErrBadQuery, m)
		}
	}
	return cl, nil
}

func (cl Clause) normalize(s string) string {
	if cl.CaseInsensitive {
		s = strings.ToLower(s)
	}
	if cl.DiacriticInsensitive {
		s = textfold.StripMarks(s)
	}
	return s
}

// Patterns：参与匹配的模式（已规范化）；分词模式下每个词一个
func (cl Clause) Patterns() []string {
	v := cl.normalize(cl.Value)
	if cl.Tokenized {
		return strings.Fields(v)
	}
	return []string{v}
}

// Match：文本是否满足本条查询
func (cl Clause) Match(text string) bool {
	text = cl.normalize(text)
	pats := cl.Patterns()
	if len(pats) == 0 {
		return false
	}
	for _, p := range pats {
		var ok bool
		if cl.WordBased || cl.Tokenized {
			ok = matchWords(p, text)
		} else {
			ok = glob(p, text)
		}
		if !ok {
			return false
		}
	}
	return true
}

// MatchItem：按 Attribute 选择字段后匹配
func (cl Clause) MatchItem(it Item) bool {
	switch cl.Attribute {
	case TitleAttribute:
		return cl.Match(it.Title)
	case "description":
		return cl.Match(it.Description)
	default:
		return cl.Match(it.Title) || cl.Match(it.Description)
	}
}

// matchWords：模式从某个词首开始、在某个词尾（或文本末尾）结束
func matchWords(pattern, text string) bool {
	rs := []rune(text)
	isWord := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }
	for p := range rs {
		if !isWord(rs[p]) || (p > 0 && isWord(rs[p-1])) {
			continue
		}
		for q := p + 1; q <= len(rs); q++ {
			if q < len(rs) && isWord(rs[q]) {
				continue
			}
			if glob(pattern, string(rs[p:q])) {
				return true
			}
		}
		if glob(pattern, string(rs[p:])) {
			return true
		}
	}
	return false
}

// glob：整串匹配，* 匹配任意长度
func glob(pattern, s string) bool {
	p, t := []rune(pattern), []rune(s)
	pi, ti := 0, 0
	star, mark := -1, 0
	for ti < len(t) {
		switch {
		case pi < len(p) && p[pi] == '*':
			star, mark = pi, ti
			pi++
		case pi < len(p) && p[pi] == t[ti]:
			pi++
			ti++
		case star >= 0:
			pi = star + 1
			mark++
			ti = mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
