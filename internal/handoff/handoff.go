// 包 handoff：跨设备接续（用户活动）的编码与解析
package handoff

import (
	"errors"
	"fmt"

	"counties/internal/country"
	"counties/internal/logger"
)

// 活动类型
const (
	TypeCountyDetails     = "com.darjeeling.counties.handoff.countydetails"
	TypeSearchItem        = "com.apple.corespotlightitem"
	TypeQueryContinuation = "com.apple.corespotlightquerycontinuation"
)

// UserInfo 键
const (
	KeyCountyName   = "CountyName"
	KeyCountyID     = "CountyID"
	KeySearchItemID = "kCSSearchableItemActivityIdentifier"
	KeySearchQuery  = "kCSSearchQueryString"
)

var (
	ErrUnhandledActivity = errors.New("unhandled activity type")
	ErrUnknownCounty     = errors.New("activity does not name a known county")
	ErrMissingSearchText = errors.New("activity carries no search text")
)

// Activity：用户活动的可序列化形式
type Activity struct {
	Type       string            `json:"activity_type"`
	Title      string            `json:"title,omitempty"`
	UserInfo   map[string]string `json:"user_info,omitempty"`
	WebpageURL string            `json:"webpage_url,omitempty"`
}

// CountyActivity：正在查看某县详情
func CountyActivity(c country.County) Activity {
	return Activity{
		Type:       TypeCountyDetails,
		Title:      c.Name,
		UserInfo:   map[string]string{KeyCountyName: c.Name, KeyCountyID: c.ID},
		WebpageURL: c.URL,
	}
}

// SearchItemActivity：从搜索结果打开某县
func SearchItemActivity(c country.County) Activity {
	return Activity{Type: TypeSearchItem, UserInfo: map[string]string{KeySearchItemID: c.ID}}
}

// QueryContinuationActivity：在应用内继续系统搜索
func QueryContinuationActivity(text string) Activity {
	return Activity{Type: TypeQueryContinuation, UserInfo: map[string]string{KeySearchQuery: text}}
}

type Kind int

const (
	KindCounty Kind = iota + 1
	KindSearchText
)

func (k Kind) String() string {
	switch k {
	case KindCounty:
		return "county"
	case KindSearchText:
		return "search_text"
	}
	return "unknown"
}

// Result：解析结果，Kind 决定 County 与 SearchText 哪个有效
type Result struct {
	Kind       Kind
	County     country.County
	SearchText string
}

// Router：把活动解析为要展示的县或要继续的搜索
type Router struct {
	country *country.Country
}

func NewRouter(c *country.Country) *Router { return &Router{country: c} }

// 文档注释：解析活动
// 约束：UserInfo 来自其他设备，属于不可信输入；县优先按 ID 查找，其次按名称。
func (r *Router) Resolve(a Activity) (Result, error) {
	var res Result
	switch a.Type {
	case TypeCountyDetails:
		c, ok := r.county(a.UserInfo[KeyCountyID], a.UserInfo[KeyCountyName])
		if !ok {
			return res, fmt.Errorf("%w: %v", ErrUnknownCounty, a.UserInfo)
		}
		res = Result{Kind: KindCounty, County: c}
	case TypeSearchItem:
		id := a.UserInfo[KeySearchItemID]
		c, ok := r.county(id, id)
		if !ok {
			return res, fmt.Errorf("%w: %q", ErrUnknownCounty, id)
		}
		res = Result{Kind: KindCounty, County: c}
	case TypeQueryContinuation:
		text, ok := a.UserInfo[KeySearchQuery]
		if !ok {
			return res, ErrMissingSearchText
		}
		res = Result{Kind: KindSearchText, SearchText: text}
	default:
		return res, fmt.Errorf("%w: %q", ErrUnhandledActivity, a.Type)
	}
	logger.L().Debug("handoff_resolved", "type", a.Type, "kind", res.Kind.String(), "county", res.County.Name)
	return res, nil
}

func (r *Router) county(id, name string) (country.County, bool) {
	if id != "" {
		if c, ok := r.country.CountyByID(id); ok {
			return c, true
		}
	}
	if name != "" {
		return r.country.County(name)
	}
	return country.County{}, false
}
