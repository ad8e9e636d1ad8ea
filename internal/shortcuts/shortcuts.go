// 包 shortcuts：应用快捷方式（固定的搜索项 + 最近浏览的县）
package shortcuts

import (
	"errors"
	"fmt"
	"sync"

	"counties/internal/country"
	"counties/internal/logger"
)

const (
	TypeSearch = "Search"
	TypeCounty = "CountyItem"
)

var (
	ErrUnknownShortcut = errors.New("unknown shortcut type")
	ErrUnknownCounty   = errors.New("shortcut does not name a known county")
)

// Item：快捷方式；County 类型的 Title 为县名，CountyID 为稳定键
type Item struct {
	Type     string `json:"type"`
	Title    string `json:"localized_title"`
	CountyID string `json:"county_id,omitempty"`
}

// SearchItem：固定的搜索快捷方式
var SearchItem = Item{Type: TypeSearch, Title: "Search"}

// Items：搜索项在前，随后每个最近浏览的县一项（保持历史顺序）
func Items(recent []country.County) []Item {
	out := make([]Item, 0, len(recent)+1)
	out = append(out, SearchItem)
	for _, c := range recent {
		out = append(out, Item{Type: TypeCounty, Title: c.Name, CountyID: c.ID})
	}
	return out
}

type ActionKind int

const (
	ActionBeginSearch ActionKind = iota + 1
	ActionShowCounty
)

func (k ActionKind) String() string {
	switch k {
	case ActionBeginSearch:
		return "begin_search"
	case ActionShowCounty:
		return "show_county"
	}
	return "unknown"
}

// Action：执行快捷方式后的界面动作
type Action struct {
	Kind   ActionKind
	County country.County
}

// Performer：把快捷方式转换为动作
type Performer struct {
	country *country.Country
}

func NewPerformer(c *country.Country) *Performer { return &Performer{country: c} }

// Perform：Search -> 开始搜索；County -> 按 CountyID（其次 Title）查找并展示
// 约束：快捷方式可能在数据集更新后残留，查找失败返回 ErrUnknownCounty 而不是 panic
func (p *Performer) Perform(it Item) (Action, error) {
	switch it.Type {
	case TypeSearch:
		return Action{Kind: ActionBeginSearch}, nil
	case TypeCounty:
		if it.CountyID != "" {
			if c, ok := p.country.CountyByID(it.CountyID); ok {
				return Action{Kind: ActionShowCounty, County: c}, nil
			}
		}
		if c, ok := p.country.County(it.Title); ok {
			return Action{Kind: ActionShowCounty, County: c}, nil
		}
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownCounty, it.Title)
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownShortcut, it.Type)
}

// RecentSource：最近浏览列表及其变更通知（history.Tracker）
type RecentSource interface {
	Recent() []country.County
	OnUpdate(fn func([]country.County)) func()
}

// Publisher：随历史变化维护当前快捷方式列表
type Publisher struct {
	mu    sync.RWMutex
	items []Item
	stop  func()
}

func NewPublisher(src RecentSource) *Publisher {
	p := &Publisher{items: Items(src.Recent())}
	p.stop = src.OnUpdate(func(recent []country.County) {
		items := Items(recent)
		p.mu.Lock()
		p.items = items
		p.mu.Unlock()
		logger.L().Debug("shortcuts_updated", "count", len(items))
	})
	return p
}

// Items：当前快捷方式（副本）
func (p *Publisher) Items() []Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Item(nil), p.items...)
}

// Close：停止跟随历史变化
func (p *Publisher) Close() { p.stop() }
