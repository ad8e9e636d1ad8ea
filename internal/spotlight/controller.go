package spotlight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"counties/internal/country"
	"counties/internal/logger"
	"counties/internal/metrics"
)

// ErrSuperseded：查询被更新的查询取代
var ErrSuperseded = errors.New("search superseded by a newer query")

// Filter：结果范围
type Filter int

const (
	AllCounties Filter = iota
	FavouritesOnly
)

func (f Filter) String() string {
	if f == FavouritesOnly {
		return "favourites"
	}
	return "all"
}

// ParseFilter：all（或空）/ favourites
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AllCounties, nil
	case "favourites", "favorites":
		return FavouritesOnly, nil
	}
	return AllCounties, fmt.Errorf("unknown filter %q", s)
}

// Query：搜索框文本与范围
type Query struct {
	Text   string
	Filter Filter
}

// FavouritesSource：收藏列表来源
type FavouritesSource interface {
	Counties(ctx context.Context) []country.County
}

// Dispatcher：把完成回调投递到调用方指定的执行环境（例如事件循环）
type Dispatcher func(fn func())

// Immediate：在搜索 goroutine 上直接执行
func Immediate(fn func()) { fn() }

type Option func(*Controller)

func WithDispatcher(d Dispatcher) Option {
	return func(c *Controller) {
		if d != nil {
			c.dispatch = d
		}
	}
}

// Controller：搜索控制器；同一时刻只有一个活动查询
// 约束：新查询取消旧查询并清空结果；被取代的查询永远不会调用 completion
type Controller struct {
	country    *country.Country
	index      Index
	favourites FavouritesSource
	dispatch   Dispatcher
	log        *slog.Logger

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	running bool
	results []country.County
}

type run struct {
	done chan struct{}
	err  error
}

func NewController(c *country.Country, idx Index, fav FavouritesSource, opts ...Option) *Controller {
	ctl := &Controller{country: c, index: idx, favourites: fav, dispatch: Immediate, log: logger.Component("spotlight")}
	for _, o := range opts {
		o(ctl)
	}
	return ctl
}

// Search：开始新查询；完成后经 Dispatcher 调用一次 completion
func (c *Controller) Search(q Query, completion func([]country.County)) {
	c.start(q, completion, true)
}

// SearchAndWait：开始新查询并等待结果
// 返回：被取代时 ErrSuperseded；ctx 结束时取消查询并返回 ctx.Err()
func (c *Controller) SearchAndWait(ctx context.Context, q Query) ([]country.County, error) {
	var out []country.County
	r, gen := c.start(q, func(res []country.County) { out = res }, false)
	select {
	case <-r.done:
		if r.err != nil {
			return nil, r.err
		}
		return out, nil
	case <-ctx.Done():
		c.cancelGen(gen)
		return nil, ctx.Err()
	}
}

// Results：当前查询已收到的结果（可能不完整）
func (c *Controller) Results() []country.County {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]country.County(nil), c.results...)
}

// Cancel：取消活动查询并清空结果；等待中的 SearchAndWait 返回 ErrSuperseded
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.running = false
	c.results = nil
}

func (c *Controller) cancelGen(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen && c.cancel != nil {
		c.cancel()
		c.cancel = nil
		c.running = false
	}
}

func (c *Controller) start(q Query, completion func([]country.County), dispatch bool) (*run, uint64) {
	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	if c.cancel != nil {
		if c.running {
			metrics.SearchSupersededTotal.Inc()
		}
		c.cancel()
	}
	c.gen++
	gen := c.gen
	c.cancel = cancel
	c.running = true
	c.results = nil
	c.mu.Unlock()

	metrics.SearchQueriesTotal.WithLabelValues(q.Filter.String()).Inc()
	r := &run{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		defer cancel()
		res, err := c.execute(ctx, gen, q)
		if err != nil {
			r.err = err
			return
		}
		if completion == nil {
			return
		}
		if dispatch {
			c.dispatch(func() { completion(res) })
			return
		}
		completion(res)
	}()
	return r, gen
}

func (c *Controller) execute(ctx context.Context, gen uint64, q Query) ([]country.County, error) {
	var favs map[string]struct{}
	var base []country.County
	if q.Filter == FavouritesOnly {
		if c.favourites != nil {
			base = c.favourites.Counties(ctx)
		}
		favs = make(map[string]struct{}, len(base))
		for _, f := range base {
			favs[f.Name] = struct{}{}
		}
	} else {
		base = c.country.AllCounties()
	}

	if strings.TrimSpace(q.Text) == "" {
		c.mu.Lock()
		if c.gen == gen {
			c.results = append([]country.County(nil), base...)
		}
		c.mu.Unlock()
	} else {
		err := c.index.Search(ctx, BuildTitleQueryString(q.Text), func(ids []string) {
			batch := make([]country.County, 0, len(ids))
			for _, id := range ids {
				cty, ok := c.country.CountyByID(id)
				if !ok {
					continue
				}
				if favs != nil {
					if _, ok := favs[cty.Name]; !ok {
						continue
					}
				}
				batch = append(batch, cty)
			}
			c.mu.Lock()
			if c.gen == gen {
				c.results = append(c.results, batch...)
			}
			c.mu.Unlock()
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, c.cancelledErr(ctx, gen)
			}
			c.log.Error("spotlight_search_error", "query", q.Text, "err", err)
			c.mu.Lock()
			if c.gen == gen {
				c.running = false
			}
			c.mu.Unlock()
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return nil, ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.running = false
	res := append([]country.County(nil), c.results...)
	country.SortCounties(res)
	c.results = res
	return append([]country.County(nil), res...), nil
}

func (c *Controller) cancelledErr(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return ErrSuperseded
	}
	return ctx.Err()
}
