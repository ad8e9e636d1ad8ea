// 包 country：县级数据模型与内置数据集（United Kingdom）
package country

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"counties/internal/textfold"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed data/united_kingdom.json
var unitedKingdomJSON []byte

var ErrCountyNotFound = errors.New("county not found")

// Population：人口记录，Source 为统计来源地址
type Population struct {
	Total  int64  `json:"total"`
	Year   int    `json:"year"`
	Source string `json:"source"`
}

// Location：WGS84 坐标
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// County：单个县，加载后不可变；相等与排序均按 Name
// 约束：ID 为稳定键，数据未提供时由名称派生（见 Slug）
type County struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Population Population `json:"population"`
	Location   Location   `json:"location"`
	URL        string     `json:"url"`
}

// Less：按名称排序
func (c County) Less(o County) bool { return c.Name < o.Name }

// Equal：按名称判等
func (c County) Equal(o County) bool { return c.Name == o.Name }

var populationPrinter = message.NewPrinter(language.BritishEnglish)

// PopulationDescription：例如 "Population: 1,846,000 (2019)"
func (c County) PopulationDescription() string {
	return "Population: " + populationPrinter.Sprintf("%d", c.Population.Total) + " (" + strconv.Itoa(c.Population.Year) + ")"
}

// Region：县的命名分组
type Region struct {
	Name     string   `json:"name"`
	Counties []County `json:"counties"`
}

// Country：区域有序列表；由 Decode/Load 构造后只读，可并发读取
type Country struct {
	Name    string   `json:"name"`
	Regions []Region `json:"regions"`

	byName map[string]int
	byID   map[string]int
	all    []County
}

// Decode：解析 JSON 数据集并建立名称/ID 索引
// 约束：名称为空、名称重复、ID 重复、地址非法均视为数据错误
func Decode(r io.Reader) (*Country, error) {
	var c Country
	dec := json.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode country: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load：从文件读取数据集
func Load(path string) (*Country, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

var unitedKingdom = sync.OnceValue(func() *Country {
	c, err := Decode(bytes.NewReader(unitedKingdomJSON))
	if err != nil {
		panic("bundled united kingdom dataset: " + err.Error())
	}
	return c
})

// UnitedKingdom：内置数据集，首次调用时解析；解析失败属于构建缺陷，直接 panic
func UnitedKingdom() *Country { return unitedKingdom() }

func (c *Country) index() error {
	c.byName = make(map[string]int)
	c.byID = make(map[string]int)
	c.all = c.all[:0]
	for ri := range c.Regions {
		reg := &c.Regions[ri]
		if strings.TrimSpace(reg.Name) == "" {
			return fmt.Errorf("region %d: empty name", ri)
		}
		for ci := range reg.Counties {
			cty := &reg.Counties[ci]
			if strings.TrimSpace(cty.Name) == "" {
				return fmt.Errorf("region %q county %d: empty name", reg.Name, ci)
			}
			if cty.ID == "" {
				cty.ID = Slug(cty.Name)
			}
			if _, dup := c.byName[cty.Name]; dup {
				return fmt.Errorf("duplicate county name %q", cty.Name)
			}
			if _, dup := c.byID[cty.ID]; dup {
				return fmt.Errorf("duplicate county id %q", cty.ID)
			}
			if err := checkURL(cty.URL); err != nil {
				return fmt.Errorf("county %q url: %w", cty.Name, err)
			}
			if err := checkURL(cty.Population.Source); err != nil {
				return fmt.Errorf("county %q population source: %w", cty.Name, err)
			}
			c.byName[cty.Name] = len(c.all)
			c.byID[cty.ID] = len(c.all)
			c.all = append(c.all, *cty)
		}
	}
	return nil
}

func checkURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("not absolute: %q", s)
	}
	return nil
}

// County：按名称查找；名称来自不可信输入时使用
func (c *Country) County(name string) (County, bool) {
	i, ok := c.byName[name]
	if !ok {
		return County{}, false
	}
	return c.all[i], true
}

// CountyByID：按稳定键查找
func (c *Country) CountyByID(id string) (County, bool) {
	i, ok := c.byID[id]
	if !ok {
		return County{}, false
	}
	return c.all[i], true
}

// Lookup：按名称查找，未命中返回 ErrCountyNotFound
func (c *Country) Lookup(name string) (County, error) {
	if cty, ok := c.County(name); ok {
		return cty, nil
	}
	return County{}, fmt.Errorf("%w: %q", ErrCountyNotFound, name)
}

// MustCounty：内置数据内部查找，未命中说明数据集与调用方不一致，直接 panic
func (c *Country) MustCounty(name string) County {
	cty, ok := c.County(name)
	if !ok {
		panic("country " + c.Name + ": no county named " + name)
	}
	return cty
}

// AllCounties：全部县，按名称排序（返回副本）
func (c *Country) AllCounties() []County {
	out := append([]County(nil), c.all...)
	SortCounties(out)
	return out
}

// SortCounties：按名称原地排序
func SortCounties(cs []County) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Less(cs[j]) })
}

// Names：提取名称列表，顺序不变
func Names(cs []County) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

// Index：返回 name 在 cs 中的位置，不存在为 -1
func Index(cs []County, name string) int {
	for i, c := range cs {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// FilterRegions：仅保留 counties 中出现的县（区域内按名称排序），并剔除因此变空的区域
func FilterRegions(regions []Region, counties []County) []Region {
	keep := make(map[string]struct{}, len(counties))
	for _, c := range counties {
		keep[c.Name] = struct{}{}
	}
	var out []Region
	for _, r := range regions {
		var cs []County
		for _, c := range r.Counties {
			if _, ok := keep[c.Name]; ok {
				cs = append(cs, c)
			}
		}
		if len(cs) == 0 {
			continue
		}
		SortCounties(cs)
		out = append(out, Region{Name: r.Name, Counties: cs})
	}
	return out
}

// Slug：由名称派生稳定键，"Tyne and Wear" -> "tyne-and-wear"
func Slug(name string) string {
	return strings.Join(textfold.Words(textfold.Fold(name)), "-")
}
