package api

import (
	"fmt"
	"net/http"

	"counties/internal/country"
	"counties/internal/handoff"
)

// countyView：对外的县结构，附带人口描述
type countyView struct {
	country.County
	PopulationDescription string `json:"population_description"`
}

type countyDetail struct {
	countyView
	Favourite bool `json:"favourite"`
}

type regionView struct {
	Name     string       `json:"name"`
	Counties []countyView `json:"counties"`
}

func viewOf(c country.County) countyView {
	return countyView{County: c, PopulationDescription: c.PopulationDescription()}
}

func viewsOf(cs []country.County) []countyView {
	out := make([]countyView, 0, len(cs))
	for _, c := range cs {
		out = append(out, viewOf(c))
	}
	return out
}

func regionsOf(rs []country.Region) []regionView {
	out := make([]regionView, 0, len(rs))
	for _, r := range rs {
		out = append(out, regionView{Name: r.Name, Counties: viewsOf(r.Counties)})
	}
	return out
}

// countyFromPath：路径参数优先按 ID 查找，其次按名称
func (s *server) countyFromPath(r *http.Request) (country.County, error) {
	id := r.PathValue("id")
	if c, ok := s.Country.CountyByID(id); ok {
		return c, nil
	}
	if c, ok := s.Country.County(id); ok {
		return c, nil
	}
	return country.County{}, fmt.Errorf("%w: %q", country.ErrCountyNotFound, id)
}

func (s *server) getCountry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    s.Country.Name,
		"regions": regionsOf(s.Country.Regions),
	})
}

func (s *server) listCounties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewsOf(s.Country.AllCounties()))
}

func (s *server) getCounty(w http.ResponseWriter, r *http.Request) {
	c, err := s.countyFromPath(r)
	if err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, countyDetail{countyView: viewOf(c), Favourite: s.Favourites.Contains(r.Context(), c)})
}

// getCountyActivity：?type=search_item 时返回搜索结果打开形式，默认返回详情活动
func (s *server) getCountyActivity(w http.ResponseWriter, r *http.Request) {
	c, err := s.countyFromPath(r)
	if err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	switch r.URL.Query().Get("type") {
	case "", "county":
		writeJSON(w, http.StatusOK, handoff.CountyActivity(c))
	case "search_item":
		writeJSON(w, http.StatusOK, handoff.SearchItemActivity(c))
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: unknown activity type %q", errBadRequest, r.URL.Query().Get("type")))
	}
}

// viewCounty：记录一次浏览并返回新的最近浏览列表
func (s *server) viewCounty(w http.ResponseWriter, r *http.Request) {
	c, err := s.countyFromPath(r)
	if err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	recent := s.History.Viewed(c)
	writeJSON(w, http.StatusOK, map[string]any{"recent": viewsOf(recent)})
}

func (s *server) getHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"recent": viewsOf(s.History.Recent())})
}
