package api

import (
	"net/http"

	"counties/internal/country"
	"counties/internal/logger"
)

func (s *server) listFavourites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewsOf(s.Favourites.Counties(r.Context())))
}

// favouriteRegions：按区域分组的收藏，空区域不返回
func (s *server) favouriteRegions(w http.ResponseWriter, r *http.Request) {
	favs := s.Favourites.Counties(r.Context())
	writeJSON(w, http.StatusOK, regionsOf(country.FilterRegions(s.Country.Regions, favs)))
}

func (s *server) addFavourite(w http.ResponseWriter, r *http.Request) {
	s.changeFavourite(w, r, "add")
}

func (s *server) removeFavourite(w http.ResponseWriter, r *http.Request) {
	s.changeFavourite(w, r, "remove")
}

// 文档注释：新增或移除收藏
// 约束：重复新增、移除不存在的收藏均为 200 且 changed=false；存储写入失败返回 502。
func (s *server) changeFavourite(w http.ResponseWriter, r *http.Request, op string) {
	c, err := s.countyFromPath(r)
	if err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	var changed bool
	if op == "add" {
		changed, err = s.Favourites.Add(r.Context(), c)
	} else {
		changed, err = s.Favourites.Remove(r.Context(), c)
	}
	if err != nil {
		logger.L().Error("favourites_write_error", "op", op, "county", c.Name, "err", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"changed":    changed,
		"favourites": viewsOf(s.Favourites.Counties(r.Context())),
	})
}

func (s *server) syncFavourites(w http.ResponseWriter, r *http.Request) {
	if err := s.Favourites.Synchronise(r.Context()); err != nil {
		logger.L().Error("favourites_sync_error", "err", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
