package api

import (
	"net/http"

	"counties/internal/handoff"
	"counties/internal/shortcuts"
)

// activityResult：活动解析结果，kind 为 county 或 search_text
type activityResult struct {
	Kind       string      `json:"kind"`
	County     *countyView `json:"county,omitempty"`
	SearchText string      `json:"search_text,omitempty"`
}

// resolveActivity：解析其他设备传来的活动
func (s *server) resolveActivity(w http.ResponseWriter, r *http.Request) {
	var a handoff.Activity
	if err := decodeBody(r, &a); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.Handoff.Resolve(a)
	if err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	out := activityResult{Kind: res.Kind.String()}
	if res.Kind == handoff.KindCounty {
		v := viewOf(res.County)
		out.County = &v
	} else {
		out.SearchText = res.SearchText
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) listShortcuts(w http.ResponseWriter, r *http.Request) {
	if s.Shortcuts == nil {
		writeJSON(w, http.StatusOK, []shortcuts.Item{shortcuts.SearchItem})
		return
	}
	writeJSON(w, http.StatusOK, s.Shortcuts.Items())
}

type actionResult struct {
	Action string      `json:"action"`
	County *countyView `json:"county,omitempty"`
}

func (s *server) performShortcut(w http.ResponseWriter, r *http.Request) {
	var it shortcuts.Item
	if err := decodeBody(r, &it); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	act, err := s.Performer.Perform(it)
	if err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	out := actionResult{Action: act.Kind.String()}
	if act.Kind == shortcuts.ActionShowCounty {
		v := viewOf(act.County)
		out.County = &v
	}
	writeJSON(w, http.StatusOK, out)
}
