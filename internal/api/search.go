package api

import (
	"net/http"
	"sync"
	"time"

	"counties/internal/logger"
	"counties/internal/spotlight"
)

// sessionHeader：同一客户端的搜索请求共享一个搜索控制器，新查询取代旧查询
const sessionHeader = "X-Session-ID"

type session struct {
	ctrl *spotlight.Controller
	used time.Time
}

// sessions：按会话保存搜索控制器，超过上限时淘汰最久未用的会话
type sessions struct {
	mu   sync.Mutex
	max  int
	m    map[string]*session
	make func() *spotlight.Controller
}

func newSessions(max int, mk func() *spotlight.Controller) *sessions {
	if max <= 0 {
		max = 1024
	}
	return &sessions{max: max, m: make(map[string]*session), make: mk}
}

// get：无会话标识时返回独立控制器，不参与取代
func (s *sessions) get(id string) *spotlight.Controller {
	if id == "" {
		return s.make()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ss, ok := s.m[id]; ok {
		ss.used = time.Now()
		return ss.ctrl
	}
	if len(s.m) >= s.max {
		s.evictOldest()
	}
	ss := &session{ctrl: s.make(), used: time.Now()}
	s.m[id] = ss
	return ss.ctrl
}

func (s *sessions) evictOldest() {
	var oldest string
	var t time.Time
	for id, ss := range s.m {
		if oldest == "" || ss.used.Before(t) {
			oldest, t = id, ss.used
		}
	}
	if ss, ok := s.m[oldest]; ok {
		ss.ctrl.Cancel()
		delete(s.m, oldest)
		logger.L().Debug("search_session_evicted", "session", oldest)
	}
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// 文档注释：搜索县
// 参数：q 为搜索文本（空则返回范围内全部），filter 为 all/favourites。
// 约束：同一 X-Session-ID 的新请求会取代仍在执行的旧请求，旧请求返回 409。
func (s *server) search(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	filter, err := spotlight.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctrl := s.sessions.get(r.Header.Get(sessionHeader))
	res, err := ctrl.SearchAndWait(r.Context(), spotlight.Query{Text: text, Filter: filter})
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		writeError(w, errStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":    text,
		"filter":   filter.String(),
		"counties": viewsOf(res),
	})
}
