package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"subreel/internal/catalog"
	"subreel/internal/logging"
)

const notFoundMessage = "Video not found"

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page := strings.Replace(s.index, OptionsPlaceholder, RenderOptions(s.records), 1)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleAssJS(w http.ResponseWriter, r *http.Request) {
	if s.assJSPath == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	http.ServeFile(w, r, s.assJSPath)
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	http.ServeFile(w, r, rec.Path)
}

func (s *Server) handleSubtitles(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	http.ServeFile(w, r, rec.SubtitlePath)
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	records := s.records
	if records == nil {
		records = []catalog.Record{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		s.logger.Warn("write catalog response failed", logging.Error(err))
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (catalog.Record, bool) {
	rec, ok := s.bySlug[chi.URLParam(r, "slug")]
	if !ok {
		http.Error(w, notFoundMessage, http.StatusNotFound)
		return catalog.Record{}, false
	}
	return rec, true
}
