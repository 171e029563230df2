package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/KaramelBytes/trendboard/internal/charts"
	"github.com/KaramelBytes/trendboard/internal/dataset"
	"github.com/KaramelBytes/trendboard/internal/insights"
)

var errNoDataset = errors.New("no dataset uploaded yet")

func (s *Server) respondJSON(w http.ResponseWriter, code int, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal response failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

func (s *Server) respondError(w http.ResponseWriter, code int, err error) {
	if code >= 500 {
		s.log.Error().Err(err).Msg("request failed")
	}
	s.respondJSON(w, code, map[string]string{"error": err.Error()})
}

// resolveView filters the current dataset with the request's filter, or
// the default filter when the query carries none.
func (s *Server) resolveView(r *http.Request) (*insights.View, int, error) {
	return s.viewOf(s.Dataset(), r)
}

func (s *Server) viewOf(t *dataset.Table, r *http.Request) (*insights.View, int, error) {
	if t == nil {
		return nil, http.StatusNotFound, errNoDataset
	}
	f, explicit, err := ParseFilter(r.URL.Query())
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	if !explicit {
		f = dataset.DefaultFilter(t)
	}
	return insights.Build(t, f, s.cfg.Insights), http.StatusOK, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "dataset_loaded": s.Dataset() != nil})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("missing form field %q: %w", "file", err))
		return
	}
	defer file.Close()

	t, err := dataset.Load(file, dataset.Options{Name: hdr.Filename})
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}
	s.SetDataset(t)
	s.log.Info().Str("file", hdr.Filename).Int("rows", t.Len()).Str("dataset_id", t.ID).Msg("dataset uploaded")

	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{
		"id":      t.ID,
		"name":    t.Name,
		"rows":    t.Len(),
		"columns": t.Columns,
		"roles":   dataset.ResolveRoles(t),
	})
}

type rangeJSON struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type filterJSON struct {
	Channels []string             `json:"channels"`
	Dates    map[string]rangeJSON `json:"dates,omitempty"`
	MinViews *float64             `json:"min_views,omitempty"`
	MaxViews *float64             `json:"max_views,omitempty"`
	Default  bool                 `json:"default"`
}

func toFilterJSON(f dataset.Filter, isDefault bool) filterJSON {
	out := filterJSON{Channels: f.Channels, Default: isDefault}
	for col, r := range f.Dates {
		if out.Dates == nil {
			out.Dates = map[string]rangeJSON{}
		}
		var rj rangeJSON
		if !r.Min.IsZero() {
			rj.From = formatBound(r.Min)
		}
		if !r.Max.IsZero() {
			rj.To = formatUpperBound(r.Max)
		}
		out.Dates[col] = rj
	}
	if f.Views != nil {
		if !math.IsInf(f.Views.Min, 0) {
			v := f.Views.Min
			out.MinViews = &v
		}
		if !math.IsInf(f.Views.Max, 0) {
			v := f.Views.Max
			out.MaxViews = &v
		}
	}
	return out
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	v, code, err := s.resolveView(r)
	if err != nil {
		s.respondError(w, code, err)
		return
	}
	_, explicit, _ := ParseFilter(r.URL.Query())
	s.respondJSON(w, http.StatusOK, map[string]any{
		"id":         v.Table.ID,
		"name":       v.Name,
		"columns":    v.Table.Columns,
		"roles":      v.Roles,
		"rows":       v.Rows,
		"total_rows": v.Total,
		"filter":     toFilterJSON(v.Filter, !explicit),
		"preview":    v.Preview,
		"warnings":   v.Warnings,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	v, code, err := s.resolveView(r)
	if err != nil {
		s.respondError(w, code, err)
		return
	}
	s.respondJSON(w, http.StatusOK, v)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	name, ok := strings.CutSuffix(file, ".png")
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Errorf("%w: %q", charts.ErrUnknownChart, file))
		return
	}
	v, code, err := s.resolveView(r)
	if err != nil {
		s.respondError(w, code, err)
		return
	}
	var buf bytes.Buffer
	if err := charts.Render(&buf, name, v, s.cfg.Charts); err != nil {
		switch {
		case errors.Is(err, charts.ErrUnknownChart), errors.Is(err, charts.ErrNotApplicable):
			s.respondError(w, http.StatusNotFound, err)
		default:
			s.respondError(w, http.StatusInternalServerError, err)
		}
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	v, code, err := s.resolveView(r)
	if err != nil {
		s.respondError(w, code, err)
		return
	}
	var buf bytes.Buffer
	if err := dataset.WriteCSV(&buf, v.Table); err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="filtered.csv"`)
	_, _ = w.Write(buf.Bytes())
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
