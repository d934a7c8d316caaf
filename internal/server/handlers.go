package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/numberline/pkg/buildinfo"
	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
	"github.com/matzehuels/numberline/pkg/pipeline"
	"github.com/matzehuels/numberline/pkg/scale"
	"github.com/matzehuels/numberline/pkg/store"
)

func newUUID() string { return uuid.NewString() }

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.runner.Repo.All(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type createRequest struct {
	ID    string   `json:"id,omitempty"`
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Value == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "value is required"))
		return
	}
	it := item.Raw{ID: req.ID, Label: req.Label, Value: *req.Value}
	if it.ID == "" {
		it.ID = s.newID()
	}
	if err := s.runner.Repo.Create(r.Context(), it); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/items/"+it.ID)
	writeJSON(w, http.StatusCreated, it)
}

type editRequest struct {
	Label *string  `json:"label,omitempty"`
	Value *float64 `json:"value,omitempty"`
}

func (s *Server) handleEditItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req editRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Label == nil && req.Value == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "nothing to update: send label and/or value"))
		return
	}

	ctx := r.Context()
	if req.Label != nil {
		if err := s.runner.Repo.EditLabel(ctx, id, *req.Label); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if req.Value != nil {
		if err := s.runner.Repo.EditValue(ctx, id, *req.Value); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	it, err := store.Get(ctx, s.runner.Repo, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scaleBody struct {
	Multiplier    int     `json:"multiplier"`
	UnitsPerPixel float64 `json:"unitsPerPixel,omitempty"`
	TickSpacing   float64 `json:"tickSpacing,omitempty"`
	Choices       []int   `json:"choices,omitempty"`
}

func (s *Server) scaleBody(mult int) (scaleBody, error) {
	m, err := scale.NewMapper(mult, s.defaults.Layout.MinTickSpacing)
	if err != nil {
		return scaleBody{}, err
	}
	spacing, err := m.TickSpacing()
	if err != nil {
		return scaleBody{}, err
	}
	return scaleBody{
		Multiplier:    mult,
		UnitsPerPixel: m.UnitsPerPixel,
		TickSpacing:   spacing,
		Choices:       scale.Multipliers,
	}, nil
}

func (s *Server) handleGetScale(w http.ResponseWriter, r *http.Request) {
	body, err := s.scaleBody(s.Multiplier())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleSetScale(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Multiplier int `json:"multiplier"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := s.scaleBody(req.Multiplier)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setMultiplier(req.Multiplier)
	s.logger.Info("scale changed", "multiplier", req.Multiplier)
	writeJSON(w, http.StatusOK, body)
}

// requestOptions starts from the server defaults and applies ?scale= and
// ?strategy=.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	opts.Formats = nil
	opts.Multiplier = s.Multiplier()

	q := r.URL.Query()
	if v := q.Get("scale"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "scale must be an integer, got %q", v)
		}
		opts.Multiplier = m
	}
	if v := q.Get("strategy"); v != "" {
		opts.Strategy = v
	}
	if v := q.Get("refresh"); v != "" {
		opts.Refresh, _ = strconv.ParseBool(v)
	}
	return opts, nil
}

type layoutResponse struct {
	Items         []item.Positioned `json:"items"`
	Height        float64           `json:"height"`
	Rows          int               `json:"rows"`
	Strategy      string            `json:"strategy"`
	Multiplier    int               `json:"multiplier"`
	UnitsPerPixel float64           `json:"unitsPerPixel"`
	TickSpacing   float64           `json:"tickSpacing"`
	Ticks         []scale.Tick      `json:"ticks"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Layout(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	minV, maxV := 0.0, 0.0
	for _, it := range res.Layout.Items {
		minV = min(minV, it.Value)
		maxV = max(maxV, it.Value)
	}
	spacing, err := res.Mapper.RangeTickSpacing(minV, maxV)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ticks, err := res.Mapper.Ticks(minV, maxV)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		Items:         res.Layout.Items,
		Height:        res.Layout.Height,
		Rows:          res.Layout.Rows,
		Strategy:      string(res.Layout.Strategy),
		Multiplier:    res.Mapper.Multiplier(),
		UnitsPerPixel: res.Mapper.UnitsPerPixel,
		TickSpacing:   spacing,
		Ticks:         ticks,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "unknown render format %q", format))
		return
	}
	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}
	if format == pipeline.FormatSVG {
		opts.Interactive = true
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Header().Set("Content-Type", contentTypes[format])
	_, _ = w.Write(res.Artifacts[format])
}
