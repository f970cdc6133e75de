package server

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cloverquilt/pkg/buildinfo"
	"github.com/matzehuels/cloverquilt/pkg/cache"
	"github.com/matzehuels/cloverquilt/pkg/engine"
	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/fill"
	"github.com/matzehuels/cloverquilt/pkg/patterns"
	"github.com/matzehuels/cloverquilt/pkg/prefs"
	"github.com/matzehuels/cloverquilt/pkg/region"
	"github.com/matzehuels/cloverquilt/pkg/render"
	"github.com/matzehuels/cloverquilt/pkg/tile"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeUnknownRegion), errors.Is(err, errors.ErrCodeUnknownPattern):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeInvalidInput),
		errors.Is(err, errors.ErrCodeInvalidColor),
		errors.Is(err, errors.ErrCodeInvalidPath),
		errors.Is(err, errors.ErrCodeAssetDecode),
		errors.Is(err, errors.ErrCodeParse):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// persist writes a preference change through to the store. Failures are
// logged and never fail the request that caused them.
func (s *Server) persist(ctx context.Context, what string, fn func(context.Context, prefs.Store) error) {
	if s.store == nil {
		return
	}
	if err := fn(ctx, s.store); err != nil {
		s.logger.Warn("could not persist preference", "what", what, "err", err)
	}
}

type regionsResponse struct {
	Regions []region.Snapshot `json:"regions"`
	Filled  int               `json:"filled"`
	Total   int               `json:"total"`
}

type fillResponse struct {
	Previous fill.Intent     `json:"previous"`
	Region   region.Snapshot `json:"region"`
}

type presentationResponse struct {
	engine.Presentation
	ZoomLevel *int `json:"zoomLevel,omitempty"`
}

func (s *Server) presentation() presentationResponse {
	p := s.engine.Presentation()
	resp := presentationResponse{Presentation: p}
	if level, ok := tile.ZoomForSize(p.TileSize); ok {
		resp.ZoomLevel = &level
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	n := s.engine.RegionCount()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"regions": n,
		"build":   buildinfo.Get(),
	})
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, regionsResponse{
		Regions: s.engine.Regions(),
		Filled:  s.engine.FilledCount(),
		Total:   s.engine.RegionCount(),
	})
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.engine.Region(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	var intent fill.Intent
	if err := decodeBody(r, &intent); err != nil {
		s.writeError(w, err)
		return
	}
	if err := intent.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, err := s.engine.FillRegion(id, intent)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap, _ := s.engine.Region(id)
	writeJSON(w, http.StatusOK, fillResponse{Previous: prev, Region: snap})
}

func (s *Server) handleResetRegion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, err := s.engine.ResetRegion(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap, _ := s.engine.Region(id)
	writeJSON(w, http.StatusOK, fillResponse{Previous: prev, Region: snap})
}

func (s *Server) handleResetAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.ResetAll(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"filled": s.engine.FilledCount(), "total": s.engine.RegionCount()})
}

func (s *Server) handlePresentation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.presentation())
}

type colorRequest struct {
	Color string `json:"color"`
}

func (s *Server) handleStroke(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.SetStrokeColor(req.Color); err != nil {
		s.writeError(w, err)
		return
	}
	stroke := s.engine.Presentation().StrokeColor
	s.persist(r.Context(), "stroke", func(ctx context.Context, st prefs.Store) error {
		return prefs.SaveStroke(ctx, st, stroke)
	})
	writeJSON(w, http.StatusOK, s.presentation())
}

func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.SetCanvasColor(req.Color); err != nil {
		s.writeError(w, err)
		return
	}
	canvas := s.engine.Presentation().CanvasColor
	s.persist(r.Context(), "canvas", func(ctx context.Context, st prefs.Store) error {
		return prefs.SaveCanvas(ctx, st, canvas)
	})
	writeJSON(w, http.StatusOK, s.presentation())
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level *int `json:"level"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Level == nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "level is required"))
		return
	}
	level := *req.Level
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.SetZoomLevel(level); err != nil {
		s.writeError(w, err)
		return
	}
	s.persist(r.Context(), "zoom", func(ctx context.Context, st prefs.Store) error {
		return prefs.SaveZoom(ctx, st, level)
	})
	writeJSON(w, http.StatusOK, s.presentation())
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.library.List())
}

// uploadResponse lists the patterns an upload added and the files that
// could not be used.
type uploadResponse struct {
	Added  []patterns.Pattern `json:"added"`
	Failed []uploadFailure    `json:"failed,omitempty"`
}

type uploadFailure struct {
	File    string      `json:"file"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// handleUploadPattern accepts either a multipart form with one or more
// "file" parts or a raw image body named by the ?name= query parameter.
// Each file is decoded on its own; a bad file is reported and the rest are
// still added. The request fails only when nothing could be added.
func (s *Server) handleUploadPattern(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	type upload struct {
		file string
		name string
		data []byte
		err  error
	}
	var uploads []upload

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid multipart upload"))
			return
		}
		for _, fh := range r.MultipartForm.File["file"] {
			u := upload{file: fh.Filename, name: patternName(fh.Filename)}
			u.data, u.err = readPart(fh)
			uploads = append(uploads, u)
		}
	} else {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot read upload"))
			return
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "Uploaded pattern"
		}
		uploads = append(uploads, upload{file: name, name: name, data: data})
	}
	if len(uploads) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "no image uploaded"))
		return
	}

	resp := uploadResponse{Added: []patterns.Pattern{}}
	var firstErr error
	for _, u := range uploads {
		err := u.err
		if err == nil {
			var p patterns.Pattern
			if p, err = s.library.Add(u.name, u.data, false); err == nil {
				resp.Added = append(resp.Added, p)
				continue
			}
		}
		if firstErr == nil {
			firstErr = err
		}
		s.logger.Warn("skipping uploaded pattern", "file", u.file, "err", err)
		resp.Failed = append(resp.Failed, uploadFailure{
			File:    u.file,
			Code:    errors.GetCode(err),
			Message: errors.UserMessage(err),
		})
	}
	if len(resp.Added) == 0 {
		s.writeError(w, firstErr)
		return
	}
	s.persist(r.Context(), "patterns", func(ctx context.Context, st prefs.Store) error {
		return prefs.SavePatterns(ctx, st, s.library.Records())
	})
	writeJSON(w, http.StatusCreated, resp)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot read %s", fh.Filename)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot read %s", fh.Filename)
	}
	return data, nil
}

// patternName turns an uploaded file name into a display name.
func patternName(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." {
		return "Uploaded pattern"
	}
	return name
}

func (s *Server) handleRemovePattern(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	reset, err := s.engine.RemovePattern(id)
	inLibrary := s.library.Remove(id)
	if err != nil && !(inLibrary && errors.Is(err, errors.ErrCodeUnknownPattern)) {
		s.writeError(w, err)
		return
	}
	s.persist(r.Context(), "patterns", func(ctx context.Context, st prefs.Store) error {
		return prefs.SavePatterns(ctx, st, s.library.Records())
	})
	writeJSON(w, http.StatusOK, map[string]int{"reset": reset})
}

func (s *Server) handleClearPatterns(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reset, err := s.engine.ClearPatterns()
	if err != nil {
		s.writeError(w, err)
		return
	}
	removed := s.library.Clear()
	s.persist(r.Context(), "patterns", func(ctx context.Context, st prefs.Store) error {
		return prefs.SavePatterns(ctx, st, nil)
	})
	writeJSON(w, http.StatusOK, map[string]int{"reset": reset, "removed": removed})
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data := s.engine.Document().Bytes()
	s.mu.Unlock()
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(data)
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	opts := render.Options{Background: r.URL.Query().Get("background")}
	if v := r.URL.Query().Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v))
			return
		}
		opts.Scale = scale
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.keyer.ExportKey(s.engine.Document().Bytes(), cache.ExportOpts{
		Format:     "png",
		Scale:      opts.Scale,
		Background: opts.Background,
	})
	data, hit, err := s.cache.Get(r.Context(), key)
	if err != nil {
		s.logger.Warn("export cache read failed", "err", err)
	}
	if !hit {
		data, err = render.PNG(s.engine.Document(), s.engine.Tiles(), opts)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if err := s.cache.Set(r.Context(), key, data, cache.DefaultTTL); err != nil {
			s.logger.Warn("export cache write failed", "err", err)
		}
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

type restoreResponse struct {
	Applied int           `json:"applied"`
	Skipped []errorBody   `json:"skipped"`
	Design  engine.Design `json:"design"`
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var d engine.Design
	if err := decodeBody(r, &d); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	applied, errs := s.engine.Restore(d)
	resp := restoreResponse{Applied: applied, Skipped: []errorBody{}, Design: s.engine.Snapshot()}
	for _, err := range errs {
		resp.Skipped = append(resp.Skipped, errorBody{Code: errors.GetCode(err), Message: errors.UserMessage(err)})
	}
	writeJSON(w, http.StatusOK, resp)
}
