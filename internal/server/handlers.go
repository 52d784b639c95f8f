package server

import (
	"bytes"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/matzehuels/treemap/pkg/buildinfo"
	"github.com/matzehuels/treemap/pkg/errors"
	tio "github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/render/sink"
)

// Request is the body of the layout and render endpoints.
type Request struct {
	Document json.RawMessage  `json:"document"`
	Format   string           `json:"format,omitempty"`
	Options  pipeline.Options `json:"options"`
}

// LayoutResponse answers POST /v1/layout.
type LayoutResponse struct {
	RequestID string     `json:"request_id"`
	Cached    bool       `json:"cached"`
	Layout    tio.Layout `json:"layout"`
}

// ErrorBody is the error payload.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type errorResponse struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"date":    buildinfo.Date,
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"formats": sink.Formats})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, in, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Options.Logger = s.logger.With("request_id", RequestID(r.Context()))

	layout, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), in, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{
		RequestID: RequestID(r.Context()),
		Cached:    hit,
		Layout:    layout,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	if err := errors.ValidateFormat(format, sink.Formats); err != nil {
		s.writeError(w, r, err)
		return
	}
	req, in, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Options.Formats = []string{format}
	req.Options.Logger = s.logger.With("request_id", RequestID(r.Context()))

	res, err := s.runner.Execute(r.Context(), in, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cache := "miss"
	if res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit {
		cache = "hit"
	}
	w.Header().Set("Content-Type", sink.ContentType(format))
	w.Header().Set("X-Cache", cache)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// decode reads a Request and extracts the tree document from it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*Request, pipeline.Input, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, pipeline.Input{}, errBodyTooLarge(tooLarge.Limit)
		}
		return nil, pipeline.Input{}, errors.Wrap(errors.ErrCodeInvalidPayload, err, "read request")
	}

	var req Request
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, pipeline.Input{}, errors.Wrap(errors.ErrCodeInvalidPayload, err, "decode request")
	}

	raw := bytes.TrimSpace(req.Document)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, pipeline.Input{}, errors.New(errors.ErrCodeInvalidInput, "document is required")
	}
	if raw[0] != '"' {
		return &req, pipeline.Input{Data: raw, Format: tio.FormatJSON}, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, pipeline.Input{}, errors.Wrap(errors.ErrCodeInvalidPayload, err, "document")
	}
	format := strings.ToLower(req.Format)
	if format == "" {
		format = tio.FormatJSON
	}
	return &req, pipeline.Input{Data: []byte(text), Format: format}, nil
}

// statusError pins an HTTP status that no error code maps to.
type statusError struct {
	err    *errors.Error
	status int
}

func (e statusError) Error() string { return e.err.Error() }
func (e statusError) Unwrap() error { return e.err }

func errBodyTooLarge(limit int64) error {
	return statusError{
		err:    errors.New(errors.ErrCodeInvalidPayload, "request body exceeds %d bytes", limit),
		status: http.StatusRequestEntityTooLarge,
	}
}

func errNotFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	var se statusError
	if stderrors.As(err, &se) {
		status = se.status
	}

	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	id := RequestID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", id, "err", err)
	} else {
		s.logger.Debug("request rejected", "request_id", id, "code", code, "err", err)
	}

	writeJSON(w, status, errorResponse{
		Error:     ErrorBody{Code: code, Message: errors.UserMessage(err)},
		RequestID: id,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
