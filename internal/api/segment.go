package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/planeseg/internal/config"
	perrors "github.com/matzehuels/planeseg/pkg/errors"
	"github.com/matzehuels/planeseg/pkg/observability"
	"github.com/matzehuels/planeseg/pkg/pipeline"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    perrors.Code `json:"code"`
	Message string       `json:"message"`
}

func (s *Server) segment(w http.ResponseWriter, r *http.Request) {
	opts, err := s.parseOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if timeout := s.cfg.Server.RequestTimeout.Duration; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	opts.Logger = s.logger.With("request", middleware.GetReqID(ctx))

	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := opts.Formats[0]
	h := w.Header()
	h.Set("Content-Type", pipeline.ContentTypes[format])
	h.Set(HeaderRunID, result.RunID)
	h.Set(HeaderSegmentationID, result.Segmentation.ID)
	h.Set(HeaderRegions, strconv.Itoa(result.Stats.Regions))
	h.Set(HeaderUnassigned, strconv.Itoa(result.Stats.Unassigned))
	h.Set(HeaderCache, cacheStatus(result.CacheInfo))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// parseOptions reads the request body and query into pipeline options.
func (s *Server) parseOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{Filename: q.Get("filename")}

	var err error
	if opts.Distance, err = floatParam(q, "distance"); err != nil {
		return opts, err
	}
	if opts.Angle, err = floatParam(q, "angle"); err != nil {
		return opts, err
	}
	if opts.Radius, err = floatParam(q, "radius"); err != nil {
		return opts, err
	}
	if v := q.Get("min_size"); v != "" {
		if opts.MinRegionSize, err = strconv.Atoi(v); err != nil {
			return opts, perrors.New(perrors.ErrCodeInvalidThreshold, "min_size: %q is not an integer", v)
		}
	}
	var explicit []string
	for name, dst := range map[string]*bool{
		config.OptionSortSeeds:      &opts.SortSeeds,
		config.OptionVertexDistance: &opts.VertexDistance,
		config.OptionDetailed:       &opts.Detailed,
		"refresh":                   &opts.Refresh,
	} {
		if *dst, err = boolParam(q, name); err != nil {
			return opts, err
		}
		if q.Has(name) {
			explicit = append(explicit, name)
		}
	}
	if f := q.Get("format"); f != "" {
		if err := pipeline.ValidateFormat(f); err != nil {
			return opts, err
		}
		opts.Formats = []string{f}
	}

	s.cfg.Apply(&opts, explicit...)
	if len(opts.Formats) > 1 {
		opts.Formats = opts.Formats[:1]
	}

	limit := s.cfg.Server.MaxBodyBytes
	if limit <= 0 || limit > pipeline.MaxInputSize {
		limit = pipeline.MaxInputSize
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return opts, perrors.New(perrors.ErrCodeTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
	}
	if err != nil {
		return opts, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(body) == 0 {
		return opts, perrors.New(perrors.ErrCodeInvalidInput, "request body is empty")
	}
	opts.Content = body
	return opts, nil
}

func floatParam(q url.Values, name string) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, perrors.New(perrors.ErrCodeInvalidThreshold, "%s: %q is not a number", name, v)
	}
	return f, nil
}

func boolParam(q url.Values, name string) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, perrors.New(perrors.ErrCodeInvalidInput, "%s: %q is not a boolean", name, v)
	}
	return b, nil
}

func cacheStatus(info pipeline.CacheInfo) string {
	switch {
	case info.SegmentHit && info.RenderHit:
		return "hit"
	case info.SegmentHit:
		return "partial"
	}
	return "miss"
}

// writeError maps err to its status and writes an [ErrorResponse].
// Errors without a code are reported as internal without their detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := perrors.GetCode(err)
	msg := perrors.UserMessage(err)
	if code == "" {
		code = perrors.ErrCodeInternal
		msg = "internal error"
	}
	status := perrors.HTTPStatus(code)

	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	logger := s.logger.With("id", middleware.GetReqID(r.Context()), "code", code)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	} else {
		logger.Warn("request rejected", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}
