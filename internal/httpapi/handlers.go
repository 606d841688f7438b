package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"proxysmith/internal/generator"
	"proxysmith/internal/liveness"
	"proxysmith/internal/proxy"
	"proxysmith/internal/render"
	pkgerrors "proxysmith/pkg/errors"
)

const maxBodyBytes = 4 << 20

// decode reads a JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorBody{Code: "INVALID_JSON", Message: err.Error()})
		return false
	}
	if err := Validate.Struct(dst); err != nil {
		writeErrorFromErr(w, pkgerrors.FromValidator(err))
		return false
	}
	return true
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if !decode(w, r, &req) {
		return
	}

	target, err := render.ParseTarget(req.Target)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}

	batch, err := s.cfg.Codecs.DecodeSubscription([]byte(req.Links))
	if err != nil {
		details := make([]string, 0, len(batch.Errors))
		for _, e := range batch.Errors {
			details = append(details, e.Error())
		}
		writeError(w, http.StatusUnprocessableEntity, ErrorBody{
			Code:    "NO_VALID_LINKS",
			Message: err.Error(),
			Details: details,
		})
		return
	}
	if batch.Failed > 0 {
		s.log.Debug("links discarded", zap.Int("failed", batch.Failed))
	}

	ds := proxy.Rewrite(batch.Descriptors, req.CustomHost, req.Wildcard)
	opts := render.Options{Clash: render.ClashOptions{
		Full:        req.Full,
		FakeIP:      req.FakeIP,
		BestPing:    req.BestPing,
		LoadBalance: req.LoadBalance,
		Fallback:    req.Fallback,
	}}
	if req.Full {
		opts.Clash.Generated = time.Now()
	}

	out, err := render.Render(target, ds, opts)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	w.Header().Set("X-Links-Failed", strconv.Itoa(batch.Failed))
	writeBody(w, target.ContentType(), out)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decode(w, r, &req) {
		return
	}

	link, err := generator.Link(req.Endpoint.endpoint(), req.Options)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{URI: link.URI, Clash: link.Clash})
}

func (s *Server) handleSubscription(w http.ResponseWriter, r *http.Request) {
	var req SubscriptionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Options.Validate && s.cfg.Validator == nil {
		writeError(w, http.StatusBadRequest, ErrorBody{
			Code:    "VALIDATION_UNAVAILABLE",
			Message: "server has no liveness checker configured",
		})
		return
	}

	res, err := generator.Subscription(r.Context(), endpoints(req.Endpoints), req.Options, s.cfg.Validator)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	w.Header().Set("X-Endpoints", strconv.Itoa(len(res.Endpoints)))
	writeBody(w, req.Options.Format.ContentType(), res.Document)
}

// handleProbe runs one probing session for the request's endpoints.
func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	var req ProbeRequest
	if !decode(w, r, &req) {
		return
	}
	if s.cfg.Checker == nil {
		writeError(w, http.StatusServiceUnavailable, ErrorBody{
			Code:    "PROBE_UNAVAILABLE",
			Message: "server has no liveness checker configured",
		})
		return
	}

	sched := liveness.NewScheduler(s.cfg.Checker, s.cfg.Scheduler)
	defer sched.Close()

	sched.Enqueue(endpoints(req.Endpoints))

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.ProbeWait)
	defer cancel()
	if err := sched.Wait(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		writeErrorFromErr(w, fmt.Errorf("probe interrupted: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, ProbeResponse{Statuses: sched.Snapshot(), Stats: sched.Stats()})
}
