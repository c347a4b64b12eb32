package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/service"
	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
	"github.com/BrandonDHaskell/checkpoint/server/internal/metrics"
)

// StatusRecorder receives the status code of every response.
type StatusRecorder interface {
	RecordHTTPStatus(statusCode int)
}

type Dependencies struct {
	Logger *slog.Logger
	Addr   string
	Kiosks *service.KioskRegistry

	// Optional.
	Metrics   StatusRecorder
	Gatherer  prometheus.Gatherer
	RateLimit RateLimitConfig
	Ready     func(context.Context) error
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	router     chi.Router
	kiosks     *service.KioskRegistry
	limiter    *kioskLimiter
	ready      func(context.Context) error
}

func NewServer(d Dependencies) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	s := &Server{
		logger:  logger,
		router:  r,
		kiosks:  d.Kiosks,
		limiter: newKioskLimiter(d.RateLimit, logger),
		ready:   d.Ready,
	}

	r.Use(requestLogger(logger, d.Metrics))
	r.Use(recoverer(logger))

	r.Get("/healthz", s.handleHealth)
	if d.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(d.Gatherer))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/locations", s.handleListLocations)
		r.Route("/kiosks/{kioskID}", func(r chi.Router) {
			r.Get("/", s.handleKioskStatus)
			r.Put("/location", s.handleSelectLocation)
			r.Delete("/location", s.handleResetLocation)
			r.Post("/checkin", s.handleCheckIn)
		})
	})

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger.Warn("health check failed", "err", err)
			writeError(w, http.StatusServiceUnavailable, "unavailable", "store unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := s.kiosks.Locations(r.Context())
	if err != nil {
		s.logger.Error("list locations", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, types.LocationList{Locations: locs})
}

func (s *Server) handleKioskStatus(w http.ResponseWriter, r *http.Request) {
	k, ok := s.kiosk(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, kioskStatus(k))
}

func (s *Server) handleSelectLocation(w http.ResponseWriter, r *http.Request) {
	k, ok := s.kiosk(w, r)
	if !ok {
		return
	}

	var req types.SelectLocationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	if _, err := k.SelectLocation(r.Context(), req.LocationID); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownLocation):
			writeError(w, http.StatusNotFound, "unknown_location", err.Error())
		default:
			s.logger.Error("select location", "kiosk_id", k.ID(), "err", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, kioskStatus(k))
}

func (s *Server) handleResetLocation(w http.ResponseWriter, r *http.Request) {
	k, ok := s.kiosk(w, r)
	if !ok {
		return
	}
	if err := k.Reset(r.Context()); err != nil {
		s.logger.Error("reset kiosk", "kiosk_id", k.ID(), "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, kioskStatus(k))
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	wantProto := isProtobuf(r)

	var req types.CheckInRequest
	if wantProto {
		var err error
		if req, err = readCheckInProto(r); err != nil {
			writeError(w, http.StatusBadRequest, "bad_proto", "invalid protobuf body")
			return
		}
	} else {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
			return
		}
	}

	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "invalid_token", "token is required")
		return
	}
	source := strings.ToLower(strings.TrimSpace(req.Source))
	if source == "" {
		source = types.SourceManual
	}
	if source != types.SourceManual && source != types.SourceScan {
		writeError(w, http.StatusBadRequest, "invalid_source", `source must be "manual" or "scan"`)
		return
	}

	k, ok := s.kiosk(w, r)
	if !ok {
		return
	}
	if !k.WouldSuppress(source, req.Token) && !s.limiter.allow(w, k.ID()) {
		return
	}

	var res service.Result
	if source == types.SourceScan {
		res = k.ProcessScan(r.Context(), req.Token)
	} else {
		res = k.ProcessManual(r.Context(), req.Token)
	}

	status, resp := checkInResponse(k.ID(), res)
	if wantProto {
		writeCheckInProto(w, status, resp)
		return
	}
	writeJSON(w, status, resp)
}

// kiosk resolves the {kioskID} path parameter, writing an error response
// when it cannot.
func (s *Server) kiosk(w http.ResponseWriter, r *http.Request) (*service.Kiosk, bool) {
	k, err := s.kiosks.Kiosk(r.Context(), chi.URLParam(r, "kioskID"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidKioskID) {
			writeError(w, http.StatusBadRequest, "invalid_kiosk_id", err.Error())
			return nil, false
		}
		s.logger.Error("load kiosk", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return nil, false
	}
	return k, true
}

func kioskStatus(k *service.Kiosk) types.KioskStatus {
	st := types.KioskStatus{
		KioskID:    k.ID(),
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if loc, ok := k.ActiveLocation(); ok {
		st.Configured = true
		st.Location = &loc
	}
	return st
}

func checkInResponse(kioskID string, res service.Result) (int, types.CheckInResponse) {
	resp := types.CheckInResponse{
		OK:         !res.IsError,
		KioskID:    kioskID,
		Message:    res.Message,
		IsError:    res.IsError,
		Suppressed: res.Suppressed,
		Code:       res.Code,
		Event:      res.Event,
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
	}

	switch res.Code {
	case service.CodeOK:
		return http.StatusCreated, resp
	case service.CodeSuppressed:
		return http.StatusAccepted, resp
	case service.CodePersonNotFound:
		return http.StatusNotFound, resp
	case service.CodeAmbiguous, service.CodeNoLocation:
		return http.StatusConflict, resp
	default:
		return http.StatusInternalServerError, resp
	}
}
