package http

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/engine"
)

// maxBodyBytes bounds request bodies. Solana witnesses are well under 2 KiB.
const maxBodyBytes = 1 << 20

type handlerConfig struct {
	auth   *TokenAuth
	logger *zap.Logger
}

// HandlerOption configures the engine handler.
type HandlerOption func(*handlerConfig)

// WithAuth requires a valid bearer token on every request.
func WithAuth(auth *TokenAuth) HandlerOption {
	return func(c *handlerConfig) {
		c.auth = auth
	}
}

// WithHandlerLogger sets the logger for request logging.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// NewEngineHandler serves e over HTTP:
//
//	GET  /supported  algorithms e can verify
//	POST /message    signing target of a unit
//	POST /verify     verification of a signed unit
//
// A rejected signature is a 200 response with valid=false. Non-200 responses
// mean the request itself could not be processed.
func NewEngineHandler(e engine.Engine, opts ...HandlerOption) http.Handler {
	cfg := &handlerConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &engineServer{engine: e, logger: cfg.logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if cfg.auth != nil {
		r.Use(cfg.auth.Middleware)
	}

	r.Get("/supported", s.supported)
	r.Post("/message", s.message)
	r.Post("/verify", s.verify)
	return r
}

type engineServer struct {
	engine engine.Engine
	logger *zap.Logger
}

func (s *engineServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("engine request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *engineServer) supported(w http.ResponseWriter, r *http.Request) {
	algs, err := s.engine.Supported(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, string(authharness.CodeOf(err)), err.Error())
		return
	}
	resp := SupportedResponse{Algorithms: make([]SupportedAlgorithm, 0, len(algs))}
	for _, a := range algs {
		resp.Algorithms = append(resp.Algorithms, SupportedAlgorithm{ID: uint8(a), Name: a.String()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *engineServer) message(w http.ResponseWriter, r *http.Request) {
	unit, ok := s.readUnit(w, r)
	if !ok {
		return
	}
	msg, err := s.engine.BuildMessage(r.Context(), unit)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, string(authharness.CodeOf(err)), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: hex.EncodeToString(msg)})
}

func (s *engineServer) verify(w http.ResponseWriter, r *http.Request) {
	unit, ok := s.readUnit(w, r)
	if !ok {
		return
	}

	result, err := s.engine.Verify(r.Context(), unit)
	if err == nil {
		writeJSON(w, http.StatusOK, VerifyResponse{Valid: true, Cycles: result.Cycles})
		return
	}

	var e *authharness.Error
	if !errors.As(err, &e) || e.Code != authharness.ErrCodeEngine || errors.Is(err, authharness.ErrEngineUnavailable) {
		writeError(w, http.StatusInternalServerError, string(authharness.CodeOf(err)), err.Error())
		return
	}

	code := CodeRejected
	if errors.Is(err, authharness.ErrBudgetExceeded) {
		code = CodeBudgetExceeded
	}
	s.logger.Debug("verification rejected", zap.Stringer("algorithm", unit.Algorithm), zap.String("reason", e.Message))
	writeJSON(w, http.StatusOK, VerifyResponse{Valid: false, Code: code, Reason: e.Message})
}

func (s *engineServer) readUnit(w http.ResponseWriter, r *http.Request) (*authharness.VerifiableUnit, bool) {
	var payload UnitPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, string(authharness.ErrCodeMalformedPayload), "invalid JSON body: "+err.Error())
		return nil, false
	}
	unit, err := payload.Unit()
	if err != nil {
		writeError(w, http.StatusBadRequest, string(authharness.CodeOf(err)), err.Error())
		return nil, false
	}
	return unit, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	if code == "" {
		code = string(authharness.ErrCodeInternal)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Error: message})
}
