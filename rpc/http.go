package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"honeytrace/core"
	"honeytrace/native/access"
	"honeytrace/native/batch"
	"honeytrace/native/claim"
	"honeytrace/native/producer"
	"honeytrace/native/review"
	"honeytrace/native/token"
	"honeytrace/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
	authTokenEnv    = "HONEYTRACE_RPC_TOKEN"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeUnauthorized   = -32001
	codeRateLimited    = -32020
	codeForbidden      = -32021
	codeConflict       = -32022
	codeInvalidProof   = -32023
	codeNotFound       = -32024
	codeReentrancy     = -32025
)

// Server exposes the node over a JSON-RPC 2.0 endpoint with the health and
// metrics routes alongside.
type Server struct {
	node      *core.Node
	log       *slog.Logger
	authToken string
	metrics   *observability.RPCMetrics

	mu            sync.Mutex
	visitors      map[string]*rate.Limiter
	ratePerMinute float64
	rateBurst     int
}

// Option customizes server construction.
type Option func(*Server)

// WithRateLimit overrides the per-client request budget.
func WithRateLimit(perMinute float64, burst int) Option {
	return func(s *Server) {
		s.ratePerMinute = perMinute
		s.rateBurst = burst
	}
}

// WithAuthToken overrides the bearer token guarding mutators. An empty token
// leaves mutators open, which is only sensible on a local network.
func WithAuthToken(token string) Option {
	return func(s *Server) { s.authToken = strings.TrimSpace(token) }
}

// NewServer constructs a server around the node. The mutator bearer token
// defaults to the HONEYTRACE_RPC_TOKEN environment variable.
func NewServer(node *core.Node, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		node:          node,
		log:           logger,
		authToken:     strings.TrimSpace(os.Getenv(authTokenEnv)),
		metrics:       observability.Metrics(),
		visitors:      make(map[string]*rate.Limiter),
		ratePerMinute: 120,
		rateBurst:     30,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router assembles the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/rpc", s.handle)
	return r
}

// Start serves the router until the listener fails.
func (s *Server) Start(addr string) error {
	s.log.Info("starting JSON-RPC server", slog.String("addr", addr))
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (s *Server) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) allow(client string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	limiter, ok := s.visitors[client]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(s.ratePerMinute/60.0), s.rateBurst)
		s.visitors[client] = limiter
	}
	return limiter.Allow()
}

// requireAuth guards mutators with the configured bearer token.
func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return nil
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return &RPCError{Code: codeUnauthorized, Message: "unauthorized", Data: "missing bearer token"}
	}
	presented := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if subtle.ConstantTimeCompare([]byte(presented), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "unauthorized", Data: "invalid bearer token"}
	}
	return nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()
	client := s.clientIP(r)
	if !s.allow(client) {
		writeError(w, http.StatusTooManyRequests, nil, codeRateLimited, "rate_limited", nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	var req RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "parse_error", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "invalid_request", "unsupported jsonrpc version")
		return
	}
	method := strings.TrimSpace(req.Method)
	logger := s.log.With(
		slog.String("requestId", requestID),
		slog.String("method", method),
		slog.String("client", client),
	)

	handler, ok := s.methods()[method]
	if !ok {
		s.metrics.ObserveRequest(method, "unknown", time.Since(start))
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method_not_found", method)
		return
	}
	outcome := "ok"
	if rpcErr := handler(w, r, &req); rpcErr != nil {
		outcome = "error"
		s.metrics.ObserveError(method, strconv.Itoa(rpcErr.Code))
		logger.Warn("rpc request failed",
			slog.Int("code", rpcErr.Code),
			slog.String("message", rpcErr.Message),
		)
	} else {
		logger.Info("rpc request served")
	}
	s.metrics.ObserveRequest(method, outcome, time.Since(start))
}

// handlerFunc serves one method. A non-nil return is only used for logging
// and metrics; the handler has already written the error response.
type handlerFunc func(w http.ResponseWriter, r *http.Request, req *RPCRequest) *RPCError

func (s *Server) methods() map[string]handlerFunc {
	return map[string]handlerFunc{
		"access_addAdmin":           s.handleAddAdmin,
		"access_removeAdmin":        s.handleRemoveAdmin,
		"access_transferOwnership":  s.handleTransferOwnership,
		"access_isAdmin":            s.handleIsAdmin,
		"access_owner":              s.handleOwner,
		"producer_register":         s.handleProducerRegister,
		"producer_setAuthorization": s.handleProducerSetAuthorization,
		"producer_get":              s.handleProducerGet,
		"batch_create":              s.handleBatchCreate,
		"batch_get":                 s.handleBatchGet,
		"token_balanceOf":           s.handleTokenBalanceOf,
		"token_transfer":            s.handleTokenTransfer,
		"token_setApprovalForAll":   s.handleTokenSetApprovalForAll,
		"token_isApprovedForAll":    s.handleTokenIsApprovedForAll,
		"token_tokenProducer":       s.handleTokenProducer,
		"claim_redeem":              s.handleClaimRedeem,
		"claim_isCodeClaimed":       s.handleClaimIsCodeClaimed,
		"review_add":                s.handleReviewAdd,
		"review_list":               s.handleReviewList,
		"review_count":              s.handleReviewCount,
	}
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) *RPCError {
	rpcErr := &RPCError{Code: code, Message: message, Data: data}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: rpcErr})
	return rpcErr
}

// writeEngineError maps engine sentinels onto the JSON-RPC error taxonomy.
// Claim-path not-found stays merged into the conflict code on purpose.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) *RPCError {
	switch {
	case errors.Is(err, access.ErrOwnerOnly),
		errors.Is(err, producer.ErrAdminOnly),
		errors.Is(err, batch.ErrProducerNotAllowed),
		errors.Is(err, token.ErrNotAuthorized),
		errors.Is(err, review.ErrNotHolder):
		return writeError(w, http.StatusForbidden, id, codeForbidden, "forbidden", err.Error())
	case errors.Is(err, claim.ErrInvalidProof):
		return writeError(w, http.StatusUnprocessableEntity, id, codeInvalidProof, "invalid_proof", err.Error())
	case errors.Is(err, claim.ErrNoSupply),
		errors.Is(err, claim.ErrAlreadyClaimed),
		errors.Is(err, access.ErrAlreadyAdmin),
		errors.Is(err, access.ErrNotAdmin),
		errors.Is(err, producer.ErrAuthorizationUnchanged),
		errors.Is(err, batch.ErrSupplyTooLarge),
		errors.Is(err, batch.ErrInvalidSupply),
		errors.Is(err, review.ErrReviewLimit),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, token.ErrInsufficientFunds):
		return writeError(w, http.StatusConflict, id, codeConflict, "state_conflict", err.Error())
	case errors.Is(err, claim.ErrReentrantClaim),
		errors.Is(err, token.ErrReentrantTransfer):
		return writeError(w, http.StatusConflict, id, codeReentrancy, "reentrant_call", err.Error())
	case errors.Is(err, producer.ErrProducerNotFound),
		errors.Is(err, batch.ErrBatchNotFound):
		return writeError(w, http.StatusNotFound, id, codeNotFound, "not_found", err.Error())
	case errors.Is(err, access.ErrInvalidOwner),
		errors.Is(err, access.ErrInvalidAdmin),
		errors.Is(err, producer.ErrInvalidField),
		errors.Is(err, batch.ErrInvalidField),
		errors.Is(err, batch.ErrEmptyCommitment),
		errors.Is(err, review.ErrInvalidField),
		errors.Is(err, token.ErrInvalidAmount),
		errors.Is(err, token.ErrSelfApproval):
		return writeError(w, http.StatusBadRequest, id, codeInvalidParams, "invalid_params", err.Error())
	default:
		return writeError(w, http.StatusInternalServerError, id, codeServerError, "internal_error", err.Error())
	}
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

func parseAddress(value string) ([20]byte, error) {
	var out [20]byte
	trimmed := strings.TrimSpace(value)
	if !common.IsHexAddress(trimmed) {
		return out, fmt.Errorf("invalid address %q", value)
	}
	return [20]byte(common.HexToAddress(trimmed)), nil
}

func hexAddr(addr [20]byte) string {
	return common.Address(addr).Hex()
}

func parseHash(value string) (common.Hash, error) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "0x") || len(trimmed) != 66 {
		return common.Hash{}, fmt.Errorf("invalid 32-byte hash %q", value)
	}
	return common.HexToHash(trimmed), nil
}
