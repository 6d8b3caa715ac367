package rpc

import (
	"fmt"
	"math/big"
	"net/http"
	"strings"
)

type balanceParams struct {
	Address string `json:"address"`
	Class   uint64 `json:"class"`
}

type transferParams struct {
	Caller string `json:"caller"`
	From   string `json:"from"`
	To     string `json:"to"`
	Class  uint64 `json:"class"`
	Amount string `json:"amount"`
}

type approvalParams struct {
	Holder   string `json:"holder"`
	Operator string `json:"operator"`
	Enabled  bool   `json:"enabled"`
}

type approvalQueryParams struct {
	Holder   string `json:"holder"`
	Operator string `json:"operator"`
}

type classParams struct {
	Class uint64 `json:"class"`
}

func parsePositiveAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return amount, nil
}

func (s *Server) handleTokenBalanceOf(w http.ResponseWriter, _ *http.Request, req *RPCRequest) *RPCError {
	var params balanceParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	balance, err := s.node.BalanceOf(addr, params.Class)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]string{"balance": balance.String()})
	return nil
}

func (s *Server) handleTokenTransfer(w http.ResponseWriter, r *http.Request, req *RPCRequest) *RPCError {
	if rpcErr := s.requireAuth(r); rpcErr != nil {
		return writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}
	var params transferParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	from, err := parseAddress(params.From)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	to, err := parseAddress(params.To)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	amount, err := parsePositiveAmount(params.Amount)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	if err := s.node.Transfer(caller, from, to, params.Class, amount); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, okResult{OK: true})
	return nil
}

func (s *Server) handleTokenSetApprovalForAll(w http.ResponseWriter, r *http.Request, req *RPCRequest) *RPCError {
	if rpcErr := s.requireAuth(r); rpcErr != nil {
		return writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}
	var params approvalParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	holder, err := parseAddress(params.Holder)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	operator, err := parseAddress(params.Operator)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	if err := s.node.SetApprovalForAll(holder, operator, params.Enabled); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, okResult{OK: true})
	return nil
}

func (s *Server) handleTokenIsApprovedForAll(w http.ResponseWriter, _ *http.Request, req *RPCRequest) *RPCError {
	var params approvalQueryParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	holder, err := parseAddress(params.Holder)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	operator, err := parseAddress(params.Operator)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	approved, err := s.node.IsApprovedForAll(holder, operator)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]bool{"approved": approved})
	return nil
}

func (s *Server) handleTokenProducer(w http.ResponseWriter, _ *http.Request, req *RPCRequest) *RPCError {
	var params classParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	addr, bound, err := s.node.TokenProducer(params.Class)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	if !bound {
		return writeError(w, http.StatusNotFound, req.ID, codeNotFound, "not_found", "token class has no producer")
	}
	writeResult(w, req.ID, map[string]string{"producer": hexAddr(addr)})
	return nil
}
