package rpc

import "net/http"

type adminParams struct {
	Caller string `json:"caller"`
	Admin  string `json:"admin"`
}

type ownershipParams struct {
	Caller   string `json:"caller"`
	NewOwner string `json:"newOwner"`
}

type addressParams struct {
	Address string `json:"address"`
}

type okResult struct {
	OK bool `json:"ok"`
}

func (s *Server) handleAddAdmin(w http.ResponseWriter, r *http.Request, req *RPCRequest) *RPCError {
	if rpcErr := s.requireAuth(r); rpcErr != nil {
		return writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}
	var params adminParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	admin, err := parseAddress(params.Admin)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	if err := s.node.AddAdmin(caller, admin); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, okResult{OK: true})
	return nil
}

func (s *Server) handleRemoveAdmin(w http.ResponseWriter, r *http.Request, req *RPCRequest) *RPCError {
	if rpcErr := s.requireAuth(r); rpcErr != nil {
		return writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}
	var params adminParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	admin, err := parseAddress(params.Admin)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	if err := s.node.RemoveAdmin(caller, admin); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, okResult{OK: true})
	return nil
}

func (s *Server) handleTransferOwnership(w http.ResponseWriter, r *http.Request, req *RPCRequest) *RPCError {
	if rpcErr := s.requireAuth(r); rpcErr != nil {
		return writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}
	var params ownershipParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	newOwner, err := parseAddress(params.NewOwner)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	if err := s.node.TransferOwnership(caller, newOwner); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, okResult{OK: true})
	return nil
}

func (s *Server) handleIsAdmin(w http.ResponseWriter, r *http.Request, req *RPCRequest) *RPCError {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	isAdmin, err := s.node.IsAdmin(addr)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]bool{"isAdmin": isAdmin})
	return nil
}

func (s *Server) handleOwner(w http.ResponseWriter, _ *http.Request, req *RPCRequest) *RPCError {
	owner, err := s.node.Owner()
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]string{"owner": hexAddr(owner)})
	return nil
}
