package rpc

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
)

type claimParams struct {
	Caller     string   `json:"caller"`
	BatchID    uint64   `json:"batchId"`
	SecretCode string   `json:"secretCode"`
	Proof      []string `json:"proof"`
}

type codeClaimedParams struct {
	BatchID    uint64 `json:"batchId"`
	SecretCode string `json:"secretCode"`
}

func (s *Server) handleClaimRedeem(w http.ResponseWriter, r *http.Request, req *RPCRequest) *RPCError {
	if rpcErr := s.requireAuth(r); rpcErr != nil {
		return writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}
	var params claimParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	proof := make([]common.Hash, 0, len(params.Proof))
	for _, entry := range params.Proof {
		node, err := parseHash(entry)
		if err != nil {
			return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		}
		proof = append(proof, node)
	}
	leaf, err := s.node.Claim(caller, params.BatchID, params.SecretCode, proof)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]string{"leaf": leaf.Hex()})
	return nil
}

func (s *Server) handleClaimIsCodeClaimed(w http.ResponseWriter, _ *http.Request, req *RPCRequest) *RPCError {
	var params codeClaimedParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	claimed, err := s.node.IsCodeClaimed(params.BatchID, params.SecretCode)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]bool{"claimed": claimed})
	return nil
}
