package rpc

import (
	"net/http"

	"honeytrace/native/batch"
)

type batchCreateParams struct {
	Caller         string `json:"caller"`
	Label          string `json:"label"`
	MetadataRef    string `json:"metadataRef"`
	Supply         uint64 `json:"supply"`
	CommitmentRoot string `json:"commitmentRoot"`
}

type batchIDParams struct {
	BatchID uint64 `json:"batchId"`
}

type batchJSON struct {
	ID             uint64 `json:"id"`
	Producer       string `json:"producer"`
	Label          string `json:"label"`
	MetadataRef    string `json:"metadataRef"`
	CommitmentRoot string `json:"commitmentRoot"`
	Supply         uint64 `json:"supply"`
}

func batchToJSON(record *batch.Batch) batchJSON {
	return batchJSON{
		ID:             record.ID,
		Producer:       hexAddr(record.Producer),
		Label:          record.Label,
		MetadataRef:    record.MetadataRef,
		CommitmentRoot: record.CommitmentRoot.Hex(),
		Supply:         record.Supply,
	}
}

func (s *Server) handleBatchCreate(w http.ResponseWriter, r *http.Request, req *RPCRequest) *RPCError {
	if rpcErr := s.requireAuth(r); rpcErr != nil {
		return writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}
	var params batchCreateParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	root, err := parseHash(params.CommitmentRoot)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	record, err := s.node.CreateBatch(caller, params.Label, params.MetadataRef, params.Supply, root)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, batchToJSON(record))
	return nil
}

func (s *Server) handleBatchGet(w http.ResponseWriter, _ *http.Request, req *RPCRequest) *RPCError {
	var params batchIDParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	record, err := s.node.GetBatch(params.BatchID)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, batchToJSON(record))
	return nil
}
