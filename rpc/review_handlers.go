package rpc

import (
	"net/http"

	"honeytrace/native/review"
)

type reviewAddParams struct {
	Caller      string `json:"caller"`
	BatchID     uint64 `json:"batchId"`
	Rating      uint8  `json:"rating"`
	MetadataRef string `json:"metadataRef"`
}

type reviewListParams struct {
	BatchID uint64 `json:"batchId"`
	Offset  uint64 `json:"offset"`
	Limit   uint64 `json:"limit"`
}

type reviewJSON struct {
	Reviewer    string `json:"reviewer"`
	BatchID     uint64 `json:"batchId"`
	Rating      uint8  `json:"rating"`
	MetadataRef string `json:"metadataRef"`
}

func reviewToJSON(entry *review.Review) reviewJSON {
	return reviewJSON{
		Reviewer:    hexAddr(entry.Reviewer),
		BatchID:     entry.BatchID,
		Rating:      entry.Rating,
		MetadataRef: entry.MetadataRef,
	}
}

func (s *Server) handleReviewAdd(w http.ResponseWriter, r *http.Request, req *RPCRequest) *RPCError {
	if rpcErr := s.requireAuth(r); rpcErr != nil {
		return writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}
	var params reviewAddParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	entry, err := s.node.AddReview(caller, params.BatchID, params.Rating, params.MetadataRef)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, reviewToJSON(entry))
	return nil
}

func (s *Server) handleReviewList(w http.ResponseWriter, _ *http.Request, req *RPCRequest) *RPCError {
	var params reviewListParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	entries, err := s.node.GetReviews(params.BatchID, params.Offset, params.Limit)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	out := make([]reviewJSON, 0, len(entries))
	for _, entry := range entries {
		out = append(out, reviewToJSON(entry))
	}
	writeResult(w, req.ID, out)
	return nil
}

func (s *Server) handleReviewCount(w http.ResponseWriter, _ *http.Request, req *RPCRequest) *RPCError {
	var params batchIDParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	count, err := s.node.GetReviewCount(params.BatchID)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, map[string]uint64{"count": count})
	return nil
}
