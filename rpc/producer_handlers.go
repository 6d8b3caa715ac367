package rpc

import (
	"net/http"

	"honeytrace/native/producer"
)

type producerRegisterParams struct {
	Caller             string `json:"caller"`
	Name               string `json:"name"`
	Location           string `json:"location"`
	RegistrationNumber string `json:"registrationNumber"`
	MetadataRef        string `json:"metadataRef"`
}

type producerAuthorizationParams struct {
	Caller   string `json:"caller"`
	Producer string `json:"producer"`
	Enabled  bool   `json:"enabled"`
}

type producerJSON struct {
	Address            string `json:"address"`
	Authorized         bool   `json:"authorized"`
	Name               string `json:"name"`
	Location           string `json:"location"`
	RegistrationNumber string `json:"registrationNumber"`
	MetadataRef        string `json:"metadataRef"`
}

func producerToJSON(record *producer.Producer) producerJSON {
	return producerJSON{
		Address:            hexAddr(record.Address),
		Authorized:         record.Authorized,
		Name:               record.Name,
		Location:           record.Location,
		RegistrationNumber: record.RegistrationNumber,
		MetadataRef:        record.MetadataRef,
	}
}

func (s *Server) handleProducerRegister(w http.ResponseWriter, r *http.Request, req *RPCRequest) *RPCError {
	if rpcErr := s.requireAuth(r); rpcErr != nil {
		return writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}
	var params producerRegisterParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	record, err := s.node.RegisterProducer(caller, params.Name, params.Location, params.RegistrationNumber, params.MetadataRef)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, producerToJSON(record))
	return nil
}

func (s *Server) handleProducerSetAuthorization(w http.ResponseWriter, r *http.Request, req *RPCRequest) *RPCError {
	if rpcErr := s.requireAuth(r); rpcErr != nil {
		return writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}
	var params producerAuthorizationParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	target, err := parseAddress(params.Producer)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	if err := s.node.SetProducerAuthorization(caller, target, params.Enabled); err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, okResult{OK: true})
	return nil
}

func (s *Server) handleProducerGet(w http.ResponseWriter, _ *http.Request, req *RPCRequest) *RPCError {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		return writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
	}
	record, err := s.node.GetProducer(addr)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, producerToJSON(record))
	return nil
}
