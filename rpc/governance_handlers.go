package rpc

import (
	"encoding/json"
	"net/http"

	"dexroute/native/governance"
)

type governanceResult struct {
	Admin          string `json:"admin"`
	FeeBps         uint16 `json:"feeBps"`
	FeeDestination string `json:"feeDestination"`
	Paused         bool   `json:"paused"`
	UpdatedAt      int64  `json:"updatedAt"`
}

func governanceResponse(cfg *governance.Config) governanceResult {
	return governanceResult{
		Admin:          renderAddress(cfg.Admin),
		FeeBps:         cfg.FeeBps,
		FeeDestination: renderAddress(cfg.FeeDestination),
		Paused:         cfg.Paused,
		UpdatedAt:      cfg.UpdatedAt,
	}
}

func (s *Server) handleGetGovernance(w http.ResponseWriter, _ *http.Request) {
	cfg, ok, err := s.node.GovernanceConfig()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_initialized", "governance record not initialised")
		return
	}
	writeResult(w, http.StatusOK, governanceResponse(cfg))
}

type governanceInitRequest struct {
	FeeBps         uint16 `json:"feeBps"`
	FeeDestination string `json:"feeDestination"`
}

func (s *Server) handleGovernanceInit(w http.ResponseWriter, r *http.Request) {
	caller, payload, err := s.authenticate(r, "governance.init")
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	var req governanceInitRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
		return
	}
	destination, err := parseAddress("feeDestination", req.FeeDestination)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
		return
	}
	cfg, err := s.node.GovernanceInit(caller, req.FeeBps, destination)
	if err != nil {
		writeGovernanceError(w, err)
		return
	}
	writeResult(w, http.StatusCreated, governanceResponse(cfg))
}

type governanceFeeRequest struct {
	FeeBps uint16 `json:"feeBps"`
}

func (s *Server) handleGovernanceSetFee(w http.ResponseWriter, r *http.Request) {
	caller, payload, err := s.authenticate(r, "governance.setFee")
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	var req governanceFeeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
		return
	}
	cfg, err := s.node.GovernanceSetFee(caller, req.FeeBps)
	if err != nil {
		writeGovernanceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, governanceResponse(cfg))
}

type governanceFeeDestinationRequest struct {
	FeeDestination string `json:"feeDestination"`
}

func (s *Server) handleGovernanceSetFeeDestination(w http.ResponseWriter, r *http.Request) {
	caller, payload, err := s.authenticate(r, "governance.setFeeDestination")
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	var req governanceFeeDestinationRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
		return
	}
	destination, err := parseAddress("feeDestination", req.FeeDestination)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
		return
	}
	cfg, err := s.node.GovernanceSetFeeDestination(caller, destination)
	if err != nil {
		writeGovernanceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, governanceResponse(cfg))
}

func (s *Server) handleGovernancePause(w http.ResponseWriter, r *http.Request) {
	caller, _, err := s.authenticate(r, "governance.pause")
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	cfg, err := s.node.GovernancePause(caller)
	if err != nil {
		writeGovernanceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, governanceResponse(cfg))
}

func (s *Server) handleGovernanceUnpause(w http.ResponseWriter, r *http.Request) {
	caller, _, err := s.authenticate(r, "governance.unpause")
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	cfg, err := s.node.GovernanceUnpause(caller)
	if err != nil {
		writeGovernanceError(w, err)
		return
	}
	writeResult(w, http.StatusOK, governanceResponse(cfg))
}
