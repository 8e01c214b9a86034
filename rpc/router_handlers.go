package rpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dexroute/core/types"
	"dexroute/crypto"
	"dexroute/native/router"
)

type legRequest struct {
	Venue         uint8  `json:"venue"`
	InAmountHint  uint64 `json:"inAmountHint"`
	MinOutHint    uint64 `json:"minOutHint"`
	ResourceCount uint8  `json:"resourceCount"`
	Payload       string `json:"payload"`
	InMint        string `json:"inMint"`
	OutMint       string `json:"outMint"`
}

type resourceRequest struct {
	Address  string `json:"address"`
	Owner    string `json:"owner"`
	Signer   bool   `json:"signer"`
	Writable bool   `json:"writable"`
}

type routeRequest struct {
	Legs           []legRequest      `json:"legs"`
	UserMaxIn      uint64            `json:"userMaxIn"`
	UserMinOut     uint64            `json:"userMinOut"`
	Source         string            `json:"source"`
	Destination    string            `json:"destination"`
	FeeDestination string            `json:"feeDestination"`
	Resources      []resourceRequest `json:"resources"`
}

type receiptResult struct {
	ID          string `json:"id"`
	User        string `json:"user"`
	InMint      string `json:"inMint"`
	OutMint     string `json:"outMint"`
	TotalSpent  uint64 `json:"totalSpent"`
	TotalOut    uint64 `json:"totalOut"`
	FeeCharged  uint64 `json:"feeCharged"`
	NetReceived uint64 `json:"netReceived"`
	Legs        uint8  `json:"legs"`
	FeeBps      uint16 `json:"feeBps"`
	ExecutedAt  int64  `json:"executedAt"`
}

func parseAddress(field, value string) ([20]byte, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return [20]byte{}, fmt.Errorf("%s: %w", field, err)
	}
	return addr.Array(), nil
}

func renderAddress(addr [20]byte) string {
	return crypto.NewAddress(crypto.DexPrefix, addr[:]).String()
}

func receiptResponse(receipt *router.RouteReceipt) receiptResult {
	return receiptResult{
		ID:          receipt.ID,
		User:        renderAddress(receipt.User),
		InMint:      renderAddress(receipt.InMint),
		OutMint:     renderAddress(receipt.OutMint),
		TotalSpent:  receipt.TotalSpent,
		TotalOut:    receipt.TotalOut,
		FeeCharged:  receipt.FeeCharged,
		NetReceived: receipt.NetReceived,
		Legs:        receipt.Legs,
		FeeBps:      receipt.FeeBps,
		ExecutedAt:  receipt.ExecutedAt,
	}
}

func (req routeRequest) route() (router.Route, error) {
	route := router.Route{UserMaxIn: req.UserMaxIn, UserMinOut: req.UserMinOut}
	for i, leg := range req.Legs {
		inMint, err := parseAddress(fmt.Sprintf("legs[%d].inMint", i), leg.InMint)
		if err != nil {
			return router.Route{}, err
		}
		outMint, err := parseAddress(fmt.Sprintf("legs[%d].outMint", i), leg.OutMint)
		if err != nil {
			return router.Route{}, err
		}
		var payload []byte
		if raw := strings.TrimPrefix(strings.TrimSpace(leg.Payload), "0x"); raw != "" {
			payload, err = hex.DecodeString(raw)
			if err != nil {
				return router.Route{}, fmt.Errorf("legs[%d].payload: %w", i, err)
			}
		}
		route.Legs = append(route.Legs, router.Leg{
			Venue:         router.VenueID(leg.Venue),
			InAmountHint:  leg.InAmountHint,
			MinOutHint:    leg.MinOutHint,
			ResourceCount: leg.ResourceCount,
			Payload:       payload,
			InMint:        inMint,
			OutMint:       outMint,
		})
	}
	return route, nil
}

func (req routeRequest) pool() ([]types.Resource, error) {
	pool := make([]types.Resource, 0, len(req.Resources))
	for i, res := range req.Resources {
		addr, err := parseAddress(fmt.Sprintf("resources[%d].address", i), res.Address)
		if err != nil {
			return nil, err
		}
		owner, err := parseAddress(fmt.Sprintf("resources[%d].owner", i), res.Owner)
		if err != nil {
			return nil, err
		}
		pool = append(pool, types.Resource{Address: addr, Owner: owner, Signer: res.Signer, Writable: res.Writable})
	}
	return pool, nil
}

func (s *Server) handleExecuteRoute(w http.ResponseWriter, r *http.Request) {
	caller, payload, err := s.authenticate(r, "route.execute")
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	var req routeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
		return
	}
	source, err := parseAddress("source", req.Source)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
		return
	}
	destination, err := parseAddress("destination", req.Destination)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
		return
	}
	feeDestination, err := parseAddress("feeDestination", req.FeeDestination)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
		return
	}
	route, err := req.route()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
		return
	}
	pool, err := req.pool()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
		return
	}

	receipt, err := s.node.ExecuteRoute(route, pool, caller, source, destination, feeDestination)
	if err != nil {
		writeRouteError(w, err)
		return
	}
	writeResult(w, http.StatusOK, receiptResponse(receipt))
}

type accountResult struct {
	Owner   string `json:"owner"`
	Mint    string `json:"mint"`
	Balance uint64 `json:"balance"`
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress("address", chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
		return
	}
	acct, ok := s.node.TokenAccount(addr)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "token account not found")
		return
	}
	writeResult(w, http.StatusOK, accountResult{
		Owner:   renderAddress(acct.Owner),
		Mint:    renderAddress(acct.Mint),
		Balance: acct.Balance,
	})
}
