package rpc

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dexroute/crypto"
)

const signingDomainV1 = "dexroute/rpc/v1"

var (
	errSignatureMissing = errors.New("rpc: signature required")
	errSignatureStale   = errors.New("rpc: signature timestamp outside window")
)

// signedRequest is the envelope for every state-changing call: the caller
// signs keccak256(domain | method | timestamp | payload) with a recoverable
// secp256k1 signature, and the recovered identity becomes the authenticated
// caller for the operation.
type signedRequest struct {
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
	Signature string          `json:"signature"`
}

// SigningDigest computes the digest a client must sign for the given method.
func SigningDigest(method string, timestamp int64, payload []byte) []byte {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(timestamp))
	return crypto.Keccak256([]byte(signingDomainV1), []byte(method), ts[:], payload)
}

// authenticate decodes the signed envelope from the request body, checks the
// timestamp freshness window, and recovers the caller identity from the
// signature. The returned payload is the raw bytes the caller signed.
func (s *Server) authenticate(r *http.Request, method string) ([20]byte, []byte, error) {
	var caller [20]byte
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		return caller, nil, fmt.Errorf("rpc: read body: %w", err)
	}
	var req signedRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return caller, nil, fmt.Errorf("rpc: decode envelope: %w", err)
	}
	sigHex := strings.TrimPrefix(strings.TrimSpace(req.Signature), "0x")
	if sigHex == "" {
		return caller, nil, errSignatureMissing
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return caller, nil, fmt.Errorf("rpc: decode signature: %w", err)
	}
	now := s.nowFn().Unix()
	if req.Timestamp < now-int64(s.window.Seconds()) || req.Timestamp > now+int64(s.window.Seconds()) {
		return caller, nil, errSignatureStale
	}
	digest := SigningDigest(method, req.Timestamp, req.Payload)
	caller, err = crypto.RecoverSigner(digest, sig)
	if err != nil {
		return caller, nil, err
	}
	return caller, req.Payload, nil
}
