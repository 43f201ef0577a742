package http

import (
	"encoding/hex"

	authharness "github.com/mark3labs/auth-harness"
	"github.com/mark3labs/auth-harness/encoding"
)

// UnitPayload is the wire form of a VerifiableUnit. Byte fields are hex.
type UnitPayload struct {
	Fingerprint   string `json:"fingerprint"`
	Algorithm     uint8  `json:"algorithm"`
	EntryCategory uint8  `json:"entryCategory"`
	CycleBudget   uint64 `json:"cycleBudget"`
	Signature     string `json:"signature,omitempty"`
}

// NewUnitPayload converts a unit to its wire form.
func NewUnitPayload(unit *authharness.VerifiableUnit) UnitPayload {
	return UnitPayload{
		Fingerprint:   unit.Fingerprint.String(),
		Algorithm:     uint8(unit.Algorithm),
		EntryCategory: uint8(unit.EntryCategory),
		CycleBudget:   unit.CycleBudget,
		Signature:     hex.EncodeToString(unit.Signature),
	}
}

// Unit converts the payload back into a VerifiableUnit.
func (p UnitPayload) Unit() (*authharness.VerifiableUnit, error) {
	raw, err := encoding.Decode(p.Fingerprint, encoding.Hex)
	if err != nil {
		return nil, err
	}
	fp, err := authharness.FingerprintFromBytes(raw)
	if err != nil {
		return nil, err
	}
	sig, err := encoding.Decode(p.Signature, encoding.Hex)
	if err != nil {
		return nil, err
	}

	unit := authharness.NewVerifiableUnit(fp, authharness.Algorithm(p.Algorithm),
		authharness.EntryCategory(p.EntryCategory), p.CycleBudget)
	if len(sig) > 0 {
		unit.AttachSignature(sig)
	}
	return unit, nil
}

// MessageResponse is the response from the /message endpoint.
type MessageResponse struct {
	// Message is the hex signing target.
	Message string `json:"message"`
}

// Rejection codes carried in VerifyResponse.Code.
const (
	CodeRejected       = "rejected"
	CodeBudgetExceeded = "budget_exceeded"
)

// VerifyResponse is the response from the /verify endpoint.
type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	Cycles uint64 `json:"cycles,omitempty"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// SupportedAlgorithm is one entry of the /supported response.
type SupportedAlgorithm struct {
	ID   uint8  `json:"id"`
	Name string `json:"name"`
}

// SupportedResponse is the response from the /supported endpoint.
type SupportedResponse struct {
	Algorithms []SupportedAlgorithm `json:"algorithms"`
}

// ErrorResponse is the body of every non-200 response.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
