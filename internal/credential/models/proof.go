package models

import (
	"encoding/json"
	"strings"

	dErrors "skillproof/pkg/domain-errors"
)

// ProofType enumerates the supported proof kinds a candidate can attach.
type ProofType string

const (
	ProofTypeNone    ProofType = "none"
	ProofTypeEVMTx   ProofType = "evm-tx"
	ProofTypeJSON    ProofType = "json"
	ProofTypePayment ProofType = "payment"
	ProofTypeAddress ProofType = "address"
)

// Proof is a tagged union over the enumerated proof types. Each variant
// carries its own validated shape instead of an untyped opaque string.
type Proof interface {
	Type() ProofType
	// Payload returns the persisted wire form of the proof data.
	Payload() string
}

// ParseProof validates a (type, payload) pair into its typed variant.
func ParseProof(proofType, payload string) (Proof, error) {
	switch ProofType(proofType) {
	case ProofTypeNone:
		if payload != "" {
			return nil, dErrors.New(dErrors.CodeValidation, "proof payload must be empty for proof type none")
		}
		return NoProof{}, nil
	case ProofTypeEVMTx:
		if !isTxHash(payload) {
			return nil, dErrors.New(dErrors.CodeValidation, "evm-tx proof must be a 0x-prefixed 32-byte transaction hash")
		}
		return EVMTxProof{TxHash: strings.ToLower(payload)}, nil
	case ProofTypeJSON:
		if !json.Valid([]byte(payload)) || payload == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "json proof payload must be valid JSON")
		}
		return JSONProof{Raw: json.RawMessage(payload)}, nil
	case ProofTypePayment:
		if payload == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "payment proof requires a reference")
		}
		return PaymentProof{Reference: payload}, nil
	case ProofTypeAddress:
		if !isAddress(payload) {
			return nil, dErrors.New(dErrors.CodeValidation, "address proof must be a 0x-prefixed 20-byte address")
		}
		return AddressProof{Address: strings.ToLower(payload)}, nil
	}
	return nil, dErrors.New(dErrors.CodeValidation, "unknown proof type: "+proofType)
}

// NoProof is a bare claim with no supporting evidence.
type NoProof struct{}

func (NoProof) Type() ProofType { return ProofTypeNone }
func (NoProof) Payload() string { return "" }

// EVMTxProof references a transaction on an EVM chain as evidence.
type EVMTxProof struct {
	TxHash string
}

func (p EVMTxProof) Type() ProofType { return ProofTypeEVMTx }
func (p EVMTxProof) Payload() string { return p.TxHash }

// JSONProof carries an arbitrary structured evidence document.
type JSONProof struct {
	Raw json.RawMessage
}

func (p JSONProof) Type() ProofType { return ProofTypeJSON }
func (p JSONProof) Payload() string { return string(p.Raw) }

// PaymentProof references a payment known to the issuer.
type PaymentProof struct {
	Reference string
}

func (p PaymentProof) Type() ProofType { return ProofTypePayment }
func (p PaymentProof) Payload() string { return p.Reference }

// AddressProof asserts control of an on-ledger address.
type AddressProof struct {
	Address string
}

func (p AddressProof) Type() ProofType { return ProofTypeAddress }
func (p AddressProof) Payload() string { return p.Address }

func isTxHash(s string) bool {
	return isHexWithPrefix(s, 64)
}

func isAddress(s string) bool {
	return isHexWithPrefix(s, 40)
}

func isHexWithPrefix(s string, hexLen int) bool {
	if len(s) != hexLen+2 || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
