// Package vc builds canonical verifiable-credential documents and derives
// their content hashes. It is pure: no I/O, no clock reads, no randomness.
// Identical logical inputs always produce byte-identical serializations and
// therefore identical hashes, which is what makes anchored credentials
// independently verifiable.
package vc

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/sha3"

	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
)

const (
	contextMarker  = "https://www.w3.org/2018/credentials/v1"
	typeVerifiable = "VerifiableCredential"
	typeSkillClaim = "SkillClaimCredential"
)

// HashSize is the width of a credential content hash in bytes.
const HashSize = 32

// Hash is a content hash over the canonical serialization of a Document.
type Hash [HashSize]byte

// Hex returns the 0x-prefixed hex encoding of the hash, the form the ledger stores.
func (h Hash) Hex() string {
	return fmt.Sprintf("0x%x", h[:])
}

// Subject is the credentialSubject block. Field order is part of the
// canonical form; do not reorder.
type Subject struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	SubType string `json:"subType,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Document is the canonical verifiable-credential payload. Serialization
// uses the struct's declared field order, which gives a stable key ordering
// without a separate canonicalization pass.
type Document struct {
	Context      []string `json:"@context"`
	Type         []string `json:"type"`
	Issuer       string   `json:"issuer"`
	IssuanceDate string   `json:"issuanceDate"`
	Subject      Subject  `json:"credentialSubject"`
}

// AnchoredDocument wraps a Document with the ledger references produced by
// anchoring. It is written once per credential and never overwritten.
type AnchoredDocument struct {
	TokenID uint64   `json:"tokenId"`
	TxHash  string   `json:"txHash"`
	VC      Document `json:"vc"`
}

// Build constructs the canonical document for a claim and returns it together
// with its content hash. issuedAt is caller-supplied so the function stays pure;
// it is rendered as ISO-8601 UTC.
func Build(issuerDID, subjectDID id.DID, title, subType, displayName string, issuedAt time.Time) (Document, Hash, error) {
	if issuerDID.IsZero() {
		return Document{}, Hash{}, dErrors.New(dErrors.CodeValidation, "issuer DID is required")
	}
	if subjectDID.IsZero() {
		return Document{}, Hash{}, dErrors.New(dErrors.CodeValidation, "subject DID is required")
	}
	if title == "" {
		return Document{}, Hash{}, dErrors.New(dErrors.CodeValidation, "claim title is required")
	}
	if issuedAt.IsZero() {
		return Document{}, Hash{}, dErrors.New(dErrors.CodeValidation, "issuance time is required")
	}

	doc := Document{
		Context:      []string{contextMarker},
		Type:         []string{typeVerifiable, typeSkillClaim},
		Issuer:       issuerDID.String(),
		IssuanceDate: issuedAt.UTC().Format(time.RFC3339),
		Subject: Subject{
			ID:      subjectDID.String(),
			Title:   title,
			SubType: subType,
			Name:    displayName,
		},
	}

	hash, err := doc.ContentHash()
	if err != nil {
		return Document{}, Hash{}, err
	}
	return doc, hash, nil
}

// CanonicalJSON returns the canonical serialization of the document.
func (d Document) CanonicalJSON() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "serialize credential document")
	}
	return data, nil
}

// ContentHash computes the SHA3-256 digest of the canonical serialization.
func (d Document) ContentHash() (Hash, error) {
	data, err := d.CanonicalJSON()
	if err != nil {
		return Hash{}, err
	}
	return sha3.Sum256(data), nil
}

// MarshalAnchored serializes the write-once anchored wrapper.
func MarshalAnchored(tokenID uint64, txHash string, doc Document) ([]byte, error) {
	data, err := json.Marshal(AnchoredDocument{TokenID: tokenID, TxHash: txHash, VC: doc})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "serialize anchored document")
	}
	return data, nil
}

// ParseAnchored decodes a stored anchored wrapper.
func ParseAnchored(data []byte) (AnchoredDocument, error) {
	var anchored AnchoredDocument
	if err := json.Unmarshal(data, &anchored); err != nil {
		return AnchoredDocument{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode anchored document")
	}
	return anchored, nil
}
