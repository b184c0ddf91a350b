package domain

import (
	"strings"

	dErrors "skillproof/pkg/domain-errors"
)

// DID is a decentralized identifier of the form did:<namespace>:<0x + 20-byte hex address>.
// It binds a subject or issuer to an on-ledger address. DIDs are provisioned by a
// separate identity-creation flow; this package only parses and carries them.
type DID struct {
	namespace string
	address   string // 0x-prefixed, lowercased 40 hex chars
}

const didPrefix = "did:"

// ParseDID validates and normalizes a DID string.
func ParseDID(s string) (DID, error) {
	if s == "" {
		return DID{}, dErrors.New(dErrors.CodeValidation, "DID cannot be empty")
	}
	if !strings.HasPrefix(s, didPrefix) {
		return DID{}, dErrors.New(dErrors.CodeValidation, "DID must start with did:")
	}
	rest := s[len(didPrefix):]
	sep := strings.IndexByte(rest, ':')
	if sep <= 0 || sep == len(rest)-1 {
		return DID{}, dErrors.New(dErrors.CodeValidation, "DID must have the form did:<namespace>:<address>")
	}
	namespace := rest[:sep]
	address := strings.ToLower(rest[sep+1:])
	if !isHexAddress(address) {
		return DID{}, dErrors.New(dErrors.CodeValidation, "DID address must be a 0x-prefixed 20-byte hex string")
	}
	return DID{namespace: namespace, address: address}, nil
}

// MustDID parses a DID or panics. Test fixtures only.
func MustDID(s string) DID {
	did, err := ParseDID(s)
	if err != nil {
		panic(err)
	}
	return did
}

func (d DID) String() string {
	if d.IsZero() {
		return ""
	}
	return didPrefix + d.namespace + ":" + d.address
}

// Address returns the 0x-prefixed on-ledger address the DID binds to.
func (d DID) Address() string { return d.address }

// Namespace returns the DID method namespace.
func (d DID) Namespace() string { return d.namespace }

func (d DID) IsZero() bool { return d.namespace == "" && d.address == "" }

func isHexAddress(s string) bool {
	if len(s) != 42 || s[0] != '0' || s[1] != 'x' {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
