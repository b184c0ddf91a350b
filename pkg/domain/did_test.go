package domain

import (
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "skillproof/pkg/domain-errors"
)

type DIDSuite struct {
	suite.Suite
}

func TestDIDSuite(t *testing.T) {
	suite.Run(t, new(DIDSuite))
}

func (s *DIDSuite) TestParseValid() {
	did, err := ParseDID("did:skill:0x1111111111111111111111111111111111111111")
	s.Require().NoError(err)
	s.Equal("skill", did.Namespace())
	s.Equal("0x1111111111111111111111111111111111111111", did.Address())
	s.Equal("did:skill:0x1111111111111111111111111111111111111111", did.String())
}

func (s *DIDSuite) TestParseNormalizesAddressCase() {
	did, err := ParseDID("did:skill:0xABCDEF1234567890abcdef1234567890ABCDEF12")
	s.Require().NoError(err)
	s.Equal("0xabcdef1234567890abcdef1234567890abcdef12", did.Address())
}

func (s *DIDSuite) TestParseRejectsMalformed() {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing prefix", "skill:0x1111111111111111111111111111111111111111"},
		{"missing namespace", "did::0x1111111111111111111111111111111111111111"},
		{"missing address", "did:skill:"},
		{"short address", "did:skill:0x1234"},
		{"no 0x prefix", "did:skill:1111111111111111111111111111111111111111ab"},
		{"non-hex address", "did:skill:0x11111111111111111111111111111111111111zz"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := ParseDID(tc.input)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func (s *DIDSuite) TestZeroValue() {
	var did DID
	s.True(did.IsZero())
	s.Equal("", did.String())
}
