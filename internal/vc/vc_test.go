package vc_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"

	"skillproof/internal/vc"
	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
)

type BuilderSuite struct {
	suite.Suite
	issuerDID  id.DID
	subjectDID id.DID
	issuedAt   time.Time
}

func TestBuilderSuite(t *testing.T) {
	suite.Run(t, new(BuilderSuite))
}

func (s *BuilderSuite) SetupTest() {
	s.issuerDID = id.MustDID("did:skill:0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	s.subjectDID = id.MustDID("did:skill:0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	s.issuedAt = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func (s *BuilderSuite) TestHashStability() {
	_, hash1, err := vc.Build(s.issuerDID, s.subjectDID, "Go Backend Engineering", "certification", "Ada L.", s.issuedAt)
	s.Require().NoError(err)
	doc2, hash2, err := vc.Build(s.issuerDID, s.subjectDID, "Go Backend Engineering", "certification", "Ada L.", s.issuedAt)
	s.Require().NoError(err)

	s.Equal(hash1, hash2, "identical logical content must hash identically")

	raw1, err := doc2.CanonicalJSON()
	s.Require().NoError(err)
	raw2, err := doc2.CanonicalJSON()
	s.Require().NoError(err)
	s.Equal(raw1, raw2, "canonical serialization must be byte-stable")
}

func (s *BuilderSuite) TestSingleFieldChangesHash() {
	_, base, err := vc.Build(s.issuerDID, s.subjectDID, "Go Backend Engineering", "certification", "Ada L.", s.issuedAt)
	s.Require().NoError(err)

	_, titleChanged, err := vc.Build(s.issuerDID, s.subjectDID, "Go Backend Engineering II", "certification", "Ada L.", s.issuedAt)
	s.Require().NoError(err)
	s.NotEqual(base, titleChanged)

	_, subjectChanged, err := vc.Build(s.issuerDID, s.issuerDID, "Go Backend Engineering", "certification", "Ada L.", s.issuedAt)
	s.Require().NoError(err)
	s.NotEqual(base, subjectChanged)

	_, timeChanged, err := vc.Build(s.issuerDID, s.subjectDID, "Go Backend Engineering", "certification", "Ada L.", s.issuedAt.Add(time.Second))
	s.Require().NoError(err)
	s.NotEqual(base, timeChanged)
}

func (s *BuilderSuite) TestDocumentShape() {
	doc, _, err := vc.Build(s.issuerDID, s.subjectDID, "Rust Fundamentals", "education", "", s.issuedAt)
	s.Require().NoError(err)

	raw, err := doc.CanonicalJSON()
	s.Require().NoError(err)
	body := string(raw)

	s.Equal("https://www.w3.org/2018/credentials/v1", gjson.Get(body, `@context.0`).String())
	s.Equal("VerifiableCredential", gjson.Get(body, "type.0").String())
	s.Equal("SkillClaimCredential", gjson.Get(body, "type.1").String())
	s.Equal(s.issuerDID.String(), gjson.Get(body, "issuer").String())
	s.Equal("2026-03-14T09:26:53Z", gjson.Get(body, "issuanceDate").String())
	s.Equal(s.subjectDID.String(), gjson.Get(body, "credentialSubject.id").String())
	s.Equal("Rust Fundamentals", gjson.Get(body, "credentialSubject.title").String())
	s.False(gjson.Get(body, "credentialSubject.name").Exists(), "empty display name must be omitted")
}

func (s *BuilderSuite) TestValidation() {
	cases := []struct {
		name       string
		issuerDID  id.DID
		subjectDID id.DID
		title      string
		issuedAt   time.Time
	}{
		{"zero issuer DID", id.DID{}, s.subjectDID, "t", s.issuedAt},
		{"zero subject DID", s.issuerDID, id.DID{}, "t", s.issuedAt},
		{"empty title", s.issuerDID, s.subjectDID, "", s.issuedAt},
		{"zero issuance time", s.issuerDID, s.subjectDID, "t", time.Time{}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, _, err := vc.Build(tc.issuerDID, tc.subjectDID, tc.title, "", "", tc.issuedAt)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func (s *BuilderSuite) TestAnchoredRoundTrip() {
	doc, _, err := vc.Build(s.issuerDID, s.subjectDID, "Go Backend Engineering", "certification", "Ada L.", s.issuedAt)
	s.Require().NoError(err)

	data, err := vc.MarshalAnchored(42, "0xabc123", doc)
	s.Require().NoError(err)

	s.EqualValues(42, gjson.GetBytes(data, "tokenId").Int())
	s.Equal("0xabc123", gjson.GetBytes(data, "txHash").String())
	s.Equal(s.issuerDID.String(), gjson.GetBytes(data, "vc.issuer").String())

	anchored, err := vc.ParseAnchored(data)
	s.Require().NoError(err)
	s.EqualValues(42, anchored.TokenID)
	s.Equal(doc, anchored.VC)
}

func (s *BuilderSuite) TestHashHex() {
	_, hash, err := vc.Build(s.issuerDID, s.subjectDID, "t", "", "", s.issuedAt)
	s.Require().NoError(err)
	hex := hash.Hex()
	s.Len(hex, 2+2*vc.HashSize)
	s.Equal("0x", hex[:2])
}
