package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// These are the core error primitives used at every trust boundary. Unit tests
// ensure invariants like "wrapped domain errors preserve original code" and
// "errors.Is matches by code" are maintained.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "credential not found"}
		s.Equal("credential not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeAnchoringIndeterminate}
		s.Equal("anchoring_indeterminate", err.Error())
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesDomainCode() {
	inner := New(CodeAnchoringFailed, "mint reverted")
	wrapped := Wrap(inner, CodeInternal, "approve failed")

	s.True(HasCode(wrapped, CodeAnchoringFailed), "wrapping must not launder the anchoring code")
	s.False(HasCode(wrapped, CodeInternal))
}

func (s *DomainErrorsSuite) TestWrapNonDomainError() {
	plain := fmt.Errorf("connection refused")
	wrapped := Wrap(plain, CodeTimeout, "ledger unreachable")

	s.True(HasCode(wrapped, CodeTimeout))
	s.True(errors.Is(wrapped, plain))
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	a := New(CodePrecondition, "subject DID missing")
	b := New(CodePrecondition, "issuer DID missing")

	s.True(errors.Is(a, b), "same code should match regardless of message")
	s.False(errors.Is(a, New(CodeAlreadyInState, "")))
}

func (s *DomainErrorsSuite) TestHasCodeOnPlainError() {
	s.False(HasCode(errors.New("boom"), CodeInternal))
	s.False(HasCode(nil, CodeInternal))
}
