package ledger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"skillproof/internal/ledger"
	dErrors "skillproof/pkg/domain-errors"
)

const (
	testRecipient = "0x1111111111111111111111111111111111111111"
	testSigner    = "0x2222222222222222222222222222222222222222"
	testHash      = "0x4242424242424242424242424242424242424242424242424242424242424242"
)

// ledgerStub simulates the ledger RPC service. Receipts flip from pending to
// a terminal status after pendingPolls reads.
type ledgerStub struct {
	mintCalls    atomic.Int64
	receiptCalls atomic.Int64
	pendingPolls int64
	finalStatus  string
	events       []ledger.Event
	server       *httptest.Server
}

func newLedgerStub(pendingPolls int64, finalStatus string, events []ledger.Event) *ledgerStub {
	stub := &ledgerStub{
		pendingPolls: pendingPolls,
		finalStatus:  finalStatus,
		events:       events,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rpc/v1/credentials/mint", func(w http.ResponseWriter, _ *http.Request) {
		stub.mintCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"tx_hash": "0xabc"})
	})
	mux.HandleFunc("GET /rpc/v1/tx/{hash}/receipt", func(w http.ResponseWriter, r *http.Request) {
		n := stub.receiptCalls.Add(1)
		status := stub.finalStatus
		if n <= stub.pendingPolls {
			status = ledger.StatusPending
		}
		_ = json.NewEncoder(w).Encode(ledger.Receipt{
			TxHash: r.PathValue("hash"),
			Status: status,
			Events: stub.events,
		})
	})
	mux.HandleFunc("GET /rpc/v1/identities/{address}", func(w http.ResponseWriter, r *http.Request) {
		exists := r.PathValue("address") == testRecipient
		_ = json.NewEncoder(w).Encode(map[string]bool{"exists": exists})
	})
	mux.HandleFunc("GET /rpc/v1/random", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int64{"value": 7})
	})
	mux.HandleFunc("GET /rpc/v1/credentials/{token}/hash", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"hash": testHash})
	})
	mux.HandleFunc("GET /rpc/v1/plans/{key}/price", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int64{"amount": 5000})
	})
	mux.HandleFunc("POST /rpc/v1/subscriptions/pay", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"tx_hash": "0xabc"})
	})
	stub.server = httptest.NewServer(mux)
	return stub
}

func (s *ledgerStub) client(opts ...ledger.Option) *ledger.Client {
	opts = append([]ledger.Option{
		ledger.WithPollInterval(time.Millisecond),
		ledger.WithReceiptTimeout(250 * time.Millisecond),
	}, opts...)
	return ledger.New(s.server.URL, "test-key", opts...)
}

type ClientSuite struct {
	suite.Suite
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) TestMintConfirmedAfterPendingPolls() {
	stub := newLedgerStub(2, ledger.StatusConfirmed, []ledger.Event{
		{Name: ledger.EventCredentialMinted, TokenID: 42},
	})
	defer stub.server.Close()

	receipt, err := stub.client().MintCredential(context.Background(), testRecipient, testHash, "https://meta/1", testSigner)
	s.Require().NoError(err)
	s.EqualValues(42, receipt.TokenID)
	s.Equal("0xabc", receipt.TxHash)
	s.GreaterOrEqual(stub.receiptCalls.Load(), int64(3), "should poll through pending receipts")
}

func (s *ClientSuite) TestMintRevertedIsFailed() {
	stub := newLedgerStub(0, ledger.StatusReverted, nil)
	defer stub.server.Close()

	_, err := stub.client().MintCredential(context.Background(), testRecipient, testHash, "", testSigner)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAnchoringFailed))
}

func (s *ClientSuite) TestMintTimeoutIsIndeterminate() {
	// Receipt never leaves pending within the client's receipt timeout.
	stub := newLedgerStub(1<<30, ledger.StatusConfirmed, nil)
	defer stub.server.Close()

	_, err := stub.client().MintCredential(context.Background(), testRecipient, testHash, "", testSigner)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAnchoringIndeterminate),
		"timeout must be indeterminate, not failed: %v", err)
	s.Equal("0xabc", ledger.IndeterminateTxHash(err),
		"the submitted tx hash must survive the timeout for reconciliation")
}

func (s *ClientSuite) TestMintMissingEventIsIndeterminate() {
	stub := newLedgerStub(0, ledger.StatusConfirmed, []ledger.Event{{Name: "SomethingElse"}})
	defer stub.server.Close()

	_, err := stub.client().MintCredential(context.Background(), testRecipient, testHash, "", testSigner)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAnchoringIndeterminate))
	s.Equal("0xabc", ledger.IndeterminateTxHash(err))
}

func (s *ClientSuite) TestMintValidatesLocallyBeforeSending() {
	stub := newLedgerStub(0, ledger.StatusConfirmed, nil)
	defer stub.server.Close()
	client := stub.client()

	_, err := client.MintCredential(context.Background(), "not-an-address", testHash, "", testSigner)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = client.MintCredential(context.Background(), testRecipient, "0x123", "", testSigner)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	s.EqualValues(0, stub.mintCalls.Load(), "invalid input must never reach the ledger")
}

func (s *ClientSuite) TestHasIdentity() {
	stub := newLedgerStub(0, ledger.StatusConfirmed, nil)
	defer stub.server.Close()
	client := stub.client()

	exists, err := client.HasIdentity(context.Background(), testRecipient)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = client.HasIdentity(context.Background(), testSigner)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *ClientSuite) TestReadRandomRejectsBadBoundLocally() {
	stub := newLedgerStub(0, ledger.StatusConfirmed, nil)
	defer stub.server.Close()
	client := stub.client()

	_, err := client.ReadRandom(context.Background(), 0)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	_, err = client.ReadRandom(context.Background(), -5)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	value, err := client.ReadRandom(context.Background(), 100)
	s.Require().NoError(err)
	s.EqualValues(7, value)
}

func (s *ClientSuite) TestReadCredentialHash() {
	stub := newLedgerStub(0, ledger.StatusConfirmed, nil)
	defer stub.server.Close()

	hash, err := stub.client().ReadCredentialHash(context.Background(), 42)
	s.Require().NoError(err)
	s.Equal(testHash, hash)
}

func (s *ClientSuite) TestReadPlanPrice() {
	stub := newLedgerStub(0, ledger.StatusConfirmed, nil)
	defer stub.server.Close()

	amount, err := stub.client().ReadPlanPrice(context.Background(), "pro")
	s.Require().NoError(err)
	s.EqualValues(5000, amount)
}

func (s *ClientSuite) TestPaySubscription() {
	stub := newLedgerStub(0, ledger.StatusConfirmed, nil)
	defer stub.server.Close()

	txHash, err := stub.client().PaySubscription(context.Background(), testRecipient, "pro")
	s.Require().NoError(err)
	s.Equal("0xabc", txHash)
}
