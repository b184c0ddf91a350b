// Package ledger is the anchoring client for the external append-only ledger
// service. The ledger itself is a black box consumed over its RPC interface;
// this package owns submission, receipt waiting, event decoding, and the
// typed failure taxonomy the state machines depend on.
//
// Writes distinguish four outcomes: local validation failure (never sent),
// definitive rejection (anchoring_failed), confirmed inclusion, and timeout
// awaiting inclusion (anchoring_indeterminate). Only a confirmed inclusion
// with a decodable success event is treated as committed.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"skillproof/internal/ledger/tracer"
	dErrors "skillproof/pkg/domain-errors"
)

// Receipt statuses reported by the ledger RPC service.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusReverted  = "reverted"
)

// EventCredentialMinted is the success event emitted by a credential mint.
const EventCredentialMinted = "CredentialMinted"

// MintReceipt is the committed result of a credential mint.
type MintReceipt struct {
	TokenID uint64
	TxHash  string
}

// IndeterminateError is an anchoring_indeterminate failure that carries the
// submitted transaction hash, when one is known. The journal persists the
// hash so the reconciliation worker can read the receipt back and settle the
// outcome without a second mint.
type IndeterminateError struct {
	TxHash string
	Err    error
}

func (e *IndeterminateError) Error() string { return e.Err.Error() }

func (e *IndeterminateError) Unwrap() error { return e.Err }

// IndeterminateTxHash returns the submitted transaction hash carried by an
// indeterminate anchoring error, or "" when no submission is known to exist.
func IndeterminateTxHash(err error) string {
	var ie *IndeterminateError
	if errors.As(err, &ie) {
		return ie.TxHash
	}
	return ""
}

// Receipt is a transaction receipt read back from the ledger.
type Receipt struct {
	TxHash string  `json:"tx_hash"`
	Status string  `json:"status"`
	Events []Event `json:"events"`
}

// Event is a decoded ledger event from a receipt.
type Event struct {
	Name         string `json:"name"`
	TokenID      uint64 `json:"token_id,omitempty"`
	OwnerAddress string `json:"owner_address,omitempty"`
}

// MintedEvent returns the CredentialMinted event from the receipt, if present.
func (r Receipt) MintedEvent() (Event, bool) {
	for _, e := range r.Events {
		if e.Name == EventCredentialMinted {
			return e, true
		}
	}
	return Event{}, false
}

// Client talks to the ledger RPC service. It is immutable after construction:
// build one at startup and inject it by reference into each component.
type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	receiptTimeout time.Duration
	pollInterval   time.Duration
	tracer         tracer.Tracer
	logger         *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithReceiptTimeout bounds the wait for transaction inclusion.
func WithReceiptTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.receiptTimeout = d
	}
}

// WithPollInterval sets the initial receipt polling interval (for testing).
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithTracer sets the tracer for ledger operations.
func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a ledger client.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		receiptTimeout: 90 * time.Second,
		pollInterval:   500 * time.Millisecond,
		tracer:         tracer.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// mintRequest is the wire form of a mint submission.
type mintRequest struct {
	To          string `json:"to"`
	ContentHash string `json:"content_hash"`
	MetadataURI string `json:"metadata_uri"`
	Signer      string `json:"signer"`
}

// submitResponse is returned by write submissions before inclusion.
type submitResponse struct {
	TxHash string `json:"tx_hash"`
}

// MintCredential submits a signed mint, waits for inclusion, and decodes the
// CredentialMinted event to recover the token ID. Callers must not treat the
// credential as anchored on any error path; an indeterminate error means the
// outcome must be reconciled by reading ledger state back, never by re-minting.
func (c *Client) MintCredential(ctx context.Context, toAddress string, contentHash string, metadataURI string, signerAddress string) (MintReceipt, error) {
	if err := validateAddress(toAddress, "recipient address"); err != nil {
		requestsTotal.WithLabelValues("mint", outcomeInvalid).Inc()
		return MintReceipt{}, err
	}
	if err := validateAddress(signerAddress, "signer address"); err != nil {
		requestsTotal.WithLabelValues("mint", outcomeInvalid).Inc()
		return MintReceipt{}, err
	}
	if err := validateContentHash(contentHash); err != nil {
		requestsTotal.WithLabelValues("mint", outcomeInvalid).Inc()
		return MintReceipt{}, err
	}

	ctx, span := c.tracer.Start(ctx, "ledger.MintCredential",
		tracer.String("to", toAddress),
		tracer.String("content_hash", contentHash),
	)
	start := time.Now()
	receipt, err := c.mint(ctx, mintRequest{
		To:          toAddress,
		ContentHash: contentHash,
		MetadataURI: metadataURI,
		Signer:      signerAddress,
	})
	requestDuration.WithLabelValues("mint").Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues("mint", outcomeFor(err)).Inc()
	span.End(err)
	return receipt, err
}

func (c *Client) mint(ctx context.Context, req mintRequest) (MintReceipt, error) {
	var submitted submitResponse
	if err := c.post(ctx, "/rpc/v1/credentials/mint", req, &submitted); err != nil {
		if ctx.Err() != nil {
			// The submission may or may not have reached the ledger.
			return MintReceipt{}, dErrors.Wrap(err, dErrors.CodeAnchoringIndeterminate, "mint submission interrupted")
		}
		return MintReceipt{}, dErrors.Wrap(err, dErrors.CodeAnchoringFailed, "mint submission failed")
	}
	if submitted.TxHash == "" {
		return MintReceipt{}, dErrors.New(dErrors.CodeAnchoringFailed, "ledger returned no transaction hash")
	}

	receipt, err := c.waitForReceipt(ctx, submitted.TxHash)
	if err != nil {
		return MintReceipt{}, err
	}
	if receipt.Status == StatusReverted {
		return MintReceipt{}, dErrors.New(dErrors.CodeAnchoringFailed, "mint reverted on ledger, tx "+submitted.TxHash)
	}

	event, ok := receipt.MintedEvent()
	if !ok {
		// Confirmed but undecodable: the write may have landed under a shape
		// we cannot interpret. Indeterminate, not failed.
		return MintReceipt{}, &IndeterminateError{
			TxHash: submitted.TxHash,
			Err:    dErrors.New(dErrors.CodeAnchoringIndeterminate, "confirmed receipt missing CredentialMinted event, tx "+submitted.TxHash),
		}
	}

	return MintReceipt{TokenID: event.TokenID, TxHash: submitted.TxHash}, nil
}

// waitForReceipt polls the receipt endpoint with exponential backoff until the
// transaction leaves the pending state or the receipt timeout elapses.
func (c *Client) waitForReceipt(ctx context.Context, txHash string) (Receipt, error) {
	var receipt Receipt
	errPending := errors.New("transaction pending")

	operation := func() error {
		r, err := c.TxReceipt(ctx, txHash)
		if err != nil {
			return err
		}
		if r.Status == StatusPending {
			return errPending
		}
		receipt = r
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.pollInterval
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = c.receiptTimeout

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		if c.logger != nil {
			c.logger.WarnContext(ctx, "receipt wait did not conclude",
				"tx_hash", txHash,
				"error", err,
			)
		}
		return Receipt{}, &IndeterminateError{
			TxHash: txHash,
			Err:    dErrors.Wrap(err, dErrors.CodeAnchoringIndeterminate, "timed out awaiting inclusion of tx "+txHash),
		}
	}
	return receipt, nil
}

// TxReceipt reads a transaction receipt once, without waiting. The
// reconciliation worker uses this to re-derive the outcome of indeterminate
// writes before anyone decides to retry.
func (c *Client) TxReceipt(ctx context.Context, txHash string) (Receipt, error) {
	if txHash == "" {
		return Receipt{}, dErrors.New(dErrors.CodeValidation, "transaction hash is required")
	}
	var receipt Receipt
	if err := c.get(ctx, "/rpc/v1/tx/"+txHash+"/receipt", &receipt); err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

// ReadCredentialHash returns the content hash anchored under a token ID.
// Read-only; used by out-of-band auditors and the reconciliation worker.
func (c *Client) ReadCredentialHash(ctx context.Context, tokenID uint64) (string, error) {
	ctx, span := c.tracer.Start(ctx, "ledger.ReadCredentialHash", tracer.Int64("token_id", int64(tokenID)))
	start := time.Now()

	var resp struct {
		Hash string `json:"hash"`
	}
	err := c.get(ctx, fmt.Sprintf("/rpc/v1/credentials/%d/hash", tokenID), &resp)

	requestDuration.WithLabelValues("read_hash").Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues("read_hash", outcomeFor(err)).Inc()
	span.End(err)
	if err != nil {
		return "", err
	}
	return resp.Hash, nil
}

// HasIdentity reports whether an on-ledger identity exists for the address.
func (c *Client) HasIdentity(ctx context.Context, address string) (bool, error) {
	if err := validateAddress(address, "address"); err != nil {
		return false, err
	}

	ctx, span := c.tracer.Start(ctx, "ledger.HasIdentity", tracer.String("address", address))
	start := time.Now()

	var resp struct {
		Exists bool `json:"exists"`
	}
	err := c.get(ctx, "/rpc/v1/identities/"+address, &resp)

	requestDuration.WithLabelValues("has_identity").Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues("has_identity", outcomeFor(err)).Inc()
	span.End(err)
	if err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// ReadRandom returns a verifiable random value in [0, bound) from the ledger's
// randomness source. bound must be positive; the check happens locally before
// any network call.
func (c *Client) ReadRandom(ctx context.Context, bound int64) (int64, error) {
	if bound <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "random bound must be positive")
	}

	ctx, span := c.tracer.Start(ctx, "ledger.ReadRandom", tracer.Int64("bound", bound))
	start := time.Now()

	var resp struct {
		Value int64 `json:"value"`
	}
	err := c.get(ctx, fmt.Sprintf("/rpc/v1/random?bound=%d", bound), &resp)

	requestDuration.WithLabelValues("read_random").Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues("read_random", outcomeFor(err)).Inc()
	span.End(err)
	if err != nil {
		return 0, err
	}
	if resp.Value < 0 || resp.Value >= bound {
		return 0, dErrors.New(dErrors.CodeInternal, "ledger returned random value out of range")
	}
	return resp.Value, nil
}

// ReadPlanPrice returns the ledger-native price for a subscription plan.
func (c *Client) ReadPlanPrice(ctx context.Context, planKey string) (int64, error) {
	if planKey == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "plan key is required")
	}

	ctx, span := c.tracer.Start(ctx, "ledger.ReadPlanPrice", tracer.String("plan", planKey))
	start := time.Now()

	var resp struct {
		Amount int64 `json:"amount"`
	}
	err := c.get(ctx, "/rpc/v1/plans/"+planKey+"/price", &resp)

	requestDuration.WithLabelValues("plan_price").Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues("plan_price", outcomeFor(err)).Inc()
	span.End(err)
	if err != nil {
		return 0, err
	}
	return resp.Amount, nil
}

// PaySubscription submits a subscription payment and waits for inclusion.
// Returns the transaction hash of the confirmed payment.
func (c *Client) PaySubscription(ctx context.Context, teamAddress string, planKey string) (string, error) {
	if err := validateAddress(teamAddress, "team address"); err != nil {
		return "", err
	}
	if planKey == "" {
		return "", dErrors.New(dErrors.CodeValidation, "plan key is required")
	}

	ctx, span := c.tracer.Start(ctx, "ledger.PaySubscription",
		tracer.String("team", teamAddress),
		tracer.String("plan", planKey),
	)
	start := time.Now()
	txHash, err := c.pay(ctx, teamAddress, planKey)
	requestDuration.WithLabelValues("pay_subscription").Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues("pay_subscription", outcomeFor(err)).Inc()
	span.End(err)
	return txHash, err
}

func (c *Client) pay(ctx context.Context, teamAddress, planKey string) (string, error) {
	body := map[string]string{"team": teamAddress, "plan_key": planKey}
	var submitted submitResponse
	if err := c.post(ctx, "/rpc/v1/subscriptions/pay", body, &submitted); err != nil {
		if ctx.Err() != nil {
			return "", dErrors.Wrap(err, dErrors.CodeAnchoringIndeterminate, "payment submission interrupted")
		}
		return "", dErrors.Wrap(err, dErrors.CodeAnchoringFailed, "payment submission failed")
	}
	receipt, err := c.waitForReceipt(ctx, submitted.TxHash)
	if err != nil {
		return "", err
	}
	if receipt.Status == StatusReverted {
		return "", dErrors.New(dErrors.CodeAnchoringFailed, "payment reverted on ledger, tx "+submitted.TxHash)
	}
	return submitted.TxHash, nil
}

// errorResponse is the ledger's error envelope.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) post(ctx context.Context, path string, body any, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal ledger request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "create ledger request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dst)
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "create ledger request")
	}
	return c.do(req, dst)
}

func (c *Client) do(req *http.Request, dst any) error {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() == context.DeadlineExceeded {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "ledger request timeout")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "ledger request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "read ledger response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		msg := fmt.Sprintf("ledger returned status %d", resp.StatusCode)
		if json.Unmarshal(data, &errResp) == nil && errResp.Message != "" {
			msg = errResp.Message
		}
		switch resp.StatusCode {
		case http.StatusNotFound:
			return dErrors.New(dErrors.CodeNotFound, msg)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return dErrors.New(dErrors.CodeBadRequest, msg)
		default:
			return dErrors.New(dErrors.CodeInternal, msg)
		}
	}

	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "parse ledger response")
	}
	return nil
}

func validateAddress(address, label string) error {
	if len(address) != 42 || !strings.HasPrefix(address, "0x") {
		return dErrors.New(dErrors.CodeValidation, label+" must be a 0x-prefixed 20-byte hex string")
	}
	for _, char := range address[2:] {
		switch {
		case char >= '0' && char <= '9':
		case char >= 'a' && char <= 'f':
		case char >= 'A' && char <= 'F':
		default:
			return dErrors.New(dErrors.CodeValidation, label+" must be a 0x-prefixed 20-byte hex string")
		}
	}
	return nil
}

func validateContentHash(hash string) error {
	if len(hash) != 66 || !strings.HasPrefix(hash, "0x") {
		return dErrors.New(dErrors.CodeValidation, "content hash must be a 0x-prefixed 32-byte hex string")
	}
	return nil
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case dErrors.HasCode(err, dErrors.CodeAnchoringIndeterminate):
		return outcomeIndeterminate
	case dErrors.HasCode(err, dErrors.CodeValidation):
		return outcomeInvalid
	default:
		return outcomeFailed
	}
}
