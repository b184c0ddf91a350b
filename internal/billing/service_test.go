package billing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
)

type fakeLedger struct {
	price       int64
	payCalls    int
	lastAddress string
}

func (f *fakeLedger) ReadPlanPrice(context.Context, string) (int64, error) {
	return f.price, nil
}

func (f *fakeLedger) PaySubscription(_ context.Context, teamAddress, _ string) (string, error) {
	f.payCalls++
	f.lastAddress = teamAddress
	return "0xpaid", nil
}

type fakeGate struct {
	did id.DID
	err error
}

func (f *fakeGate) RequireSubjectDID(context.Context, id.TeamID) (id.DID, error) {
	return f.did, f.err
}

func TestPlanPrice(t *testing.T) {
	svc := New(&fakeLedger{price: 1500}, &fakeGate{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	price, err := svc.PlanPrice(context.Background(), "pro")

	require.NoError(t, err)
	assert.Equal(t, int64(1500), price)
}

func TestPaySettlesAgainstTeamAddress(t *testing.T) {
	ledger := &fakeLedger{}
	did := id.MustDID("did:skill:0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	svc := New(ledger, &fakeGate{did: did}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	txHash, err := svc.Pay(context.Background(), id.TeamID(uuid.New()), "pro")

	require.NoError(t, err)
	assert.Equal(t, "0xpaid", txHash)
	assert.Equal(t, did.Address(), ledger.lastAddress)
}

func TestPayRequiresDID(t *testing.T) {
	ledger := &fakeLedger{}
	gate := &fakeGate{err: dErrors.New(dErrors.CodePrecondition, "subject DID missing")}
	svc := New(ledger, gate, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.Pay(context.Background(), id.TeamID(uuid.New()), "pro")

	assert.True(t, dErrors.HasCode(err, dErrors.CodePrecondition))
	assert.Zero(t, ledger.payCalls)
}
