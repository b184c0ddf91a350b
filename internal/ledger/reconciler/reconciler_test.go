package reconciler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillproof/internal/ledger"
	"skillproof/pkg/platform/audit"
)

type fakeReader struct {
	receipts map[string]ledger.Receipt
	calls    int
}

func (f *fakeReader) TxReceipt(_ context.Context, txHash string) (ledger.Receipt, error) {
	f.calls++
	return f.receipts[txHash], nil
}

func newWorker(reader *fakeReader, journal *ledger.MemoryJournal, sink *audit.MemorySink) *Worker {
	return New(journal, reader, sink, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSweepResolvesConfirmed(t *testing.T) {
	journal := ledger.NewMemoryJournal()
	require.NoError(t, journal.Record(context.Background(), ledger.JournalEntry{
		Resource: "cred-1", TxHash: "0xaa",
	}))
	reader := &fakeReader{receipts: map[string]ledger.Receipt{
		"0xaa": {TxHash: "0xaa", Status: ledger.StatusConfirmed},
	}}
	sink := audit.NewMemorySink()

	require.NoError(t, newWorker(reader, journal, sink).Sweep(context.Background()))

	unresolved, err := journal.Unresolved(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, unresolved)
	assert.Len(t, sink.ByAction(audit.ActionAnchorConfirmed), 1)
}

func TestSweepResolvesReverted(t *testing.T) {
	journal := ledger.NewMemoryJournal()
	require.NoError(t, journal.Record(context.Background(), ledger.JournalEntry{
		Resource: "cred-2", TxHash: "0xbb",
	}))
	reader := &fakeReader{receipts: map[string]ledger.Receipt{
		"0xbb": {TxHash: "0xbb", Status: ledger.StatusReverted},
	}}
	sink := audit.NewMemorySink()

	require.NoError(t, newWorker(reader, journal, sink).Sweep(context.Background()))

	assert.Len(t, sink.ByAction(audit.ActionAnchorFailed), 1)
}

func TestSweepLeavesPendingAndHashlessEntries(t *testing.T) {
	journal := ledger.NewMemoryJournal()
	require.NoError(t, journal.Record(context.Background(), ledger.JournalEntry{
		Resource: "cred-3", TxHash: "0xcc",
	}))
	require.NoError(t, journal.Record(context.Background(), ledger.JournalEntry{
		Resource: "cred-4",
	}))
	reader := &fakeReader{receipts: map[string]ledger.Receipt{
		"0xcc": {TxHash: "0xcc", Status: ledger.StatusPending},
	}}
	sink := audit.NewMemorySink()

	require.NoError(t, newWorker(reader, journal, sink).Sweep(context.Background()))

	unresolved, err := journal.Unresolved(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, unresolved, 2, "pending and hashless entries stay journaled")
	assert.Equal(t, 1, reader.calls, "hashless entries never hit the ledger")
	assert.Empty(t, sink.Events())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	journal := ledger.NewMemoryJournal()
	reader := &fakeReader{}
	w := New(journal, reader, audit.NewMemorySink(), slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
