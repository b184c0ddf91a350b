// Package reconciler resolves indeterminate anchoring outcomes. An anchor is
// indeterminate when the mint timed out awaiting inclusion: the write may or
// may not have landed. The worker re-reads ledger receipts for journaled
// entries and records the final outcome. It never re-mints; retrying a write
// is an operator decision made after the outcome is known.
package reconciler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"skillproof/internal/ledger"
	"skillproof/pkg/platform/audit"
)

// ReceiptReader is the read-only ledger dependency.
type ReceiptReader interface {
	TxReceipt(ctx context.Context, txHash string) (ledger.Receipt, error)
}

// Worker periodically sweeps the journal for unresolved entries.
type Worker struct {
	journal  ledger.Journal
	reader   ReceiptReader
	audit    audit.Publisher
	logger   *slog.Logger
	interval time.Duration
	batch    int
	parallel int
}

// Option configures the Worker.
type Option func(*Worker)

// WithInterval sets the sweep interval.
func WithInterval(d time.Duration) Option {
	return func(w *Worker) { w.interval = d }
}

// WithBatchSize caps how many entries one sweep processes.
func WithBatchSize(n int) Option {
	return func(w *Worker) { w.batch = n }
}

// New creates a reconciliation worker.
func New(journal ledger.Journal, reader ReceiptReader, publisher audit.Publisher, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		journal:  journal,
		reader:   reader,
		audit:    publisher,
		logger:   logger,
		interval: time.Minute,
		batch:    50,
		parallel: 4,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run sweeps until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.logger.ErrorContext(ctx, "reconciliation sweep failed", "error", err)
			}
		}
	}
}

// Sweep resolves one batch of journaled entries. Entries without a
// transaction hash cannot be resolved automatically and are left for an
// operator; entries still pending on the ledger stay journaled for the
// next sweep.
func (w *Worker) Sweep(ctx context.Context) error {
	entries, err := w.journal.Unresolved(ctx, w.batch)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.parallel)
	for _, entry := range entries {
		if entry.TxHash == "" {
			continue
		}
		g.Go(func() error {
			w.resolve(gctx, entry)
			return nil
		})
	}
	return g.Wait()
}

func (w *Worker) resolve(ctx context.Context, entry ledger.JournalEntry) {
	receipt, err := w.reader.TxReceipt(ctx, entry.TxHash)
	if err != nil {
		w.logger.WarnContext(ctx, "receipt read failed during reconciliation",
			"resource", entry.Resource,
			"tx_hash", entry.TxHash,
			"error", err,
		)
		return
	}

	var action audit.Action
	switch receipt.Status {
	case ledger.StatusConfirmed:
		action = audit.ActionAnchorConfirmed
	case ledger.StatusReverted:
		action = audit.ActionAnchorFailed
	default:
		// still pending, try again next sweep
		return
	}

	now := time.Now().UTC()
	if err := w.journal.Resolve(ctx, entry.Resource, now); err != nil {
		w.logger.ErrorContext(ctx, "journal resolve failed", "resource", entry.Resource, "error", err)
		return
	}
	event := audit.Event{
		Action:    action,
		Resource:  entry.Resource,
		Detail:    map[string]string{"tx_hash": entry.TxHash, "status": receipt.Status},
		Timestamp: now,
	}
	if err := w.audit.Emit(ctx, event); err != nil {
		w.logger.WarnContext(ctx, "audit emit failed", "action", string(action), "error", err)
	}
	w.logger.InfoContext(ctx, "anchor outcome reconciled",
		"resource", entry.Resource,
		"tx_hash", entry.TxHash,
		"status", receipt.Status,
	)
}
