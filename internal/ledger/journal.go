package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// JournalEntry records a write whose outcome could not be confirmed before
// timeout. Entries exist so operators and the reconciliation worker can
// re-derive the outcome from the ledger before anyone retries a mint.
type JournalEntry struct {
	Resource    string // credential or attempt identifier
	TxHash      string // empty when the submission itself was interrupted
	ContentHash string
	Reason      string
	RecordedAt  time.Time
	ResolvedAt  *time.Time
}

// Journal stores indeterminate anchoring outcomes.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
	Unresolved(ctx context.Context, limit int) ([]JournalEntry, error)
	Resolve(ctx context.Context, resource string, resolvedAt time.Time) error
}

// MemoryJournal keeps entries in memory for tests and local development.
type MemoryJournal struct {
	mu      sync.Mutex
	entries []JournalEntry
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Record(_ context.Context, entry JournalEntry) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	return nil
}

func (j *MemoryJournal) Unresolved(_ context.Context, limit int) ([]JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []JournalEntry
	for _, e := range j.entries {
		if e.ResolvedAt == nil {
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (j *MemoryJournal) Resolve(_ context.Context, resource string, resolvedAt time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.entries {
		if j.entries[i].Resource == resource && j.entries[i].ResolvedAt == nil {
			t := resolvedAt
			j.entries[i].ResolvedAt = &t
		}
	}
	return nil
}

// Entries returns a copy of all recorded entries. Test helper.
func (j *MemoryJournal) Entries() []JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]JournalEntry, len(j.entries))
	copy(out, j.entries)
	return out
}

// PostgresJournal persists journal entries in PostgreSQL.
type PostgresJournal struct {
	db *sql.DB
}

func NewPostgresJournal(db *sql.DB) *PostgresJournal {
	return &PostgresJournal{db: db}
}

func (j *PostgresJournal) Record(ctx context.Context, entry JournalEntry) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO anchor_journal (resource, tx_hash, content_hash, reason, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := j.db.ExecContext(ctx, query, entry.Resource, entry.TxHash, entry.ContentHash, entry.Reason, entry.RecordedAt)
	if err != nil {
		return fmt.Errorf("record journal entry: %w", err)
	}
	return nil
}

func (j *PostgresJournal) Unresolved(ctx context.Context, limit int) ([]JournalEntry, error) {
	query := `
		SELECT resource, tx_hash, content_hash, reason, recorded_at
		FROM anchor_journal
		WHERE resolved_at IS NULL
		ORDER BY recorded_at
		LIMIT $1
	`
	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list unresolved journal entries: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.Resource, &e.TxHash, &e.ContentHash, &e.Reason, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (j *PostgresJournal) Resolve(ctx context.Context, resource string, resolvedAt time.Time) error {
	query := `
		UPDATE anchor_journal
		SET resolved_at = $2
		WHERE resource = $1 AND resolved_at IS NULL
	`
	_, err := j.db.ExecContext(ctx, query, resource, resolvedAt)
	if err != nil {
		return fmt.Errorf("resolve journal entry: %w", err)
	}
	return nil
}
