package persist

import (
	"context"
	"fmt"

	"github.com/l1jgo/gridwalk/internal/grid"
)

// CellChangeEntry is one committed step, journalled for collaborators that
// react to cell changes outside the process.
type CellChangeEntry struct {
	Tick uint64
	Name string
	From grid.Cell
	To   grid.Cell
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// Append atomically writes a batch of entries in a single transaction.
func (r *JournalRepo) Append(ctx context.Context, entries []CellChangeEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO cell_changes (tick, name, from_x, from_y, to_x, to_y)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			int64(e.Tick), e.Name, e.From.X, e.From.Y, e.To.X, e.To.Y,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// MarkProcessed marks all journal entries as processed.
func (r *JournalRepo) MarkProcessed(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE cell_changes SET processed = TRUE WHERE processed = FALSE`,
	)
	return err
}
