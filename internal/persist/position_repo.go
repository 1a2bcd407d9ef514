package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/l1jgo/gridwalk/internal/grid"
)

// ObjectPosition is the persisted state of one named object.
type ObjectPosition struct {
	Name string
	Cell grid.Cell
	Pos  grid.Vec2
}

const upsertPosition = `
INSERT INTO object_positions (name, cell_x, cell_y, world_x, world_y, saved_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (name) DO UPDATE SET
    cell_x = EXCLUDED.cell_x,
    cell_y = EXCLUDED.cell_y,
    world_x = EXCLUDED.world_x,
    world_y = EXCLUDED.world_y,
    saved_at = EXCLUDED.saved_at`

type PositionRepo struct {
	db *DB
}

func NewPositionRepo(db *DB) *PositionRepo {
	return &PositionRepo{db: db}
}

// SaveAll upserts every row in one transaction using a single batch.
func (r *PositionRepo) SaveAll(ctx context.Context, rows []ObjectPosition) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("positions begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range rows {
		batch.Queue(upsertPosition, p.Name, p.Cell.X, p.Cell.Y, p.Pos.X, p.Pos.Y)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("positions upsert %q: %w", rows[i].Name, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("positions batch: %w", err)
	}
	return tx.Commit(ctx)
}

// LoadAll returns every saved position keyed by object name.
func (r *PositionRepo) LoadAll(ctx context.Context) (map[string]ObjectPosition, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, cell_x, cell_y, world_x, world_y FROM object_positions`)
	if err != nil {
		return nil, fmt.Errorf("positions query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ObjectPosition)
	for rows.Next() {
		var p ObjectPosition
		if err := rows.Scan(&p.Name, &p.Cell.X, &p.Cell.Y, &p.Pos.X, &p.Pos.Y); err != nil {
			return nil, fmt.Errorf("positions scan: %w", err)
		}
		out[p.Name] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("positions rows: %w", err)
	}
	return out, nil
}

// Cells projects saved positions onto the restore map used at spawn.
func Cells(saved map[string]ObjectPosition) map[string]grid.Cell {
	out := make(map[string]grid.Cell, len(saved))
	for name, p := range saved {
		out[name] = p.Cell
	}
	return out
}
