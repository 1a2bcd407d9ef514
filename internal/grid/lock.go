package grid

import "go.uber.org/zap"

// LockTable is the per-cell claim flag that keeps two objects from
// converging on the same tile. The flag is binary: one claimant at a time.
// TryLock is the only way to set it, and the game loop is single-threaded,
// so check-and-set needs no synchronization.
type LockTable struct {
	index *Index
	log   *zap.Logger
}

func NewLockTable(index *Index, log *zap.Logger) *LockTable {
	return &LockTable{index: index, log: log}
}

// TryLock claims a cell. It fails without changing anything when the cell
// is unknown or already locked.
func (t *LockTable) TryLock(c Cell) bool {
	rec, ok := t.index.cells[c]
	if !ok {
		t.log.Warn("lock: cell not found", zap.Stringer("cell", c))
		return false
	}
	if rec.locked {
		t.log.Debug("lock: cell already locked", zap.Stringer("cell", c))
		return false
	}
	rec.locked = true
	t.log.Debug("lock: cell locked", zap.Stringer("cell", c))
	return true
}

// Unlock clears the claim. Unlocking a free or unknown cell is a no-op.
func (t *LockTable) Unlock(c Cell) {
	rec, ok := t.index.cells[c]
	if !ok {
		t.log.Debug("unlock: cell not found", zap.Stringer("cell", c))
		return
	}
	rec.locked = false
}

func (t *LockTable) IsLocked(c Cell) bool {
	rec, ok := t.index.cells[c]
	return ok && rec.locked
}

// LockedCount returns the number of currently locked cells.
func (t *LockTable) LockedCount() int {
	n := 0
	for _, rec := range t.index.cells {
		if rec.locked {
			n++
		}
	}
	return n
}
