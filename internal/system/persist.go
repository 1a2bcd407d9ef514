package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/gridwalk/internal/config"
	"github.com/l1jgo/gridwalk/internal/core/event"
	coresys "github.com/l1jgo/gridwalk/internal/core/system"
	"github.com/l1jgo/gridwalk/internal/persist"
	"github.com/l1jgo/gridwalk/internal/world"
)

// PositionStore is implemented by *persist.PositionRepo.
type PositionStore interface {
	SaveAll(ctx context.Context, rows []persist.ObjectPosition) error
}

// JournalStore is implemented by *persist.JournalRepo.
type JournalStore interface {
	Append(ctx context.Context, entries []persist.CellChangeEntry) error
}

// PersistSystem periodically saves the cell and world position of every
// named object, and journals the cell changes seen since the last save.
// Phase 7 (Persist).
type PersistSystem struct {
	world     *world.State
	positions PositionStore
	journal   JournalStore // nil = no journal
	interval  int          // save every N ticks
	timeout   time.Duration
	tickCount int
	tick      uint64
	pending   []persist.CellChangeEntry
	log       *zap.Logger
}

func NewPersistSystem(ws *world.State, positions PositionStore, journal JournalStore, cfg config.DatabaseConfig, log *zap.Logger) *PersistSystem {
	s := &PersistSystem{
		world:     ws,
		positions: positions,
		journal:   journal,
		interval:  cfg.SaveInterval,
		timeout:   cfg.Timeout,
		log:       log,
	}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Second
	}
	return s
}

func (s *PersistSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistSystem) Update(_ time.Duration) {
	s.tick++
	s.collect()
	s.tickCount++
	if s.interval <= 0 || s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Flush saves immediately. Called for graceful shutdown.
func (s *PersistSystem) Flush() {
	rows := s.rows()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.positions.SaveAll(ctx, rows); err != nil {
		s.log.Error("persist: save positions failed", zap.Int("objects", len(rows)), zap.Error(err))
		return
	}
	if s.journal != nil && len(s.pending) > 0 {
		if err := s.journal.Append(ctx, s.pending); err != nil {
			s.log.Error("persist: journal append failed", zap.Int("entries", len(s.pending)), zap.Error(err))
			return
		}
		s.pending = s.pending[:0]
	}
	s.log.Debug("persist: saved", zap.Int("objects", len(rows)))
}

// rows collects every named object in id order. Unnamed objects cannot be
// matched on restore and are skipped.
func (s *PersistSystem) rows() []persist.ObjectPosition {
	ws := s.world
	ids := ws.Objects()
	out := make([]persist.ObjectPosition, 0, len(ids))
	for _, id := range ids {
		name := ws.NameOf(id)
		if name == "" {
			continue
		}
		on, ok := ws.OnCell.Get(id)
		if !ok {
			continue
		}
		row := persist.ObjectPosition{Name: name, Cell: on.Cell, Pos: ws.Index.WorldOf(on.Cell)}
		if p, ok := ws.Position.Get(id); ok {
			row.Pos = p.Pos
		}
		out = append(out, row)
	}
	return out
}

// collect journals the steps committed this tick. It reads the bus back
// buffer, which still holds everything FinalizeSystem emitted, so the
// journal never trails the saved positions.
func (s *PersistSystem) collect() {
	if s.journal == nil {
		return
	}
	for _, e := range event.Pending[event.CellChanged](s.world.Bus) {
		name := s.world.NameOf(e.Entity)
		if name == "" {
			continue
		}
		s.pending = append(s.pending, persist.CellChangeEntry{
			Tick: s.tick,
			Name: name,
			From: e.From,
			To:   e.To,
		})
	}
}
