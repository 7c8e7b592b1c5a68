package store

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/evacchi/droolsjbpm-knowledge/internal/timer"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/log"
)

// SaveManager snapshots every timer of m along with its id counter
func (s *Store) SaveManager(ctx context.Context, m *timer.Manager) error {
	timers := m.Timers()
	if err := s.Save(ctx, timers, m.InternalGetTimerID()); err != nil {
		return err
	}
	slog.Info("Timers saved", slog.Int("count", len(timers)))
	return nil
}

// RestoreManager resubmits the stored timers of sessionID to m and moves
// its id counter past every restored id. Interval timers that signal an
// instance resume from their remaining delay; cron and start timers resume
// on their original schedule. Timers that fail to restore are logged and
// skipped. It returns the number of timers restored
func (s *Store) RestoreManager(
	ctx context.Context, m *timer.Manager, sessionID api.SessionID,
) (int, error) {
	timers, lastID, err := s.LoadSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	for _, t := range timers {
		lastID = max(lastID, t.ID)
	}
	m.InternalSetTimerID(max(lastID, m.InternalGetTimerID()))

	count := 0
	for i := range timers {
		t := &timers[i]
		if err := restore(m, t); err != nil {
			slog.Error("Failed to restore timer",
				log.TimerID(t.ID),
				log.Error(err))
			continue
		}
		count++
	}
	slog.Info("Timers restored",
		log.SessionID(sessionID),
		slog.Int("count", count))
	return count, nil
}

func restore(m *timer.Manager, t *timer.TimerInstance) error {
	if t.IsCron() || t.StartsProcess() {
		return m.ReloadTimer(t)
	}
	return m.InternalAddTimer(t)
}

func sortByID(timers []timer.TimerInstance) {
	slices.SortFunc(timers, func(a, b timer.TimerInstance) int {
		return cmp.Compare(a.ID, b.ID)
	})
}
