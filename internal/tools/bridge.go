package tools

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/t5g-dashboard/t5gmcp/internal/casedata"
	"github.com/t5g-dashboard/t5gmcp/internal/snapshot"
)

// RunObserver is notified after every enrichment run. It's an optional
// dependency; tools work fine with a nil observer.
type RunObserver interface {
	OnEnrichment(stats casedata.Stats, degraded []string, output any)
}

// SnapshotBridge saves each enrichment run to the snapshot store.
type SnapshotBridge struct {
	store  *snapshot.Store
	logger *zap.Logger
}

// NewSnapshotBridge returns nil if store is nil, so the result can be
// assigned straight to a RunObserver.
func NewSnapshotBridge(store *snapshot.Store, logger *zap.Logger) *SnapshotBridge {
	if store == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotBridge{store: store, logger: logger}
}

// OnEnrichment stores the run. Failures are logged and swallowed: the
// caller already has its result and history is secondary.
func (b *SnapshotBridge) OnEnrichment(stats casedata.Stats, degraded []string, output any) {
	if b == nil {
		return
	}
	payload, err := json.Marshal(output)
	if err != nil {
		b.logger.Warn("snapshot bridge: encode output", zap.Error(err))
		return
	}
	snap, err := b.store.Save(snapshot.SaveParams{
		Stats:    stats,
		Degraded: degraded,
		Payload:  payload,
	})
	if err != nil {
		b.logger.Warn("snapshot bridge: save", zap.Error(err))
		return
	}
	b.logger.Debug("snapshot saved", zap.String("id", snap.ID), zap.Int("cards", stats.Cards))
}

// notifyObserver is a nil-safe helper called from Handle methods.
func notifyObserver(obs RunObserver, stats casedata.Stats, degraded []string, output any) {
	if obs == nil {
		return
	}
	obs.OnEnrichment(stats, degraded, output)
}
