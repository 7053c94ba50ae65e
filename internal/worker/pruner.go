package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keyboxhn/keybox/internal/metrics"
)

// HistoryPruner deletes history older than a retention period.
type HistoryPruner interface {
	Prune(ctx context.Context, retention time.Duration, now time.Time) (int64, error)
}

// Pruner periodically removes old generated-message history.
type Pruner struct {
	history   HistoryPruner
	retention time.Duration
	interval  time.Duration
	stopChan  chan struct{}
}

func NewPruner(history HistoryPruner, retention, interval time.Duration) *Pruner {
	return &Pruner{
		history:   history,
		retention: retention,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start prunes once and then on every tick until Stop is called. It returns
// immediately when retention or interval is zero.
func (p *Pruner) Start() {
	if p.retention <= 0 || p.interval <= 0 {
		log.Info().Msg("history pruning disabled")
		return
	}

	log.Info().Msgf("starting pruner with retention %v and interval %v", p.retention, p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.RunOnce(context.Background())
	for {
		select {
		case <-ticker.C:
			p.RunOnce(context.Background())
		case <-p.stopChan:
			log.Info().Msg("stopping pruner")
			return
		}
	}
}

func (p *Pruner) Stop() {
	close(p.stopChan)
}

// RunOnce performs a single pruning pass.
func (p *Pruner) RunOnce(ctx context.Context) int64 {
	deleted, err := p.history.Prune(ctx, p.retention, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("failed to prune generated message history")
		return 0
	}
	if deleted > 0 {
		metrics.HistoryPrunedTotal.Add(float64(deleted))
		log.Info().Int64("deleted", deleted).Msg("pruned generated message history")
	}
	return deleted
}
