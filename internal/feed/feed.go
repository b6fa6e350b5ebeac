// Package feed produces periodic statement snapshots that simulate live
// updates: on every tick the current period of a base statement is
// re-drawn within ±JitterPct of its original values and handed to
// subscribers together with its KPI summary.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/dashcore/internal/aggregate"
	"github.com/seenimoa/dashcore/internal/config"
	"github.com/seenimoa/dashcore/internal/logging"
	"github.com/seenimoa/dashcore/pkg/models"
)

var ErrNoStatement = errors.New("feed: base statement is nil or has no periods")

// Snapshot is one produced statement revision.
type Snapshot struct {
	ID          string            `json:"id"`
	Seq         uint64            `json:"seq"`
	At          time.Time         `json:"at"`
	StatementID string            `json:"statement_id"`
	Statement   *models.Statement `json:"statement"`
	Summary     aggregate.Summary `json:"summary"`
}

// Sink receives snapshots. It is called from the producer goroutine and
// must not block for long.
type Sink func(Snapshot)

// Producer emits jittered snapshots of a base statement.
type Producer struct {
	base   *models.Statement
	cfg    config.FeedConfig
	logger *slog.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	seq    uint64
	latest *Snapshot
	now    func() time.Time
}

// New creates a producer for base. The base statement is cloned; later
// changes by the caller are not observed. A zero Seed seeds from the clock.
func New(base *models.Statement, cfg config.FeedConfig, logger *slog.Logger) (*Producer, error) {
	if base == nil || len(base.Periods) == 0 {
		return nil, ErrNoStatement
	}
	if logger == nil {
		logger = logging.Discard()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Producer{
		base:   base.Clone(),
		cfg:    cfg,
		logger: logging.WithComponent(logger, logging.ComponentFeed),
		rng:    rand.New(rand.NewSource(seed)),
		now:    time.Now,
	}, nil
}

// Next draws a new snapshot and records it as the latest.
func (p *Producer) Next() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.base.Clone()
	jitter := p.cfg.JitterPct / 100
	if jitter > 0 {
		for si := range st.Sections {
			items := st.Sections[si].Items
			for ii := range items {
				if len(items[ii].Values) == 0 {
					continue
				}
				// ±jitter of the base value, current period only
				items[ii].Values[0] *= 1 + jitter*(p.rng.Float64()*2-1)
			}
		}
	}

	p.seq++
	snap := Snapshot{
		ID:          uuid.NewString(),
		Seq:         p.seq,
		At:          p.now().UTC(),
		StatementID: st.ID,
		Statement:   st,
		Summary:     aggregate.Summarize(st, 0),
	}
	p.latest = &snap
	return snap
}

// Latest returns the most recent snapshot, or false before the first tick.
func (p *Producer) Latest() (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.latest == nil {
		return Snapshot{}, false
	}
	return *p.latest, true
}

// Run emits a snapshot immediately and then once per interval until ctx is
// cancelled. It returns nil on cancellation.
func (p *Producer) Run(ctx context.Context, sink Sink) error {
	interval := p.cfg.Interval()
	if interval <= 0 {
		return errors.New("feed: interval must be positive")
	}

	p.logger.Info("feed started",
		logging.FieldStatement, p.base.ID,
		"interval", interval,
		"jitter_pct", p.cfg.JitterPct)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.emit(sink)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("feed stopped", "snapshots", p.count())
			return nil
		case <-ticker.C:
			p.emit(sink)
		}
	}
}

func (p *Producer) emit(sink Sink) {
	snap := p.Next()
	p.logger.Debug("snapshot produced",
		"id", snap.ID,
		"seq", snap.Seq,
		"net_income", snap.Summary.NetIncome.Value)
	if sink != nil {
		sink(snap)
	}
}

func (p *Producer) count() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq
}
