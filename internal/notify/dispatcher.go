// Package notify hands control-plane changes to the UI goroutine.
//
// Single-value updates are best effort: when the queue is full the update is dropped
// and counted, never waited for. Full refresh requests coalesce into one pending
// signal and are never lost.
package notify

import (
	"context"
	"sync/atomic"

	"github.com/leandrodaf/synthsync/sdk/contracts"
)

// DefaultQueueSize is used when a non-positive size is requested.
const DefaultQueueSize = 64

// Update is a single control value pushed to the GUI.
type Update struct {
	Name  string
	Value float64
}

// Stats counts notification outcomes. Superseded counts queued updates discarded
// because a full refresh repainted every control instead.
type Stats struct {
	Posted     uint64
	Dropped    uint64
	Delivered  uint64
	Superseded uint64
	Refreshes  uint64
}

// Dispatcher is the UI message queue.
type Dispatcher struct {
	gui     contracts.GUI
	logger  contracts.Logger
	queue   chan Update
	refresh chan struct{}

	posted     atomic.Uint64
	dropped    atomic.Uint64
	delivered  atomic.Uint64
	superseded atomic.Uint64
	refreshes  atomic.Uint64
}

// NewDispatcher creates a dispatcher delivering to gui from Run.
func NewDispatcher(gui contracts.GUI, size int, logger contracts.Logger) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{
		gui:     gui,
		logger:  logger,
		queue:   make(chan Update, size),
		refresh: make(chan struct{}, 1),
	}
}

// TryPost queues an update without blocking.
func (d *Dispatcher) TryPost(name string, value float64) error {
	select {
	case d.queue <- Update{Name: name, Value: value}:
		d.posted.Add(1)
		return nil
	default:
		d.dropped.Add(1)
		return contracts.ErrUIUnavailable
	}
}

// RefreshAll requests a full GUI refresh.
func (d *Dispatcher) RefreshAll() {
	select {
	case d.refresh <- struct{}{}:
	default:
		// a refresh is already pending
	}
}

// Run delivers queued notifications on the calling goroutine until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Debug("UI dispatcher started", d.logger.Field().Int("queue", cap(d.queue)))
	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("UI dispatcher stopped")
			return nil
		case <-d.refresh:
			d.drain()
			d.gui.UpdateFullGui()
			d.refreshes.Add(1)
		case u := <-d.queue:
			d.gui.UpdateGuiControl(u.Name, u.Value)
			d.delivered.Add(1)
		}
	}
}

// drain discards queued single updates; a full refresh supersedes them.
func (d *Dispatcher) drain() {
	for {
		select {
		case <-d.queue:
			d.superseded.Add(1)
		default:
			return
		}
	}
}

// Stats returns the current counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Posted:     d.posted.Load(),
		Dropped:    d.dropped.Load(),
		Delivered:  d.delivered.Load(),
		Superseded: d.superseded.Load(),
		Refreshes:  d.refreshes.Load(),
	}
}

var (
	_ contracts.UINotifier = (*Dispatcher)(nil)
	_ contracts.UIPump     = (*Dispatcher)(nil)
)
