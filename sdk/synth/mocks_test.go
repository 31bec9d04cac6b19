package synth

import (
	"sync"

	"github.com/leandrodaf/synthsync/sdk/contracts"
)

type valueCall struct {
	name  string
	value float64
}

type recordingHost struct {
	mu    sync.Mutex
	calls []valueCall
}

func (h *recordingHost) SetValueNotifyHost(name string, value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, valueCall{name, value})
}

func (h *recordingHost) all() []valueCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]valueCall(nil), h.calls...)
}

// mockNotifier records delivered and dropped notification attempts.
type mockNotifier struct {
	mu        sync.Mutex
	busy      bool
	delivered []valueCall
	dropped   []valueCall
	refreshes int
}

func (n *mockNotifier) TryPost(name string, value float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.busy {
		n.dropped = append(n.dropped, valueCall{name, value})
		return contracts.ErrUIUnavailable
	}
	n.delivered = append(n.delivered, valueCall{name, value})
	return nil
}

func (n *mockNotifier) RefreshAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refreshes++
}

func (n *mockNotifier) setBusy(busy bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.busy = busy
}

func (n *mockNotifier) counts() (delivered, dropped []valueCall, refreshes int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]valueCall(nil), n.delivered...), append([]valueCall(nil), n.dropped...), n.refreshes
}

type recordingGUI struct {
	mu      sync.Mutex
	updates []valueCall
	full    int
}

func (g *recordingGUI) UpdateGuiControl(name string, value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updates = append(g.updates, valueCall{name, value})
}

func (g *recordingGUI) UpdateFullGui() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.full++
}

func (g *recordingGUI) counts() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.updates), g.full
}
