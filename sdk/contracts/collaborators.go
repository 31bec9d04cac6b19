package contracts

import (
	"context"
	"sync"
)

// Guard is the single mutual-exclusion primitive protecting engine state.
type Guard interface {
	sync.Locker
	TryLock() bool
}

// GUI is the control surface receiving value-change notifications.
type GUI interface {
	UpdateGuiControl(name string, value float64)
	UpdateFullGui()
}

// Host is the automation host informed of GUI-originated changes.
type Host interface {
	SetValueNotifyHost(name string, value float64)
}

// UINotifier hands value changes to the UI goroutine without blocking the caller.
type UINotifier interface {
	// TryPost queues a single control update. It returns ErrUIUnavailable instead of waiting
	// when the UI queue cannot take the message.
	TryPost(name string, value float64) error
	// RefreshAll requests a full repaint. Requests coalesce and are never dropped.
	RefreshAll()
}

// UIPump is implemented by notifiers that must be drained from the UI goroutine.
type UIPump interface {
	Run(ctx context.Context) error
}

// StateCodec captures and restores the full engine state under the guard.
type StateCodec interface {
	StateToVar(engine Engine, guard Guard) (Snapshot, error)
	VarToState(engine Engine, guard Guard, state Snapshot) error
}
