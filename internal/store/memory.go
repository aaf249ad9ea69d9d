package store

import (
	"sync"
	"time"

	"github.com/jpalmerr/runboard/internal/controller"
)

const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore keeps a single [Dashboard] and publishes a copy of it to every
// subscriber after each render call.
//
// Subscribers receive updates via buffered channels (buffer size 100). Updates
// are sent non-blocking; if a subscriber's buffer is full, the update is dropped
// for that subscriber to prevent blocking the render path.
type MemoryStore struct {
	mu        sync.RWMutex
	dashboard Dashboard
	noticeSeq uint64
	now       func() time.Time

	subMu       sync.RWMutex
	subscribers map[chan Dashboard]bool // value: counts as viewer
	viewers     int
	onViewers   func(n int)
}

// NewMemoryStore creates a new in-memory [Store] implementation.
//
// The dashboard starts with the default controls and an empty logs view.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		dashboard: Dashboard{
			Status:   controller.StatusView{Label: controller.LabelIdle},
			Logs:     controller.LogsView{Lines: []string{}, Placeholder: controller.LogsPlaceholder},
			Controls: controller.DefaultControls(),
		},
		now:         time.Now,
		subscribers: make(map[chan Dashboard]bool),
	}
}

// OnViewersChanged registers fn to be called with the new viewer count
// whenever a viewer subscribes or unsubscribes. Calls are serialized and
// made in order; fn must not call back into the store's subscription
// methods.
func (m *MemoryStore) OnViewersChanged(fn func(n int)) {
	m.subMu.Lock()
	m.onViewers = fn
	m.subMu.Unlock()
}

// RenderStatus stores the status view and notifies subscribers.
func (m *MemoryStore) RenderStatus(v controller.StatusView) {
	m.update(func(d *Dashboard) { d.Status = v })
}

// RenderLogs stores the logs view and notifies subscribers.
func (m *MemoryStore) RenderLogs(v controller.LogsView) {
	m.update(func(d *Dashboard) { d.Logs = v })
}

// RenderControls stores the control state and notifies subscribers.
func (m *MemoryStore) RenderControls(c controller.Controls) {
	m.update(func(d *Dashboard) { d.Controls = c })
}

// Notify stores n as the latest notice and notifies subscribers.
func (m *MemoryStore) Notify(n controller.Notice) {
	m.update(func(d *Dashboard) {
		m.noticeSeq++
		d.Notice = &Notice{Notice: n, Seq: m.noticeSeq, At: m.now()}
	})
}

// Snapshot returns a copy of the current dashboard.
func (m *MemoryStore) Snapshot() Dashboard {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dashboard
}

// Subscribe creates a viewer subscription and returns a channel for
// receiving updates.
//
// The returned channel has a buffer of 100 messages. If the buffer fills
// (slow consumer), new updates are dropped for this subscriber.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource
// leaks and to release the viewer count.
func (m *MemoryStore) Subscribe() <-chan Dashboard {
	return m.subscribe(true)
}

// Listen creates a subscription that is not counted as a viewer.
func (m *MemoryStore) Listen() <-chan Dashboard {
	return m.subscribe(false)
}

func (m *MemoryStore) subscribe(viewer bool) <-chan Dashboard {
	ch := make(chan Dashboard, subscriberBuffer)

	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subscribers[ch] = viewer
	if viewer {
		m.viewers++
		m.viewersChangedLocked()
	}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// After calling Unsubscribe, the channel will be closed and no further
// updates will be sent. Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Dashboard) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh, viewer := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			if viewer {
				m.viewers--
				m.viewersChangedLocked()
			}
			break
		}
	}
}

// Viewers returns the number of viewer subscriptions.
func (m *MemoryStore) Viewers() int {
	m.subMu.RLock()
	defer m.subMu.RUnlock()
	return m.viewers
}

// viewersChangedLocked runs the hook. Called with subMu held.
func (m *MemoryStore) viewersChangedLocked() {
	if m.onViewers != nil {
		m.onViewers(m.viewers)
	}
}

// update applies fn to the dashboard, bumps the revision and publishes the
// result.
func (m *MemoryStore) update(fn func(*Dashboard)) {
	m.mu.Lock()
	fn(&m.dashboard)
	m.dashboard.Revision++
	m.dashboard.UpdatedAt = m.now()
	snapshot := m.dashboard

	// publish while holding mu so subscribers see revisions in order
	m.notifySubscribers(snapshot)
	m.mu.Unlock()
}

// notifySubscribers sends the dashboard to all active subscribers.
//
// This is non-blocking: if a subscriber's channel buffer is full, the message
// is dropped for that subscriber rather than blocking the update path.
func (m *MemoryStore) notifySubscribers(d Dashboard) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- d:
		default:
			// subscriber is slow, drop the message
		}
	}
}
