package store

import (
	"time"

	"github.com/jpalmerr/runboard/internal/controller"
)

// Notice is a [controller.Notice] stamped with a sequence number so clients
// can tell a new notice from one they already showed.
type Notice struct {
	controller.Notice
	Seq uint64    `json:"seq"`
	At  time.Time `json:"at"`
}

// Dashboard is the full rendered state of the job view.
//
// Dashboard is the storage representation served to the web surface (REST
// and SSE). Slices inside are never mutated after publication, so a copy of
// the struct is safe to hand out.
type Dashboard struct {
	Status   controller.StatusView `json:"status"`
	Logs     controller.LogsView   `json:"logs"`
	Controls controller.Controls   `json:"controls"`

	// Notice is the most recent action notice, nil until the first one.
	Notice *Notice `json:"notice,omitempty"`

	// Revision increases by one on every change.
	Revision  uint64    `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the interface for storing the dashboard and subscribing to
// its changes.
//
// A Store is also the controller's [controller.Renderer]: every render call
// updates the snapshot and notifies subscribers. Implementations must be
// safe for concurrent access.
type Store interface {
	controller.Renderer

	// Snapshot returns the current dashboard.
	Snapshot() Dashboard

	// Subscribe returns a channel that receives every new dashboard and
	// counts the caller as a viewer until Unsubscribe.
	// The returned channel has a buffer; slow consumers may miss updates.
	Subscribe() <-chan Dashboard

	// Listen is Subscribe without counting as a viewer.
	Listen() <-chan Dashboard

	// Unsubscribe removes a subscription (viewer or listener) and closes the
	// channel. Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Dashboard)

	// Viewers returns the number of viewer subscriptions.
	Viewers() int
}
