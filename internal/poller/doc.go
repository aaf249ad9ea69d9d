// Package poller provides the recurring polling loop for runboard.
//
// The main component is [Scheduler], which runs a [CycleFunc] once on start
// and then on every tick of a fixed interval. Each cycle runs in its own
// goroutine; the cycle function is expected to skip work when a previous
// cycle is still in flight (see controller.Controller.Refresh).
//
// The scheduler follows the visibility of the surface it feeds:
// [Scheduler.Pause] when nobody is looking, [Scheduler.Resume] when someone
// is again. Resume triggers one extra cycle shortly after, so a returning
// viewer does not wait a full interval for fresh data.
//
// Users of the runboard library should not need to interact with this
// package directly. Configuration is done through the main runboard package.
package poller
