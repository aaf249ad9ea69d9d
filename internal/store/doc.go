// Package store holds the rendered dashboard for the web surface and fans
// changes out to subscribers.
//
// The main components are:
//
//   - [Store]: Interface combining the controller's renderer with snapshot
//     and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Dashboard]: Storage representation of the whole view
//
// Subscribers come in two kinds. Viewers ([Store.Subscribe]) are dashboard
// clients; their count drives polling visibility through the
// [MemoryStore.OnViewersChanged] hook. Listeners ([Store.Listen]) receive the
// same updates without keeping polling alive.
//
// The store is designed for concurrent access with proper synchronization.
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers will miss updates rather than block the system).
package store
