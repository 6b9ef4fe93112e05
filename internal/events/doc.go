// Package events lets services announce changes to memories without
// knowing who reacts to them.
//
// Services emit MemoryEvents through an EventEmitter; handlers registered
// on an InMemoryEventEmitter receive every event in registration order.
// LogHandler and MetricsHandler are the handlers wired by the server.
package events
