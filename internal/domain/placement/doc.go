// Package placement orders blocks inside a document.
//
// A mood block at the head of a document is pinned: it cannot be moved,
// deleted or used as a reorder target. Every operation returns a new
// document and leaves its input untouched.
package placement
