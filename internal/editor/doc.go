// Package editor implements the editing surface of a block document.
//
// A Session owns one document and applies insert, reorder, delete and
// update operations to it atomically. Per-type editors (text, checklist,
// image, mood, divider) each wrap a single block and report every change
// as a complete updated block through their onChange callback.
package editor
