// Package block defines the closed set of content block types that make up a
// memory, the registry of their defaults and usage limits, the factory that
// manufactures new blocks, and the per-block validation rules.
//
// A block is serialized as {id, type, props, content}. Props and content hold
// plain JSON-compatible values so a document round-trips verbatim through
// storage; typed accessors (ChecklistItems, Images, Intensity, ...) read them.
package block
