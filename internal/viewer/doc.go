// Package viewer renders memory content read-only as HTML.
//
// Each block is dispatched by type to a templ component. Unknown types
// render a visible notice instead of failing. The only mutation path is
// the interactive checklist: toggling an item produces the whole updated
// block, which is handed back to the document owner for persistence.
package viewer
