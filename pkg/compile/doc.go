// Package compile binds an HTML fragment to a reactive.VM.
//
// The compiler walks the fragment once and creates one reactive.Watcher per
// binding it finds:
//
//   - {{key}} inside a text node binds a text run to key
//   - z-text="key" binds an element's text content to key
//   - z-html="key" binds an element's inner HTML to key
//
// Any other z-* attribute is a compile error. When a bound key changes, the
// node is updated in place and a Patch is emitted to OnPatch listeners, which
// is how pkg/live pushes updates to browsers.
//
// Bound text runs are preceded by a <!--z:ID--> comment and bound elements
// carry data-z="ID" so a client can find them.
package compile
