// Package patch owns desired-state diffing primitives.
//
// Ownership boundary:
// - generic config tree values (tagged union over JSON kinds)
// - structural diff producing ordered add/remove/replace operations
// - human-readable patch summaries
//
// Sequences are diffed atomically: any element-wise difference yields a
// single replace of the whole sequence. No positional insert/remove/move
// operations are ever produced. This mirrors the upstream policy providers'
// array semantics and is deliberate, not a gap.
package patch
