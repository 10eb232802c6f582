// Package blueprint holds the declarative description of generatable record
// kinds and the loader that produces it.
//
// A blueprint document maps record kinds to ordered field definitions. Each
// field declares how many values must be picked for it and one or more choice
// sources. A source is a pool of option labels coming from an inline list, a
// line-oriented option file, or a Go option script, and may be gated on
// another field's committed value via the "field: value" filter shorthand.
//
// The loader resolves every file and script reference eagerly, so consumers
// only ever deal with literal option pools. Field and kind order of the
// document is preserved; the generator relies on it for deterministic
// tie-breaks.
package blueprint
