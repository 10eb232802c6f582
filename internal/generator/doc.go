// Package generator is the procedural attribute-resolution engine. It builds
// a composite record field-by-field from a blueprint set, where the choices
// available for a field may be conditioned on values already committed for
// other fields.
//
// The engine has three parts. Graph derives which fields depend on which and
// answers availability queries. Builder holds the record under construction,
// computes the next resolvable field and its currently active options, and
// validates each submission before committing it. SessionManager hands out
// independent builders that share one immutable set and graph.
//
// Every operation is synchronous and failure paths never mutate state: a
// rejected submission leaves the record exactly as it was. Fields that tie
// for "next" resolve in blueprint declaration order.
package generator
