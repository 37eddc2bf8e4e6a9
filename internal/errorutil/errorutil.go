package errorutil

import "errors"

// ErrDataIntegrity is the base error for broken invariants in trace tables
// or derived tables: an index column referencing past the end of its target
// table, a child preceding its parent, an empty call-node path. These are
// programmer errors upstream and are never silently recovered.
var ErrDataIntegrity = errors.New("data integrity error")

// ErrNoResults reports data a trace legitimately may not carry, such as
// event-delay instrumentation on older traces. Callers degrade instead of
// aborting.
var ErrNoResults = errors.New("no results returned")
