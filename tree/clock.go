package tree

import "time"

// Clock supplies the current time for atime/mtime stamping. Production
// code uses systemClock; tests use a fixed or step-controlled fake.
//
// The source this design was distilled from keeps atime/mtime at fixed
// constants (SPEC_FULL.md section 9, Open Questions); this
// implementation stamps them from a Clock instead: mtime when a node is
// created, written, or truncated by Open, and atime on every Read.
// Wstat and Remove do not stamp either field.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the Clock used by New when no other Clock is supplied.
var SystemClock Clock = systemClock{}
