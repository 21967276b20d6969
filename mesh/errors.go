package mesh

import "errors"

// ErrNoContainingTriangle is returned by point location when the search
// walks off the mesh without finding a triangle (or edge) containing the
// query point; it signals a caller bug (query point outside the mesh, or a
// bad start handle) rather than a recoverable condition.
var ErrNoContainingTriangle = errors.New("mesh: no containing triangle found for point location")

// ErrSegmentRecoveryFailed is returned by NewFromPSLG when an input segment
// could not be recovered as a triangulation edge after the bounded number
// of diagonal flips the recovery procedure allows.
var ErrSegmentRecoveryFailed = errors.New("mesh: failed to recover constrained segment")

// ErrNothingToUndo is returned by UndoVertex when there is no pending
// insertion to roll back.
var ErrNothingToUndo = errors.New("mesh: no pending insertion to undo")
