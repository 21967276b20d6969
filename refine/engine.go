package refine

import (
	"github.com/arl/meshquality/logctx"
	"github.com/arl/meshquality/mesh"
)

// Engine holds one refinement run's state: the mesh it is mutating, the
// behavior it was configured with, and the two queues that live for
// the duration of a single EnforceQuality call.
type Engine struct {
	Mesh     *mesh.Mesh
	Behavior Behavior
	Log      *logctx.Context

	badSubsegs   *BadSubsegQueue
	badTriangles *BadTriangleQueue
}

// NewEngine constructs an Engine over m with the given behavior. It
// resolves the behavior's derived fields and, if log is nil, builds a
// Context honoring behavior.Verbose.
func NewEngine(m *mesh.Mesh, behavior Behavior, log *logctx.Context) *Engine {
	behavior.Resolve()
	if log == nil {
		log = logctx.New(behavior.Verbose)
	}
	return &Engine{
		Mesh:         m,
		Behavior:     behavior,
		Log:          log,
		badSubsegs:   NewBadSubsegQueue(),
		badTriangles: NewBadTriangleQueue(),
	}
}

// EnforceQuality is the refinement driver: it seeds
// the bad-subsegment queue from every subsegment, drains it, and then --
// if any quality test is configured -- seeds the bad-triangle queue and
// alternates triangle splits with draining any encroachments they
// introduce, until both queues are empty or the Steiner budget runs out.
func (e *Engine) EnforceQuality() error {
	e.Log.StartTimer(logctx.TimerEnforceQuality)
	defer e.Log.StopTimer(logctx.TimerEnforceQuality)

	e.tallyEncs()
	if err := e.splitEncSegs(); err != nil {
		return err
	}

	if e.Behavior.ChecksQuality() {
		e.tallyFaces()
		for !e.badTriangles.Empty() && e.Behavior.SteinerLeft != 0 {
			b, ok := e.badTriangles.Dequeue()
			if !ok {
				break
			}
			if err := e.splitTriangle(b); err != nil {
				return err
			}
			if !e.badSubsegs.Empty() {
				e.badTriangles.Enqueue(b)
				if err := e.splitEncSegs(); err != nil {
					return err
				}
			}
		}
	}

	if e.Behavior.SteinerLeft == 0 && e.Behavior.Verbose && e.Behavior.ConformDel && !e.badSubsegs.Empty() {
		e.Log.Warningf("enforce_quality: steiner budget exhausted with %d subsegment(s) still encroached", e.badSubsegs.Len())
	}

	return nil
}
