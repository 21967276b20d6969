// Package refine is the mesh quality enforcement engine: given an existing
// constrained Delaunay triangulation (package mesh) and a Behavior
// describing the desired angle/area/user-predicate targets, EnforceQuality
// inserts Steiner points until every triangle satisfies the targets or the
// Steiner budget runs out. It implements Ruppert's and Chew's refinement
// algorithms in one framework, following the component breakdown of the
// reference mesher this module adapts: an encroachment tester, a triangle
// quality tester, two queues, a segment splitter, a triangle splitter, a
// driver loop and a pair of consistency checkers.
package refine

import (
	"io/ioutil"
	"math"

	yaml "gopkg.in/yaml.v2"
)

// UserTest vetoes a triangle regardless of its angles, e.g. to force
// refinement within a region of interest.
type UserTest func(org, dest, apex [2]float64, area float64) bool

// Behavior is the engine's configuration, read once at construction and
// constant through a run.
type Behavior struct {
	// MinAngle is the lower bound, in degrees, on a triangle's smallest
	// angle. 0 disables the angle constraint entirely.
	// [Limit: >= 0] [Units: degrees]
	MinAngle float64 `yaml:"min_angle"`

	// MaxAngle is the upper bound, in degrees, on a triangle's largest
	// angle. 0 disables the constraint.
	// [Limit: >= 0] [Units: degrees]
	MaxAngle float64 `yaml:"max_angle"`

	// FixedArea, when true, caps every triangle's area at MaxArea.
	FixedArea bool `yaml:"fixed_area"`
	// MaxArea is the global area cap used when FixedArea is set.
	// [Units: area]
	MaxArea float64 `yaml:"max_area"`

	// VarArea honors each triangle's own AreaTarget field (mesh.Triangle)
	// when it is positive, in addition to (or instead of) FixedArea.
	VarArea bool `yaml:"var_area"`

	// UserTest, when non-nil, is consulted on every triangle as an
	// additional veto; not serialized.
	UserTest UserTest `yaml:"-"`

	// ConformDel selects Ruppert's diametral-circle encroachment test
	// (true) over Chew's diametral-lens test (false, the default).
	ConformDel bool `yaml:"conform_del"`

	// NoBisect controls whether boundary subsegments may be split: 0
	// always enqueues an encroached boundary subsegment, 1 only when both
	// adjoining sides have a real (non-dummy) neighbor, and 2 or above
	// never enqueues one (see the Open Question this resolves, noted in
	// DESIGN.md).
	// [Limit: 0, 1, or >= 2]
	NoBisect int `yaml:"no_bisect"`

	// SteinerLeft bounds the number of Steiner points EnforceQuality may
	// insert; -1 means unlimited.
	SteinerLeft int `yaml:"steiner_left"`

	// Verbose enables diagnostic logging through the logctx.Context the
	// engine is constructed with.
	Verbose bool `yaml:"verbose"`

	// NoExact disables the one step of exact-arithmetic collinearity
	// refinement the segment splitter otherwise applies to every new
	// split point.
	NoExact bool `yaml:"no_exact"`

	// GoodAngle and MaxGoodAngle are derived from MinAngle/MaxAngle by
	// Resolve; callers should not set them directly.
	GoodAngle    float64 `yaml:"-"`
	MaxGoodAngle float64 `yaml:"-"`
}

// DefaultBehavior returns the engine's defaults: Chew's algorithm, a 20°
// minimum angle, no area cap, no Steiner budget.
func DefaultBehavior() Behavior {
	b := Behavior{
		MinAngle:    20,
		SteinerLeft: -1,
	}
	b.Resolve()
	return b
}

// Resolve precomputes GoodAngle = cos²(MinAngle) and, when MaxAngle is set,
// MaxGoodAngle = cos(180° − 2·MaxAngle). Call it after changing MinAngle or
// MaxAngle and before constructing an Engine; NewEngine calls it itself for
// safety.
func (b *Behavior) Resolve() {
	rad := b.MinAngle * math.Pi / 180
	cos := math.Cos(rad)
	b.GoodAngle = cos * cos
	if b.MaxAngle != 0 {
		maxRad := (180 - 2*b.MaxAngle) * math.Pi / 180
		b.MaxGoodAngle = math.Cos(maxRad)
	} else {
		b.MaxGoodAngle = 0
	}
}

// ChecksQuality reports whether the configuration enables any of the
// quality tests the triangle tester (B) and the driver's TallyFaces phase
// consult; the driver skips the entire bad-triangle phase when this is
// false (EnforceQuality's guard).
func (b Behavior) ChecksQuality() bool {
	return b.MinAngle > 0 || b.VarArea || b.FixedArea || b.UserTest != nil
}

// LoadBehaviorFile reads a YAML-encoded Behavior from path and resolves its
// derived fields.
func LoadBehaviorFile(path string) (Behavior, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return Behavior{}, err
	}
	b := DefaultBehavior()
	if err := yaml.Unmarshal(buf, &b); err != nil {
		return Behavior{}, err
	}
	b.Resolve()
	return b, nil
}

// SaveBehaviorFile writes b as YAML to path.
func SaveBehaviorFile(path string, b Behavior) error {
	buf, err := yaml.Marshal(b)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, buf, 0o644)
}
