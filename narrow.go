// Package narrow computes, once per simulation step, the set of geometric
// contacts between candidate pairs of rigid bodies and turns those contacts
// into constraints for an iterative contact solver.
//
// The candidate pair list comes from an upstream broad phase; the produced
// constraint list is consumed by a downstream solver. In between, this package
// owns the persistent Collisions store, the speculative-margin computation,
// warm-start matching against the previous frame, and the per-frame contact
// lifecycle (reset sweep before pair processing, prune sweep after constraint
// consumption).
package narrow

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	infinity     float64 = math.MaxFloat64
	magicEpsilon float64 = 1e-10

	// Manifolds are only matched against the previous frame when a pair
	// produced at most this many of them. Skips expensive matching on
	// dense mesh colliders.
	maxMatchedManifolds = 4

	// Anchor distance threshold for matching contact points across frames,
	// as a fraction of the length unit.
	matchDistanceFraction = 0.1
)

// Entity identifies a body or collider registered in a World.
// The zero Entity is never assigned and acts as "no entity".
type Entity uint64

// NoEntity is the zero Entity.
const NoEntity Entity = 0

// Pair is an unordered candidate pair produced by the broad phase.
type Pair struct {
	A, B Entity
}

// clampMag clamps the magnitude of vect to m.
func clampMag(vect mgl64.Vec3, m float64) mgl64.Vec3 {
	if vect.Dot(vect) > m*m {
		return vect.Normalize().Mul(m)
	}
	return vect
}

// isNear returns true if the distance between this and other is less than dist.
func isNear(this, other mgl64.Vec3, dist float64) bool {
	d := other.Sub(this)
	return d.Dot(d) < dist*dist
}

// tangentBasis returns two unit vectors forming an orthonormal basis of the
// plane perpendicular to n. n must be a unit vector.
func tangentBasis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var t1 mgl64.Vec3
	if math.Abs(n.X()) >= 0.57735 {
		t1 = mgl64.Vec3{n.Y(), -n.X(), 0}
	} else {
		t1 = mgl64.Vec3{0, n.Z(), -n.Y()}
	}
	t1 = t1.Normalize()
	return t1, n.Cross(t1)
}
