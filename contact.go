package narrow

import "github.com/go-gl/mathgl/mgl64"

// FeatureID identifies the geometric feature (face, edge, vertex pairing) a
// contact point was generated from. Points keep their id as long as the
// feature persists, which lets contacts be matched across frames.
type FeatureID uint32

// FeatureUnknown marks a point with no stable feature identity. Such points
// are only matched by anchor distance.
const FeatureUnknown FeatureID = ^FeatureID(0)

// ContactPoint is a single point of a contact manifold.
type ContactPoint struct {
	// Local1 and Local2 are the contact anchors in each collider's local space.
	Local1, Local2 mgl64.Vec3
	// Normal is the world-space contact normal, pointing from the first
	// collider toward the second.
	Normal mgl64.Vec3
	// Separation is the signed distance between the anchors along the normal.
	// Negative when the shapes penetrate.
	Separation float64
	// Feature identifies the source feature pairing for cross-frame matching.
	Feature FeatureID

	// NormalImpulse is the accumulated impulse along the normal, written back
	// by the solver and carried forward by warm starting.
	NormalImpulse float64
	// TangentImpulse is the accumulated friction impulse in the tangent plane.
	TangentImpulse mgl64.Vec2
}

// ContactManifold is an ordered set of contact points sharing one contact
// normal and feature pairing.
type ContactManifold struct {
	// Normal is the world-space normal shared by the manifold's points,
	// pointing from the first collider toward the second.
	Normal mgl64.Vec3
	Points []ContactPoint
}

// Flip reverses the manifold in place so that it describes the same contact
// with the collider roles swapped.
func (m *ContactManifold) Flip() {
	m.Normal = m.Normal.Mul(-1)
	for i := range m.Points {
		p := &m.Points[i]
		p.Local1, p.Local2 = p.Local2, p.Local1
		p.Normal = p.Normal.Mul(-1)
	}
}

// MatchPoints carries accumulated impulses forward from a previous frame's
// points onto this manifold's points. A point matches when the feature ids
// are equal and known, or when the first-collider anchors are within
// distanceThreshold of each other. Unmatched points keep zero impulses.
func (m *ContactManifold) MatchPoints(previous []ContactPoint, distanceThreshold float64) {
	for i := range m.Points {
		point := &m.Points[i]
		for j := range previous {
			prev := &previous[j]
			matched := point.Feature == prev.Feature && point.Feature != FeatureUnknown
			if !matched {
				matched = isNear(point.Local1, prev.Local1, distanceThreshold)
			}
			if matched {
				point.NormalImpulse = prev.NormalImpulse
				point.TangentImpulse = prev.TangentImpulse
				break
			}
		}
	}
}

// Contacts is the persistent record of all contact manifolds between one
// unordered pair of collider entities. It is created on the first detected
// contact, updated every frame the contact persists, and removed by the
// lifecycle sweep exactly one frame after the contact ends.
type Contacts struct {
	// Entity1 and Entity2 are the collider entities.
	Entity1, Entity2 Entity
	// BodyEntity1 and BodyEntity2 are the owning body entities, or NoEntity.
	BodyEntity1, BodyEntity2 Entity

	// Manifolds computed this frame.
	Manifolds []ContactManifold

	// DuringCurrentFrame is true while the pair is in contact. The reset
	// sweep clears it each frame for pairs with an active body; detection
	// must set it again for the entry to survive the prune sweep.
	DuringCurrentFrame bool
	// DuringPreviousFrame is true once the contact has persisted across a
	// frame boundary. It only reads false on an entry's first frame.
	DuringPreviousFrame bool

	// IsSensor is true when either collider is a sensor or either side has
	// no attached rigid body. Sensor pairs stay in the store but never
	// produce constraints.
	IsSensor bool

	// TotalNormalImpulse and TotalTangentImpulse aggregate the matched
	// impulses carried into this frame, for contact reporting.
	TotalNormalImpulse  float64
	TotalTangentImpulse mgl64.Vec2
}

// Contains reports whether the given collider entity is part of this pair.
func (c *Contacts) Contains(e Entity) bool {
	return c.Entity1 == e || c.Entity2 == e
}
