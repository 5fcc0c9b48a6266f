package narrow

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SoftnessCoefficients are the per-substep soft-constraint terms the solver
// applies to contact impulses, derived from a frequency/damping pair.
type SoftnessCoefficients struct {
	// BiasRate scales position error into a corrective velocity.
	BiasRate float64
	// MassScale softens the effective mass of the constraint.
	MassScale float64
	// ImpulseScale decays the accumulated impulse each iteration.
	ImpulseScale float64
}

// NewSoftnessCoefficients derives softness terms from a natural frequency in
// hertz and a damping ratio, for a step of dt seconds. The formulation is
// implicit, so frequencies above the step rate stay stable.
func NewSoftnessCoefficients(hertz, dampingRatio, dt float64) SoftnessCoefficients {
	if dt <= 0 || hertz <= 0 {
		return SoftnessCoefficients{}
	}
	omega := 2 * math.Pi * hertz
	a1 := 2*dampingRatio + dt*omega
	a2 := dt * omega * a1
	a3 := 1.0 / (1.0 + a2)
	return SoftnessCoefficients{
		BiasRate:     omega / a1,
		MassScale:    a2 * a3,
		ImpulseScale: a3,
	}
}

// ContactSoftness bundles the two softness settings the constraint generator
// selects from: one for dynamic-dynamic pairs and a stiffer one for pairs
// involving a static or kinematic body.
type ContactSoftness struct {
	Dynamic    SoftnessCoefficients
	NonDynamic SoftnessCoefficients
}

// DefaultContactSoftness returns contact softness tuned for the given step.
func DefaultContactSoftness(dt float64) ContactSoftness {
	return ContactSoftness{
		Dynamic:    NewSoftnessCoefficients(30, 10, dt),
		NonDynamic: NewSoftnessCoefficients(60, 10, dt),
	}
}

// ContactConstraintPoint is the per-point payload of a contact constraint.
type ContactConstraintPoint struct {
	// AnchorA and AnchorB are the contact anchors relative to each body's
	// center of mass, in world space.
	AnchorA, AnchorB mgl64.Vec3
	// NormalMass is the effective mass seen by impulses along the normal.
	NormalMass float64
	// TangentMass holds the effective masses along the two tangent axes.
	TangentMass mgl64.Vec2
	// Separation is the signed contact distance at generation time.
	Separation float64
	// RelativeSpeed is the normal-approach speed at generation time, used
	// as the restitution target.
	RelativeSpeed float64
	// NormalImpulse and TangentImpulse seed the solver when warm starting.
	NormalImpulse  float64
	TangentImpulse mgl64.Vec2
}

// ContactConstraint is the solver-ready form of one contact manifold.
// Constraints live for a single step; they are rebuilt from the Collisions
// store every frame and never persisted.
type ContactConstraint struct {
	// Body1 and Body2 are the constrained body entities.
	Body1, Body2 Entity
	// Collider1 and Collider2 are the collider entities of the manifold.
	Collider1, Collider2 Entity
	// ManifoldIndex is the index of the source manifold within its Contacts.
	ManifoldIndex int

	// Normal is the shared world-space contact normal.
	Normal mgl64.Vec3
	// Tangent1 and Tangent2 span the friction plane.
	Tangent1, Tangent2 mgl64.Vec3

	// Friction and Restitution are the combined material coefficients.
	Friction    float64
	Restitution float64
	// Softness holds the selected soft-constraint coefficients.
	Softness SoftnessCoefficients
	// SpeculativeMargin bounds how far the solver may pull surfaces
	// together for a speculative (still separated) contact.
	SpeculativeMargin float64
	// WarmStart tells the solver to apply the seeded impulses before iterating.
	WarmStart bool
	// DT is the step duration the constraint was generated for.
	DT float64

	Points []ContactConstraintPoint
}

// newContactConstraint builds the constraint for one manifold. Points with a
// degenerate normal produce an empty point list; the caller drops such
// constraints instead of appending them.
func newContactConstraint(
	index int,
	manifold *ContactManifold,
	body1, body2 *Body,
	collider1, collider2 *Collider,
	entity1, entity2 Entity,
	speculativeMargin, friction, restitution float64,
	softness SoftnessCoefficients,
	warmStart bool,
	dt float64,
) ContactConstraint {
	constraint := ContactConstraint{
		Body1:             collider1.BodyEntity(),
		Body2:             collider2.BodyEntity(),
		Collider1:         entity1,
		Collider2:         entity2,
		ManifoldIndex:     index,
		Normal:            manifold.Normal,
		Friction:          friction,
		Restitution:       restitution,
		Softness:          softness,
		SpeculativeMargin: speculativeMargin,
		WarmStart:         warmStart,
		DT:                dt,
	}

	normal := manifold.Normal
	if normal.Dot(normal) < magicEpsilon {
		return constraint
	}
	constraint.Tangent1, constraint.Tangent2 = tangentBasis(normal)

	invMass := body1.InverseMass() + body2.InverseMass()
	invInertia1 := body1.InverseInertiaWorld()
	invInertia2 := body2.InverseInertiaWorld()

	constraint.Points = make([]ContactConstraintPoint, 0, len(manifold.Points))
	for i := range manifold.Points {
		contact := &manifold.Points[i]

		anchorA := collider1.Pose.Apply(contact.Local1).Sub(body1.Position)
		anchorB := collider2.Pose.Apply(contact.Local2).Sub(body2.Position)

		kNormal := invMass + angularMass(invInertia1, anchorA, normal) + angularMass(invInertia2, anchorB, normal)
		if kNormal <= 0 {
			continue
		}

		kT1 := invMass +
			angularMass(invInertia1, anchorA, constraint.Tangent1) +
			angularMass(invInertia2, anchorB, constraint.Tangent1)
		kT2 := invMass +
			angularMass(invInertia1, anchorA, constraint.Tangent2) +
			angularMass(invInertia2, anchorB, constraint.Tangent2)

		point := ContactConstraintPoint{
			AnchorA:       anchorA,
			AnchorB:       anchorB,
			NormalMass:    1.0 / kNormal,
			Separation:    contact.Separation,
			RelativeSpeed: normalRelativeVelocity(body1, body2, anchorA, anchorB, normal),
		}
		if kT1 > 0 {
			point.TangentMass[0] = 1.0 / kT1
		}
		if kT2 > 0 {
			point.TangentMass[1] = 1.0 / kT2
		}
		if warmStart {
			point.NormalImpulse = contact.NormalImpulse
			point.TangentImpulse = contact.TangentImpulse
		}
		constraint.Points = append(constraint.Points, point)
	}

	return constraint
}

// angularMass is the rotational contribution of one body to the effective
// mass of an impulse along n applied at anchor r.
func angularMass(invInertia mgl64.Mat3, r, n mgl64.Vec3) float64 {
	rn := r.Cross(n)
	return invInertia.Mul3x1(rn).Dot(rn)
}

// relativeVelocity is the velocity of the contact point on body b relative to
// the contact point on body a.
func relativeVelocity(a, b *Body, ra, rb mgl64.Vec3) mgl64.Vec3 {
	va := a.Velocity.Add(a.AngularVelocity.Cross(ra))
	vb := b.Velocity.Add(b.AngularVelocity.Cross(rb))
	return vb.Sub(va)
}

func normalRelativeVelocity(a, b *Body, ra, rb, n mgl64.Vec3) float64 {
	return relativeVelocity(a, b, ra, rb).Dot(n)
}
