package narrow

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType for bodies; Dynamic, Kinematic or Static
type BodyType uint8

const (
	Dynamic   BodyType = 0
	Kinematic BodyType = 1
	Static    BodyType = 2
)

// CombineRule selects how a material coefficient of two touching sides is
// blended into one value. All rules are commutative. When the two sides
// request different rules, the higher-valued rule wins.
type CombineRule uint8

const (
	CombineAverage CombineRule = iota
	CombineMin
	CombineMultiply
	CombineMax
)

// Combine blends two coefficients according to the rule.
func (r CombineRule) Combine(a, b float64) float64 {
	switch r {
	case CombineMin:
		return math.Min(a, b)
	case CombineMultiply:
		return a * b
	case CombineMax:
		return math.Max(a, b)
	default:
		return (a + b) * 0.5
	}
}

func combineRules(a, b CombineRule) CombineRule {
	if a > b {
		return a
	}
	return b
}

// Material holds the surface response coefficients of a body or collider.
type Material struct {
	Friction        float64
	Restitution     float64
	FrictionRule    CombineRule
	RestitutionRule CombineRule
}

// DefaultMaterial returns the material bodies start with.
func DefaultMaterial() Material {
	return Material{Friction: 0.5}
}

// CombineFriction returns the blended friction coefficient of two materials.
func CombineFriction(m1, m2 Material) float64 {
	return combineRules(m1.FrictionRule, m2.FrictionRule).Combine(m1.Friction, m2.Friction)
}

// CombineRestitution returns the blended restitution coefficient of two materials.
func CombineRestitution(m1, m2 Material) float64 {
	return combineRules(m1.RestitutionRule, m2.RestitutionRule).Combine(m1.Restitution, m2.Restitution)
}

// Body is a rigid body whose colliders participate in contact detection.
//
// The narrow phase reads body state and, as its only mutation, clears the
// sleeping flag of a sleeping body touched by an active one.
type Body struct {
	// UserData is an object this body is associated with.
	UserData any

	// Position of the center of mass in world space.
	Position mgl64.Vec3
	// Rotation of the body in world space.
	Rotation mgl64.Quat
	// Velocity is the linear velocity of the center of mass.
	Velocity mgl64.Vec3
	// AngularVelocity in world space.
	AngularVelocity mgl64.Vec3

	// Material used by colliders that carry no override.
	Material Material

	kind           BodyType
	mass           float64
	massInverse    float64
	moments        mgl64.Vec3
	inertiaInverse mgl64.Mat3
	sleeping       bool
	sensor         bool
	marginOverride float64
	hasMargin      bool
}

// NewBody initializes a dynamic rigid body with the given mass.
// A zero mass makes the body effectively immovable in contact response.
func NewBody(mass float64) *Body {
	body := &Body{
		Rotation: mgl64.QuatIdent(),
		Material: DefaultMaterial(),
	}
	body.SetMass(mass)
	return body
}

// NewStaticBody allocates a Body and sets it as a static body.
func NewStaticBody() *Body {
	body := NewBody(0)
	body.SetType(Static)
	return body
}

// NewKinematicBody allocates a Body and sets it as a kinematic body.
func NewKinematicBody() *Body {
	body := NewBody(0)
	body.SetType(Kinematic)
	return body
}

// SetType sets the type of the body. Non-dynamic bodies have zero inverse
// mass and inertia so they never absorb contact impulses.
func (body *Body) SetType(bt BodyType) {
	body.kind = bt
	if bt != Dynamic {
		body.massInverse = 0
		body.inertiaInverse = mgl64.Mat3{}
	} else {
		body.SetMass(body.mass)
		body.SetInertia(body.moments)
	}
}

// Type returns the type of the body.
func (body *Body) Type() BodyType {
	return body.kind
}

// IsDynamic reports whether the body responds to contact impulses.
func (body *Body) IsDynamic() bool {
	return body.kind == Dynamic
}

// SetMass sets the mass of the body and its inverse.
func (body *Body) SetMass(mass float64) {
	body.mass = mass
	if mass > 0 && body.kind == Dynamic {
		body.massInverse = 1.0 / mass
	} else {
		body.massInverse = 0
	}
}

// Mass returns the mass of the body.
func (body *Body) Mass() float64 {
	return body.mass
}

// SetSphereInertia sets the rotational inertia of a solid sphere of the
// body's mass and the given radius.
func (body *Body) SetSphereInertia(radius float64) {
	i := 0.4 * body.mass * radius * radius
	body.SetInertia(mgl64.Vec3{i, i, i})
}

// SetInertia sets the principal moments of inertia in the body's local frame.
// Zero components are treated as infinite (no rotation about that axis).
// The moments are remembered across type changes like the mass is.
func (body *Body) SetInertia(moments mgl64.Vec3) {
	body.moments = moments
	if body.kind != Dynamic {
		return
	}
	var inv mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		if m := moments[axis]; m > 0 {
			inv[axis] = 1.0 / m
		}
	}
	body.inertiaInverse = mgl64.Diag3(inv)
}

// InverseMass returns the inverse mass used in effective mass computation.
// Zero for non-dynamic bodies.
func (body *Body) InverseMass() float64 {
	return body.massInverse
}

// InverseInertiaWorld returns the world-space inverse inertia tensor.
func (body *Body) InverseInertiaWorld() mgl64.Mat3 {
	r := rotationMat3(body.Rotation)
	return r.Mul3(body.inertiaInverse).Mul3(r.Transpose())
}

// Sleep puts the body to sleep. Sleeping bodies generate no constraints
// until woken, but resting contacts involving them persist in the store.
func (body *Body) Sleep() {
	body.sleeping = true
}

// WakeUp clears the sleeping flag.
func (body *Body) WakeUp() {
	body.sleeping = false
}

// IsSleeping returns true if the body is sleeping.
func (body *Body) IsSleeping() bool {
	return body.sleeping
}

// isActive reports whether the body can move this frame.
func (body *Body) isActive() bool {
	return body.kind != Static && !body.sleeping
}

// SetSensor marks every collider of this body as contact-reporting only.
func (body *Body) SetSensor(sensor bool) {
	body.sensor = sensor
}

// IsSensor returns true if the body is flagged as a sensor.
func (body *Body) IsSensor() bool {
	return body.sensor
}

// SetSpeculativeMargin overrides the default speculative margin for every
// collider of this body that has no override of its own. An infinite margin
// disables velocity clamping for this side.
func (body *Body) SetSpeculativeMargin(margin float64) {
	body.marginOverride = margin
	body.hasMargin = true
}

// ClearSpeculativeMargin removes the body's margin override.
func (body *Body) ClearSpeculativeMargin() {
	body.marginOverride = 0
	body.hasMargin = false
}

// SpeculativeMargin returns the body's margin override, if set.
func (body *Body) SpeculativeMargin() (float64, bool) {
	return body.marginOverride, body.hasMargin
}

// rotationMat3 expands a unit quaternion into a rotation matrix.
func rotationMat3(q mgl64.Quat) mgl64.Mat3 {
	x := q.Rotate(mgl64.Vec3{1, 0, 0})
	y := q.Rotate(mgl64.Vec3{0, 1, 0})
	z := q.Rotate(mgl64.Vec3{0, 0, 1})
	return mgl64.Mat3FromCols(x, y, z)
}
