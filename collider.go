package narrow

import "github.com/go-gl/mathgl/mgl64"

// Pose is a world-space position and orientation.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// PoseIdentity returns the identity pose.
func PoseIdentity() Pose {
	return Pose{Rotation: mgl64.QuatIdent()}
}

// Apply transforms a point from local to world space.
func (p Pose) Apply(local mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Rotate(local).Add(p.Position)
}

// ApplyVector rotates a direction from local to world space.
func (p Pose) ApplyVector(local mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Rotate(local)
}

// Invert transforms a point from world to local space.
func (p Pose) Invert(world mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Conjugate().Rotate(world.Sub(p.Position))
}

// Collider is a shape placed in the world, optionally attached to a body.
//
// A collider without a body still reports contacts but never produces
// constraints; the pair is treated like a sensor pair.
type Collider struct {
	// UserData is an object this collider is associated with.
	UserData any

	// Shape handled by the geometry backend.
	Shape Shape

	// Pose is the collider's world transform. It is owned by the caller;
	// when the collider is attached to a body, keeping it in sync with the
	// body's pose is the integrator's job, not the narrow phase's.
	Pose Pose

	body           Entity
	sensor         bool
	material       *Material
	marginOverride float64
	hasMargin      bool
}

// NewCollider initializes a collider with the given shape at the identity pose.
func NewCollider(shape Shape) *Collider {
	return &Collider{Shape: shape, Pose: PoseIdentity()}
}

// BodyEntity returns the owning body entity, or NoEntity.
func (c *Collider) BodyEntity() Entity {
	return c.body
}

// SetSensor marks the collider as contact-reporting only.
func (c *Collider) SetSensor(sensor bool) {
	c.sensor = sensor
}

// IsSensor returns true if the collider is flagged as a sensor.
func (c *Collider) IsSensor() bool {
	return c.sensor
}

// SetMaterial overrides the owning body's material for this collider.
func (c *Collider) SetMaterial(m Material) {
	c.material = &m
}

// Material returns the collider's material override, if set.
func (c *Collider) Material() (Material, bool) {
	if c.material == nil {
		return Material{}, false
	}
	return *c.material, true
}

// SetSpeculativeMargin overrides the speculative margin for this collider.
// Takes precedence over the owning body's override.
func (c *Collider) SetSpeculativeMargin(margin float64) {
	c.marginOverride = margin
	c.hasMargin = true
}

// ClearSpeculativeMargin removes the collider's margin override.
func (c *Collider) ClearSpeculativeMargin() {
	c.marginOverride = 0
	c.hasMargin = false
}

// SpeculativeMargin returns the collider's margin override, if set.
func (c *Collider) SpeculativeMargin() (float64, bool) {
	return c.marginOverride, c.hasMargin
}
