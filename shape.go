package narrow

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is a convex volume handled by the geometry backend.
type Shape interface {
	// BoundingRadius returns the radius of a sphere centered at the shape's
	// local origin that contains the shape. Infinite for unbounded shapes.
	BoundingRadius() float64
}

// Sphere is a sphere centered at the collider origin.
type Sphere struct {
	Radius float64
}

func (s Sphere) BoundingRadius() float64 {
	return s.Radius
}

// Halfspace is the volume below the plane through the collider origin with
// the given outward normal in collider-local space.
type Halfspace struct {
	Normal mgl64.Vec3
}

func (h Halfspace) BoundingRadius() float64 {
	return math.Inf(1)
}

// CollideFunc computes the contact manifolds between two posed shapes.
// Contacts are reported up to maxDistance of separation; a positive
// separation means the shapes are apart but within the speculative margin.
//
// The function is pure: it mutates nothing and returns nil both for
// separated pairs and for shape combinations it does not support.
type CollideFunc func(s1 Shape, pose1 Pose, s2 Shape, pose2 Pose, maxDistance float64) []ContactManifold

// ContactManifolds is the default geometry backend. It handles sphere and
// halfspace shapes analytically; unsupported combinations yield nil.
//
// The result is symmetric: swapping the argument order yields the same point
// set with anchors swapped and normals negated.
func ContactManifolds(s1 Shape, pose1 Pose, s2 Shape, pose2 Pose, maxDistance float64) []ContactManifold {
	// Bounding-sphere cull before shape dispatch. Unbounded shapes report an
	// infinite radius and always pass.
	r1 := s1.BoundingRadius()
	r2 := s2.BoundingRadius()
	if !math.IsInf(r1, 1) && !math.IsInf(r2, 1) {
		if pose2.Position.Sub(pose1.Position).Len()-r1-r2 > maxDistance {
			return nil
		}
	}

	switch a := s1.(type) {
	case Sphere:
		switch b := s2.(type) {
		case Sphere:
			return sphereToSphere(a, pose1, b, pose2, maxDistance)
		case Halfspace:
			return sphereToHalfspace(a, pose1, b, pose2, maxDistance)
		}
	case Halfspace:
		if b, ok := s2.(Sphere); ok {
			return flipManifolds(sphereToHalfspace(b, pose2, a, pose1, maxDistance))
		}
	}
	return nil
}

func sphereToSphere(s1 Sphere, pose1 Pose, s2 Sphere, pose2 Pose, maxDistance float64) []ContactManifold {
	delta := pose2.Position.Sub(pose1.Position)
	dist := delta.Len()
	separation := dist - s1.Radius - s2.Radius
	if separation > maxDistance {
		return nil
	}

	normal := mgl64.Vec3{1, 0, 0}
	if dist > magicEpsilon {
		normal = delta.Mul(1.0 / dist)
	}

	world1 := pose1.Position.Add(normal.Mul(s1.Radius))
	world2 := pose2.Position.Sub(normal.Mul(s2.Radius))

	point := ContactPoint{
		Local1:     pose1.Invert(world1),
		Local2:     pose2.Invert(world2),
		Normal:     normal,
		Separation: separation,
		Feature:    0,
	}
	return []ContactManifold{{Normal: normal, Points: []ContactPoint{point}}}
}

func sphereToHalfspace(s Sphere, spherePose Pose, h Halfspace, planePose Pose, maxDistance float64) []ContactManifold {
	planeNormal := planePose.ApplyVector(h.Normal)
	if l := planeNormal.Len(); math.Abs(l-1) > magicEpsilon {
		if l < magicEpsilon {
			return nil
		}
		planeNormal = planeNormal.Mul(1.0 / l)
	}

	// Signed height of the sphere center above the plane.
	height := spherePose.Position.Sub(planePose.Position).Dot(planeNormal)
	separation := height - s.Radius
	if separation > maxDistance {
		return nil
	}

	// The contact normal points from the sphere toward the plane.
	normal := planeNormal.Mul(-1)
	world1 := spherePose.Position.Add(normal.Mul(s.Radius))
	world2 := spherePose.Position.Sub(planeNormal.Mul(height))

	point := ContactPoint{
		Local1:     spherePose.Invert(world1),
		Local2:     planePose.Invert(world2),
		Normal:     normal,
		Separation: separation,
		Feature:    0,
	}
	return []ContactManifold{{Normal: normal, Points: []ContactPoint{point}}}
}

func flipManifolds(manifolds []ContactManifold) []ContactManifold {
	for i := range manifolds {
		manifolds[i].Flip()
	}
	return manifolds
}
