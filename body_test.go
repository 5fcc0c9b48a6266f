package narrow_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/physkit/narrow"
	"github.com/stretchr/testify/assert"
)

func TestSetTypeZeroesAndRestoresInverses(t *testing.T) {
	body := narrow.NewBody(2)
	body.SetSphereInertia(1)
	assert.InDelta(t, 0.5, body.InverseMass(), 1e-12)
	inertia := body.InverseInertiaWorld()
	assert.InDelta(t, 1.25, inertia.At(0, 0), 1e-12)

	// Non-dynamic bodies never absorb impulses.
	body.SetType(narrow.Static)
	assert.Zero(t, body.InverseMass())
	assert.Equal(t, mgl64.Mat3{}, body.InverseInertiaWorld())

	// Switching back restores both the mass and the inertia inverses.
	body.SetType(narrow.Dynamic)
	assert.InDelta(t, 0.5, body.InverseMass(), 1e-12)
	restored := body.InverseInertiaWorld()
	assert.InDelta(t, 1.25, restored.At(0, 0), 1e-12)
	assert.InDelta(t, 1.25, restored.At(1, 1), 1e-12)
}

func TestSetInertiaWhileStaticAppliesOnDynamic(t *testing.T) {
	body := narrow.NewStaticBody()
	body.SetMass(1)
	body.SetInertia(mgl64.Vec3{2, 2, 2})
	assert.Equal(t, mgl64.Mat3{}, body.InverseInertiaWorld())

	body.SetType(narrow.Dynamic)
	assert.InDelta(t, 0.5, body.InverseInertiaWorld().At(0, 0), 1e-12)
}
