package narrow_test

import (
	"testing"

	"github.com/physkit/narrow"
	"github.com/stretchr/testify/assert"
)

func TestCombineRules(t *testing.T) {
	assert.Equal(t, 0.5, narrow.CombineAverage.Combine(0.2, 0.8))
	assert.Equal(t, 0.2, narrow.CombineMin.Combine(0.2, 0.8))
	assert.InDelta(t, 0.16, narrow.CombineMultiply.Combine(0.2, 0.8), 1e-12)
	assert.Equal(t, 0.8, narrow.CombineMax.Combine(0.2, 0.8))

	// Commutative for every rule.
	for _, rule := range []narrow.CombineRule{narrow.CombineAverage, narrow.CombineMin, narrow.CombineMultiply, narrow.CombineMax} {
		assert.Equal(t, rule.Combine(0.3, 0.7), rule.Combine(0.7, 0.3))
	}
}

func TestCombineMaterialsRulePriority(t *testing.T) {
	m1 := narrow.Material{Friction: 0.2, FrictionRule: narrow.CombineAverage}
	m2 := narrow.Material{Friction: 0.8, FrictionRule: narrow.CombineMax}
	// The higher-priority rule (Max) wins, in either argument order.
	assert.Equal(t, 0.8, narrow.CombineFriction(m1, m2))
	assert.Equal(t, 0.8, narrow.CombineFriction(m2, m1))

	r1 := narrow.Material{Restitution: 0.5, RestitutionRule: narrow.CombineMultiply}
	r2 := narrow.Material{Restitution: 0.5, RestitutionRule: narrow.CombineMin}
	assert.InDelta(t, 0.25, narrow.CombineRestitution(r1, r2), 1e-12)
}

func TestSoftnessCoefficients(t *testing.T) {
	soft := narrow.NewSoftnessCoefficients(30, 10, 1.0/60)
	assert.Greater(t, soft.BiasRate, 0.0)
	assert.Greater(t, soft.MassScale, 0.0)
	assert.Less(t, soft.MassScale, 1.0)
	assert.Greater(t, soft.ImpulseScale, 0.0)
	assert.Less(t, soft.ImpulseScale, 1.0)
	// Mass and impulse scales partition unity.
	assert.InDelta(t, 1.0, soft.MassScale+soft.ImpulseScale, 1e-12)

	// Zero step or frequency disables softness.
	assert.Equal(t, narrow.SoftnessCoefficients{}, narrow.NewSoftnessCoefficients(0, 10, 1.0/60))
	assert.Equal(t, narrow.SoftnessCoefficients{}, narrow.NewSoftnessCoefficients(30, 10, 0))
}

func TestDefaultContactSoftnessStiffness(t *testing.T) {
	soft := narrow.DefaultContactSoftness(1.0 / 60)
	// Contacts against non-dynamic bodies are stiffer.
	assert.Greater(t, soft.NonDynamic.BiasRate, soft.Dynamic.BiasRate)
}

func TestConstraintEffectiveMass(t *testing.T) {
	world, e1, e2, _, _ := twoSphereWorld(0, 1.9)
	np := narrow.New(world)

	constraints := np.CollectCollisions([]narrow.Pair{{A: e1, B: e2}}, 1.0/60)
	if assert.Len(t, constraints, 1) {
		c := constraints[0]
		if assert.Len(t, c.Points, 1) {
			point := c.Points[0]
			// Two unit-mass spheres touching head on: anchors are parallel
			// to the normal, so rotation contributes nothing and the
			// effective normal mass is 1/(1/m1 + 1/m2).
			assert.InDelta(t, 0.5, point.NormalMass, 1e-9)
			assert.Greater(t, point.TangentMass[0], 0.0)
			assert.Greater(t, point.TangentMass[1], 0.0)
			assert.InDelta(t, -0.1, point.Separation, 1e-9)
		}
		// Tangent basis is orthonormal and perpendicular to the normal.
		assert.InDelta(t, 0, c.Normal.Dot(c.Tangent1), 1e-12)
		assert.InDelta(t, 0, c.Normal.Dot(c.Tangent2), 1e-12)
		assert.InDelta(t, 0, c.Tangent1.Dot(c.Tangent2), 1e-12)
		assert.InDelta(t, 1, c.Tangent1.Len(), 1e-12)
		assert.Equal(t, 1.0/60, c.DT)
	}
}
