package narrow

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NarrowPhase computes contacts for each candidate pair from the broad phase,
// maintains them in the Collisions store, and generates contact constraints
// for the solver.
//
// The per-step pipeline is explicit: ResetStates, then CollectCollisions,
// then the caller consumes the constraints, then RemoveEnded. Step drives all
// four in order.
type NarrowPhase struct {
	// World resolves the entity ids named by candidate pairs.
	World *World

	// Collisions found by the narrow phase. Exposed so downstream consumers
	// (solver, sleeping policy, user post-process filters) can read and
	// mutate entries between detection and constraint finalization.
	Collisions *Collisions

	// Config holds the narrow-phase tunables.
	Config Config

	// LengthUnit scales distance tolerances to the world's unit convention.
	// A world measured in centimeters instead of meters would use 100.
	LengthUnit float64

	// Executor selects sequential or parallel pair processing.
	Executor Executor

	// Collide is the geometry backend. Defaults to ContactManifolds.
	Collide CollideFunc

	// Softness overrides the contact softness coefficients. When zero,
	// DefaultContactSoftness(dt) is used.
	Softness ContactSoftness

	// PostProcess filters run over the Collisions store after detection,
	// before the constraint list is handed to the caller. They may add,
	// remove, or mutate entries.
	PostProcess []func(*Collisions)

	constraints     []ContactConstraint
	wake            []Entity
	scaledMargin    float64
	scaledTolerance float64
}

// New returns a narrow phase over the given world with default configuration,
// the default geometry backend, and sequential execution.
func New(world *World) *NarrowPhase {
	return &NarrowPhase{
		World:      world,
		Collisions: NewCollisions(),
		Config:     DefaultConfig(),
		LengthUnit: 1,
		Executor:   Sequential{},
		Collide:    ContactManifolds,
	}
}

// Step runs one full narrow-phase pass: the reset sweep, pair processing over
// the candidate pairs, the solve callback on the generated constraints, and
// the prune sweep. The constraint slice passed to solve is reused between
// steps and must not be retained.
func (np *NarrowPhase) Step(pairs []Pair, dt float64, solve func([]ContactConstraint)) {
	np.ResetStates()
	constraints := np.CollectCollisions(pairs, dt)
	if solve != nil {
		solve(constraints)
	}
	np.RemoveEnded()
}

// ResetStates is the pre-pass of the contact lifecycle. It zeroes the
// per-frame impulse aggregates and arms the frame flags: pairs with at least
// one active body must be re-detected this frame to survive, while resting
// pairs (both sides static or sleeping) persist without re-detection since
// neither side can move to break contact. Entries whose entities no longer
// resolve are marked for removal.
func (np *NarrowPhase) ResetStates() {
	np.Collisions.Each(func(contacts *Contacts) {
		contacts.TotalNormalImpulse = 0
		contacts.TotalTangentImpulse = mgl64.Vec2{}

		collider1, ok1 := np.World.Collider(contacts.Entity1)
		collider2, ok2 := np.World.Collider(contacts.Entity2)
		if !ok1 || !ok2 {
			contacts.DuringCurrentFrame = false
			return
		}

		if np.sideActive(collider1) || np.sideActive(collider2) {
			contacts.DuringPreviousFrame = true
			contacts.DuringCurrentFrame = false
		} else {
			contacts.DuringPreviousFrame = true
			contacts.DuringCurrentFrame = true
		}
	})
}

// sideActive reports whether a collider's side of a pair can move this frame.
// A collider without a resolvable body counts as active so its contacts keep
// requiring re-detection.
func (np *NarrowPhase) sideActive(collider *Collider) bool {
	if body, ok := np.World.Body(collider.BodyEntity()); ok {
		return body.isActive()
	}
	return true
}

// RemoveEnded is the post-pass of the contact lifecycle: it removes every
// entry that was not detected this frame. It is the sole removal path, which
// gives downstream consumers exactly one frame to observe an ended contact
// before the entry disappears.
func (np *NarrowPhase) RemoveEnded() {
	np.Collisions.Retain(func(contacts *Contacts) bool {
		return contacts.DuringCurrentFrame
	})
}

// CollectCollisions processes every candidate pair, updates the Collisions
// store, and returns the contact constraints for this step. The returned
// slice is reused between calls.
//
// Under a Parallel executor the order of constraints is not stable across
// runs; use Sequential when exact reproducibility matters.
func (np *NarrowPhase) CollectCollisions(pairs []Pair, dt float64) []ContactConstraint {
	np.scaledMargin = np.LengthUnit * np.Config.DefaultSpeculativeMargin
	np.scaledTolerance = np.LengthUnit * np.Config.ContactTolerance

	softness := np.softnessFor(dt)
	warmStart := np.Config.WarmStart()
	np.constraints = np.constraints[:0]
	np.wake = np.wake[:0]

	executor := np.Executor
	if executor == nil {
		executor = Sequential{}
	}

	executor.run(pairs,
		func(chunk []Pair, out *pairResults) {
			for _, pair := range chunk {
				if contacts := np.handlePair(pair.A, pair.B, out, softness, warmStart, dt); contacts != nil {
					out.contacts = append(out.contacts, *contacts)
				}
			}
		},
		func(out *pairResults) {
			np.Collisions.extend(out.contacts)
			np.constraints = append(np.constraints, out.constraints...)
			np.wake = append(np.wake, out.wake...)
		})

	// Wake actions queued by workers are applied only here, after the whole
	// pass, so body state is never mutated concurrently.
	for _, e := range np.wake {
		if body, ok := np.World.Body(e); ok {
			body.WakeUp()
		}
	}

	for _, filter := range np.PostProcess {
		filter(np.Collisions)
	}

	return np.constraints
}

// handlePair computes the contacts between two collider entities and appends
// the resulting constraints and wake actions to out. Returns nil when either
// entity does not resolve or the pair is not in contact.
func (np *NarrowPhase) handlePair(entity1, entity2 Entity, out *pairResults, softness ContactSoftness, warmStart bool, dt float64) *Contacts {
	collider1, ok1 := np.World.Collider(entity1)
	collider2, ok2 := np.World.Collider(entity2)
	if !ok1 || !ok2 {
		return nil
	}

	body1, hasBody1 := np.World.Body(collider1.BodyEntity())
	body2, hasBody2 := np.World.Body(collider2.BodyEntity())

	maxDistance := np.maxContactDistance(collider1, collider2, body1, body2, dt)

	contacts := np.computeContacts(entity1, entity2, collider1, collider2, hasBody1, hasBody2, maxDistance, warmStart)
	if contacts == nil {
		return nil
	}

	if hasBody1 && hasBody2 {
		// At least one body must be dynamic for constraints to exist;
		// otherwise the pair is recorded purely for reporting.
		if !body1.IsDynamic() && !body2.IsDynamic() {
			return contacts
		}
		np.generateConstraints(contacts, out, body1, body2, collider1, collider2, entity1, entity2, softness, warmStart, dt)
	}

	return contacts
}

// maxContactDistance computes the speculative contact distance for one pair.
//
// Each side's margin is the collider override, else the body override, else
// the scaled default. A finite margin clamps that side's speed to margin/dt;
// the effective margin is the step's relative travel of the clamped
// velocities, floored by the contact tolerance.
func (np *NarrowPhase) maxContactDistance(collider1, collider2 *Collider, body1, body2 *Body, dt float64) float64 {
	var linVel1, linVel2 mgl64.Vec3
	margin1 := np.scaledMargin
	margin2 := np.scaledMargin

	if body1 != nil {
		linVel1 = body1.Velocity
		if m, ok := body1.SpeculativeMargin(); ok {
			margin1 = m
		}
	}
	if body2 != nil {
		linVel2 = body2.Velocity
		if m, ok := body2.SpeculativeMargin(); ok {
			margin2 = m
		}
	}
	if m, ok := collider1.SpeculativeMargin(); ok {
		margin1 = m
	}
	if m, ok := collider2.SpeculativeMargin(); ok {
		margin2 = m
	}

	if dt > 0 {
		inv := 1.0 / dt
		if !math.IsInf(margin1, 1) {
			linVel1 = clampMag(linVel1, margin1*inv)
		}
		if !math.IsInf(margin2, 1) {
			linVel2 = clampMag(linVel2, margin2*inv)
		}
	}

	effectiveMargin := dt * linVel1.Sub(linVel2).Len()
	return math.Max(effectiveMargin, np.scaledTolerance)
}

// MaxContactDistance returns the speculative contact distance that would be
// used for the pair this step, or false if either entity does not resolve.
func (np *NarrowPhase) MaxContactDistance(entity1, entity2 Entity, dt float64) (float64, bool) {
	collider1, ok1 := np.World.Collider(entity1)
	collider2, ok2 := np.World.Collider(entity2)
	if !ok1 || !ok2 {
		return 0, false
	}
	np.scaledMargin = np.LengthUnit * np.Config.DefaultSpeculativeMargin
	np.scaledTolerance = np.LengthUnit * np.Config.ContactTolerance
	body1, _ := np.World.Body(collider1.BodyEntity())
	body2, _ := np.World.Body(collider2.BodyEntity())
	return np.maxContactDistance(collider1, collider2, body1, body2, dt), true
}

// computeContacts invokes the geometry backend and builds the Contacts record
// for one pair. Returns nil when no manifolds result; the store is not
// touched for such pairs.
//
// When matchContacts is set and the pair produced few manifolds, points are
// matched against the previous frame's entry so the solver can warm start
// from the carried impulses. Matching is skipped for dense results because it
// is quadratic in points.
func (np *NarrowPhase) computeContacts(entity1, entity2 Entity, collider1, collider2 *Collider, hasBody1, hasBody2 bool, maxDistance float64, matchContacts bool) *Contacts {
	collide := np.Collide
	if collide == nil {
		collide = ContactManifolds
	}
	manifolds := collide(collider1.Shape, collider1.Pose, collider2.Shape, collider2.Pose, maxDistance)
	if len(manifolds) == 0 {
		return nil
	}

	previous := np.Collisions.Get(entity1, entity2)

	var totalNormalImpulse float64
	var totalTangentImpulse mgl64.Vec2

	if len(manifolds) <= maxMatchedManifolds && matchContacts && previous != nil {
		threshold := matchDistanceFraction * np.LengthUnit

		for i := range manifolds {
			manifold := &manifolds[i]
			for j := range previous.Manifolds {
				manifold.MatchPoints(previous.Manifolds[j].Points, threshold)
			}
			for k := range manifold.Points {
				totalNormalImpulse += manifold.Points[k].NormalImpulse
				totalTangentImpulse = totalTangentImpulse.Add(manifold.Points[k].TangentImpulse)
			}
		}
	}

	contacts := &Contacts{
		Entity1:             entity1,
		Entity2:             entity2,
		BodyEntity1:         collider1.BodyEntity(),
		BodyEntity2:         collider2.BodyEntity(),
		Manifolds:           manifolds,
		DuringCurrentFrame:  true,
		IsSensor:            collider1.IsSensor() || collider2.IsSensor() || !hasBody1 || !hasBody2,
		TotalNormalImpulse:  totalNormalImpulse,
		TotalTangentImpulse: totalTangentImpulse,
	}
	if previous != nil {
		contacts.DuringPreviousFrame = previous.DuringPreviousFrame
	}
	return contacts
}

// generateConstraints turns one Contacts record into solver constraints,
// appending them to out. Nothing is emitted when both bodies are inactive or
// either side is a sensor. When exactly one body is sleeping, a deferred wake
// action for it is queued; it is applied after the whole pair pass.
func (np *NarrowPhase) generateConstraints(contacts *Contacts, out *pairResults, body1, body2 *Body, collider1, collider2 *Collider, entity1, entity2 Entity, softness ContactSoftness, warmStart bool, dt float64) {
	inactive1 := body1.Type() == Static || body1.IsSleeping()
	inactive2 := body2.Type() == Static || body2.IsSleeping()

	if (inactive1 && inactive2) ||
		(collider1.IsSensor() || body1.IsSensor()) ||
		(collider2.IsSensor() || body2.IsSensor()) {
		return
	}

	// Both-sleeping pairs were skipped above, so at most one side matches.
	if body1.IsSleeping() {
		out.wake = append(out.wake, contacts.BodyEntity1)
	} else if body2.IsSleeping() {
		out.wake = append(out.wake, contacts.BodyEntity2)
	}

	material1 := body1.Material
	if m, ok := collider1.Material(); ok {
		material1 = m
	}
	material2 := body2.Material
	if m, ok := collider2.Material(); ok {
		material2 = m
	}
	friction := CombineFriction(material1, material2)
	restitution := CombineRestitution(material1, material2)

	soft := softness.Dynamic
	if !body1.IsDynamic() || !body2.IsDynamic() {
		soft = softness.NonDynamic
	}

	for i := range contacts.Manifolds {
		constraint := newContactConstraint(
			i, &contacts.Manifolds[i],
			body1, body2,
			collider1, collider2,
			entity1, entity2,
			np.scaledMargin, friction, restitution,
			soft, warmStart, dt,
		)
		if len(constraint.Points) > 0 {
			out.constraints = append(out.constraints, constraint)
		}
	}
}

func (np *NarrowPhase) softnessFor(dt float64) ContactSoftness {
	if np.Softness != (ContactSoftness{}) {
		return np.Softness
	}
	return DefaultContactSoftness(dt)
}
