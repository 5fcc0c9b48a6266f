package narrow

// World owns the bodies and colliders the narrow phase reads.
//
// Entity lookups are fallible: removing an entity mid-step is legal and the
// lifecycle sweep retires any store entry referencing it on the next frame
// instead of erroring.
type World struct {
	bodies    map[Entity]*Body
	colliders map[Entity]*Collider
	nextID    Entity
}

// NewWorld allocates an empty World.
func NewWorld() *World {
	return &World{
		bodies:    map[Entity]*Body{},
		colliders: map[Entity]*Collider{},
		nextID:    1,
	}
}

// AddBody registers a body and returns its entity id.
func (w *World) AddBody(body *Body) Entity {
	e := w.nextID
	w.nextID++
	w.bodies[e] = body
	return e
}

// AddCollider registers a collider attached to the given body entity.
// Pass NoEntity for a free-standing collider.
func (w *World) AddCollider(collider *Collider, body Entity) Entity {
	e := w.nextID
	w.nextID++
	collider.body = body
	w.colliders[e] = collider
	return e
}

// Body looks up a body by entity.
func (w *World) Body(e Entity) (*Body, bool) {
	b, ok := w.bodies[e]
	return b, ok
}

// Collider looks up a collider by entity.
func (w *World) Collider(e Entity) (*Collider, bool) {
	c, ok := w.colliders[e]
	return c, ok
}

// RemoveBody unregisters a body. Colliders attached to it become body-less.
func (w *World) RemoveBody(e Entity) {
	delete(w.bodies, e)
}

// RemoveCollider unregisters a collider.
func (w *World) RemoveCollider(e Entity) {
	delete(w.colliders, e)
}

// BodyCount returns the number of registered bodies.
func (w *World) BodyCount() int {
	return len(w.bodies)
}

// ColliderCount returns the number of registered colliders.
func (w *World) ColliderCount() int {
	return len(w.colliders)
}
