package narrow

// pairKey is the canonical store key for an unordered entity pair.
type pairKey struct {
	a, b Entity
}

func makePairKey(e1, e2 Entity) pairKey {
	if e2 < e1 {
		return pairKey{e2, e1}
	}
	return pairKey{e1, e2}
}

// Collisions stores one Contacts record per unordered collider pair seen
// across frames. Keys are canonically ordered at insertion; lookups still
// probe both orderings so callers never need to care about pair order.
//
// The store is exposed to downstream consumers between contact detection and
// constraint finalization. It is not safe for concurrent mutation; during the
// parallel pair pass workers write only to local buffers and the merge step is
// the single writer.
type Collisions struct {
	table map[pairKey]*Contacts
}

// NewCollisions allocates an empty store.
func NewCollisions() *Collisions {
	return &Collisions{table: map[pairKey]*Contacts{}}
}

// Get returns the stored contacts between e1 and e2 in either order,
// or nil if the pair has no entry.
func (c *Collisions) Get(e1, e2 Entity) *Contacts {
	if con, ok := c.table[pairKey{e1, e2}]; ok {
		return con
	}
	return c.table[pairKey{e2, e1}]
}

// Insert adds or replaces the entry for the contacts' pair.
func (c *Collisions) Insert(con *Contacts) {
	c.table[makePairKey(con.Entity1, con.Entity2)] = con
}

// Remove deletes the entry for the pair, in either order.
func (c *Collisions) Remove(e1, e2 Entity) {
	delete(c.table, pairKey{e1, e2})
	delete(c.table, pairKey{e2, e1})
}

// Count returns the number of stored pairs.
func (c *Collisions) Count() int {
	return len(c.table)
}

// Each calls f for every stored entry.
func (c *Collisions) Each(f func(*Contacts)) {
	for _, con := range c.table {
		f(con)
	}
}

// Retain removes every entry for which keep returns false.
func (c *Collisions) Retain(keep func(*Contacts) bool) {
	for key, con := range c.table {
		if !keep(con) {
			delete(c.table, key)
		}
	}
}

// extend inserts a batch of contacts produced by a pair-pass worker.
func (c *Collisions) extend(batch []Contacts) {
	for i := range batch {
		con := batch[i]
		c.Insert(&con)
	}
}
