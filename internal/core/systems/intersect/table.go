package intersect

import (
	"github.com/zeusync/racecollide/internal/core/systems/shape"
)

// Test reports whether two shapes overlap. A non-nil error means the shapes
// themselves are unusable (for example a singular transform).
type Test func(a, b shape.Shape) (bool, error)

type kindPair [2]shape.Kind

// Table maps a pair of shape kinds to the Test that handles it.
// Pairs without an entry never collide. Table is not safe for concurrent mutation.
type Table struct {
	tests map[kindPair]Test
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{tests: make(map[kindPair]Test)}
}

// DefaultTable returns a table populated with the predicates for every pair of
// built-in shape kinds.
func DefaultTable() *Table {
	t := NewTable()
	t.Register(shape.KindSphere, shape.KindSphere, SphereSphere)
	t.Register(shape.KindSphere, shape.KindAABB, SphereAABB)
	t.Register(shape.KindSphere, shape.KindOBB, SphereOBB)
	t.Register(shape.KindAABB, shape.KindAABB, AABBAABB)
	t.Register(shape.KindAABB, shape.KindOBB, AABBOBB)
	t.Register(shape.KindOBB, shape.KindOBB, OBBOBB)
	return t
}

// Register installs test for the pair under both orderings, replacing any
// previous entry. The test must accept its arguments in either order.
func (t *Table) Register(k1, k2 shape.Kind, test Test) {
	if test == nil {
		return
	}
	t.tests[kindPair{k1, k2}] = test
	t.tests[kindPair{k2, k1}] = test
}

// Unregister removes the pair under both orderings.
func (t *Table) Unregister(k1, k2 shape.Kind) {
	delete(t.tests, kindPair{k1, k2})
	delete(t.tests, kindPair{k2, k1})
}

// Lookup returns the test registered for the pair.
func (t *Table) Lookup(k1, k2 shape.Kind) (Test, bool) {
	test, ok := t.tests[kindPair{k1, k2}]
	return test, ok
}

// Len returns the number of ordered entries.
func (t *Table) Len() int {
	return len(t.tests)
}

// Resolve runs the test registered for the shapes' kinds. A missing entry or a
// nil shape means no collision.
func (t *Table) Resolve(a, b shape.Shape) (bool, error) {
	if a == nil || b == nil {
		return false, nil
	}
	test, ok := t.Lookup(a.Kind(), b.Kind())
	if !ok {
		return false, nil
	}
	return test(a, b)
}

var defaultTable = DefaultTable()

// Resolve dispatches through the shared default table.
func Resolve(a, b shape.Shape) (bool, error) {
	return defaultTable.Resolve(a, b)
}
