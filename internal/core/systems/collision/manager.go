// Package collision tracks which pairs of world objects overlap from one scan to the
// next and runs the Begin, During and End reactions registered for their kinds.
package collision

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/racecollide/internal/core/models"
	"github.com/zeusync/racecollide/internal/core/observability/log"
	"github.com/zeusync/racecollide/internal/core/systems/shape"
)

// ErrScanInProgress is returned when CheckCollisions is called from inside a callback.
var ErrScanInProgress = errors.New("collision scan already in progress")

// Object is anything the manager can test: a stable identity, a gameplay kind,
// a position for the distance cull and an optional world-placed shape.
type Object interface {
	ID() string
	Kind() models.Kind
	Position() mgl64.Vec3
	Shape() shape.Shape
}

// pairKey identifies an unordered pair of objects, lower ID first.
type pairKey struct {
	lo, hi string
}

func newPairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Metrics describes the manager's state and its work so far.
type Metrics struct {
	Objects   int // managed objects
	Overlaps  int // pairs currently overlapping
	Callbacks int // registered (kind pair, phase) entries, both orderings counted

	Scans       uint64        // completed CheckCollisions runs
	PairsTested uint64        // pairs with at least one callback
	PairsCulled uint64        // pairs rejected by the distance cull
	NarrowPhase uint64        // pairs handed to the dispatch table
	Begins      uint64        // pairs that started overlapping
	Ends        uint64        // pairs that stopped overlapping
	Errors      uint64        // scans aborted by an intersection error
	LastScan    time.Duration // duration of the most recent scan
}

// Manager runs the per-frame pairwise scan. It is not safe for concurrent use.
//
// Object and callback mutations requested while a scan or a callback is running
// are queued and applied, in order, once the outermost call returns.
type Manager struct {
	cfg Config

	objects  []Object
	index    map[string]struct{}
	overlaps map[pairKey]struct{}
	handlers registry

	depth   int
	pending []func()

	metrics Metrics
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Manager{
		cfg:      cfg,
		index:    make(map[string]struct{}),
		overlaps: make(map[pairKey]struct{}),
		handlers: newRegistry(),
	}
}

// CheckRadius returns the broad-phase cull radius.
func (m *Manager) CheckRadius() float64 {
	return m.cfg.CheckRadius
}

// SetCheckRadius changes the broad-phase cull radius; values <= 0 disable the cull.
func (m *Manager) SetCheckRadius(radius float64) {
	m.cfg.CheckRadius = radius
}

// AddObject starts tracking o. Objects already tracked are ignored.
func (m *Manager) AddObject(o Object) {
	if o == nil {
		return
	}
	m.mutate(func() {
		if _, ok := m.index[o.ID()]; ok {
			return
		}
		m.index[o.ID()] = struct{}{}
		m.objects = append(m.objects, o)
	})
}

// RemoveObject stops tracking o and forgets every overlap it was part of.
func (m *Manager) RemoveObject(o Object) {
	if o == nil {
		return
	}
	m.mutate(func() {
		m.removeNow(o)
	})
}

// RemoveAllObjects stops tracking every object.
func (m *Manager) RemoveAllObjects() {
	m.mutate(func() {
		objects := m.objects
		if m.cfg.EndOnRemove {
			for i := 0; i < len(objects); i++ {
				for j := i + 1; j < len(objects); j++ {
					m.endIfOverlapping(objects[i], objects[j])
				}
			}
		}
		m.objects = nil
		clear(m.index)
		clear(m.overlaps)
	})
}

// AddCallback registers cb for objects of kinds k1 and k2 in the given phase,
// replacing any callback already registered for that pair and phase.
func (m *Manager) AddCallback(k1, k2 models.Kind, cb Callback, phase Phase) {
	if cb == nil || phase >= phaseCount {
		return
	}
	m.mutate(func() {
		m.handlers.add(k1, k2, cb, phase)
	})
}

// RemoveCallback drops the callback for the kind pair and phase.
func (m *Manager) RemoveCallback(k1, k2 models.Kind, phase Phase) {
	if phase >= phaseCount {
		return
	}
	m.mutate(func() {
		m.handlers.remove(k1, k2, phase)
	})
}

// RemoveAllCallbacks drops every registered callback.
func (m *Manager) RemoveAllCallbacks() {
	m.mutate(func() {
		m.handlers.clear()
	})
}

// Colliding reports whether a and b overlapped at the end of the last scan.
func (m *Manager) Colliding(a, b Object) bool {
	if a == nil || b == nil {
		return false
	}
	_, ok := m.overlaps[newPairKey(a.ID(), b.ID())]
	return ok
}

// Objects returns the tracked objects in insertion order.
func (m *Manager) Objects() []Object {
	out := make([]Object, len(m.objects))
	copy(out, m.objects)
	return out
}

// Metrics returns a snapshot of the manager's counters.
func (m *Manager) Metrics() Metrics {
	metrics := m.metrics
	metrics.Objects = len(m.objects)
	metrics.Overlaps = len(m.overlaps)
	for i := range m.handlers {
		metrics.Callbacks += len(m.handlers[i])
	}
	return metrics
}

// CheckCollisions tests every unordered pair of tracked objects once, in insertion
// order, and fires the callbacks for each pair whose overlap state it observes.
//
// An intersection error stops the scan; transitions already fired stay applied.
func (m *Manager) CheckCollisions() error {
	if m.depth > 0 {
		return ErrScanInProgress
	}

	start := time.Now()
	m.depth++
	err := m.scan()
	m.depth--
	m.metrics.LastScan = time.Since(start)

	if err != nil {
		m.metrics.Errors++
		m.cfg.Logger.Warn("Collision scan aborted", log.Error(err))
	} else {
		m.metrics.Scans++
	}

	m.flush()
	return err
}

func (m *Manager) scan() error {
	objects := m.objects
	for i := 0; i < len(objects); i++ {
		for j := i + 1; j < len(objects); j++ {
			if err := m.checkPair(objects[i], objects[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Manager) checkPair(a, b Object) error {
	key := newPairKey(a.ID(), b.ID())

	if !m.handlers.has(a.Kind(), b.Kind()) {
		delete(m.overlaps, key)
		return nil
	}
	m.metrics.PairsTested++

	_, was := m.overlaps[key]
	is := false

	if m.withinRadius(a, b) {
		m.metrics.NarrowPhase++
		ok, err := m.cfg.Table.Resolve(a.Shape(), b.Shape())
		if err != nil {
			return fmt.Errorf("collision between %s and %s: %w", a.ID(), b.ID(), err)
		}
		is = ok
	} else {
		m.metrics.PairsCulled++
	}

	switch {
	case was && is:
		m.handlers.invoke(PhaseDuring, a, b)
	case was:
		delete(m.overlaps, key)
		m.metrics.Ends++
		m.cfg.Logger.Debug("Collision ended", pairFields(a, b)...)
		m.handlers.invoke(PhaseEnd, a, b)
	case is:
		m.overlaps[key] = struct{}{}
		m.metrics.Begins++
		m.cfg.Logger.Debug("Collision began", pairFields(a, b)...)
		m.handlers.invoke(PhaseBegin, a, b)
		m.handlers.invoke(PhaseDuring, a, b)
	}

	return nil
}

// withinRadius is the broad-phase cull. A culled pair counts as not overlapping, so a
// recorded overlap between objects that moved out of range ends with END.
func (m *Manager) withinRadius(a, b Object) bool {
	r := m.cfg.CheckRadius
	if r <= 0 {
		return true
	}
	d := a.Position().Sub(b.Position())
	return d.Dot(d) <= r*r
}

func (m *Manager) removeNow(o Object) {
	if _, ok := m.index[o.ID()]; !ok {
		return
	}

	at := -1
	for i, other := range m.objects {
		if other.ID() == o.ID() {
			at = i
			continue
		}
		if m.cfg.EndOnRemove {
			m.endIfOverlapping(o, other)
		} else {
			delete(m.overlaps, newPairKey(o.ID(), other.ID()))
		}
	}

	delete(m.index, o.ID())
	if at >= 0 {
		m.objects = append(m.objects[:at:at], m.objects[at+1:]...)
	}
}

func (m *Manager) endIfOverlapping(a, b Object) {
	key := newPairKey(a.ID(), b.ID())
	if _, ok := m.overlaps[key]; !ok {
		return
	}
	delete(m.overlaps, key)
	m.metrics.Ends++
	m.cfg.Logger.Debug("Collision ended by removal", pairFields(a, b)...)
	m.handlers.invoke(PhaseEnd, a, b)
}

// mutate applies op now, or queues it while a scan or callback is running.
func (m *Manager) mutate(op func()) {
	if m.depth > 0 {
		m.pending = append(m.pending, op)
		return
	}
	m.depth++
	op()
	m.depth--
	m.flush()
}

func (m *Manager) flush() {
	for m.depth == 0 && len(m.pending) > 0 {
		op := m.pending[0]
		m.pending = m.pending[1:]
		m.depth++
		op()
		m.depth--
	}
}

func pairFields(a, b Object) []log.Field {
	return []log.Field{
		log.String("a", a.ID()),
		log.String("a_kind", a.Kind().String()),
		log.String("b", b.ID()),
		log.String("b_kind", b.Kind().String()),
	}
}
