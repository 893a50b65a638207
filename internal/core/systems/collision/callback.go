package collision

import (
	"fmt"

	"github.com/zeusync/racecollide/internal/core/models"
)

// Phase is the stage of a pair's contact a callback reacts to.
type Phase uint8

const (
	// PhaseBegin fires on the first scan a pair overlaps.
	PhaseBegin Phase = iota
	// PhaseDuring fires on every scan a pair overlaps, including the first.
	PhaseDuring
	// PhaseEnd fires on the first scan a pair no longer overlaps.
	PhaseEnd

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseBegin:
		return "begin"
	case PhaseDuring:
		return "during"
	case PhaseEnd:
		return "end"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Callback reacts to a pair of colliding objects. For a pair of different kinds
// a is always the object of the first kind the callback was registered with.
type Callback func(a, b Object)

type kindPair [2]models.Kind

type registration struct {
	callback Callback
	first    models.Kind
}

// registry keeps one callback per unordered kind pair and phase.
type registry [phaseCount]map[kindPair]registration

func newRegistry() registry {
	var r registry
	for i := range r {
		r[i] = make(map[kindPair]registration)
	}
	return r
}

func (r *registry) add(k1, k2 models.Kind, cb Callback, phase Phase) {
	entry := registration{callback: cb, first: k1}
	r[phase][kindPair{k1, k2}] = entry
	r[phase][kindPair{k2, k1}] = entry
}

func (r *registry) remove(k1, k2 models.Kind, phase Phase) {
	delete(r[phase], kindPair{k1, k2})
	delete(r[phase], kindPair{k2, k1})
}

func (r *registry) clear() {
	for i := range r {
		clear(r[i])
	}
}

// has reports whether some phase has a callback for the pair.
func (r *registry) has(k1, k2 models.Kind) bool {
	for i := range r {
		if _, ok := r[i][kindPair{k1, k2}]; ok {
			return true
		}
	}
	return false
}

// invoke calls the phase callback for the pair, if any, with the objects in registration order.
func (r *registry) invoke(phase Phase, a, b Object) bool {
	entry, ok := r[phase][kindPair{a.Kind(), b.Kind()}]
	if !ok {
		return false
	}
	if a.Kind() != b.Kind() && a.Kind() != entry.first {
		a, b = b, a
	}
	entry.callback(a, b)
	return true
}
