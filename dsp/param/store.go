package param

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-delay/dsp/core"
	"github.com/cwbudde/algo-delay/dsp/tempo"
)

// Listener is notified after a parameter value changed.
type Listener func(id ID, value float64)

// Snapshot is a per-block copy of all parameter values.
type Snapshot struct {
	DelayTimeMs float64
	Sync        bool
	Division    tempo.Division
	Feedback    float64
	Mix         float64
}

// Store holds the current parameter values.
//
// Get, Bool, Index, Normalized and Snapshot are wait-free and safe to call
// from the audio callback. Set, Import, Reset and Subscribe belong to the
// non-real-time side.
type Store struct {
	values [NumParams]atomic.Uint64

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// NewStore returns a store with every parameter at its default.
func NewStore() *Store {
	s := &Store{listeners: make(map[int]Listener)}
	for i := range specs {
		s.values[i].Store(math.Float64bits(specs[i].Default))
	}
	return s
}

// Get returns the current value of id, or 0 for an invalid id.
func (s *Store) Get(id ID) float64 {
	if !id.Valid() {
		return 0
	}
	return math.Float64frombits(s.values[id].Load())
}

// Bool interprets the value of id as a toggle.
func (s *Store) Bool(id ID) bool {
	return s.Get(id) >= 0.5
}

// Index interprets the value of id as a choice index.
func (s *Store) Index(id ID) int {
	return int(s.Get(id))
}

// Set clamps v into the declared range of id, rounds stepped parameters to
// the nearest step and stores the result. NaN and invalid ids are ignored.
// It returns the value now held by the store.
func (s *Store) Set(id ID, v float64) float64 {
	if !id.Valid() {
		return 0
	}
	if math.IsNaN(v) {
		return s.Get(id)
	}

	spec := specs[id]
	v = core.Clamp(v, spec.Min, spec.Max)
	if spec.Steps > 0 {
		v = math.Round(v)
	}

	old := math.Float64frombits(s.values[id].Swap(math.Float64bits(v)))
	if old != v {
		s.notify(id, v)
	}
	return v
}

// SetBool stores a toggle value.
func (s *Store) SetBool(id ID, on bool) {
	v := 0.0
	if on {
		v = 1
	}
	s.Set(id, v)
}

// Normalized returns the value of id mapped onto [0, 1].
func (s *Store) Normalized(id ID) float64 {
	if !id.Valid() {
		return 0
	}
	spec := specs[id]
	return (s.Get(id) - spec.Min) / (spec.Max - spec.Min)
}

// SetNormalized sets id from a [0, 1] control position.
func (s *Store) SetNormalized(id ID, n float64) float64 {
	if !id.Valid() {
		return 0
	}
	spec := specs[id]
	return s.Set(id, spec.Min+core.Clamp(n, 0, 1)*(spec.Max-spec.Min))
}

// Snapshot loads every parameter once.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		DelayTimeMs: s.Get(DelayTimeMs),
		Sync:        s.Bool(SyncEnabled),
		Division:    tempo.ClampDivision(s.Index(SyncDivision)),
		Feedback:    s.Get(Feedback),
		Mix:         s.Get(Mix),
	}
}

// Reset restores all defaults.
func (s *Store) Reset() {
	for i := range specs {
		s.Set(ID(i), specs[i].Default)
	}
}

// Export returns all current values keyed by persistence name.
func (s *Store) Export() map[string]float64 {
	out := make(map[string]float64, NumParams)
	for i := range specs {
		out[specs[i].Name] = s.Get(ID(i))
	}
	return out
}

// Import sets every known name found in values. Unknown names are ignored
// and parameters absent from values keep their current value.
func (s *Store) Import(values map[string]float64) {
	for name, v := range values {
		if id, ok := Lookup(name); ok {
			s.Set(id, v)
		}
	}
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. fn runs on the goroutine that changed the value.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify(id ID, v float64) {
	s.mu.Lock()
	if len(s.listeners) == 0 {
		s.mu.Unlock()
		return
	}
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(id, v)
	}
}
