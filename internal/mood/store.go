package mood

// #region store

// Store owns the companion's mood state. Only the engine mutates it; other
// components read copies via Snapshot.
type Store struct {
	state State
}

// NewStore creates a store seeded with Initial().
func NewStore() *Store {
	return &Store{state: Initial()}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	return s.state
}

// Update replaces the state with fn(current) and returns the result.
// fn must be built from the package reducers; the result is re-normalized.
func (s *Store) Update(fn func(State) State) State {
	next := fn(s.state)
	s.state = normalize(next, next)
	return s.state
}

// #endregion store
