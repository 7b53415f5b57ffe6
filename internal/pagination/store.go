package pagination

// Store holds per-pass rule state. Rules key their entries by their own
// *Rule so independent rules and independent passes never share state.
type Store struct {
	values map[any]any
}

func newStore() *Store {
	return &Store{values: make(map[any]any)}
}

// Get returns the value stored under key.
func (s *Store) Get(key any) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores v under key.
func (s *Store) Set(key, v any) {
	s.values[key] = v
}

// Value returns the T stored under key, creating it with init on first use.
func Value[T any](s *Store, key any, init func() T) T {
	if v, ok := s.values[key]; ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	t := init()
	s.values[key] = t
	return t
}
