package feeds

import "sync"

// feedState is a mutex-guarded snapshot holder shared by a feed's dispatch
// goroutine and its readers.
type feedState[T any] struct {
	mu sync.RWMutex
	v  T
}

func (s *feedState[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

func (s *feedState[T]) set(v T) {
	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
}

func (s *feedState[T]) update(fn func(*T)) {
	s.mu.Lock()
	fn(&s.v)
	s.mu.Unlock()
}
