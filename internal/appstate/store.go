package appstate

import (
	"sync"

	"github.com/alightgram/alightgram-backend/internal/live"
)

// Store serializes actions against one State and publishes every resulting state.
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[int]chan State
	nextID int
}

func NewStore(initial State) *Store {
	return &Store{state: initial, subs: make(map[int]chan State)}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and returns the new state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	for _, ch := range s.subs {
		live.SendLatest(ch, s.state)
	}
	return s.state
}

// Subscribe returns a channel that receives the current state and then the latest state
// after each dispatch. Slow readers skip intermediate states. cancel closes the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan State, 1)
	ch <- s.state
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}
