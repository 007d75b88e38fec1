package chat

import (
	"sync"
	"time"
)

const DefaultAuthor = "You"

type Listener func(messages []*Message)

// Store is the append-only message sequence of one session.
type Store struct {
	mu        sync.Mutex
	author    string
	history   []*Message
	listeners map[int]Listener
	nextID    int
	now       func() time.Time
}

type StoreOption func(*Store)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(author string, opts ...StoreOption) *Store {
	if author == "" {
		author = DefaultAuthor
	}
	store := &Store{
		author:    author,
		history:   make([]*Message, 0),
		listeners: map[int]Listener{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) Author() string {
	return s.author
}

// Append records text typed by the local user.
func (s *Store) Append(text string) *Message {
	message := NewMessage(s.author, text, s.now(), true)
	s.AppendMessage(message)
	return message
}

// AppendMessage records an already built message, e.g. a greeting from the other side.
func (s *Store) AppendMessage(message *Message) {
	s.mu.Lock()
	s.history = append(s.history, message)
	snapshot := s.snapshot()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

// Messages returns a copy of the sequence in insertion order.
func (s *Store) Messages() []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Subscribe registers l for every change; the returned func removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshot() []*Message {
	out := make([]*Message, len(s.history))
	copy(out, s.history)
	return out
}
