package conversation

import (
	"log/slog"
	"sync"
)

// DefaultLimit is the per-conversation turn cap applied on append.
const DefaultLimit = 20

// Store holds all conversations in memory, keyed by an opaque identifier.
//
// Store is safe for concurrent use. Two locking layers exist: the store
// mutex guards the map and every turn slice, while each conversation owns
// an exchange mutex handed out by Acquire. The gateway holds the exchange
// mutex across a full read history → remote call → append cycle so that
// concurrent requests for the same conversation cannot interleave and lose
// or reorder turns, while requests for different conversations proceed in
// parallel.
type Store struct {
	mu     sync.RWMutex
	limit  int
	convs  map[string]*entry
	logger *slog.Logger
}

type entry struct {
	exchange sync.Mutex
	turns    []Turn
}

// NewStore creates a store that trims each conversation to the given number
// of most recent turns. limit values below 2 fall back to DefaultLimit.
func NewStore(limit int, logger *slog.Logger) *Store {
	if limit < 2 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		limit:  limit,
		convs:  make(map[string]*entry),
		logger: logger,
	}
}

// getOrCreate returns the entry for id, creating it if absent.
// Caller must not hold s.mu.
func (s *Store) getOrCreate(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.convs[id]
	if !ok {
		e = &entry{}
		s.convs[id] = e
		s.logger.Debug("created conversation", "id", id)
	}
	return e
}

// Acquire locks the conversation for an exclusive exchange and returns the
// release function. The conversation is created if it does not exist yet.
func (s *Store) Acquire(id string) (release func()) {
	e := s.getOrCreate(id)
	e.exchange.Lock()
	return e.exchange.Unlock
}

// History returns a copy of the stored turns for id, oldest first.
// Unknown ids yield an empty slice, never nil.
func (s *Store) History(id string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.convs[id]
	if !ok {
		return []Turn{}
	}
	out := make([]Turn, len(e.turns))
	copy(out, e.turns)
	return out
}

// Append adds turns to the conversation, creating it if needed, then trims
// it to the most recent limit turns.
func (s *Store) Append(id string, turns ...Turn) {
	if len(turns) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.convs[id]
	if !ok {
		e = &entry{}
		s.convs[id] = e
	}

	e.turns = append(e.turns, turns...)
	if len(e.turns) > s.limit {
		trimmed := make([]Turn, s.limit)
		copy(trimmed, e.turns[len(e.turns)-s.limit:])
		e.turns = trimmed
	}

	s.logger.Debug("appended turns", "id", id, "added", len(turns), "total", len(e.turns))
}

// Clear removes the conversation entirely. Clearing an unknown id is a no-op.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.convs[id]; ok {
		delete(s.convs, id)
		s.logger.Debug("cleared conversation", "id", id)
	}
}

// Count reports the number of active conversations.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convs)
}
