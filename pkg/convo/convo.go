// Package convo holds short-term conversation memory for each device.
//
// Every device talking to the backend gets its own sliding window of the
// most recent turns, replayed to the chat model as dialogue context. The
// store lives for the process lifetime only; nothing is persisted.
package convo

import "sync"

// Roles for conversation turns. These match the chat API wire values.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultDevice is the device identifier used when a client supplies none.
const DefaultDevice = "web"

// MaxTurns is the number of turns retained per device. Older turns are
// evicted so the window always holds the most recent MaxTurns.
const MaxTurns = 20

// Turn is one role-tagged utterance in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store maps device identifiers to bounded conversation histories.
// It is safe for concurrent use. Entries are created lazily on first
// append and live until the process exits or Reset is called.
type Store struct {
	mu        sync.RWMutex
	histories map[string][]Turn

	// Per-device session locks, handed out by Lock. These serialize a
	// whole request's read-detect-respond window for one device so turn
	// order always reflects request arrival order.
	sessionMu sync.Mutex
	sessions  map[string]*sync.Mutex
}

// NewStore creates an empty conversation store.
func NewStore() *Store {
	return &Store{
		histories: make(map[string][]Turn),
		sessions:  make(map[string]*sync.Mutex),
	}
}

// History returns a copy of the device's turns, oldest first.
// Returns an empty slice for a device with no history.
func (s *Store) History(deviceID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.histories[deviceID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Append records a turn for the device, evicting from the front when the
// window exceeds MaxTurns. It always succeeds.
func (s *Store) Append(deviceID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.histories[deviceID], Turn{Role: role, Content: content})
	if len(turns) > MaxTurns {
		turns = turns[len(turns)-MaxTurns:]
	}
	s.histories[deviceID] = turns
}

// Reset clears the device's history regardless of prior state.
func (s *Store) Reset(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.histories, deviceID)
}

// Len returns the current number of turns for the device.
func (s *Store) Len(deviceID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.histories[deviceID])
}

// Lock acquires the device's session lock and returns its release func.
// Callers hold it across the append-user, read-history, append-assistant
// window so concurrent requests for one device cannot interleave turns.
func (s *Store) Lock(deviceID string) (unlock func()) {
	s.sessionMu.Lock()
	mu, ok := s.sessions[deviceID]
	if !ok {
		mu = &sync.Mutex{}
		s.sessions[deviceID] = mu
	}
	s.sessionMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
