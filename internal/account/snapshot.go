package account

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Snapshot is the fallback tier for code lookup: a whole-roster copy kept
// in Redis and mirrored in process memory. It may be stale relative to the
// primary store; callers that care can see which tier answered via
// Resolution.From.
type Snapshot struct {
	client *redis.Client
	key    string

	mu       sync.RWMutex
	byCode   map[string]Student
	loadedAt time.Time
}

// NewSnapshot creates a snapshot bound to a Redis key. A nil client keeps
// the snapshot purely in-process, which tests use.
func NewSnapshot(client *redis.Client, key string) *Snapshot {
	if key == "" {
		key = "classtrack:students"
	}
	return &Snapshot{client: client, key: key, byCode: make(map[string]Student)}
}

// Replace swaps in a fresh roster copy and, when Redis is configured,
// persists it for other processes. The in-memory map is replaced whole,
// never mutated in place.
func (s *Snapshot) Replace(ctx context.Context, students []Student) error {
	byCode := make(map[string]Student, len(students))
	for _, st := range students {
		byCode[st.Code] = st
	}

	s.mu.Lock()
	s.byCode = byCode
	s.loadedAt = time.Now()
	s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	payload, err := json.Marshal(students)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, payload, 0).Err()
}

// Load pulls the roster copy from Redis into process memory. Used on
// startup so a fresh api process has a fallback before its first refresh.
func (s *Snapshot) Load(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return err
	}
	var students []Student
	if err := json.Unmarshal(payload, &students); err != nil {
		return err
	}
	byCode := make(map[string]Student, len(students))
	for _, st := range students {
		byCode[st.Code] = st
	}
	s.mu.Lock()
	s.byCode = byCode
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Lookup returns the snapshot's student for a code, if any.
func (s *Snapshot) Lookup(code string) (Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.byCode[code]
	return st, ok
}

// Age reports how long ago the snapshot was last replaced or loaded.
// Zero time means it never was.
func (s *Snapshot) Age() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
