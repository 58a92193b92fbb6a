package model

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator mints ids shared by sections and fields.
type IDGenerator interface {
	NextID() string
}

// IDGeneratorFunc adapts a function into an IDGenerator.
type IDGeneratorFunc func() string

// NextID delegates to the underlying function.
func (fn IDGeneratorFunc) NextID() string {
	return fn()
}

// Sequence is a monotonic counter starting at 1.
type Sequence struct {
	mu   sync.Mutex
	next uint64
}

// NewSequence returns a counter whose first id is "1".
func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return strconv.FormatUint(s.next, 10)
}

// UUIDs generates random v4 UUIDs.
type UUIDs struct{}

func (UUIDs) NextID() string {
	return uuid.NewString()
}

// Timestamp mints millisecond timestamps. Ids requested within the same tick
// are bumped past the previous one so they never collide.
type Timestamp struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewTimestamp returns a generator reading the wall clock.
func NewTimestamp() *Timestamp {
	return &Timestamp{now: time.Now}
}

func (t *Timestamp) NextID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	ms := now().UnixMilli()
	if ms <= t.last {
		ms = t.last + 1
	}
	t.last = ms
	return strconv.FormatInt(ms, 10)
}

// Id strategy names accepted by NewIDGenerator.
const (
	IDStrategySequence  = "sequence"
	IDStrategyUUID      = "uuid"
	IDStrategyTimestamp = "timestamp"
)

// NewIDGenerator resolves a strategy name. An empty name selects the sequence.
func NewIDGenerator(strategy string) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", IDStrategySequence:
		return NewSequence(), nil
	case IDStrategyUUID:
		return UUIDs{}, nil
	case IDStrategyTimestamp:
		return NewTimestamp(), nil
	default:
		return nil, fmt.Errorf("model: unknown id strategy %q", strategy)
	}
}
