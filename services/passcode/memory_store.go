package passcode

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. Only meant for development
// and tests; records are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  uint
	records map[uint]CodeRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uint]CodeRecord),
		now:     time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, record *CodeRecord) (uint, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	record.ID = s.nextID
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	record.UpdatedAt = record.CreatedAt
	s.records[record.ID] = *record

	return record.ID, nil
}

func (s *MemoryStore) FindActive(ctx context.Context, identity string, role Role, purposes ...Purpose) ([]CodeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []CodeRecord
	for _, r := range s.records {
		if r.Used || r.Identity != identity || r.Role != role {
			continue
		}
		if len(purposes) > 0 && !slices.Contains(purposes, r.Purpose) {
			continue
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id uint, update RecordUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if update.empty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		if update.IfAttempts != nil {
			return ErrStaleRecord
		}
		return nil
	}
	if update.IfAttempts != nil && (r.Used || r.Attempts != *update.IfAttempts) {
		return ErrStaleRecord
	}

	if update.Attempts != nil {
		r.Attempts = *update.Attempts
	}
	if update.Used != nil {
		r.Used = *update.Used
	}
	r.UpdatedAt = s.now()
	s.records[id] = r

	return nil
}

// Get returns a copy of the record with id.
func (s *MemoryStore) Get(id uint) (CodeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	return r, ok
}
