package passcode

import "context"

// CodeStore persists CodeRecords. Implementations must be safe for
// concurrent use.
type CodeStore interface {
	// Create stores record and returns its assigned ID.
	Create(ctx context.Context, record *CodeRecord) (uint, error)
	// FindActive returns unused records for identity and role, newest first.
	// An empty purposes list matches every purpose.
	FindActive(ctx context.Context, identity string, role Role, purposes ...Purpose) ([]CodeRecord, error)
	// Update applies update to the record with id. When update.IfAttempts is
	// set the write only happens if the record is still unused with that
	// attempt count, otherwise ErrStaleRecord is returned.
	Update(ctx context.Context, id uint, update RecordUpdate) error
}

type RecordUpdate struct {
	Attempts   *int
	Used       *bool
	IfAttempts *int
}

func MarkUsed() RecordUpdate {
	used := true
	return RecordUpdate{Used: &used}
}

func (u RecordUpdate) Expect(attempts int) RecordUpdate {
	u.IfAttempts = &attempts
	return u
}

func SetAttempts(n int) RecordUpdate {
	return RecordUpdate{Attempts: &n}
}

func (u RecordUpdate) empty() bool {
	return u.Attempts == nil && u.Used == nil
}
