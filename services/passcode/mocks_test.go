package passcode

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockCodeStore struct {
	mock.Mock
}

func (m *MockCodeStore) Create(ctx context.Context, record *CodeRecord) (uint, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockCodeStore) FindActive(ctx context.Context, identity string, role Role, purposes ...Purpose) ([]CodeRecord, error) {
	args := m.Called(ctx, identity, role, purposes)
	records, _ := args.Get(0).([]CodeRecord)
	return records, args.Error(1)
}

func (m *MockCodeStore) Update(ctx context.Context, id uint, update RecordUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, n Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockSessionIssuer struct {
	mock.Mock
}

func (m *MockSessionIssuer) IssueSession(ctx context.Context, identity string, role Role, issuedAt time.Time) (string, error) {
	args := m.Called(ctx, identity, role, issuedAt)
	return args.String(0), args.Error(1)
}

// outbox records every notification so tests can read back delivered codes.
type outbox struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (o *outbox) Send(_ context.Context, n Notification) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, n)
	return nil
}

func (o *outbox) last() Notification {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sent) == 0 {
		return Notification{}
	}
	return o.sent[len(o.sent)-1]
}

type stubSessions struct {
	mu     sync.Mutex
	issued int
}

func (s *stubSessions) IssueSession(_ context.Context, identity string, role Role, issuedAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return "token:" + identity + ":" + string(role) + ":" + issuedAt.UTC().Format(time.RFC3339), nil
}
