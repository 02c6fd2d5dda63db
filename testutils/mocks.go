package testutils

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/wneessen/go-mail"
)

type MockMailClient struct {
	mock.Mock
}

func (m *MockMailClient) DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error {
	args := m.Called(ctx, messages)
	return args.Error(0)
}

// SentMessages returns every message handed to DialAndSendWithContext.
func (m *MockMailClient) SentMessages() []*mail.Msg {
	var out []*mail.Msg
	for _, call := range m.Calls {
		if call.Method != "DialAndSendWithContext" {
			continue
		}
		if msgs, ok := call.Arguments.Get(1).([]*mail.Msg); ok {
			out = append(out, msgs...)
		}
	}
	return out
}
