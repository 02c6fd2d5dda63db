package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/codeauth/services/passcode"
	"github.com/tech-arch1tect/codeauth/testutils"
)

func newTestNotifier(t *testing.T, sendErr error) (*CodeNotifier, *testutils.MockMailClient) {
	t.Helper()
	client := &testutils.MockMailClient{}
	client.On("DialAndSendWithContext", mock.Anything, mock.Anything).Return(sendErr)

	service, err := NewServiceWithClient(getTestMailConfig(), nil, client)
	require.NoError(t, err)

	return NewCodeNotifier(service), client
}

func TestCodeNotifier_Send(t *testing.T) {
	t.Run("customer code", func(t *testing.T) {
		notifier, client := newTestNotifier(t, nil)

		err := notifier.Send(context.Background(), passcode.Notification{
			Identity:  "a@x.com",
			Code:      "482913",
			Role:      passcode.RoleCustomer,
			Purpose:   passcode.PurposeSignIn,
			ExpiresAt: time.Now().Add(10 * time.Minute),
			TTL:       10 * time.Minute,
		})

		require.NoError(t, err)
		sent := client.SentMessages()
		require.Len(t, sent, 1)

		raw := renderMessage(t, sent[0])
		assert.Contains(t, raw, "Your sign-in code (482913) - valid for 10 min")
		assert.Contains(t, raw, "a@x.com")
		assert.Contains(t, raw, "482913")
		assert.Contains(t, raw, "sign in to your dashboard")
		assert.NotContains(t, raw, "admin panel")
	})

	t.Run("admin code mentions the admin panel", func(t *testing.T) {
		notifier, client := newTestNotifier(t, nil)

		err := notifier.Send(context.Background(), passcode.Notification{
			Identity: "boss@example.com",
			Code:     "777123",
			Role:     passcode.RoleAdmin,
			TTL:      5 * time.Minute,
		})

		require.NoError(t, err)
		raw := renderMessage(t, client.SentMessages()[0])
		assert.Contains(t, raw, "admin panel")
		assert.Contains(t, raw, "valid for 5 min")
	})

	t.Run("transport failure", func(t *testing.T) {
		notifier, _ := newTestNotifier(t, errors.New("smtp: 554 rejected"))

		err := notifier.Send(context.Background(), passcode.Notification{Identity: "a@x.com", Code: "123456", Role: passcode.RoleCustomer, TTL: time.Minute})

		assert.ErrorContains(t, err, "554")
	})
}

func TestValidMinutes(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, validMinutes(passcode.Notification{TTL: 10 * time.Minute}, now))
	assert.Equal(t, 2, validMinutes(passcode.Notification{TTL: 90 * time.Second}, now))
	assert.Equal(t, 3, validMinutes(passcode.Notification{ExpiresAt: now.Add(3 * time.Minute)}, now))
	assert.Equal(t, 1, validMinutes(passcode.Notification{ExpiresAt: now.Add(-time.Minute)}, now))
}
