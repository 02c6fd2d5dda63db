package passcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminPolicy(t *testing.T) {
	p := NewAdminPolicy([]string{" Boss@Example.com ", "", "ops@example.com"})

	assert.Equal(t, 2, p.Len())
	assert.True(t, p.Allows("boss@example.com", RoleAdmin))
	assert.True(t, p.Allows("ops@example.com", RoleAdmin))
	assert.False(t, p.Allows("mallory@example.com", RoleAdmin))

	for _, role := range []Role{RoleCustomer, RoleCarrier, RoleAffiliate} {
		assert.True(t, p.Allows("mallory@example.com", role))
	}
}

func TestAdminPolicy_DisplayNameEntry(t *testing.T) {
	p := NewAdminPolicy([]string{"Boss <Boss@X.com>"})

	assert.Equal(t, 1, p.Len())
	assert.True(t, p.Allows("boss@x.com", RoleAdmin))
	assert.False(t, p.Allows("mallory@x.com", RoleAdmin))
}

func TestAdminPolicy_EmptyListAllowsAdmin(t *testing.T) {
	p := NewAdminPolicy([]string{"", "  "})

	assert.Equal(t, 0, p.Len())
	assert.True(t, p.Allows("anyone@example.com", RoleAdmin))
	assert.True(t, p.Allows("anyone@example.com", RoleCustomer))

	var nilPolicy *AdminPolicy
	assert.True(t, nilPolicy.Allows("anyone@example.com", RoleAdmin))
	assert.Equal(t, 0, nilPolicy.Len())
}
