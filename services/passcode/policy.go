package passcode

import (
	"net/mail"
	"strings"
)

// AdminPolicy decides which identities may hold RoleAdmin. Other roles are
// open to any identity, and an empty allow-list leaves admin open as well.
type AdminPolicy struct {
	allowed map[string]struct{}
}

// NewAdminPolicy keys entries by their bare address, so "Boss <boss@x.com>"
// admits boss@x.com.
func NewAdminPolicy(emails []string) *AdminPolicy {
	allowed := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if addr, err := mail.ParseAddress(e); err == nil {
			e = addr.Address
		}
		allowed[e] = struct{}{}
	}
	return &AdminPolicy{allowed: allowed}
}

// Allows expects identity to be normalized already.
func (p *AdminPolicy) Allows(identity string, role Role) bool {
	if role != RoleAdmin {
		return true
	}
	if p.Len() == 0 {
		return true
	}
	_, ok := p.allowed[identity]
	return ok
}

func (p *AdminPolicy) Len() int {
	if p == nil {
		return 0
	}
	return len(p.allowed)
}
