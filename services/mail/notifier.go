package mail

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tech-arch1tect/codeauth/services/passcode"
)

const loginCodeTemplate = "login_code"

// CodeNotifier emails login codes using the login_code template.
type CodeNotifier struct {
	mail *Service
	now  func() time.Time
}

func NewCodeNotifier(mail *Service) *CodeNotifier {
	return &CodeNotifier{mail: mail, now: time.Now}
}

func (n *CodeNotifier) Send(ctx context.Context, msg passcode.Notification) error {
	minutes := validMinutes(msg, n.now())
	subject := fmt.Sprintf("Your sign-in code (%s) - valid for %d min", msg.Code, minutes)

	return n.mail.SendTemplate(ctx, loginCodeTemplate, []string{msg.Identity}, subject, TemplateData{
		"Code":       msg.Code,
		"Minutes":    minutes,
		"AdminPanel": msg.Role == passcode.RoleAdmin,
		"Role":       string(msg.Role),
		"Purpose":    string(msg.Purpose),
		"ExpiresAt":  msg.ExpiresAt,
	})
}

func validMinutes(msg passcode.Notification, now time.Time) int {
	ttl := msg.TTL
	if ttl <= 0 {
		ttl = msg.ExpiresAt.Sub(now)
	}
	minutes := int(math.Ceil(ttl.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
