package passcode

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCustomer  Role = "customer"
	RoleCarrier   Role = "carrier"
	RoleAffiliate Role = "affiliate"
)

var Roles = []Role{RoleAdmin, RoleCustomer, RoleCarrier, RoleAffiliate}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleCustomer, RoleCarrier, RoleAffiliate:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

type Purpose string

const (
	PurposeSignIn Purpose = "signin"
	PurposeSignUp Purpose = "signup"
)

var Purposes = []Purpose{PurposeSignIn, PurposeSignUp}

// ParsePurpose defaults an empty value to PurposeSignIn.
func ParsePurpose(s string) (Purpose, error) {
	p := Purpose(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "":
		return PurposeSignIn, nil
	case PurposeSignIn, PurposeSignUp:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown purpose %q", ErrInvalidInput, s)
}

// NormalizeIdentity lowercases and trims an email identity and checks that it
// parses as a bare address.
func NormalizeIdentity(s string) (string, error) {
	identity := strings.ToLower(strings.TrimSpace(s))
	if identity == "" {
		return "", fmt.Errorf("%w: identity is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(identity)
	if err != nil || addr.Address != identity {
		return "", fmt.Errorf("%w: identity is not a valid email address", ErrInvalidInput)
	}
	return identity, nil
}

// Origin is requester metadata kept for audit only.
type Origin struct {
	IP        string
	UserAgent string
	Device    string
}

// CodeRecord is one issued login code. Used covers every terminal state:
// consumed, expired, exhausted and superseded.
type CodeRecord struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Identity        string    `json:"identity" gorm:"size:320;not null;index:idx_login_codes_lookup,priority:1"`
	Role            Role      `json:"role" gorm:"size:32;not null;index:idx_login_codes_lookup,priority:2"`
	Purpose         Purpose   `json:"purpose" gorm:"size:16;not null"`
	CodeHash        string    `json:"-" gorm:"size:255;not null"`
	Attempts        int       `json:"attempts" gorm:"not null;default:0"`
	Used            bool      `json:"used" gorm:"not null;default:false;index:idx_login_codes_lookup,priority:3"`
	OriginIP        string    `json:"origin_ip" gorm:"size:45"`
	OriginUserAgent string    `json:"origin_user_agent" gorm:"size:500"`
	OriginDevice    string    `json:"origin_device" gorm:"size:120"`
	ExpiresAt       time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (CodeRecord) TableName() string {
	return "login_codes"
}

func (r *CodeRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Notification is what a Notifier delivers to the identity.
type Notification struct {
	Identity  string
	Code      string
	Role      Role
	Purpose   Purpose
	ExpiresAt time.Time
	TTL       time.Duration
}

type IssueRequest struct {
	Identity string
	Role     string
	Purpose  string
	// TTL overrides the configured lifetime when positive.
	TTL    time.Duration
	Origin Origin
}

type issueInput struct {
	identity string
	role     Role
	purpose  Purpose
	ttl      time.Duration
	origin   Origin
}

func (r IssueRequest) validate() (issueInput, error) {
	identity, err := NormalizeIdentity(r.Identity)
	if err != nil {
		return issueInput{}, err
	}
	role, err := ParseRole(r.Role)
	if err != nil {
		return issueInput{}, err
	}
	purpose, err := ParsePurpose(r.Purpose)
	if err != nil {
		return issueInput{}, err
	}
	if r.TTL < 0 {
		return issueInput{}, fmt.Errorf("%w: ttl must not be negative", ErrInvalidInput)
	}
	return issueInput{identity: identity, role: role, purpose: purpose, ttl: r.TTL, origin: r.Origin}, nil
}

type IssueResult struct {
	Issued    bool
	ExpiresAt time.Time
	// Code is only set by services running in development mode.
	Code string
}

type VerifyRequest struct {
	Identity string
	Code     string
	Role     string
}

type verifyInput struct {
	identity string
	code     string
	role     Role
}

func (r VerifyRequest) validate() (verifyInput, error) {
	identity, err := NormalizeIdentity(r.Identity)
	if err != nil {
		return verifyInput{}, err
	}
	code := strings.TrimSpace(r.Code)
	if code == "" {
		return verifyInput{}, fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	role, err := ParseRole(r.Role)
	if err != nil {
		return verifyInput{}, err
	}
	return verifyInput{identity: identity, code: code, role: role}, nil
}

type VerifyResult struct {
	SessionToken string
	Identity     string
	Role         Role
	IssuedAt     time.Time
}
