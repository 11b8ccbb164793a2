package identity

import "strings"

// AnonymousID is used for requests that carry no user record.
const AnonymousID = "anonymous"

// Identity describes the requester of a generation. It exists only for the
// duration of one request and is never persisted.
type Identity struct {
	ID    string
	Email string
}

// Normalize fills in the anonymous placeholder and trims fields.
func Normalize(id, email string) Identity {
	id = strings.TrimSpace(id)
	if id == "" {
		id = AnonymousID
	}
	return Identity{ID: id, Email: strings.TrimSpace(email)}
}

// IsAnonymous reports whether the identity carries no user id.
func (i Identity) IsAnonymous() bool {
	return i.ID == "" || i.ID == AnonymousID
}

// Allowlist holds the privileged accounts that bypass rate limits and
// variation clamping.
type Allowlist struct {
	emails map[string]struct{}
}

// NewAllowlist builds an allowlist from a set of email addresses.
func NewAllowlist(emails []string) *Allowlist {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			set[email] = struct{}{}
		}
	}
	return &Allowlist{emails: set}
}

// Contains reports whether the email belongs to a privileged account.
func (a *Allowlist) Contains(email string) bool {
	if a == nil || email == "" {
		return false
	}
	_, ok := a.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// IsUnlimited reports whether the identity bypasses limits.
func (a *Allowlist) IsUnlimited(id Identity) bool {
	return a.Contains(id.Email)
}
