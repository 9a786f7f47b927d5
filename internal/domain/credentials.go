package domain

import "time"

type CredentialSlot string

const (
	SlotIdentity      CredentialSlot = "identity"
	SlotService       CredentialSlot = "service"
	SlotServiceExpiry CredentialSlot = "serviceExpiry"
)

// CredentialRecord is the single per-installation token record. ServiceToken
// and ServiceTokenExpiry are either both set or both zero.
type CredentialRecord struct {
	IdentityToken      string
	ServiceToken       string
	ServiceTokenExpiry time.Time
}

func (r CredentialRecord) HasIdentity() bool {
	return r.IdentityToken != ""
}

func (r CredentialRecord) HasServiceToken() bool {
	return r.ServiceToken != "" && !r.ServiceTokenExpiry.IsZero()
}

// ServiceTokenValid reports whether the cached service token expires strictly after now.
func (r CredentialRecord) ServiceTokenValid(now time.Time) bool {
	return r.HasServiceToken() && r.ServiceTokenExpiry.After(now)
}
