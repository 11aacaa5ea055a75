// Package apikey manages the API keys that guard the paid endpoints. A key
// is presented as idv_<id>.<secret>; the id locates the record and the
// secret is verified against its bcrypt hash.
package apikey

import (
	"strings"
	"time"
)

// keyPrefix marks presented credentials as API keys of this service.
const keyPrefix = "idv_"

// Key is a stored API key record. The plaintext secret is never stored.
type Key struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Owner      string     `json:"owner"`
	SecretHash string     `json:"secretHash"`
	CreatedAt  time.Time  `json:"createdAt"`
	Revoked    bool       `json:"revoked"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
}

// Public is the client-visible view of a key record.
type Public struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Owner     string     `json:"owner"`
	CreatedAt time.Time  `json:"createdAt"`
	Revoked   bool       `json:"revoked"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

// Public strips the secret hash.
func (k Key) Public() Public {
	return Public{
		ID:        k.ID,
		Name:      k.Name,
		Owner:     k.Owner,
		CreatedAt: k.CreatedAt,
		Revoked:   k.Revoked,
		RevokedAt: k.RevokedAt,
	}
}

// splitCredential separates a presented credential into key ID and secret.
func splitCredential(credential string) (id, secret string, ok bool) {
	rest, found := strings.CutPrefix(credential, keyPrefix)
	if !found {
		return "", "", false
	}
	id, secret, found = strings.Cut(rest, ".")
	if !found || id == "" || secret == "" {
		return "", "", false
	}
	return id, secret, true
}
