// Package blacklist holds access tokens revoked before their natural expiry.
package blacklist

import (
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// Registry is a process-wide set of revoked access tokens. Entries are never
// evicted; access tokens are short-lived and the set resets on restart.
// It is safe for concurrent use.
type Registry struct {
	tokens *xsync.MapOf[string, struct{}]
}

func NewRegistry() *Registry {
	return &Registry{tokens: xsync.NewMapOf[string, struct{}]()}
}

// Revoke adds token to the set. Blank tokens are ignored and revoking a token
// twice is a no-op.
func (r *Registry) Revoke(token string) {
	if strings.TrimSpace(token) == "" {
		return
	}
	r.tokens.LoadOrStore(token, struct{}{})
}

// IsRevoked reports whether token was revoked.
func (r *Registry) IsRevoked(token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	_, ok := r.tokens.Load(token)
	return ok
}

// Len returns the number of revoked tokens.
func (r *Registry) Len() int {
	return r.tokens.Size()
}
