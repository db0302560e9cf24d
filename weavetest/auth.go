package weavetest

import (
	"context"

	"github.com/iov-one/unichan"
)

// Auth is a mock implementing unichan.Authenticator interface.
//
// This structure authenticates any of referenced addresses.
// You can use either Signer or Others (or both) attributes to reference
// addresses. Each time all of them are considered.
type Auth struct {
	// Signer represents an authentication of a single signer. This is a
	// convinience attribute when creating an authentication method for a
	// single signer.
	Signer unichan.Address

	// Others represents an authentication of additional signers.
	Others []unichan.Address
}

var _ unichan.Authenticator = (*Auth)(nil)

func (a *Auth) signers() []unichan.Address {
	if a.Signer != nil {
		return append([]unichan.Address{a.Signer}, a.Others...)
	}
	return a.Others
}

// Signers implements unichan.Authenticator interface. Signer, if set, is
// always returned first.
func (a *Auth) Signers(context.Context) []unichan.Address {
	return a.signers()
}

// HasAddress implements unichan.Authenticator interface.
func (a *Auth) HasAddress(ctx context.Context, addr unichan.Address) bool {
	for _, s := range a.signers() {
		if addr.Equals(s) {
			return true
		}
	}
	return false
}
