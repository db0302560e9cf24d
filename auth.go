package unichan

import "context"

// Authenticator is an interface we can use to extract authentication info
// from the context. It is passed into the constructor of controllers, so we
// can plug in another authentication system.
type Authenticator interface {
	// HasAddress checks if given address authorized the current request.
	HasAddress(context.Context, Address) bool
	// Signers returns all addresses that authorized the current request.
	Signers(context.Context) []Address
}

// CtxAuth keeps the authenticated addresses in the context. Key allows
// several independent authenticators to share one context.
type CtxAuth struct {
	Key string
}

var _ Authenticator = CtxAuth{}

type ctxAuthKey string

// SetSigners returns a context carrying given addresses as authenticated.
func (a CtxAuth) SetSigners(ctx context.Context, signers ...Address) context.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), signers)
}

// Signers returns all addresses stored in the context.
func (a CtxAuth) Signers(ctx context.Context) []Address {
	signers, _ := ctx.Value(ctxAuthKey(a.Key)).([]Address)
	return signers
}

// HasAddress returns true if given address is one of the signers.
func (a CtxAuth) HasAddress(ctx context.Context, addr Address) bool {
	for _, s := range a.Signers(ctx) {
		if s.Equals(addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first signer if any, otherwise nil.
func MainSigner(ctx context.Context, auth Authenticator) Address {
	signers := auth.Signers(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}
