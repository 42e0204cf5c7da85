package auth

import "context"

// Identity is the authenticated caller as every handler and service sees it.
// SchoolID is the tenant scope; StudentID is set only for student callers
// that have a student binding.
type Identity struct {
	Subject   string
	Role      string
	SchoolID  string
	StudentID string
}

type ctxKey struct{}

var ctxKeyIdentity = ctxKey{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func IdentityFromContext(ctx context.Context) Identity {
	if v := ctx.Value(ctxKeyIdentity); v != nil {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}
