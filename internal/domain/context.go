package domain

import "context"

type (
	principalKey struct{}
	requestIDKey struct{}
)

// AnonymousPrincipal is recorded when a request carries no credentials.
const AnonymousPrincipal = "anonymous"

// ContextPrincipal carries the authenticated identity through request context.
type ContextPrincipal struct {
	Name string
	// Source is "jwt", "oidc" or "anonymous".
	Source string
}

// WithPrincipal stores a ContextPrincipal in the context.
func WithPrincipal(ctx context.Context, p ContextPrincipal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the ContextPrincipal from the context.
func PrincipalFromContext(ctx context.Context) (ContextPrincipal, bool) {
	p, ok := ctx.Value(principalKey{}).(ContextPrincipal)
	return p, ok
}

// PrincipalName returns the principal name stored in ctx, or
// AnonymousPrincipal when there is none.
func PrincipalName(ctx context.Context) string {
	if p, ok := PrincipalFromContext(ctx); ok && p.Name != "" {
		return p.Name
	}
	return AnonymousPrincipal
}

// WithRequestID stores the request correlation ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
