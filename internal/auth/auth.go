// Package auth resolves the acting identity for a request. Roles always come
// from verified session claims; request bodies never carry them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/identity"
	"github.com/go-chi/jwtauth"
)

var (
	// ErrUnauthenticated indicates the request carried no usable credentials.
	ErrUnauthenticated = errors.New("auth: request is not authenticated")
	// ErrInvalidClaims indicates a verified token without a usable subject or role.
	ErrInvalidClaims = errors.New("auth: token claims are invalid")
)

const (
	// RoleClaim names the JWT claim holding the session role.
	RoleClaim = "role"
	// DefaultTokenTTL bounds tokens minted by Issue.
	DefaultTokenTTL = 12 * time.Hour
)

// Resolver yields the Actor behind an HTTP request.
type Resolver interface {
	Resolve(r *http.Request) (domain.Actor, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(r *http.Request) (domain.Actor, error)

func (fn ResolverFunc) Resolve(r *http.Request) (domain.Actor, error) {
	return fn(r)
}

type actorKey struct{}

// WithActor stores the actor on the context.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	if ctx == nil {
		return domain.Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// JWTResolver verifies HS256 bearer tokens. The subject claim becomes the
// actor id and the role claim the actor role.
type JWTResolver struct {
	auth *jwtauth.JWTAuth
	now  func() time.Time
}

// NewJWTResolver builds a resolver for tokens signed with secret.
func NewJWTResolver(secret []byte) (*JWTResolver, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: jwt secret is required")
	}
	return &JWTResolver{
		auth: jwtauth.New("HS256", secret, nil),
		now:  time.Now,
	}, nil
}

// Resolve verifies the Authorization header and maps its claims to an Actor.
func (r *JWTResolver) Resolve(req *http.Request) (domain.Actor, error) {
	token, err := jwtauth.VerifyRequest(r.auth, req, jwtauth.TokenFromHeader)
	if err != nil {
		if errors.Is(err, jwtauth.ErrNoTokenFound) {
			return domain.Actor{}, ErrUnauthenticated
		}
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	subject := strings.TrimSpace(token.Subject())
	if subject == "" {
		return domain.Actor{}, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}
	raw, _ := token.Get(RoleClaim)
	value, _ := raw.(string)
	role, ok := domain.ParseRole(value)
	if !ok {
		return domain.Actor{}, fmt.Errorf("%w: unknown role %q", ErrInvalidClaims, value)
	}
	return domain.Actor{ID: identity.ActorUUID(subject), Role: role}, nil
}

// Issue mints a token for actor. It exists for the CLI and tests; the portal
// itself does not log users in.
func (r *JWTResolver) Issue(actor domain.Actor, ttl time.Duration) (string, error) {
	if !actor.Role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidClaims, actor.Role)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := r.now()
	claims := map[string]any{
		"sub":     actor.ID.String(),
		RoleClaim: string(actor.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	_, signed, err := r.auth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// StaticResolver always yields the same actor. Local tooling uses it when the
// operator identity is configured rather than authenticated.
type StaticResolver struct {
	Actor domain.Actor
}

func (s StaticResolver) Resolve(*http.Request) (domain.Actor, error) {
	if !s.Actor.Role.Valid() {
		return domain.Actor{}, ErrUnauthenticated
	}
	return s.Actor, nil
}

// Middleware resolves the actor for every request and stores it on the
// context. Failures are handed to onError, which must write the response.
func Middleware(resolver Resolver, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				onError(w, r, ErrUnauthenticated)
				return
			}
			actor, err := resolver.Resolve(r)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
