package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kinosync/kinosync/internal/domain"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type claims struct {
	UserID  string `json:"id"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Verifier validates opaque bearer credentials into an identity. It is the
// only component that knows the credential format; everything else sees
// domain.Identity or anonymous.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(credential string) (*domain.Identity, error) {
	if credential == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(credential, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.UserID == "" {
		return nil, ErrInvalidToken
	}

	return &domain.Identity{UserID: c.UserID, IsAdmin: c.IsAdmin}, nil
}

// Issue signs a credential for the given identity. Token issuance belongs to
// the surrounding auth layer; this exists for tooling and tests.
func (v *Verifier) Issue(identity domain.Identity, ttl time.Duration) (string, error) {
	c := &claims{
		UserID:  identity.UserID,
		IsAdmin: identity.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if ttl != 0 {
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
}

// CredentialFromRequest extracts the bearer credential from the
// Authorization header, falling back to the token query parameter for
// WebSocket handshakes. Empty means anonymous.
func CredentialFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

type contextKey struct{}

func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

func IdentityFromContext(ctx context.Context) *domain.Identity {
	identity, _ := ctx.Value(contextKey{}).(*domain.Identity)
	return identity
}
