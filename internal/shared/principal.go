package shared

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

// Principal describes the authenticated actor forwarded by the platform gateway.
type Principal struct {
	UserID int64
	Role   string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// ErrBadSignature indicates the gateway identity headers failed verification.
var ErrBadSignature = errors.New("identity signature mismatch")

// PrincipalVerifier validates signed identity headers from the gateway.
// The gateway signs "user|role" with a shared secret; the core never
// authenticates credentials itself.
type PrincipalVerifier struct {
	secret []byte
}

// NewPrincipalVerifier constructs a verifier with the shared header secret.
func NewPrincipalVerifier(secret string) *PrincipalVerifier {
	return &PrincipalVerifier{secret: []byte(secret)}
}

// Verify checks the signature and parses the forwarded identity.
func (v *PrincipalVerifier) Verify(userHeader, roleHeader, signature string) (*Principal, error) {
	userHeader = strings.TrimSpace(userHeader)
	roleHeader = strings.TrimSpace(roleHeader)
	if userHeader == "" {
		return nil, errors.New("missing identity header")
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(userHeader + "|" + roleHeader))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature))) {
		return nil, ErrBadSignature
	}
	userID, err := strconv.ParseInt(userHeader, 10, 64)
	if err != nil || userID <= 0 {
		return nil, errors.New("malformed user id header")
	}
	return &Principal{UserID: userID, Role: roleHeader}, nil
}

// Sign produces the signature the gateway attaches to identity headers.
// Exposed for tests and for the local development proxy.
func (v *PrincipalVerifier) Sign(userHeader, roleHeader string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strings.TrimSpace(userHeader) + "|" + strings.TrimSpace(roleHeader)))
	return hex.EncodeToString(mac.Sum(nil))
}
