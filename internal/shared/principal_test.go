package shared

import (
	"context"
	"errors"
	"testing"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewPrincipalVerifier("topsecret")
	sig := v.Sign("42", "manager")

	p, err := v.Verify("42", "manager", sig)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.UserID != 42 || p.Role != "manager" {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestVerifyRejectsTamperedHeaders(t *testing.T) {
	v := NewPrincipalVerifier("topsecret")
	sig := v.Sign("42", "employee")

	if _, err := v.Verify("42", "admin", sig); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}
	if _, err := v.Verify("43", "employee", sig); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := NewPrincipalVerifier("gateway")
	verifier := NewPrincipalVerifier("different")

	if _, err := verifier.Verify("1", "admin", signer.Sign("1", "admin")); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}
}

func TestVerifyRejectsMalformedUserID(t *testing.T) {
	v := NewPrincipalVerifier("topsecret")
	for _, user := range []string{"", "abc", "0", "-5"} {
		sig := v.Sign(user, "admin")
		if _, err := v.Verify(user, "admin", sig); err == nil {
			t.Fatalf("expected error for user %q", user)
		}
	}
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	if PrincipalFromContext(ctx) != nil {
		t.Fatalf("expected nil principal on empty context")
	}
	p := &Principal{UserID: 7, Role: "employee"}
	got := PrincipalFromContext(ContextWithPrincipal(ctx, p))
	if got != p {
		t.Fatalf("expected stored principal, got %+v", got)
	}
}
