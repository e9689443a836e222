package sessiontoken

import (
	"testing"
	"time"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	codec, err := NewCodec("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	token, err := codec.Sign("sess-123")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	got, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != "sess-123" {
		t.Fatalf("unexpected subject: %q", got)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer, _ := NewCodec("secret-a", time.Minute)
	verifier, _ := NewCodec("secret-b", time.Minute)
	token, err := signer.Sign("sess-123")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec, _ := NewCodec("test-secret", time.Minute)
	for _, token := range []string{"", "  ", "not-a-jwt"} {
		if _, err := codec.Verify(token); err == nil {
			t.Fatalf("expected error for token %q", token)
		}
	}
}

func TestEmptySecretGetsRandomKey(t *testing.T) {
	a, err := NewCodec("", 0)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	b, err := NewCodec("", 0)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	token, err := a.Sign("sess-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := a.Verify(token); err != nil {
		t.Fatalf("self verify: %v", err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Fatal("random per-process secrets should not validate each other")
	}
}

func TestSignRequiresSessionID(t *testing.T) {
	codec, _ := NewCodec("test-secret", time.Minute)
	if _, err := codec.Sign("  "); err == nil {
		t.Fatal("expected error for empty session id")
	}
}
