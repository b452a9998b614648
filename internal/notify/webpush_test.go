package notify

import (
	"encoding/base64"
	"testing"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}

	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(pubBytes) != 65 {
		t.Errorf("public key length = %d, want 65", len(pubBytes))
	}

	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(privBytes) != 32 {
		t.Errorf("private key length = %d, want 32", len(privBytes))
	}

	pub2, _, _ := GenerateVAPIDKeys()
	if pub == pub2 {
		t.Error("expected different keys on second generation")
	}
}

func TestWebPushNoSubscriptions(t *testing.T) {
	e := setup(t)
	kid := e.user(t, "Ada", "child")
	p := NewWebPush("pub", "priv", "", e.push)

	if err := p.Send(t.Context(), *kid, Message{Title: "hi"}); err != nil {
		t.Errorf("send with no subscriptions: %v", err)
	}
	if p.VAPIDPublicKey() != "pub" {
		t.Errorf("public key = %q", p.VAPIDPublicKey())
	}
}
