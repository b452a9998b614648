package notify

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

// ErrExpired is returned when a push subscription is gone (410).
var ErrExpired = errors.New("push subscription expired")

// WebPush sends messages to every browser subscription of a user.
type WebPush struct {
	publicKey  string
	privateKey string
	subscriber string
	subs       *store.PushStore
}

func NewWebPush(publicKey, privateKey, subscriber string, subs *store.PushStore) *WebPush {
	if subscriber == "" {
		subscriber = "mailto:noreply@choreboard.local"
	}
	return &WebPush{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		subs:       subs,
	}
}

func (p *WebPush) Name() string { return "webpush" }

// VAPIDPublicKey is handed to browsers when they subscribe.
func (p *WebPush) VAPIDPublicKey() string {
	return p.publicKey
}

// Send pushes msg to all of the user's subscriptions and prunes expired ones.
func (p *WebPush) Send(ctx context.Context, user model.User, msg Message) error {
	subs, err := p.subs.ListByUser(user.ID)
	if err != nil {
		return err
	}

	var errs []error
	for i := range subs {
		err := p.sendOne(ctx, &subs[i], msg)
		if errors.Is(err, ErrExpired) {
			if err := p.subs.DeleteByEndpoint(subs[i].Endpoint); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *WebPush) sendOne(ctx context.Context, sub *model.PushSubscription, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  p.publicKey,
		VAPIDPrivateKey: p.privateKey,
		Subscriber:      p.subscriber,
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}

// GenerateVAPIDKeys creates a P-256 key pair encoded for VAPID.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate ECDSA key: %w", err)
	}

	pub, err := key.PublicKey.ECDH()
	if err != nil {
		return "", "", fmt.Errorf("convert public key: %w", err)
	}
	priv := make([]byte, 32)
	key.D.FillBytes(priv)

	return base64.RawURLEncoding.EncodeToString(pub.Bytes()), base64.RawURLEncoding.EncodeToString(priv), nil
}
