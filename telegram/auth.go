package telegram

import (
	"crypto/subtle"
	"net/http"
)

// SecretTokenHeader carries the secret_token given to setWebhook
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// Authorizer decides whether an inbound webhook request comes from Telegram
type Authorizer interface {
	Validate(r *http.Request) (ok bool, reason string)
}

type allow struct{}

func (a allow) Validate(*http.Request) (ok bool, reason string) {
	return true, ""
}

var PolicyAllow = allow{}

// SecretToken accepts requests whose SecretTokenHeader equals the token
type SecretToken string

func (s SecretToken) Validate(r *http.Request) (ok bool, reason string) {
	got := r.Header.Get(SecretTokenHeader)
	if got == "" {
		return false, "missing secret token"
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(s)) != 1 {
		return false, "secret token mismatch"
	}
	return true, ""
}

// WebhookAuthorizer picks SecretToken when a secret is configured, PolicyAllow otherwise
func WebhookAuthorizer(secret string) Authorizer {
	if secret == "" {
		return PolicyAllow
	}
	return SecretToken(secret)
}
