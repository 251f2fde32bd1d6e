package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

const jwtBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// SecretStore loads the service-account private key from durable storage.
// It is read once per power cycle.
type SecretStore interface {
	LoadPrivateKey() ([]byte, error)
}

// FormPoster is the one outbound call the exchange needs. Callers hold the
// network lock domain around Authorize, so the pipeline never needs its
// own serialization.
type FormPoster interface {
	PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error)
}

// Pipeline turns the stored private key into a short-lived bearer token:
// load key, sign assertion (key is zeroed inside the signing step), then
// one exchange round trip. The token is never persisted.
type Pipeline struct {
	secrets  SecretStore
	poster   FormPoster
	identity Identity
	tokenURL string
	now      func() time.Time
	log      *logrus.Entry
}

func NewPipeline(secrets SecretStore, poster FormPoster, identity Identity, log *logrus.Entry) *Pipeline {
	return &Pipeline{
		secrets:  secrets,
		poster:   poster,
		identity: identity,
		tokenURL: TokenEndpoint,
		now:      time.Now,
		log:      log.WithField("component", "auth"),
	}
}

// Authorize produces a bearer token for the calendar query.
func (p *Pipeline) Authorize(ctx context.Context) (string, error) {
	key, err := p.secrets.LoadPrivateKey()
	if err != nil {
		return "", fmt.Errorf("loading private key: %w", err)
	}

	assertion, err := BuildAssertion(p.identity, key, p.now())
	if err != nil {
		return "", fmt.Errorf("building assertion: %w", err)
	}

	token, err := p.ExchangeForToken(ctx, assertion)
	if err != nil {
		return "", err
	}
	p.log.Debug("bearer token obtained")
	return token, nil
}

// ExchangeForToken trades a signed assertion for an access token.
func (p *Pipeline) ExchangeForToken(ctx context.Context, assertion string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", jwtBearerGrantType)
	form.Set("assertion", assertion)

	body, err := p.poster.PostForm(ctx, p.tokenURL, form)
	if err != nil {
		return "", fmt.Errorf("token exchange request: %w", err)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parsing token exchange response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token exchange response has no access token")
	}
	return payload.AccessToken, nil
}
