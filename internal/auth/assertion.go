// Package auth builds the signed bearer assertion the calendar fetch
// authenticates with and exchanges it for a short-lived access token.
package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"time"
)

const (
	// assertionHeader is fixed: RS256 over the compact serialization.
	assertionHeader = `{"alg":"RS256","typ":"JWT"}`

	// TokenEndpoint is where the assertion is exchanged for a token and,
	// per the claim rules, also its audience.
	TokenEndpoint = "https://oauth2.googleapis.com/token"

	// CalendarScope is the only scope the station ever asks for.
	CalendarScope = "https://www.googleapis.com/auth/calendar.readonly"

	// assertionLifetime is deliberately short: the assertion is consumed
	// by one exchange immediately after signing.
	assertionLifetime = 60 * time.Second
)

// Identity is the service identity named in the assertion claims.
type Identity struct {
	Email string
}

// BuildAssertion constructs the three-segment compact assertion
// base64url(header).base64url(claims).base64url(signature), signing the
// SHA-256 digest of the first two segments with RSA PKCS#1 v1.5.
//
// privateKey is the PEM of the service account key. It is overwritten with
// zeros before this function returns, on every path including errors; the
// caller must not reuse it.
func BuildAssertion(identity Identity, privateKey []byte, now time.Time) (string, error) {
	defer Zero(privateKey)

	iat := now.Unix()
	exp := now.Add(assertionLifetime).Unix()
	// Claims are rendered by hand to pin the exact field order on the wire.
	claims := fmt.Sprintf(`{"iat":%d,"exp":%d,"aud":"%s","iss":"%s","scope":"%s"}`,
		iat, exp, TokenEndpoint, identity.Email, CalendarScope)

	headerAndClaims := base64.RawURLEncoding.EncodeToString([]byte(assertionHeader)) +
		"." + base64.RawURLEncoding.EncodeToString([]byte(claims))

	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}

	digest := sha256.Sum256([]byte(headerAndClaims))
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("signing assertion digest: %w", err)
	}

	return headerAndClaims + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}

func parsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in private key material")
	}
	defer Zero(block.Bytes)

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is %T, want RSA", parsed)
	}
	return key, nil
}

// Zero overwrites b in place. Key material must be erased explicitly as
// soon as it has been used; scope exit is not an erasure guarantee.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
