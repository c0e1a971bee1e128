package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueParseRoundTrip(t *testing.T) {
	j := &JWTer{Secret: []byte("k1"), Issuer: "library", TTL: time.Hour}
	tok, err := j.Issue("sid-1")
	if err != nil {
		t.Fatal(err)
	}
	c, err := j.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.SID != "sid-1" || c.Issuer != "library" {
		t.Fatalf("claims = %+v", c)
	}
}

func TestParseRejects(t *testing.T) {
	j := &JWTer{Secret: []byte("k1"), Issuer: "library", TTL: time.Hour}
	good, _ := j.Issue("sid-1")

	other := &JWTer{Secret: []byte("k2"), Issuer: "library", TTL: time.Hour}
	forged, _ := other.Issue("sid-1")

	wrongIss := &JWTer{Secret: []byte("k1"), Issuer: "someone-else", TTL: time.Hour}
	foreign, _ := wrongIss.Issue("sid-1")

	expired := &JWTer{Secret: []byte("k1"), Issuer: "library", TTL: -2 * time.Minute}
	stale, _ := expired.Issue("sid-1")

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{SID: "sid-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": forged,
		"wrong issuer": foreign,
		"expired":      stale,
		"alg none":     none,
		"tampered":     good[:len(good)-2] + "xx",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := j.Parse(tok); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("want ErrInvalidToken, got %v", err)
			}
		})
	}
}
