package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testKid = "test-kid"

func newSigningSetup(t *testing.T) (*rsa.PrivateKey, *httptest.Server) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test signing cert"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{testKid: string(certPEM)})
	}))
	t.Cleanup(server.Close)

	return key, server
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func validClaims(audience string) Claims {
	return Claims{
		Email: "user@example.com",
		Name:  "Test User",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "accounts.google.com",
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestVerifyValidToken(t *testing.T) {
	key, server := newSigningSetup(t)
	v := NewGoogleVerifier("client-id", WithCertsURL(server.URL))

	raw := signToken(t, key, testKid, validClaims("client-id"))
	claims, err := v.Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("expected email user@example.com, got %q", claims.Email)
	}
}

func TestVerifyHTTPSIssuer(t *testing.T) {
	key, server := newSigningSetup(t)
	v := NewGoogleVerifier("client-id", WithCertsURL(server.URL))

	claims := validClaims("client-id")
	claims.Issuer = "https://accounts.google.com"
	if _, err := v.Verify(context.Background(), signToken(t, key, testKid, claims)); err != nil {
		t.Fatalf("Verify rejected https issuer: %v", err)
	}
}

func TestVerifyWrongAudience(t *testing.T) {
	key, server := newSigningSetup(t)
	v := NewGoogleVerifier("client-id", WithCertsURL(server.URL))

	raw := signToken(t, key, testKid, validClaims("other-client"))
	if _, err := v.Verify(context.Background(), raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong audience, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	key, server := newSigningSetup(t)
	v := NewGoogleVerifier("client-id", WithCertsURL(server.URL))

	claims := validClaims("client-id")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	if _, err := v.Verify(context.Background(), signToken(t, key, testKid, claims)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyUnknownKid(t *testing.T) {
	key, server := newSigningSetup(t)
	v := NewGoogleVerifier("client-id", WithCertsURL(server.URL))

	raw := signToken(t, key, "rotated-away", validClaims("client-id"))
	if _, err := v.Verify(context.Background(), raw); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	key, server := newSigningSetup(t)
	v := NewGoogleVerifier("client-id", WithCertsURL(server.URL))

	claims := validClaims("client-id")
	claims.Issuer = "evil.example.com"
	if _, err := v.Verify(context.Background(), signToken(t, key, testKid, claims)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}

func TestVerifyMissingEmail(t *testing.T) {
	key, server := newSigningSetup(t)
	v := NewGoogleVerifier("client-id", WithCertsURL(server.URL))

	claims := validClaims("client-id")
	claims.Email = ""
	if _, err := v.Verify(context.Background(), signToken(t, key, testKid, claims)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for missing email, got %v", err)
	}
}

func TestVerifyRejectsHMAC(t *testing.T) {
	_, server := newSigningSetup(t)
	v := NewGoogleVerifier("client-id", WithCertsURL(server.URL))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims("client-id"))
	token.Header["kid"] = testKid
	raw, err := token.SignedString([]byte("shared-secret"))
	if err != nil {
		t.Fatalf("failed to sign HMAC token: %v", err)
	}
	if _, err := v.Verify(context.Background(), raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HMAC token, got %v", err)
	}
}
