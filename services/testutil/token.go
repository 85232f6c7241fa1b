package testutil

import (
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

const (
	TestJWTSecret = "test-secret-test-secret-test-secret"
	TestIssuer    = "rewardgate-test"
)

// SignToken issues an HS256 token for subject with the test secret.
func SignToken(t *testing.T, subject string, ttl time.Duration) string {
	t.Helper()
	return SignTokenWith(t, []byte(TestJWTSecret), TestIssuer, subject, time.Now().Add(ttl))
}

func SignTokenWith(t *testing.T, secret []byte, issuer, subject string, expiry time.Time) string {
	t.Helper()

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		t.Fatalf("failed to build signer: %v", err)
	}

	claims := jwt.Claims{
		Subject:  subject,
		Issuer:   issuer,
		IssuedAt: jwt.NewNumericDate(time.Now()),
		Expiry:   jwt.NewNumericDate(expiry),
	}

	token, err := jwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}
