package iam

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmation/yandexcloud-nodes/pkg/credentials"
)

func testServiceAccount(t *testing.T) (credentials.ServiceAccount, *rsa.PublicKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	return credentials.ServiceAccount{
		KeyID:            "ajekey1",
		ServiceAccountID: "ajesa1",
		PrivateKey:       string(pemBytes),
	}, &key.PublicKey
}

func TestSignedJWT_ClaimsAndHeader(t *testing.T) {
	sa, pub := testServiceAccount(t)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	signed, err := SignedJWT(sa, now)
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		return pub, nil
	}, jwt.WithValidMethods([]string{"PS256"}), jwt.WithTimeFunc(func() time.Time { return now }))
	require.NoError(t, err)

	claims := parsed.Claims.(*jwt.RegisteredClaims)
	assert.Equal(t, "ajesa1", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{tokenAudience}, claims.Audience)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, "ajekey1", parsed.Header["kid"])
}

func TestSignedJWT_BadKey(t *testing.T) {
	sa := credentials.ServiceAccount{KeyID: "k", ServiceAccountID: "s", PrivateKey: "not pem"}

	_, err := SignedJWT(sa, time.Now())
	assert.Error(t, err)
}

type fakeExchanger struct {
	calls int
	token string
}

func (f *fakeExchanger) Exchange(_ context.Context, signedJWT string) (string, time.Time, error) {
	f.calls++
	return f.token, time.Now().Add(time.Hour), nil
}

func TestTokenSource_CachesUntilExpiry(t *testing.T) {
	sa, _ := testServiceAccount(t)
	ex := &fakeExchanger{token: "t1.9euexample"}

	ts := NewTokenSource(sa, ex)

	first, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "t1.9euexample", first.AccessToken)
	assert.Equal(t, "Bearer", first.TokenType)

	second, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, first.AccessToken, second.AccessToken)
	assert.Equal(t, 1, ex.calls, "a fresh token is served from cache")
}
