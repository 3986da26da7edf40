// Package iam exchanges a service-account authorized key for short-lived
// IAM tokens. The key signs a PS256 JWT which the IAM token service
// trades for a bearer token; the result is exposed as an
// oauth2.TokenSource so gRPC per-RPC credentials can carry it.
package iam

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"google.golang.org/grpc"

	iampb "github.com/yandex-cloud/go-genproto/yandex/cloud/iam/v1"

	"github.com/flowmation/yandexcloud-nodes/pkg/credentials"
)

// tokenAudience is the audience claim the IAM token service requires.
const tokenAudience = "https://iam.api.cloud.yandex.net/iam/v1/tokens"

// jwtTTL is the validity window of the signed assertion, not of the IAM
// token it buys.
const jwtTTL = time.Hour

// Exchanger trades a signed JWT for an IAM token. The production
// implementation talks gRPC; tests substitute a fake.
type Exchanger interface {
	Exchange(ctx context.Context, signedJWT string) (token string, expiresAt time.Time, err error)
}

// SignedJWT builds and signs the assertion for the given service account
// key. The key id travels in the kid header, per the token service's
// contract.
func SignedJWT(sa credentials.ServiceAccount, now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("failed to parse service account private key: %w", err)
	}

	claims := jwt.RegisteredClaims{
		Issuer:    sa.ServiceAccountID,
		Audience:  jwt.ClaimStrings{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(jwtTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodPS256, claims)
	token.Header["kid"] = sa.KeyID

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign IAM assertion: %w", err)
	}
	return signed, nil
}

// tokenSource mints IAM tokens on demand. Callers get it wrapped in
// oauth2.ReuseTokenSource, which caches a token until shortly before
// expiry.
type tokenSource struct {
	sa        credentials.ServiceAccount
	exchanger Exchanger
	now       func() time.Time
}

// NewTokenSource returns a caching token source for the service account.
func NewTokenSource(sa credentials.ServiceAccount, exchanger Exchanger) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &tokenSource{
		sa:        sa,
		exchanger: exchanger,
		now:       time.Now,
	})
}

// Token implements oauth2.TokenSource.
func (s *tokenSource) Token() (*oauth2.Token, error) {
	signed, err := SignedJWT(s.sa, s.now())
	if err != nil {
		return nil, err
	}

	// The exchange is a blocking network call; bound it rather than
	// inheriting an unbounded background context.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token, expiresAt, err := s.exchanger.Exchange(ctx, signed)
	if err != nil {
		return nil, fmt.Errorf("IAM token exchange failed: %w", err)
	}

	return &oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
		Expiry:      expiresAt,
	}, nil
}

// GRPCExchanger exchanges assertions through the IAM token service.
type GRPCExchanger struct {
	client iampb.IamTokenServiceClient
}

// NewGRPCExchanger creates an exchanger over an established connection
// to the IAM endpoint.
func NewGRPCExchanger(conn grpc.ClientConnInterface) *GRPCExchanger {
	return &GRPCExchanger{client: iampb.NewIamTokenServiceClient(conn)}
}

// Exchange implements Exchanger.
func (e *GRPCExchanger) Exchange(ctx context.Context, signedJWT string) (string, time.Time, error) {
	resp, err := e.client.Create(ctx, &iampb.CreateIamTokenRequest{
		Identity: &iampb.CreateIamTokenRequest_Jwt{Jwt: signedJWT},
	})
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Time{}
	if resp.GetExpiresAt() != nil {
		expiresAt = resp.GetExpiresAt().AsTime()
	}
	return resp.GetIamToken(), expiresAt, nil
}
