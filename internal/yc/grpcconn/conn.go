// Package grpcconn establishes authenticated connections to the Yandex
// Cloud gRPC API. Connections carry TLS 1.2+ and per-RPC bearer tokens
// from an oauth2.TokenSource, so IAM refresh happens transparently.
package grpcconn

import (
	"crypto/tls"

	"golang.org/x/oauth2"
	"google.golang.org/grpc"
	grpccreds "google.golang.org/grpc/credentials"
	grpcoauth "google.golang.org/grpc/credentials/oauth"
)

const userAgent = "ycnodes/1.0"

// New creates a client connection to the given endpoint (host:port).
// The connection is lazy; no I/O happens until the first RPC. A nil
// token source leaves the connection unauthenticated, which the IAM
// token exchange itself requires.
func New(endpoint string, ts oauth2.TokenSource) (*grpc.ClientConn, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(grpccreds.NewTLS(&tls.Config{
			MinVersion: tls.VersionTLS12,
		})),
		grpc.WithUserAgent(userAgent),
	}
	if ts != nil {
		opts = append(opts, grpc.WithPerRPCCredentials(grpcoauth.TokenSource{TokenSource: ts}))
	}
	return grpc.NewClient(endpoint, opts...)
}
