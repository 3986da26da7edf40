package cli

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"

	"github.com/flowmation/yandexcloud-nodes/internal/config"
	"github.com/flowmation/yandexcloud-nodes/internal/node/lockbox"
	"github.com/flowmation/yandexcloud-nodes/internal/node/postbox"
	"github.com/flowmation/yandexcloud-nodes/internal/node/queue"
	"github.com/flowmation/yandexcloud-nodes/internal/node/ygpt"
	"github.com/flowmation/yandexcloud-nodes/internal/yc/grpcconn"
	"github.com/flowmation/yandexcloud-nodes/internal/yc/iam"
	"github.com/flowmation/yandexcloud-nodes/pkg/node"
)

// buildRegistry constructs every node whose credentials are configured.
// The returned cleanup releases held connections.
func buildRegistry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*node.Registry, func(), error) {
	registry := node.NewRegistry()
	var conns []*grpc.ClientConn
	cleanup := func() {
		for _, c := range conns {
			c.Close()
		}
	}

	if cfg.Queue != nil {
		client, err := queue.NewClient(ctx, *cfg.Queue)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if err := registry.Register(queue.New(client, logger)); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	if cfg.Postbox != nil {
		client, err := postbox.NewClient(ctx, *cfg.Postbox)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if err := registry.Register(postbox.New(client, logger)); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	if cfg.Lockbox != nil {
		sa, err := cfg.Lockbox.ServiceAccountKey()
		if err != nil {
			cleanup()
			return nil, nil, err
		}

		// The token exchange runs over its own unauthenticated
		// connection; the service connection then carries the
		// refreshed IAM token per RPC.
		iamConn, err := grpcconn.New(sa.ResolvedEndpoint(), nil)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect iam endpoint: %w", err)
		}
		conns = append(conns, iamConn)

		ts := iam.NewTokenSource(sa, iam.NewGRPCExchanger(iamConn))
		conn, err := grpcconn.New(sa.ResolvedEndpoint(), ts)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect lockbox endpoint: %w", err)
		}
		conns = append(conns, conn)

		secrets, payloads := lockbox.NewClients(conn)
		if err := registry.Register(lockbox.New(secrets, payloads, cfg.Lockbox.FolderID, logger)); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	if cfg.GPT != nil {
		client, err := ygpt.NewClient(cfg.GPT.APIKey, cfg.HTTP.ClientConfig())
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		limiter := node.NewRateLimiter(cfg.GPT.RequestsPerSecond)
		if err := registry.Register(ygpt.New(client, cfg.GPT.FolderID, limiter, logger)); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	return registry, cleanup, nil
}
