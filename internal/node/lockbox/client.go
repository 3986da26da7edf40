// Package lockbox implements the secret-management node over the
// Lockbox gRPC API: secret and version CRUD, lifecycle transitions, and
// payload retrieval, with bounded pagination on the listing paths.
package lockbox

import (
	"context"

	"google.golang.org/grpc"

	lockboxpb "github.com/yandex-cloud/go-genproto/yandex/cloud/lockbox/v1"
	"github.com/yandex-cloud/go-genproto/yandex/cloud/operation"
)

// SecretAPI is the slice of the Lockbox secret service this node uses.
// The generated lockboxpb.SecretServiceClient satisfies it; tests
// substitute a fake without network access.
type SecretAPI interface {
	List(ctx context.Context, in *lockboxpb.ListSecretsRequest, opts ...grpc.CallOption) (*lockboxpb.ListSecretsResponse, error)
	Get(ctx context.Context, in *lockboxpb.GetSecretRequest, opts ...grpc.CallOption) (*lockboxpb.Secret, error)
	Create(ctx context.Context, in *lockboxpb.CreateSecretRequest, opts ...grpc.CallOption) (*operation.Operation, error)
	Update(ctx context.Context, in *lockboxpb.UpdateSecretRequest, opts ...grpc.CallOption) (*operation.Operation, error)
	Delete(ctx context.Context, in *lockboxpb.DeleteSecretRequest, opts ...grpc.CallOption) (*operation.Operation, error)
	Activate(ctx context.Context, in *lockboxpb.ActivateSecretRequest, opts ...grpc.CallOption) (*operation.Operation, error)
	Deactivate(ctx context.Context, in *lockboxpb.DeactivateSecretRequest, opts ...grpc.CallOption) (*operation.Operation, error)
	ListVersions(ctx context.Context, in *lockboxpb.ListVersionsRequest, opts ...grpc.CallOption) (*lockboxpb.ListVersionsResponse, error)
	AddVersion(ctx context.Context, in *lockboxpb.AddVersionRequest, opts ...grpc.CallOption) (*operation.Operation, error)
	ScheduleVersionDestruction(ctx context.Context, in *lockboxpb.ScheduleVersionDestructionRequest, opts ...grpc.CallOption) (*operation.Operation, error)
	CancelVersionDestruction(ctx context.Context, in *lockboxpb.CancelVersionDestructionRequest, opts ...grpc.CallOption) (*operation.Operation, error)
}

// PayloadAPI is the slice of the Lockbox payload service this node uses.
type PayloadAPI interface {
	Get(ctx context.Context, in *lockboxpb.GetPayloadRequest, opts ...grpc.CallOption) (*lockboxpb.Payload, error)
}

// NewClients builds the production service clients over an established
// connection to the Lockbox endpoint.
func NewClients(conn grpc.ClientConnInterface) (SecretAPI, PayloadAPI) {
	return lockboxpb.NewSecretServiceClient(conn), lockboxpb.NewPayloadServiceClient(conn)
}
