// Package queue implements the Message Queue node over the
// SQS-compatible Yandex Message Queue API: send, long-poll receive with
// best-effort post-receipt deletion, and explicit message deletion.
package queue

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/flowmation/yandexcloud-nodes/pkg/credentials"
)

// QueueAPI is the slice of the SQS-compatible API this node uses. The
// generated sqs.Client satisfies it; tests substitute a fake without
// network access.
type QueueAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ListQueues(ctx context.Context, params *sqs.ListQueuesInput, optFns ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error)
}

// NewClient builds the production SQS client pointed at the Yandex
// Message Queue endpoint, signing with the static key pair.
func NewClient(ctx context.Context, cred credentials.StaticKey) (*sqs.Client, error) {
	if err := cred.Validate(); err != nil {
		return nil, fmt.Errorf("message queue credentials: %w", err)
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cred.ResolvedRegion()),
		awsconfig.WithCredentialsProvider(awscreds.NewStaticCredentialsProvider(cred.AccessKeyID, cred.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	endpoint := cred.Endpoint
	if endpoint == "" {
		endpoint = credentials.DefaultQueueEndpoint
	}
	return sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}
