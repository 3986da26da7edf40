// Package postbox implements the transactional email node over the
// SESv2-compatible Yandex Postbox API: simple and inline-templated
// sends.
package postbox

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/flowmation/yandexcloud-nodes/pkg/credentials"
)

// MailAPI is the slice of the SESv2-compatible API this node uses.
type MailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// NewClient builds the production SESv2 client pointed at the Yandex
// Postbox endpoint, signing with the static key pair.
func NewClient(ctx context.Context, cred credentials.StaticKey) (*sesv2.Client, error) {
	if err := cred.Validate(); err != nil {
		return nil, fmt.Errorf("postbox credentials: %w", err)
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
		endpoint = credentials.DefaultPostboxEndpoint
	}
	return sesv2.NewFromConfig(cfg, func(o *sesv2.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}
