package lockbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	lockboxpb "github.com/yandex-cloud/go-genproto/yandex/cloud/lockbox/v1"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"github.com/flowmation/yandexcloud-nodes/pkg/node"
)

func (n *Node) listSecrets(ctx context.Context, params node.Params) (*node.Result, error) {
	folderID := params.Resolve("folderId", n.folderID)
	if folderID == "" {
		return nil, node.NewMissingParamError("folderId")
	}
	returnAll, limit := params.Pagination()

	secrets, err := node.Collect(ctx, returnAll, limit, func(ctx context.Context, pageToken string) ([]*lockboxpb.Secret, string, error) {
		resp, err := n.secrets.List(ctx, &lockboxpb.ListSecretsRequest{
			FolderId:  folderID,
			PageToken: pageToken,
		})
		if err != nil {
			return nil, "", err
		}
		return resp.GetSecrets(), resp.GetNextPageToken(), nil
	})
	if err != nil {
		return nil, node.NewVendorError(OpListSecrets, err)
	}

	records := make([]map[string]any, 0, len(secrets))
	for _, s := range secrets {
		records = append(records, secretRecord(s))
	}
	return node.Listing(records), nil
}

func (n *Node) getSecret(ctx context.Context, params node.Params) (*node.Result, error) {
	secretID, err := params.RequireString("secretId")
	if err != nil {
		return nil, err
	}

	secret, err := n.secrets.Get(ctx, &lockboxpb.GetSecretRequest{SecretId: secretID})
	if err != nil {
		return nil, node.NewVendorError(OpGetSecret, err)
	}
	return node.Single(secretRecord(secret), params.ItemIndex()), nil
}

func (n *Node) createSecret(ctx context.Context, params node.Params) (*node.Result, error) {
	folderID := params.Resolve("folderId", n.folderID)
	if folderID == "" {
		return nil, node.NewMissingParamError("folderId")
	}
	name, err := params.RequireString("name")
	if err != nil {
		return nil, err
	}

	// An empty payload fails here, before any network call.
	entries, err := payloadEntryChanges(params.Slice("payloadEntries"))
	if err != nil {
		return nil, err
	}

	op, err := n.secrets.Create(ctx, &lockboxpb.CreateSecretRequest{
		FolderId:              folderID,
		Name:                  name,
		Description:           params.String("description"),
		Labels:                params.StringMap("labels"),
		KmsKeyId:              params.String("kmsKeyId"),
		VersionDescription:    params.String("versionDescription"),
		VersionPayloadEntries: entries,
		DeletionProtection:    params.Bool("deletionProtection", false),
	})
	if err != nil {
		return nil, node.NewVendorError(OpCreateSecret, err)
	}

	record, err := unwrapOperation(OpCreateSecret, op)
	if err != nil {
		return nil, err
	}
	return node.Single(record, params.ItemIndex()), nil
}

func (n *Node) updateSecret(ctx context.Context, params node.Params) (*node.Result, error) {
	secretID, err := params.RequireString("secretId")
	if err != nil {
		return nil, err
	}

	req := &lockboxpb.UpdateSecretRequest{
		SecretId:   secretID,
		UpdateMask: &fieldmaskpb.FieldMask{},
	}
	if v, ok := params["name"]; ok && v != nil {
		req.Name = params.String("name")
		req.UpdateMask.Paths = append(req.UpdateMask.Paths, "name")
	}
	if v, ok := params["description"]; ok && v != nil {
		req.Description = params.String("description")
		req.UpdateMask.Paths = append(req.UpdateMask.Paths, "description")
	}
	if v, ok := params["labels"]; ok && v != nil {
		req.Labels = params.StringMap("labels")
		req.UpdateMask.Paths = append(req.UpdateMask.Paths, "labels")
	}
	if v, ok := params["deletionProtection"]; ok && v != nil {
		req.DeletionProtection = params.Bool("deletionProtection", false)
		req.UpdateMask.Paths = append(req.UpdateMask.Paths, "deletion_protection")
	}
	if len(req.UpdateMask.Paths) == 0 {
		return nil, node.NewMissingParamError("updateFields")
	}

	op, err := n.secrets.Update(ctx, req)
	if err != nil {
		return nil, node.NewVendorError(OpUpdateSecret, err)
	}

	record, err := unwrapOperation(OpUpdateSecret, op)
	if err != nil {
		return nil, err
	}
	return node.Single(record, params.ItemIndex()), nil
}

func (n *Node) deleteSecret(ctx context.Context, params node.Params) (*node.Result, error) {
	secretID, err := params.RequireString("secretId")
	if err != nil {
		return nil, err
	}

	op, err := n.secrets.Delete(ctx, &lockboxpb.DeleteSecretRequest{SecretId: secretID})
	if err != nil {
		return nil, node.NewVendorError(OpDeleteSecret, err)
	}

	record, err := unwrapOperation(OpDeleteSecret, op)
	if err != nil {
		return nil, err
	}
	return node.Single(record, params.ItemIndex()), nil
}

func (n *Node) activateSecret(ctx context.Context, params node.Params) (*node.Result, error) {
	secretID, err := params.RequireString("secretId")
	if err != nil {
		return nil, err
	}

	op, err := n.secrets.Activate(ctx, &lockboxpb.ActivateSecretRequest{SecretId: secretID})
	if err != nil {
		return nil, node.NewVendorError(OpActivateSecret, err)
	}

	record, err := unwrapOperation(OpActivateSecret, op)
	if err != nil {
		return nil, err
	}
	return node.Single(record, params.ItemIndex()), nil
}

func (n *Node) deactivateSecret(ctx context.Context, params node.Params) (*node.Result, error) {
	secretID, err := params.RequireString("secretId")
	if err != nil {
		return nil, err
	}

	op, err := n.secrets.Deactivate(ctx, &lockboxpb.DeactivateSecretRequest{SecretId: secretID})
	if err != nil {
		return nil, node.NewVendorError(OpDeactivateSecret, err)
	}

	record, err := unwrapOperation(OpDeactivateSecret, op)
	if err != nil {
		return nil, err
	}
	return node.Single(record, params.ItemIndex()), nil
}

func (n *Node) listVersions(ctx context.Context, params node.Params) (*node.Result, error) {
	secretID, err := params.RequireString("secretId")
	if err != nil {
		return nil, err
	}
	returnAll, limit := params.Pagination()

	versions, err := node.Collect(ctx, returnAll, limit, func(ctx context.Context, pageToken string) ([]*lockboxpb.Version, string, error) {
		resp, err := n.secrets.ListVersions(ctx, &lockboxpb.ListVersionsRequest{
			SecretId:  secretID,
			PageToken: pageToken,
		})
		if err != nil {
			return nil, "", err
		}
		return resp.GetVersions(), resp.GetNextPageToken(), nil
	})
	if err != nil {
		return nil, node.NewVendorError(OpListVersions, err)
	}

	records := make([]map[string]any, 0, len(versions))
	for _, v := range versions {
		records = append(records, versionRecord(v))
	}
	return node.Listing(records), nil
}

func (n *Node) addVersion(ctx context.Context, params node.Params) (*node.Result, error) {
	secretID, err := params.RequireString("secretId")
	if err != nil {
		return nil, err
	}
	entries, err := payloadEntryChanges(params.Slice("payloadEntries"))
	if err != nil {
		return nil, err
	}

	op, err := n.secrets.AddVersion(ctx, &lockboxpb.AddVersionRequest{
		SecretId:       secretID,
		Description:    params.String("description"),
		PayloadEntries: entries,
		BaseVersionId:  params.String("baseVersionId"),
	})
	if err != nil {
		return nil, node.NewVendorError(OpAddVersion, err)
	}

	record, err := unwrapOperation(OpAddVersion, op)
	if err != nil {
		return nil, err
	}
	return node.Single(record, params.ItemIndex()), nil
}

func (n *Node) scheduleVersionDestruction(ctx context.Context, params node.Params) (*node.Result, error) {
	secretID, err := params.RequireString("secretId")
	if err != nil {
		return nil, err
	}
	versionID, err := params.RequireString("versionId")
	if err != nil {
		return nil, err
	}

	req := &lockboxpb.ScheduleVersionDestructionRequest{
		SecretId:  secretID,
		VersionId: versionID,
	}
	if seconds := params.Int("pendingPeriodSeconds", 0); seconds > 0 {
		req.PendingPeriod = durationpb.New(time.Duration(seconds) * time.Second)
	}

	op, err := n.secrets.ScheduleVersionDestruction(ctx, req)
	if err != nil {
		return nil, node.NewVendorError(OpScheduleVersionDestruction, err)
	}

	record, err := unwrapOperation(OpScheduleVersionDestruction, op)
	if err != nil {
		return nil, err
	}
	return node.Single(record, params.ItemIndex()), nil
}

func (n *Node) cancelVersionDestruction(ctx context.Context, params node.Params) (*node.Result, error) {
	secretID, err := params.RequireString("secretId")
	if err != nil {
		return nil, err
	}
	versionID, err := params.RequireString("versionId")
	if err != nil {
		return nil, err
	}

	op, err := n.secrets.CancelVersionDestruction(ctx, &lockboxpb.CancelVersionDestructionRequest{
		SecretId:  secretID,
		VersionId: versionID,
	})
	if err != nil {
		return nil, node.NewVendorError(OpCancelVersionDestruction, err)
	}

	record, err := unwrapOperation(OpCancelVersionDestruction, op)
	if err != nil {
		return nil, err
	}
	return node.Single(record, params.ItemIndex()), nil
}

func (n *Node) getPayload(ctx context.Context, params node.Params) (*node.Result, error) {
	secretID, err := params.RequireString("secretId")
	if err != nil {
		return nil, err
	}

	payload, err := n.payloads.Get(ctx, &lockboxpb.GetPayloadRequest{
		SecretId:  secretID,
		VersionId: params.String("versionId"),
	})
	if err != nil {
		return nil, node.NewVendorError(OpGetPayload, err)
	}
	return node.Single(payloadRecord(payload), params.ItemIndex()), nil
}

// payloadEntryChanges converts the payloadEntries collection parameter
// into the wire shape. Each entry carries a key and either a textValue
// or a base64-encoded binaryValue. An empty list is rejected so the
// failure happens before any network call.
func payloadEntryChanges(raw []map[string]any) ([]*lockboxpb.PayloadEntryChange, error) {
	if len(raw) == 0 {
		return nil, node.NewMissingParamError("payloadEntries")
	}

	entries := make([]*lockboxpb.PayloadEntryChange, 0, len(raw))
	for i, entry := range raw {
		key, _ := entry["key"].(string)
		if key == "" {
			return nil, node.NewMissingParamError(fmt.Sprintf("payloadEntries[%d].key", i))
		}

		change := &lockboxpb.PayloadEntryChange{Key: key}
		if bin, ok := entry["binaryValue"].(string); ok && bin != "" {
			decoded, err := base64.StdEncoding.DecodeString(bin)
			if err != nil {
				return nil, &node.Error{
					Type:      node.ErrorTypeMissingParam,
					Message:   fmt.Sprintf("payloadEntries[%d].binaryValue is not valid base64", i),
					ItemIndex: -1,
					Cause:     err,
				}
			}
			change.Value = &lockboxpb.PayloadEntryChange_BinaryValue{BinaryValue: decoded}
		} else {
			text, _ := entry["textValue"].(string)
			change.Value = &lockboxpb.PayloadEntryChange_TextValue{TextValue: text}
		}
		entries = append(entries, change)
	}
	return entries, nil
}

// searchSecrets backs the secret resource locator.
func (n *Node) searchSecrets(ctx context.Context, filter string, params node.Params) ([]node.SearchResult, error) {
	folderID := params.Resolve("folderId", n.folderID)
	if folderID == "" {
		return nil, node.NewMissingParamError("folderId")
	}

	secrets, err := node.Collect(ctx, true, 0, func(ctx context.Context, pageToken string) ([]*lockboxpb.Secret, string, error) {
		resp, err := n.secrets.List(ctx, &lockboxpb.ListSecretsRequest{
			FolderId:  folderID,
			PageToken: pageToken,
		})
		if err != nil {
			return nil, "", err
		}
		return resp.GetSecrets(), resp.GetNextPageToken(), nil
	})
	if err != nil {
		return nil, node.NewVendorError("searchSecrets", err)
	}

	results := make([]node.SearchResult, 0, len(secrets))
	for _, s := range secrets {
		if !matchesFilter(s.GetName(), filter) {
			continue
		}
		results = append(results, node.SearchResult{Name: s.GetName(), Value: s.GetId()})
	}
	return results, nil
}

// searchVersions backs the version resource locator for a chosen secret.
func (n *Node) searchVersions(ctx context.Context, filter string, params node.Params) ([]node.SearchResult, error) {
	secretID, err := params.RequireString("secretId")
	if err != nil {
		return nil, err
	}

	versions, err := node.Collect(ctx, true, 0, func(ctx context.Context, pageToken string) ([]*lockboxpb.Version, string, error) {
		resp, err := n.secrets.ListVersions(ctx, &lockboxpb.ListVersionsRequest{
			SecretId:  secretID,
			PageToken: pageToken,
		})
		if err != nil {
			return nil, "", err
		}
		return resp.GetVersions(), resp.GetNextPageToken(), nil
	})
	if err != nil {
		return nil, node.NewVendorError("searchVersions", err)
	}

	results := make([]node.SearchResult, 0, len(versions))
	for _, v := range versions {
		label := v.GetId()
		if v.GetDescription() != "" {
			label = fmt.Sprintf("%s (%s)", v.GetId(), v.GetDescription())
		}
		if !matchesFilter(label, filter) {
			continue
		}
		results = append(results, node.SearchResult{Name: label, Value: v.GetId()})
	}
	return results, nil
}
