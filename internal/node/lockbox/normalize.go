package lockbox

import (
	"encoding/base64"
	"time"

	lockboxpb "github.com/yandex-cloud/go-genproto/yandex/cloud/lockbox/v1"
	"github.com/yandex-cloud/go-genproto/yandex/cloud/operation"
	statuspb "google.golang.org/genproto/googleapis/rpc/status"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/flowmation/yandexcloud-nodes/pkg/node"
)

// Status label tables. Lookups are total: codes outside the table render
// as UNKNOWN(<code>).
var (
	secretStatusLabels = map[int32]string{
		int32(lockboxpb.Secret_STATUS_UNSPECIFIED): "STATUS_UNSPECIFIED",
		int32(lockboxpb.Secret_CREATING):           "CREATING",
		int32(lockboxpb.Secret_ACTIVE):             "ACTIVE",
		int32(lockboxpb.Secret_INACTIVE):           "INACTIVE",
	}

	versionStatusLabels = map[int32]string{
		int32(lockboxpb.Version_STATUS_UNSPECIFIED):        "STATUS_UNSPECIFIED",
		int32(lockboxpb.Version_ACTIVE):                    "ACTIVE",
		int32(lockboxpb.Version_SCHEDULED_FOR_DESTRUCTION): "SCHEDULED_FOR_DESTRUCTION",
		int32(lockboxpb.Version_DESTROYED):                 "DESTROYED",
	}
)

func formatTime(ts *timestamppb.Timestamp) string {
	if ts == nil {
		return ""
	}
	return ts.AsTime().Format(time.RFC3339)
}

// secretRecord flattens a secret into the uniform item shape.
func secretRecord(s *lockboxpb.Secret) map[string]any {
	if s == nil {
		return map[string]any{}
	}
	record := map[string]any{
		"id":                 s.GetId(),
		"folderId":           s.GetFolderId(),
		"name":               s.GetName(),
		"description":        s.GetDescription(),
		"status":             node.StatusLabel(secretStatusLabels, int32(s.GetStatus())),
		"createdAt":          formatTime(s.GetCreatedAt()),
		"deletionProtection": s.GetDeletionProtection(),
	}
	if len(s.GetLabels()) > 0 {
		record["labels"] = s.GetLabels()
	}
	if s.GetKmsKeyId() != "" {
		record["kmsKeyId"] = s.GetKmsKeyId()
	}
	if cv := s.GetCurrentVersion(); cv != nil {
		record["currentVersion"] = versionRecord(cv)
	}
	return record
}

// versionRecord flattens a version into the uniform item shape.
func versionRecord(v *lockboxpb.Version) map[string]any {
	if v == nil {
		return map[string]any{}
	}
	record := map[string]any{
		"id":               v.GetId(),
		"secretId":         v.GetSecretId(),
		"status":           node.StatusLabel(versionStatusLabels, int32(v.GetStatus())),
		"createdAt":        formatTime(v.GetCreatedAt()),
		"description":      v.GetDescription(),
		"payloadEntryKeys": v.GetPayloadEntryKeys(),
	}
	if v.GetDestroyAt() != nil {
		record["destroyAt"] = formatTime(v.GetDestroyAt())
	}
	return record
}

// payloadRecord flattens payload entries. Text entries pass through;
// binary entries are base64-encoded under binaryValue. A data map keyed
// by entry name is included for convenient downstream field access.
func payloadRecord(p *lockboxpb.Payload) map[string]any {
	if p == nil {
		return map[string]any{}
	}

	entries := make([]map[string]any, 0, len(p.GetEntries()))
	data := make(map[string]any, len(p.GetEntries()))
	for _, e := range p.GetEntries() {
		entry := map[string]any{"key": e.GetKey()}
		if bin := e.GetBinaryValue(); len(bin) > 0 {
			encoded := base64.StdEncoding.EncodeToString(bin)
			entry["binaryValue"] = encoded
			data[e.GetKey()] = encoded
		} else {
			entry["textValue"] = e.GetTextValue()
			data[e.GetKey()] = e.GetTextValue()
		}
		entries = append(entries, entry)
	}

	return map[string]any{
		"versionId": p.GetVersionId(),
		"entries":   entries,
		"data":      data,
	}
}

// unwrapOperation flattens a long-running operation result. Lockbox
// mutations normally come back done with the resource in the response;
// if not, the metadata's resource ids are all there is to report.
func unwrapOperation(opName string, op *operation.Operation) (map[string]any, error) {
	if op == nil {
		return map[string]any{}, nil
	}
	if opErr := op.GetError(); opErr != nil {
		return nil, node.NewVendorError(opName, grpcStatusError(opErr))
	}

	record := map[string]any{
		"operationId": op.GetId(),
		"done":        op.GetDone(),
	}

	if resp := op.GetResponse(); resp != nil {
		var secret lockboxpb.Secret
		if resp.MessageIs(&secret) {
			if err := resp.UnmarshalTo(&secret); err == nil {
				record["secret"] = secretRecord(&secret)
				return record, nil
			}
		}
		var version lockboxpb.Version
		if resp.MessageIs(&version) {
			if err := resp.UnmarshalTo(&version); err == nil {
				record["version"] = versionRecord(&version)
				return record, nil
			}
		}
	}

	if meta := op.GetMetadata(); meta != nil {
		if ids := metadataIDs(meta); len(ids) > 0 {
			for k, v := range ids {
				record[k] = v
			}
		}
	}

	return record, nil
}

// metadataIDs extracts the resource ids from a mutation's operation
// metadata, used when the operation response has not materialized yet.
func metadataIDs(meta *anypb.Any) map[string]any {
	candidates := []proto.Message{
		&lockboxpb.CreateSecretMetadata{},
		&lockboxpb.UpdateSecretMetadata{},
		&lockboxpb.DeleteSecretMetadata{},
		&lockboxpb.ActivateSecretMetadata{},
		&lockboxpb.DeactivateSecretMetadata{},
		&lockboxpb.AddVersionMetadata{},
		&lockboxpb.ScheduleVersionDestructionMetadata{},
		&lockboxpb.CancelVersionDestructionMetadata{},
	}
	for _, m := range candidates {
		if !meta.MessageIs(m) {
			continue
		}
		if err := meta.UnmarshalTo(m); err != nil {
			return nil
		}
		out := map[string]any{}
		if s, ok := m.(interface{ GetSecretId() string }); ok && s.GetSecretId() != "" {
			out["secretId"] = s.GetSecretId()
		}
		if v, ok := m.(interface{ GetVersionId() string }); ok && v.GetVersionId() != "" {
			out["versionId"] = v.GetVersionId()
		}
		return out
	}
	return nil
}

// grpcStatusError converts an operation's embedded status into an error.
func grpcStatusError(s *statuspb.Status) error {
	return grpcstatus.ErrorProto(s)
}
