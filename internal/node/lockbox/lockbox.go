package lockbox

import (
	"context"
	"log/slog"
	"strings"

	"github.com/flowmation/yandexcloud-nodes/internal/log"
	"github.com/flowmation/yandexcloud-nodes/pkg/node"
)

// NodeName is the identifier this node registers under.
const NodeName = "lockbox"

// Operation names routed by Execute.
const (
	OpListSecrets                = "listSecrets"
	OpGetSecret                  = "getSecret"
	OpCreateSecret               = "createSecret"
	OpUpdateSecret               = "updateSecret"
	OpDeleteSecret               = "deleteSecret"
	OpActivateSecret             = "activateSecret"
	OpDeactivateSecret           = "deactivateSecret"
	OpListVersions               = "listVersions"
	OpAddVersion                 = "addVersion"
	OpScheduleVersionDestruction = "scheduleVersionDestruction"
	OpCancelVersionDestruction   = "cancelVersionDestruction"
	OpGetPayload                 = "getPayload"
)

// Node is the Lockbox secret-management adapter.
type Node struct {
	secrets  SecretAPI
	payloads PayloadAPI

	// folderID is the credential's default folder, used when the
	// parameters don't name one.
	folderID string

	logger *slog.Logger
}

// New creates a Lockbox node over injected service clients.
func New(secrets SecretAPI, payloads PayloadAPI, folderID string, logger *slog.Logger) *Node {
	if logger == nil {
		logger = slog.Default()
	}
	return &Node{
		secrets:  secrets,
		payloads: payloads,
		folderID: folderID,
		logger:   log.WithNode(logger, NodeName),
	}
}

// Name implements node.Node.
func (n *Node) Name() string { return NodeName }

// Operations implements node.Node.
func (n *Node) Operations() []node.OperationInfo {
	return []node.OperationInfo{
		{Name: OpListSecrets, Description: "List secrets in a folder", Paginated: true},
		{Name: OpGetSecret, Description: "Get a secret's metadata"},
		{Name: OpCreateSecret, Description: "Create a secret with an initial payload version"},
		{Name: OpUpdateSecret, Description: "Update a secret's name, description or labels"},
		{Name: OpDeleteSecret, Description: "Delete a secret", Destructive: true},
		{Name: OpActivateSecret, Description: "Activate an inactive secret"},
		{Name: OpDeactivateSecret, Description: "Deactivate a secret"},
		{Name: OpListVersions, Description: "List a secret's versions", Paginated: true},
		{Name: OpAddVersion, Description: "Add a payload version to a secret"},
		{Name: OpScheduleVersionDestruction, Description: "Schedule a version for destruction", Destructive: true},
		{Name: OpCancelVersionDestruction, Description: "Cancel a scheduled version destruction"},
		{Name: OpGetPayload, Description: "Get a secret's payload entries"},
	}
}

// Execute implements node.Node, routing each operation to its request
// builder. An unknown operation fails naming the offending string.
func (n *Node) Execute(ctx context.Context, operation string, params node.Params) (*node.Result, error) {
	switch operation {
	case OpListSecrets:
		return n.listSecrets(ctx, params)
	case OpGetSecret:
		return n.getSecret(ctx, params)
	case OpCreateSecret:
		return n.createSecret(ctx, params)
	case OpUpdateSecret:
		return n.updateSecret(ctx, params)
	case OpDeleteSecret:
		return n.deleteSecret(ctx, params)
	case OpActivateSecret:
		return n.activateSecret(ctx, params)
	case OpDeactivateSecret:
		return n.deactivateSecret(ctx, params)
	case OpListVersions:
		return n.listVersions(ctx, params)
	case OpAddVersion:
		return n.addVersion(ctx, params)
	case OpScheduleVersionDestruction:
		return n.scheduleVersionDestruction(ctx, params)
	case OpCancelVersionDestruction:
		return n.cancelVersionDestruction(ctx, params)
	case OpGetPayload:
		return n.getPayload(ctx, params)
	default:
		return nil, node.NewUnsupportedOperationError(NodeName, operation)
	}
}

// Search implements node.Searcher, backing the secret and version
// resource locators.
func (n *Node) Search(ctx context.Context, kind, filter string, params node.Params) ([]node.SearchResult, error) {
	switch kind {
	case "versions":
		return n.searchVersions(ctx, filter, params)
	case "secrets", "":
		return n.searchSecrets(ctx, filter, params)
	default:
		return nil, node.NewUnsupportedOperationError(NodeName, "search:"+kind)
	}
}

// matchesFilter is the locator's case-insensitive substring match.
func matchesFilter(name, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(filter))
}
