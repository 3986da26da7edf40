package queue

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/flowmation/yandexcloud-nodes/internal/log"
	"github.com/flowmation/yandexcloud-nodes/pkg/node"
)

// NodeName is the identifier this node registers under.
const NodeName = "messagequeue"

// Operation names routed by Execute.
const (
	OpReceive       = "receive"
	OpSend          = "send"
	OpDeleteMessage = "deleteMessage"
)

// Receive clamp bounds from the service contract.
const (
	maxWaitSeconds       = 20
	maxBatchSize         = 10
	maxVisibilityTimeout = 43200
)

// Node is the Message Queue adapter.
type Node struct {
	client QueueAPI
	logger *slog.Logger
}

// New creates a Message Queue node over an injected client.
func New(client QueueAPI, logger *slog.Logger) *Node {
	if logger == nil {
		logger = slog.Default()
	}
	return &Node{
		client: client,
		logger: log.WithNode(logger, NodeName),
	}
}

// Name implements node.Node.
func (n *Node) Name() string { return NodeName }

// Operations implements node.Node.
func (n *Node) Operations() []node.OperationInfo {
	return []node.OperationInfo{
		{Name: OpReceive, Description: "Receive messages from a queue, optionally deleting them after receipt"},
		{Name: OpSend, Description: "Send a message to a queue"},
		{Name: OpDeleteMessage, Description: "Delete a message by receipt handle", Destructive: true},
	}
}

// Execute implements node.Node.
func (n *Node) Execute(ctx context.Context, operation string, params node.Params) (*node.Result, error) {
	switch operation {
	case OpReceive:
		return n.receive(ctx, params)
	case OpSend:
		return n.send(ctx, params)
	case OpDeleteMessage:
		return n.deleteMessage(ctx, params)
	default:
		return nil, node.NewUnsupportedOperationError(NodeName, operation)
	}
}

// Search implements node.Searcher, backing the queue resource locator.
// Queue names are matched case-insensitively against the filter.
func (n *Node) Search(ctx context.Context, kind, filter string, params node.Params) ([]node.SearchResult, error) {
	switch kind {
	case "queues", "":
	default:
		return nil, node.NewUnsupportedOperationError(NodeName, "search:"+kind)
	}
	out, err := n.client.ListQueues(ctx, &sqs.ListQueuesInput{})
	if err != nil {
		return nil, node.NewVendorError("listQueues", err)
	}
	results := make([]node.SearchResult, 0, len(out.QueueUrls))
	for _, u := range out.QueueUrls {
		name := queueNameFromURL(u)
		if filter != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(filter)) {
			continue
		}
		results = append(results, node.SearchResult{Name: name, Value: u})
	}
	return results, nil
}

// queueNameFromURL extracts the trailing queue name from a full queue URL.
func queueNameFromURL(url string) string {
	if i := strings.LastIndex(url, "/"); i >= 0 && i+1 < len(url) {
		return url[i+1:]
	}
	return url
}
