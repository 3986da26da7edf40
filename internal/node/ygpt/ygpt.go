package ygpt

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/flowmation/yandexcloud-nodes/internal/log"
	"github.com/flowmation/yandexcloud-nodes/pkg/node"
)

// NodeName is the identifier this node registers under.
const NodeName = "yandexgpt"

// Operation names routed by Execute.
const (
	OpListModels = "listModels"
	OpComplete   = "complete"
)

// modelPrefix marks the chat-capable model ids; everything else the
// endpoint reports (embeddings, classifiers) is filtered out.
const modelPrefix = "gpt://"

var errNoChoices = errors.New("completion returned no choices")

// Node is the YandexGPT chat adapter.
type Node struct {
	client ChatAPI

	// folderID is the credential's folder, used to build the default
	// model id when the parameters don't name one.
	folderID string

	limiter *node.RateLimiter
	logger  *slog.Logger
}

// New creates a chat node over an injected client. A nil limiter
// disables client-side rate limiting.
func New(client ChatAPI, folderID string, limiter *node.RateLimiter, logger *slog.Logger) *Node {
	if logger == nil {
		logger = slog.Default()
	}
	return &Node{
		client:   client,
		folderID: folderID,
		limiter:  limiter,
		logger:   log.WithNode(logger, NodeName),
	}
}

// Name implements node.Node.
func (n *Node) Name() string { return NodeName }

// Operations implements node.Node.
func (n *Node) Operations() []node.OperationInfo {
	return []node.OperationInfo{
		{Name: OpListModels, Description: "List available chat model ids"},
		{Name: OpComplete, Description: "Run a chat completion"},
	}
}

// Execute implements node.Node.
func (n *Node) Execute(ctx context.Context, operation string, params node.Params) (*node.Result, error) {
	switch operation {
	case OpListModels:
		return n.listModels(ctx)
	case OpComplete:
		return n.complete(ctx, params)
	default:
		return nil, node.NewUnsupportedOperationError(NodeName, operation)
	}
}

// Search implements node.Searcher, backing the model locator.
func (n *Node) Search(ctx context.Context, kind, filter string, params node.Params) ([]node.SearchResult, error) {
	switch kind {
	case "models", "":
	default:
		return nil, node.NewUnsupportedOperationError(NodeName, "search:"+kind)
	}
	ids, err := n.chatModelIDs(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]node.SearchResult, 0, len(ids))
	for _, id := range ids {
		if filter != "" && !strings.Contains(strings.ToLower(id), strings.ToLower(filter)) {
			continue
		}
		results = append(results, node.SearchResult{Name: id, Value: id})
	}
	return results, nil
}

func (n *Node) listModels(ctx context.Context) (*node.Result, error) {
	ids, err := n.chatModelIDs(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		records = append(records, map[string]any{"id": id})
	}
	return node.Listing(records), nil
}

// chatModelIDs lists the endpoint's models keeping only the gpt:// ids.
func (n *Node) chatModelIDs(ctx context.Context) ([]string, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	list, err := n.client.ListModels(ctx)
	if err != nil {
		return nil, node.NewVendorError(OpListModels, err)
	}
	var ids []string
	for _, m := range list.Models {
		if strings.HasPrefix(m.ID, modelPrefix) {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (n *Node) complete(ctx context.Context, params node.Params) (*node.Result, error) {
	messages, err := n.chatMessages(params)
	if err != nil {
		return nil, err
	}

	req := openai.ChatCompletionRequest{
		Model:       n.resolveModel(params),
		Messages:    messages,
		Temperature: float32(params.Float("temperature", 0.3)),
	}
	if max := params.Int("maxTokens", 0); max > 0 {
		req.MaxTokens = max
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := n.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, node.NewVendorError(OpComplete, err)
	}
	if len(resp.Choices) == 0 {
		return nil, node.NewVendorError(OpComplete, errNoChoices)
	}

	choice := resp.Choices[0]
	record := map[string]any{
		"text":         choice.Message.Content,
		"model":        resp.Model,
		"finishReason": string(choice.FinishReason),
		"usage": map[string]any{
			"promptTokens":     resp.Usage.PromptTokens,
			"completionTokens": resp.Usage.CompletionTokens,
			"totalTokens":      resp.Usage.TotalTokens,
		},
	}
	return node.Single(record, params.ItemIndex()), nil
}

// chatMessages builds the conversation from either an explicit messages
// list or a bare prompt, with an optional system prompt prepended.
func (n *Node) chatMessages(params node.Params) ([]openai.ChatCompletionMessage, error) {
	var messages []openai.ChatCompletionMessage
	if system := params.String("systemPrompt"); system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, m := range params.Slice("messages") {
		role, _ := m["role"].(string)
		content, _ := m["content"].(string)
		if content == "" {
			continue
		}
		if role == "" {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: content})
	}

	if len(messages) == 0 || onlySystem(messages) {
		prompt, err := params.RequireString("prompt")
		if err != nil {
			return nil, err
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		})
	}
	return messages, nil
}

func onlySystem(messages []openai.ChatCompletionMessage) bool {
	for _, m := range messages {
		if m.Role != openai.ChatMessageRoleSystem {
			return false
		}
	}
	return true
}

// resolveModel prefers the explicit model parameter, falling back to the
// folder's general-purpose model.
func (n *Node) resolveModel(params node.Params) string {
	return params.Resolve("model", modelPrefix+n.folderID+"/yandexgpt/latest")
}
