// Package ygpt implements the chat node over the OpenAI-compatible
// YandexGPT API: model listing filtered to gpt:// ids and chat
// completion.
package ygpt

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/flowmation/yandexcloud-nodes/pkg/credentials"
	"github.com/flowmation/yandexcloud-nodes/pkg/httpclient"
)

// ChatAPI is the slice of the OpenAI-compatible API this node uses.
type ChatAPI interface {
	ListModels(ctx context.Context) (openai.ModelsList, error)
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient builds the production chat client against the YandexGPT
// endpoint over the given HTTP settings. The credential headers ride on
// the hardened HTTP client so every request carries the folder scope
// and the data-logging opt-out.
func NewClient(cred credentials.APIKey, hcfg httpclient.Config) (*openai.Client, error) {
	if err := cred.Validate(); err != nil {
		return nil, fmt.Errorf("gpt credentials: %w", err)
	}
	hc, err := httpclient.New(hcfg)
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}
	hc.Transport = cred.Transport(hc.Transport)

	cfg := openai.DefaultConfig(cred.Key)
	cfg.BaseURL = cred.ResolvedBaseURL()
	cfg.HTTPClient = hc
	return openai.NewClientWithConfig(cfg), nil
}
