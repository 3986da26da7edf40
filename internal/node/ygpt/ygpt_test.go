package ygpt

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmation/yandexcloud-nodes/pkg/node"
)

type fakeChat struct {
	models      openai.ModelsList
	completion  openai.ChatCompletionResponse
	lastRequest openai.ChatCompletionRequest
}

func (f *fakeChat) ListModels(_ context.Context) (openai.ModelsList, error) {
	return f.models, nil
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastRequest = req
	return f.completion, nil
}

func completionResponse(text string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Model: "gpt://b1gfolder/yandexgpt/latest",
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: text},
			FinishReason: openai.FinishReasonStop,
		}},
		Usage: openai.Usage{PromptTokens: 12, CompletionTokens: 7, TotalTokens: 19},
	}
}

func TestExecute_UnsupportedOperation(t *testing.T) {
	n := New(&fakeChat{}, "b1gfolder", nil, nil)
	_, err := n.Execute(context.Background(), "embed", node.Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"embed"`)
}

func TestListModels_FiltersToChatIDs(t *testing.T) {
	client := &fakeChat{models: openai.ModelsList{Models: []openai.Model{
		{ID: "gpt://b1gfolder/yandexgpt/latest"},
		{ID: "emb://b1gfolder/text-search-doc/latest"},
		{ID: "gpt://b1gfolder/yandexgpt-lite/latest"},
	}}}
	n := New(client, "b1gfolder", nil, nil)

	res, err := n.Execute(context.Background(), OpListModels, node.Params{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "gpt://b1gfolder/yandexgpt/latest", res.Items[0].JSON["id"])
	assert.Equal(t, "gpt://b1gfolder/yandexgpt-lite/latest", res.Items[1].JSON["id"])
}

func TestSearch_FilterSubstring(t *testing.T) {
	client := &fakeChat{models: openai.ModelsList{Models: []openai.Model{
		{ID: "gpt://b1gfolder/yandexgpt/latest"},
		{ID: "gpt://b1gfolder/yandexgpt-lite/latest"},
	}}}
	n := New(client, "b1gfolder", nil, nil)

	results, err := n.Search(context.Background(), "models", "LITE", node.Params{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "gpt://b1gfolder/yandexgpt-lite/latest", results[0].Value)
}

func TestComplete_PromptBecomesUserMessage(t *testing.T) {
	client := &fakeChat{completion: completionResponse("hi there")}
	n := New(client, "b1gfolder", nil, nil)

	res, err := n.Execute(context.Background(), OpComplete, node.Params{
		"prompt":       "say hi",
		"systemPrompt": "be brief",
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", res.Items[0].JSON["text"])

	req := client.lastRequest
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
	assert.Equal(t, "say hi", req.Messages[1].Content)
}

func TestComplete_ExplicitMessagesAndModel(t *testing.T) {
	client := &fakeChat{completion: completionResponse("ok")}
	n := New(client, "b1gfolder", nil, nil)

	_, err := n.Execute(context.Background(), OpComplete, node.Params{
		"model": "gpt://b1gfolder/yandexgpt-lite/latest",
		"messages": []any{
			map[string]any{"role": "user", "content": "first"},
			map[string]any{"role": "assistant", "content": "second"},
			map[string]any{"role": "user", "content": "third"},
		},
		"temperature": 0.9,
		"maxTokens":   float64(256),
	})
	require.NoError(t, err)

	req := client.lastRequest
	assert.Equal(t, "gpt://b1gfolder/yandexgpt-lite/latest", req.Model)
	assert.Len(t, req.Messages, 3)
	assert.InDelta(t, 0.9, float64(req.Temperature), 0.001)
	assert.Equal(t, 256, req.MaxTokens)
}

func TestComplete_DefaultModelFromFolder(t *testing.T) {
	client := &fakeChat{completion: completionResponse("ok")}
	n := New(client, "b1gfolder", nil, nil)

	_, err := n.Execute(context.Background(), OpComplete, node.Params{"prompt": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "gpt://b1gfolder/yandexgpt/latest", client.lastRequest.Model)
}

func TestComplete_RequiresPromptOrMessages(t *testing.T) {
	n := New(&fakeChat{}, "b1gfolder", nil, nil)
	_, err := n.Execute(context.Background(), OpComplete, node.Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt")
}

func TestComplete_UsageSurfaced(t *testing.T) {
	client := &fakeChat{completion: completionResponse("ok")}
	n := New(client, "b1gfolder", nil, nil)

	res, err := n.Execute(context.Background(), OpComplete, node.Params{"prompt": "hi"})
	require.NoError(t, err)

	usage, ok := res.Items[0].JSON["usage"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 19, usage["totalTokens"])
}
