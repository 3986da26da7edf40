package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmation/yandexcloud-nodes/pkg/node"
)

// fakeQueue serves canned responses and records requests.
type fakeQueue struct {
	receiveOut  *sqs.ReceiveMessageOutput
	receiveErr  error
	lastReceive *sqs.ReceiveMessageInput

	sendOut  *sqs.SendMessageOutput
	lastSend *sqs.SendMessageInput

	deleteCalls  int
	deleteErrs   map[string]error
	lastDeleted  []string
	listQueueOut *sqs.ListQueuesOutput
}

func (f *fakeQueue) ReceiveMessage(_ context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.lastReceive = in
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	if f.receiveOut == nil {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	return f.receiveOut, nil
}

func (f *fakeQueue) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.lastSend = in
	if f.sendOut == nil {
		return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
	}
	return f.sendOut, nil
}

func (f *fakeQueue) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleteCalls++
	handle := aws.ToString(in.ReceiptHandle)
	f.lastDeleted = append(f.lastDeleted, handle)
	if err, ok := f.deleteErrs[handle]; ok {
		return nil, err
	}
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeQueue) ListQueues(_ context.Context, _ *sqs.ListQueuesInput, _ ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error) {
	if f.listQueueOut == nil {
		return &sqs.ListQueuesOutput{}, nil
	}
	return f.listQueueOut, nil
}

func message(id, handle, body string) types.Message {
	return types.Message{
		MessageId:     aws.String(id),
		ReceiptHandle: aws.String(handle),
		Body:          aws.String(body),
	}
}

func TestExecute_UnsupportedOperation(t *testing.T) {
	n := New(&fakeQueue{}, nil)
	_, err := n.Execute(context.Background(), "purge", node.Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"purge"`)
}

func TestReceive_EmptyPollYieldsNoItems(t *testing.T) {
	n := New(&fakeQueue{}, nil)
	res, err := n.Execute(context.Background(), OpReceive, node.Params{
		"queueUrl": "https://message-queue.api.cloud.yandex.net/b1g/q/orders",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestReceive_RequiresQueueURL(t *testing.T) {
	n := New(&fakeQueue{}, nil)
	_, err := n.Execute(context.Background(), OpReceive, node.Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queueUrl")
}

func TestReceive_ClampsPollParameters(t *testing.T) {
	client := &fakeQueue{}
	n := New(client, nil)
	_, err := n.Execute(context.Background(), OpReceive, node.Params{
		"queueUrl":          "https://mq/q",
		"maxMessages":       float64(99),
		"waitSeconds":       float64(120),
		"visibilityTimeout": float64(99999),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(10), client.lastReceive.MaxNumberOfMessages)
	assert.Equal(t, int32(20), client.lastReceive.WaitTimeSeconds)
	assert.Equal(t, int32(43200), client.lastReceive.VisibilityTimeout)
}

func TestReceive_BodyParsedAsJSONWithRawFallback(t *testing.T) {
	client := &fakeQueue{
		receiveOut: &sqs.ReceiveMessageOutput{Messages: []types.Message{
			message("m-1", "rh-1", `{"order":42}`),
			message("m-2", "rh-2", "not json"),
		}},
	}
	n := New(client, nil)

	res, err := n.Execute(context.Background(), OpReceive, node.Params{"queueUrl": "https://mq/q"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)

	body, ok := res.Items[0].JSON["body"].(map[string]any)
	require.True(t, ok, "json body should be decoded")
	assert.Equal(t, float64(42), body["order"])
	assert.Equal(t, "not json", res.Items[1].JSON["body"])
}

func TestReceive_DeleteAfterProcessing(t *testing.T) {
	client := &fakeQueue{
		receiveOut: &sqs.ReceiveMessageOutput{Messages: []types.Message{
			message("m-1", "rh-1", "a"),
			message("m-2", "rh-2", "b"),
		}},
	}
	n := New(client, nil)

	res, err := n.Execute(context.Background(), OpReceive, node.Params{
		"queueUrl":              "https://mq/q",
		"deleteAfterProcessing": true,
	})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, []string{"rh-1", "rh-2"}, client.lastDeleted)
}

func TestReceive_DeleteFailureKeepsMessageAndContinues(t *testing.T) {
	client := &fakeQueue{
		receiveOut: &sqs.ReceiveMessageOutput{Messages: []types.Message{
			message("m-1", "rh-1", "a"),
			message("m-2", "rh-2", "b"),
		}},
		deleteErrs: map[string]error{"rh-1": errors.New("receipt expired")},
	}
	n := New(client, nil)

	res, err := n.Execute(context.Background(), OpReceive, node.Params{
		"queueUrl":              "https://mq/q",
		"deleteAfterProcessing": true,
	})
	require.NoError(t, err, "a best-effort delete failure never escalates")
	require.Len(t, res.Items, 2, "the undeleted message stays in the output")
	assert.Equal(t, 2, client.deleteCalls, "the poll continues past the failure")
	assert.Equal(t, "m-1", res.Items[0].JSON["messageId"])
}

func TestSend_Basic(t *testing.T) {
	client := &fakeQueue{
		sendOut: &sqs.SendMessageOutput{
			MessageId:        aws.String("m-7"),
			MD5OfMessageBody: aws.String("abc123"),
		},
	}
	n := New(client, nil)

	res, err := n.Execute(context.Background(), OpSend, node.Params{
		"queueUrl":    "https://mq/q",
		"messageBody": "hello",
		"itemIndex":   float64(3),
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "m-7", res.Items[0].JSON["messageId"])
	assert.Equal(t, 3, res.Items[0].PairedItem.Item)
	assert.Equal(t, "hello", aws.ToString(client.lastSend.MessageBody))
	assert.Nil(t, client.lastSend.MessageGroupId)
}

func TestSend_RequiresBody(t *testing.T) {
	n := New(&fakeQueue{}, nil)
	_, err := n.Execute(context.Background(), OpSend, node.Params{"queueUrl": "https://mq/q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "messageBody")
}

func TestSend_FifoRequiresGroupID(t *testing.T) {
	n := New(&fakeQueue{}, nil)
	_, err := n.Execute(context.Background(), OpSend, node.Params{
		"queueUrl":    "https://mq/q.fifo",
		"messageBody": "hello",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "messageGroupId")
}

func TestSend_FifoDeduplicationFallsBackToRandomID(t *testing.T) {
	client := &fakeQueue{}
	n := New(client, nil)

	_, err := n.Execute(context.Background(), OpSend, node.Params{
		"queueUrl":       "https://mq/q.fifo",
		"messageBody":    "hello",
		"messageGroupId": "g-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "g-1", aws.ToString(client.lastSend.MessageGroupId))
	assert.NotEmpty(t, aws.ToString(client.lastSend.MessageDeduplicationId))
}

func TestSend_FifoExplicitDeduplicationIDWins(t *testing.T) {
	client := &fakeQueue{}
	n := New(client, nil)

	_, err := n.Execute(context.Background(), OpSend, node.Params{
		"queueUrl":               "https://mq/q.fifo",
		"messageBody":            "hello",
		"messageGroupId":         "g-1",
		"messageDeduplicationId": "d-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "d-1", aws.ToString(client.lastSend.MessageDeduplicationId))
}

func TestDeleteMessage(t *testing.T) {
	client := &fakeQueue{}
	n := New(client, nil)

	res, err := n.Execute(context.Background(), OpDeleteMessage, node.Params{
		"queueUrl":      "https://mq/q",
		"receiptHandle": "rh-9",
	})
	require.NoError(t, err)
	assert.Equal(t, true, res.Items[0].JSON["success"])
	assert.Equal(t, []string{"rh-9"}, client.lastDeleted)
}

func TestSearch_FiltersQueuesByName(t *testing.T) {
	client := &fakeQueue{
		listQueueOut: &sqs.ListQueuesOutput{QueueUrls: []string{
			"https://message-queue.api.cloud.yandex.net/b1g/0001/orders",
			"https://message-queue.api.cloud.yandex.net/b1g/0002/billing-events",
		}},
	}
	n := New(client, nil)

	results, err := n.Search(context.Background(), "queues", "ORD", node.Params{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "orders", results[0].Name)
	assert.Equal(t, "https://message-queue.api.cloud.yandex.net/b1g/0001/orders", results[0].Value)
}
