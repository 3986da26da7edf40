package queue

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"github.com/flowmation/yandexcloud-nodes/pkg/node"
)

// receive long-polls the queue for up to maxMessages messages. When
// deleteAfterProcessing is set, each message is deleted after it has
// been placed in the output; a delete failure is logged and ignored, the
// message stays in the output and the poll continues.
func (n *Node) receive(ctx context.Context, params node.Params) (*node.Result, error) {
	queueURL, err := params.RequireString("queueUrl")
	if err != nil {
		return nil, err
	}

	in := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: clamp32(params.Int("maxMessages", 1), 1, maxBatchSize),
		WaitTimeSeconds:     clamp32(params.Int("waitSeconds", 0), 0, maxWaitSeconds),
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameAll,
		},
		MessageAttributeNames: []string{"All"},
	}
	if _, ok := params["visibilityTimeout"]; ok {
		in.VisibilityTimeout = clamp32(params.Int("visibilityTimeout", 0), 0, maxVisibilityTimeout)
	}

	out, err := n.client.ReceiveMessage(ctx, in)
	if err != nil {
		return nil, node.NewVendorError(OpReceive, err)
	}

	// An empty poll is a normal outcome, not an error.
	if len(out.Messages) == 0 {
		return &node.Result{}, nil
	}

	deleteAfter := params.Bool("deleteAfterProcessing", false)
	records := make([]map[string]any, 0, len(out.Messages))
	for _, msg := range out.Messages {
		records = append(records, messageRecord(msg))
		if !deleteAfter {
			continue
		}
		_, delErr := n.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(queueURL),
			ReceiptHandle: msg.ReceiptHandle,
		})
		if delErr != nil {
			n.logger.Warn("failed to delete received message, leaving it in flight",
				"messageId", aws.ToString(msg.MessageId),
				"error", delErr)
		}
	}
	return node.Listing(records), nil
}

// send publishes one message. FIFO queues require a group id; a missing
// deduplication id falls back to a random one.
func (n *Node) send(ctx context.Context, params node.Params) (*node.Result, error) {
	queueURL, err := params.RequireString("queueUrl")
	if err != nil {
		return nil, err
	}
	body, err := params.RequireString("messageBody")
	if err != nil {
		return nil, err
	}

	in := &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(body),
	}
	if delay := params.Int("delaySeconds", 0); delay > 0 {
		in.DelaySeconds = clamp32(delay, 0, 900)
	}
	if strings.HasSuffix(queueURL, ".fifo") {
		groupID, err := params.RequireString("messageGroupId")
		if err != nil {
			return nil, err
		}
		in.MessageGroupId = aws.String(groupID)
		dedupID := params.String("messageDeduplicationId")
		if dedupID == "" {
			dedupID = uuid.NewString()
		}
		in.MessageDeduplicationId = aws.String(dedupID)
	}

	out, err := n.client.SendMessage(ctx, in)
	if err != nil {
		return nil, node.NewVendorError(OpSend, err)
	}

	record := map[string]any{
		"messageId":        aws.ToString(out.MessageId),
		"md5OfMessageBody": aws.ToString(out.MD5OfMessageBody),
	}
	if out.SequenceNumber != nil {
		record["sequenceNumber"] = aws.ToString(out.SequenceNumber)
	}
	return node.Single(record, params.ItemIndex()), nil
}

// deleteMessage removes a message by receipt handle.
func (n *Node) deleteMessage(ctx context.Context, params node.Params) (*node.Result, error) {
	queueURL, err := params.RequireString("queueUrl")
	if err != nil {
		return nil, err
	}
	handle, err := params.RequireString("receiptHandle")
	if err != nil {
		return nil, err
	}

	_, err = n.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(handle),
	})
	if err != nil {
		return nil, node.NewVendorError(OpDeleteMessage, err)
	}
	return node.Single(map[string]any{"success": true}, params.ItemIndex()), nil
}

// messageRecord flattens one received message. The body is surfaced as
// parsed JSON when it parses, the raw string otherwise.
func messageRecord(msg types.Message) map[string]any {
	record := map[string]any{
		"messageId":     aws.ToString(msg.MessageId),
		"receiptHandle": aws.ToString(msg.ReceiptHandle),
		"body":          parseBody(aws.ToString(msg.Body)),
	}
	if len(msg.Attributes) > 0 {
		attrs := make(map[string]any, len(msg.Attributes))
		for k, v := range msg.Attributes {
			attrs[k] = v
		}
		record["attributes"] = attrs
	}
	if len(msg.MessageAttributes) > 0 {
		attrs := make(map[string]any, len(msg.MessageAttributes))
		for k, v := range msg.MessageAttributes {
			attrs[k] = aws.ToString(v.StringValue)
		}
		record["messageAttributes"] = attrs
	}
	return record
}

// parseBody attempts a JSON decode; failures keep the raw string.
func parseBody(body string) any {
	var parsed any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return body
	}
	return parsed
}

func clamp32(v, lo, hi int) int32 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return int32(v)
}
