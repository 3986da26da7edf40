package postbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/flowmation/yandexcloud-nodes/internal/log"
	"github.com/flowmation/yandexcloud-nodes/pkg/node"
)

// NodeName is the identifier this node registers under.
const NodeName = "postbox"

// Operation names routed by Execute.
const (
	OpSend         = "send"
	OpSendTemplate = "sendTemplate"
)

// Node is the Postbox email adapter.
type Node struct {
	client MailAPI
	logger *slog.Logger
}

// New creates a Postbox node over an injected client.
func New(client MailAPI, logger *slog.Logger) *Node {
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
		{Name: OpSend, Description: "Send an email with explicit subject and body"},
		{Name: OpSendTemplate, Description: "Send an email rendered from inline templates"},
	}
}

// Execute implements node.Node.
func (n *Node) Execute(ctx context.Context, operation string, params node.Params) (*node.Result, error) {
	switch operation {
	case OpSend:
		return n.send(ctx, params)
	case OpSendTemplate:
		return n.sendTemplate(ctx, params)
	default:
		return nil, node.NewUnsupportedOperationError(NodeName, operation)
	}
}

// send delivers an email with an explicit subject and a text and/or
// html body. At least one body form is required.
func (n *Node) send(ctx context.Context, params node.Params) (*node.Result, error) {
	in, err := n.envelope(params)
	if err != nil {
		return nil, err
	}
	subject, err := params.RequireString("subject")
	if err != nil {
		return nil, err
	}

	body := &types.Body{}
	text := params.String("text")
	html := params.String("html")
	if text == "" && html == "" {
		return nil, node.NewMissingParamError("text")
	}
	if text != "" {
		body.Text = &types.Content{Data: aws.String(text)}
	}
	if html != "" {
		body.Html = &types.Content{Data: aws.String(html)}
	}

	in.Content = &types.EmailContent{
		Simple: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body:    body,
		},
	}
	return n.deliver(ctx, OpSend, in, params)
}

// sendTemplate delivers an email rendered from inline subject/html/text
// templates. An omitted text template stays absent rather than becoming
// an empty string, so the service does not render an empty text part.
func (n *Node) sendTemplate(ctx context.Context, params node.Params) (*node.Result, error) {
	in, err := n.envelope(params)
	if err != nil {
		return nil, err
	}
	subject, err := params.RequireString("templateSubject")
	if err != nil {
		return nil, err
	}
	html, err := params.RequireString("templateHtml")
	if err != nil {
		return nil, err
	}

	content := &types.EmailTemplateContent{
		Subject: aws.String(subject),
		Html:    aws.String(html),
	}
	if text := params.String("templateText"); text != "" {
		content.Text = aws.String(text)
	}

	in.Content = &types.EmailContent{
		Template: &types.Template{
			TemplateContent: content,
			TemplateData:    aws.String(templateData(params)),
		},
	}
	return n.deliver(ctx, OpSendTemplate, in, params)
}

// envelope builds the shared from/to/cc/bcc portion of a send request.
func (n *Node) envelope(params node.Params) (*sesv2.SendEmailInput, error) {
	from, err := params.RequireString("fromEmail")
	if err != nil {
		return nil, err
	}
	to := addressList(params, "toAddresses")
	if len(to) == 0 {
		return nil, node.NewMissingParamError("toAddresses")
	}
	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses:  to,
			CcAddresses:  addressList(params, "ccAddresses"),
			BccAddresses: addressList(params, "bccAddresses"),
		},
	}, nil
}

func (n *Node) deliver(ctx context.Context, opName string, in *sesv2.SendEmailInput, params node.Params) (*node.Result, error) {
	out, err := n.client.SendEmail(ctx, in)
	if err != nil {
		return nil, node.NewVendorError(opName, err)
	}
	return node.Single(map[string]any{
		"messageId": aws.ToString(out.MessageId),
	}, params.ItemIndex()), nil
}

// addressList accepts either a JSON list of strings or one
// comma-separated string.
func addressList(params node.Params, name string) []string {
	if v, ok := params[name].([]any); ok {
		out := make([]string, 0, len(v))
		for _, el := range v {
			if s, ok := el.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	raw := params.String(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// templateData renders the substitution data parameter as the JSON
// string the service expects. Objects are marshalled; a string that
// fails to parse as JSON is passed through raw rather than failing the
// send.
func templateData(params node.Params) string {
	v, ok := params["templateData"]
	if !ok || v == nil {
		return "{}"
	}
	switch data := v.(type) {
	case string:
		if data == "" {
			return "{}"
		}
		return data
	default:
		encoded, err := json.Marshal(data)
		if err != nil {
			return "{}"
		}
		return string(encoded)
	}
}
