package node

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/flowmation/yandexcloud-nodes/pkg/node"

// ItemFunc performs the mapped operation for one input item and returns
// the records it produced. Index is the input row position, used for
// pairing and error scoping.
type ItemFunc func(ctx context.Context, index int) ([]Item, error)

// BatchOptions controls per-item batch execution.
type BatchOptions struct {
	// ContinueOnFail converts a per-item error into an output record
	// carrying the error message and success:false, instead of aborting
	// the batch.
	ContinueOnFail bool
}

// RunBatch performs the mapped operation once per input item, strictly in
// order, one call in flight at a time. Output record order matches input
// order. Without ContinueOnFail the first per-item error aborts the whole
// batch and propagates, scoped to the item that triggered it.
func RunBatch(ctx context.Context, itemCount int, opts BatchOptions, run ItemFunc) ([]Item, error) {
	var out []Item
	for i := 0; i < itemCount; i++ {
		items, err := run(ctx, i)
		if err != nil {
			if opts.ContinueOnFail {
				out = append(out, NewPairedItem(map[string]any{
					"error":   err.Error(),
					"success": false,
				}, i))
				continue
			}
			if nerr, ok := err.(*Error); ok && nerr.ItemIndex < 0 {
				return nil, nerr.WithItem(i)
			}
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

// Execute runs one node operation with tracing and metrics around it.
// This is the entry point hosts should prefer over calling the node
// directly.
func Execute(ctx context.Context, n Node, operation string, params Params) (*Result, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, n.Name()+"."+operation)
	span.SetAttributes(
		attribute.String("node.name", n.Name()),
		attribute.String("node.operation", operation),
	)
	defer span.End()

	start := time.Now()
	result, err := n.Execute(ctx, operation, params)
	if err == nil {
		result, err = TransformResult(ctx, params.String("transform"), result)
	}
	duration := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	observeExecution(n.Name(), operation, outcome, duration)

	return result, err
}
