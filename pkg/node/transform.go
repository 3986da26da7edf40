package node

import (
	"context"
	"time"

	"github.com/itchyny/gojq"
)

// transformTimeout bounds jq evaluation so a pathological expression
// cannot stall an invocation.
const transformTimeout = 1 * time.Second

// ApplyTransform evaluates an optional jq expression against an item's
// normalized record. An empty expression returns the record unchanged.
// Expressions producing multiple outputs return them as an array under
// the original record's place.
func ApplyTransform(ctx context.Context, expression string, record any) (any, error) {
	if expression == "" {
		return record, nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, NewTransformError(expression, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, NewTransformError(expression, err)
	}

	execCtx, cancel := context.WithTimeout(ctx, transformTimeout)
	defer cancel()

	var results []any
	iter := code.RunWithContext(execCtx, record)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, NewTransformError(expression, err)
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// TransformResult applies the expression to every item's record,
// preserving item order and pairing. Outputs that are not objects are
// wrapped under a "value" key so the item shape stays uniform. An empty
// expression returns the result untouched.
func TransformResult(ctx context.Context, expression string, res *Result) (*Result, error) {
	if expression == "" || res == nil {
		return res, nil
	}
	items := make([]Item, 0, len(res.Items))
	for _, it := range res.Items {
		out, err := ApplyTransform(ctx, expression, it.JSON)
		if err != nil {
			return nil, err
		}
		record, ok := out.(map[string]any)
		if !ok {
			record = map[string]any{"value": out}
		}
		items = append(items, Item{JSON: record, PairedItem: it.PairedItem})
	}
	return &Result{Items: items}, nil
}
