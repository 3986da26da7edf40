package node

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTransform_EmptyExpressionIsIdentity(t *testing.T) {
	record := map[string]any{"id": "e6q"}

	got, err := ApplyTransform(context.Background(), "", record)
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestApplyTransform_ExtractsField(t *testing.T) {
	record := map[string]any{"secret": map[string]any{"id": "e6q", "status": "ACTIVE"}}

	got, err := ApplyTransform(context.Background(), ".secret.id", record)
	require.NoError(t, err)
	assert.Equal(t, "e6q", got)
}

func TestApplyTransform_ParseErrorIsClassified(t *testing.T) {
	_, err := ApplyTransform(context.Background(), ".[broken", map[string]any{})
	require.Error(t, err)

	nerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeTransform, nerr.Type)
}

func TestTransformResult_PreservesPairing(t *testing.T) {
	res := &Result{Items: []Item{
		NewPairedItem(map[string]any{"secret": map[string]any{"id": "a"}}, 2),
		NewItem(map[string]any{"secret": map[string]any{"id": "b"}}),
	}}

	got, err := TransformResult(context.Background(), "{id: .secret.id}", res)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "a", got.Items[0].JSON["id"])
	require.NotNil(t, got.Items[0].PairedItem)
	assert.Equal(t, 2, got.Items[0].PairedItem.Item)
	assert.Nil(t, got.Items[1].PairedItem)
}

func TestTransformResult_NonObjectWrappedUnderValue(t *testing.T) {
	res := &Result{Items: []Item{NewItem(map[string]any{"count": float64(3)})}}

	got, err := TransformResult(context.Background(), ".count", res)
	require.NoError(t, err)
	assert.Equal(t, float64(3), got.Items[0].JSON["value"])
}
