package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_IntAcceptsJSONNumberShapes(t *testing.T) {
	p := Params{
		"asFloat":  float64(10),
		"asInt":    7,
		"asString": "25",
		"junk":     "not a number",
	}

	assert.Equal(t, 10, p.Int("asFloat", 0))
	assert.Equal(t, 7, p.Int("asInt", 0))
	assert.Equal(t, 25, p.Int("asString", 0))
	assert.Equal(t, 3, p.Int("junk", 3))
	assert.Equal(t, 3, p.Int("absent", 3))
}

func TestParams_RequireString(t *testing.T) {
	p := Params{"queueUrl": "https://message-queue.api.cloud.yandex.net/b1g/queue"}

	v, err := p.RequireString("queueUrl")
	require.NoError(t, err)
	assert.NotEmpty(t, v)

	_, err = p.RequireString("secretId")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"secretId"`)
}

func TestParams_ResolvePrecedence(t *testing.T) {
	p := Params{"folderId": "b1g-from-param"}

	// Explicit parameter wins over the credential default.
	assert.Equal(t, "b1g-from-param", p.Resolve("folderId", "b1g-from-cred"))

	// Credential default is the fallback.
	empty := Params{}
	assert.Equal(t, "b1g-from-cred", empty.Resolve("folderId", "b1g-from-cred"))
	assert.Equal(t, "", empty.Resolve("folderId"))
}

func TestParams_Pagination(t *testing.T) {
	assert := assert.New(t)

	returnAll, limit := Params{"returnAll": true}.Pagination()
	assert.True(returnAll)
	assert.Equal(50, limit)

	returnAll, limit = Params{"limit": float64(5)}.Pagination()
	assert.False(returnAll)
	assert.Equal(5, limit)

	_, limit = Params{"limit": float64(0)}.Pagination()
	assert.Equal(1, limit, "limit is clamped to at least 1")
}

func TestParams_Slice(t *testing.T) {
	p := Params{
		"entries": []any{
			map[string]any{"key": "password", "textValue": "hunter2"},
			map[string]any{"key": "cert", "binaryValue": "aGVsbG8="},
		},
	}

	entries := p.Slice("entries")
	require.Len(t, entries, 2)
	assert.Equal(t, "password", entries[0]["key"])

	assert.Nil(t, p.Slice("absent"))
}
