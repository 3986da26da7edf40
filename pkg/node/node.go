// Package node provides the abstractions shared by every Yandex Cloud
// integration node: the Node interface the host invokes, the item output
// shape, bounded pagination, per-item batch execution, and the classified
// error type.
//
// This package is designed to be embeddable: a host constructs a Registry,
// registers the nodes it wants available, and calls Execute per workflow
// step. Nodes hold no state across invocations; each Execute builds its
// request from the supplied parameters and the client injected at
// construction time.
package node

import (
	"context"
)

// Node is a single integration adapter. Each node maps a small set of
// user-chosen parameters to one vendor SDK call and normalizes the
// response into items.
type Node interface {
	// Name returns the node identifier (e.g., "lockbox", "messagequeue").
	Name() string

	// Operations returns the operations this node supports, with metadata
	// for host-side listing.
	Operations() []OperationInfo

	// Execute runs a named operation with the given parameters.
	Execute(ctx context.Context, operation string, params Params) (*Result, error)
}

// Searcher is implemented by nodes that back a resource locator: given a
// filter string they list remote entities for interactive selection.
type Searcher interface {
	// Search lists remote entities matching the filter. Kind selects which
	// entity collection to search when a node exposes more than one
	// (e.g., "secrets" vs "versions").
	Search(ctx context.Context, kind, filter string, params Params) ([]SearchResult, error)
}

// OperationInfo provides metadata about a node operation.
type OperationInfo struct {
	// Name is the operation identifier (e.g., "receive", "createSecret")
	Name string

	// Description is a human-readable description
	Description string

	// Paginated marks operations that honor returnAll/limit parameters
	Paginated bool

	// Destructive marks operations that delete or destroy remote state
	Destructive bool
}

// SearchResult is one name/value pair returned by a resource locator.
type SearchResult struct {
	// Name is the human-readable label shown for selection
	Name string `json:"name"`

	// Value is the opaque identifier passed back as a parameter
	Value string `json:"value"`
}

// Item is one normalized output record. Listing operations emit items
// without pairing; per-item operations carry the input index that
// produced them so downstream steps can align batches.
type Item struct {
	// JSON is the normalized record
	JSON map[string]any `json:"json"`

	// PairedItem correlates this record with its source input row.
	// Nil for records not scoped to an input item (e.g., listings).
	PairedItem *Pairing `json:"pairedItem,omitempty"`
}

// Pairing identifies the input row an output item was produced from.
type Pairing struct {
	Item int `json:"item"`
}

// NewItem returns an unpaired item for the given record.
func NewItem(record map[string]any) Item {
	return Item{JSON: record}
}

// NewPairedItem returns an item tagged with the input index that produced it.
func NewPairedItem(record map[string]any, index int) Item {
	return Item{JSON: record, PairedItem: &Pairing{Item: index}}
}

// Result is the output of a node operation: an ordered list of items.
type Result struct {
	Items []Item
}

// Single wraps one record into a single-item result paired with index.
func Single(record map[string]any, index int) *Result {
	return &Result{Items: []Item{NewPairedItem(record, index)}}
}

// Listing wraps a slice of records into an unpaired result, preserving order.
func Listing(records []map[string]any) *Result {
	items := make([]Item, 0, len(records))
	for _, r := range records {
		items = append(items, NewItem(r))
	}
	return &Result{Items: items}
}
