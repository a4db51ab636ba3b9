package service

import (
	"context"
)

const maxPopularPages = 5

// fetchPages collects pages 1..maxPages, stopping early at an empty page.
// onProgress is called after each page with the running total.
func fetchPages[T any](
	ctx context.Context,
	fetch func(ctx context.Context, page int) ([]T, error),
	maxPages int,
	onProgress func(page, loaded int),
) ([]T, error) {
	if maxPages <= 0 || maxPages > maxPopularPages {
		maxPages = maxPopularPages
	}

	var all []T
	for page := 1; page <= maxPages; page++ {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		items, err := fetch(ctx, page)
		if err != nil {
			return all, err
		}
		all = append(all, items...)

		if onProgress != nil {
			onProgress(page, len(all))
		}
		if len(items) == 0 {
			break
		}
	}

	return all, nil
}
