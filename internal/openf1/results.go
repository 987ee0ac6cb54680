package openf1

import (
	"context"
	"sort"
)

// missingPosition orders rows without a position after every ranked row.
const missingPosition = 9999

// ResultsFor returns the results of a session ordered by finishing position.
func (c *Client) ResultsFor(ctx context.Context, key Key) ([]ResultRow, error) {
	rows, err := c.SessionResults(ctx, key)
	if err != nil {
		return nil, err
	}
	SortResults(rows)
	return rows, nil
}

// SortResults sorts rows in place by position, stable. A missing (or zero)
// position sorts as 9999; the row itself is not modified.
func SortResults(rows []ResultRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return sortPosition(rows[i]) < sortPosition(rows[j])
	})
}

func sortPosition(r ResultRow) int {
	if r.Position == nil || *r.Position == 0 {
		return missingPosition
	}
	return *r.Position
}
