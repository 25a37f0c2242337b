package persistence

import (
	"sort"
	"time"

	"github.com/dukex/operion-console/pkg/models"
)

// ApplyListOptions filters, sorts and paginates an in-memory set of groups.
// Stores without query support (file, redis) load everything and call this.
func ApplyListOptions(groups []*models.ProcessGroup, opts ListProcessGroupsOptions) *ProcessGroupListResult {
	filtered := make([]*models.ProcessGroup, 0, len(groups))

	for _, group := range groups {
		if opts.MatchesParent(group.ID) {
			filtered = append(filtered, group)
		}
	}

	sortProcessGroups(filtered, opts.SortBy, opts.SortOrder)

	totalCount := int64(len(filtered))
	startIdx := opts.Offset
	endIdx := opts.Offset + opts.Limit

	if startIdx >= len(filtered) {
		return &ProcessGroupListResult{
			ProcessGroups: make([]*models.ProcessGroup, 0),
			TotalCount:    totalCount,
			HasNextPage:   false,
		}
	}

	if endIdx > len(filtered) {
		endIdx = len(filtered)
	}

	return &ProcessGroupListResult{
		ProcessGroups: filtered[startIdx:endIdx],
		TotalCount:    totalCount,
		HasNextPage:   endIdx < len(filtered),
	}
}

// sortProcessGroups sorts groups in-place based on the specified field and order.
func sortProcessGroups(groups []*models.ProcessGroup, sortBy, sortOrder string) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if sortOrder == "desc" {
			a, b = b, a
		}

		switch sortBy {
		case "display_name":
			if a.DisplayName != b.DisplayName {
				return a.DisplayName < b.DisplayName
			}
		case "updated_at":
			at, bt := updatedAt(a), updatedAt(b)
			if !at.Equal(bt) {
				return at.Before(bt)
			}
		}

		return a.ID < b.ID
	})
}

func updatedAt(group *models.ProcessGroup) time.Time {
	if group.UpdatedAt != nil {
		return *group.UpdatedAt
	}

	return time.Time{}
}
