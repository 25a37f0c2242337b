// Package persistence provides the storage abstraction for process groups.
package persistence

import (
	"context"

	"github.com/dukex/operion-console/pkg/models"
)

// Persistence is a process-group store.
type Persistence interface {
	ProcessGroupRepository() ProcessGroupRepository
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// ProcessGroupRepository stores whole process-group documents. Saves replace
// the stored document; there is no partial update.
type ProcessGroupRepository interface {
	// List returns a page of process groups.
	List(ctx context.Context, opts ListProcessGroupsOptions) (*ProcessGroupListResult, error)

	// GetByID returns nil, nil when the group does not exist.
	GetByID(ctx context.Context, id string) (*models.ProcessGroup, error)

	Save(ctx context.Context, group *models.ProcessGroup) error
	Delete(ctx context.Context, id string) error
}

// ListProcessGroupsOptions controls filtering, sorting and pagination.
type ListProcessGroupsOptions struct {
	Limit  int
	Offset int

	// ParentID restricts results to direct children of the given group.
	// Empty selects top-level groups only when TopLevelOnly is set.
	ParentID     string
	TopLevelOnly bool

	SortBy    string
	SortOrder string
}

// ProcessGroupListResult is one page of process groups.
type ProcessGroupListResult struct {
	ProcessGroups []*models.ProcessGroup `json:"process_groups"`
	TotalCount    int64                  `json:"total_count"`
	HasNextPage   bool                   `json:"has_next_page"`
}

// AllowedSortFields lists the fields List can sort by.
var AllowedSortFields = map[string]bool{
	"id":           true,
	"display_name": true,
	"updated_at":   true,
}

// NormalizeListOptions fills defaults and rejects unknown sort fields.
func NormalizeListOptions(opts *ListProcessGroupsOptions) error {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.Offset < 0 {
		opts.Offset = 0
	}

	if opts.SortBy == "" {
		opts.SortBy = "id"
	}

	if opts.SortOrder == "" {
		opts.SortOrder = "asc"
	}

	if !AllowedSortFields[opts.SortBy] {
		return NewInvalidSortFieldError(opts.SortBy)
	}

	if opts.SortOrder != "asc" && opts.SortOrder != "desc" {
		return NewInvalidSortOrderError(opts.SortOrder)
	}

	return nil
}

// ParentOf returns the parent identifier of a nested group id, or "" for a
// top-level group.
func ParentOf(id string) string {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '/' {
			return id[:i]
		}
	}

	return ""
}

// MatchesParent applies the ParentID and TopLevelOnly filters to id.
func (opts ListProcessGroupsOptions) MatchesParent(id string) bool {
	if opts.ParentID != "" {
		return ParentOf(id) == opts.ParentID
	}

	if opts.TopLevelOnly {
		return ParentOf(id) == ""
	}

	return true
}
