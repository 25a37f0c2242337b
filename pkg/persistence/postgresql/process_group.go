package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/operion-console/pkg/models"
	"github.com/dukex/operion-console/pkg/persistence"
)

// ProcessGroupRepository stores each process group as one JSONB document.
// id, parent_id and display_name are duplicated into columns for listing.
type ProcessGroupRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewProcessGroupRepository creates a new process-group repository.
func NewProcessGroupRepository(db *sql.DB, logger *slog.Logger) *ProcessGroupRepository {
	return &ProcessGroupRepository{db: db, logger: logger}
}

var sortColumns = map[string]string{
	"id":           "id",
	"display_name": "display_name",
	"updated_at":   "updated_at",
}

// List returns a page of process groups ordered by an allow-listed column.
func (r *ProcessGroupRepository) List(ctx context.Context, opts persistence.ListProcessGroupsOptions) (*persistence.ProcessGroupListResult, error) {
	if err := persistence.NormalizeListOptions(&opts); err != nil {
		return nil, err
	}

	where := "TRUE"
	args := []any{}

	switch {
	case opts.ParentID != "":
		where = "parent_id = $1"
		args = append(args, opts.ParentID)
	case opts.TopLevelOnly:
		where = "parent_id = ''"
	}

	var totalCount int64

	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM process_groups WHERE "+where, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count process groups: %w", err)
	}

	direction := "ASC"
	if opts.SortOrder == "desc" {
		direction = "DESC"
	}

	query := fmt.Sprintf(
		"SELECT document, updated_at FROM process_groups WHERE %s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d",
		where, sortColumns[opts.SortBy], direction, direction, len(args)+1, len(args)+2,
	)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query process groups: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	groups := make([]*models.ProcessGroup, 0)

	for rows.Next() {
		group, err := scanProcessGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan process group: %w", err)
		}

		groups = append(groups, group)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating process groups: %w", err)
	}

	return &persistence.ProcessGroupListResult{
		ProcessGroups: groups,
		TotalCount:    totalCount,
		HasNextPage:   int64(opts.Offset+len(groups)) < totalCount,
	}, nil
}

// GetByID returns nil, nil when no row matches.
func (r *ProcessGroupRepository) GetByID(ctx context.Context, id string) (*models.ProcessGroup, error) {
	row := r.db.QueryRowContext(ctx, "SELECT document, updated_at FROM process_groups WHERE id = $1", id)

	group, err := scanProcessGroup(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan process group: %w", err)
	}

	return group, nil
}

// Save upserts the whole document.
func (r *ProcessGroupRepository) Save(ctx context.Context, group *models.ProcessGroup) error {
	now := time.Now().UTC()
	group.UpdatedAt = &now

	document, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("failed to marshal process group %s: %w", group.ID, err)
	}

	query := `
		INSERT INTO process_groups (id, parent_id, display_name, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		group.ID,
		persistence.ParentOf(group.ID),
		group.DisplayName,
		document,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save process group %s: %w", group.ID, err)
	}

	return nil
}

// Delete removes the row; deleting a missing group is not an error.
func (r *ProcessGroupRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM process_groups WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete process group %s: %w", id, err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProcessGroup(row scanner) (*models.ProcessGroup, error) {
	var (
		document  []byte
		updatedAt time.Time
	)

	err := row.Scan(&document, &updatedAt)
	if err != nil {
		return nil, err
	}

	var group models.ProcessGroup

	err = json.Unmarshal(document, &group)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal process group document: %w", err)
	}

	updatedAt = updatedAt.UTC()
	group.UpdatedAt = &updatedAt

	return &group, nil
}
