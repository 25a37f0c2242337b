package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dukex/operion-console/pkg/models"
	"github.com/dukex/operion-console/pkg/persistence"
)

const processGroupsDir = "process-groups"

// ProcessGroupRepository keeps one JSON file per process group. Nested
// identifiers are flattened into the file name with ":" in place of "/".
type ProcessGroupRepository struct {
	root string
}

// NewProcessGroupRepository creates a new process-group repository.
func NewProcessGroupRepository(root string) *ProcessGroupRepository {
	return &ProcessGroupRepository{root: root}
}

func (r *ProcessGroupRepository) dir() string {
	return filepath.Join(r.root, processGroupsDir)
}

func (r *ProcessGroupRepository) filePath(id string) (string, error) {
	if !models.ValidIdentifier(id) {
		return "", persistence.NewProcessGroupError("path", id, persistence.ErrInvalidProcessGroupID)
	}

	return filepath.Join(r.dir(), strings.ReplaceAll(id, "/", ":")+".json"), nil
}

// List returns paginated process groups, filtered and sorted in memory.
func (r *ProcessGroupRepository) List(ctx context.Context, opts persistence.ListProcessGroupsOptions) (*persistence.ProcessGroupListResult, error) {
	if err := persistence.NormalizeListOptions(&opts); err != nil {
		return nil, err
	}

	jsonFiles, err := fs.Glob(os.DirFS(r.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list process group files: %w", err)
	}

	groups := make([]*models.ProcessGroup, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := strings.ReplaceAll(strings.TrimSuffix(file, ".json"), ":", "/")

		group, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load process group %s: %w", id, err)
		}

		if group != nil {
			groups = append(groups, group)
		}
	}

	return persistence.ApplyListOptions(groups, opts), nil
}

// GetByID retrieves a process group by its ID from the file system.
func (r *ProcessGroupRepository) GetByID(_ context.Context, id string) (*models.ProcessGroup, error) {
	filePath, err := r.filePath(id)
	if err != nil {
		return nil, err
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch process group %s: %w", id, err)
	}

	var group models.ProcessGroup

	err = json.Unmarshal(body, &group)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal process group %s: %w", id, err)
	}

	return &group, nil
}

// Save writes the whole process group, replacing any previous file.
func (r *ProcessGroupRepository) Save(_ context.Context, group *models.ProcessGroup) error {
	filePath, err := r.filePath(group.ID)
	if err != nil {
		return err
	}

	err = os.MkdirAll(r.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create process groups directory: %w", err)
	}

	now := time.Now().UTC()
	group.UpdatedAt = &now

	data, err := json.MarshalIndent(group, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal process group %s: %w", group.ID, err)
	}

	return os.WriteFile(filePath, data, 0600)
}

// Delete removes a process group by its ID.
func (r *ProcessGroupRepository) Delete(_ context.Context, id string) error {
	filePath, err := r.filePath(id)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete process group %s: %w", id, err)
	}

	return nil
}
