// Package file provides file-based persistence for process groups.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/dukex/operion-console/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root             string
	processGroupRepo *ProcessGroupRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:             cleanRoot,
		processGroupRepo: NewProcessGroupRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// ProcessGroupRepository returns the process-group repository for file persistence.
func (fp *Persistence) ProcessGroupRepository() persistence.ProcessGroupRepository {
	return fp.processGroupRepo
}
