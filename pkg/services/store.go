package services

import (
	"context"

	"github.com/dukex/operion-console/pkg/editor"
	"github.com/dukex/operion-console/pkg/gateway"
	"github.com/dukex/operion-console/pkg/models"
)

// Store is where whole process-group documents live: local persistence
// through ProcessGroups, or a remote backend through gateway.Client.
type Store interface {
	editor.Store
	Create(ctx context.Context, group *models.ProcessGroup) (*models.ProcessGroup, error)
}

var (
	_ Store = (*ProcessGroups)(nil)
	_ Store = (*gateway.Client)(nil)
)
