package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/operion-console/pkg/eventbus"
	"github.com/dukex/operion-console/pkg/events"
	"github.com/dukex/operion-console/pkg/metrics"
	"github.com/dukex/operion-console/pkg/models"
	"github.com/dukex/operion-console/pkg/persistence"
)

// ProcessGroups serves process groups from local persistence. It satisfies
// editor.Store, so message editing can run against it directly.
type ProcessGroups struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewProcessGroups creates a new process group service. publisher may be nil.
func NewProcessGroups(p persistence.Persistence, publisher eventbus.EventPublisher, m *metrics.Metrics, logger *slog.Logger) *ProcessGroups {
	return &ProcessGroups{
		persistence: p,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *ProcessGroups) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListProcessGroupsRequest contains options for listing process groups.
type ListProcessGroupsRequest struct {
	Limit        int
	Offset       int
	ParentID     string
	TopLevelOnly bool
	SortBy       string
	SortOrder    string
}

// ListProcessGroupsResponse contains the result of listing process groups.
type ListProcessGroupsResponse struct {
	ProcessGroups []*models.ProcessGroup `json:"process_groups"`
	TotalCount    int64                  `json:"total_count"`
	HasNextPage   bool                   `json:"has_next_page"`
}

func (s *ProcessGroups) List(ctx context.Context, req ListProcessGroupsRequest) (*ListProcessGroupsResponse, error) {
	result, err := s.persistence.ProcessGroupRepository().List(ctx, persistence.ListProcessGroupsOptions{
		Limit:        req.Limit,
		Offset:       req.Offset,
		ParentID:     strings.Trim(req.ParentID, "/"),
		TopLevelOnly: req.TopLevelOnly,
		SortBy:       req.SortBy,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		if persistence.IsInvalidSortField(err) {
			return nil, ErrInvalidSortField
		}

		if persistence.IsInvalidSortOrder(err) {
			return nil, ErrInvalidSortOrder
		}

		return nil, fmt.Errorf("failed to list process groups: %w", err)
	}

	return &ListProcessGroupsResponse{
		ProcessGroups: result.ProcessGroups,
		TotalCount:    result.TotalCount,
		HasNextPage:   result.HasNextPage,
	}, nil
}

// Get returns the group or ErrProcessGroupNotFound.
func (s *ProcessGroups) Get(ctx context.Context, id string) (*models.ProcessGroup, error) {
	group, err := s.persistence.ProcessGroupRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get process group: %w", err)
	}

	if group == nil {
		return nil, persistence.NewProcessGroupError("get", id, ErrProcessGroupNotFound)
	}

	return group, nil
}

// Create stores a new group after checking its identifier and display name.
func (s *ProcessGroups) Create(ctx context.Context, group *models.ProcessGroup) (*models.ProcessGroup, error) {
	if group == nil {
		return nil, ErrProcessGroupNil
	}

	err := PrepareProcessGroup("create", group)
	if err != nil {
		return nil, err
	}

	existing, err := s.persistence.ProcessGroupRepository().GetByID(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check process group: %w", err)
	}

	if existing != nil {
		return nil, &ServiceError{Op: "create", Code: "conflict", Message: "process group " + group.ID + " already exists", Err: ErrProcessGroupExists}
	}

	normalizeCollections(group)

	err = s.persistence.ProcessGroupRepository().Save(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to create process group: %w", err)
	}

	s.publish(ctx, group.ID, events.NewProcessGroupCreated(group.ID, group.DisplayName))

	return group, nil
}

// Put replaces an existing group wholesale. Last writer wins.
func (s *ProcessGroups) Put(ctx context.Context, id string, group *models.ProcessGroup) (*models.ProcessGroup, error) {
	if group == nil {
		return nil, ErrProcessGroupNil
	}

	if group.ID == "" {
		group.ID = id
	}

	if group.ID != id {
		return nil, NewValidationError("put", "identifier_mismatch", fmt.Sprintf("body id %q does not match %q", group.ID, id), ErrIdentifierMismatch)
	}

	err := validateProcessGroup("put", group)
	if err != nil {
		return nil, err
	}

	existing, err := s.persistence.ProcessGroupRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check process group: %w", err)
	}

	if existing == nil {
		return nil, persistence.NewProcessGroupError("put", id, ErrProcessGroupNotFound)
	}

	normalizeCollections(group)

	err = s.persistence.ProcessGroupRepository().Save(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to save process group: %w", err)
	}

	s.publish(ctx, id, events.NewProcessGroupUpdated(id, len(group.Messages), len(group.CorrelationKeys), len(group.CorrelationProperties)))

	return group, nil
}

func (s *ProcessGroups) publish(ctx context.Context, key string, event eventbus.Event) {
	publish(ctx, s.publisher, s.metrics, s.logger, key, event)
}

// PrepareProcessGroup derives a missing identifier from the display name and
// checks both. It runs before a group reaches any store, remote or local.
func PrepareProcessGroup(op string, group *models.ProcessGroup) error {
	if group == nil {
		return ErrProcessGroupNil
	}

	if group.ID == "" {
		group.ID = models.Slugify(group.DisplayName)
	}

	return validateProcessGroup(op, group)
}

func validateProcessGroup(op string, group *models.ProcessGroup) error {
	if !models.ValidIdentifier(group.ID) {
		return NewValidationError(op, "invalid_identifier", fmt.Sprintf("invalid identifier %q", group.ID), ErrInvalidIdentifier)
	}

	if strings.TrimSpace(group.DisplayName) == "" {
		return NewValidationError(op, "display_name_required", "", ErrDisplayNameRequired)
	}

	return nil
}

func normalizeCollections(group *models.ProcessGroup) {
	if group.Messages == nil {
		group.Messages = map[string]models.MessageDefinition{}
	}

	if group.CorrelationKeys == nil {
		group.CorrelationKeys = []models.CorrelationKey{}
	}

	if group.CorrelationProperties == nil {
		group.CorrelationProperties = []models.CorrelationProperty{}
	}
}

// publish reports failures in the log only; a saved document stays saved.
func publish(ctx context.Context, publisher eventbus.EventPublisher, m *metrics.Metrics, logger *slog.Logger, key string, event eventbus.Event) {
	if publisher == nil {
		return
	}

	err := publisher.Publish(ctx, key, event)
	m.ObservePublish(string(event.GetType()), err)

	if err != nil {
		logger.WarnContext(ctx, "failed to publish event", "event_type", event.GetType(), "process_group_id", key, "error", err)
	}
}
