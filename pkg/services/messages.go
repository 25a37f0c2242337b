package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/operion-console/pkg/correlation"
	"github.com/dukex/operion-console/pkg/editor"
	"github.com/dukex/operion-console/pkg/eventbus"
	"github.com/dukex/operion-console/pkg/events"
	"github.com/dukex/operion-console/pkg/metrics"
	"github.com/dukex/operion-console/pkg/models"
)

// Messages runs message editing use-cases. Each call opens a fresh editor
// session over the store: load, reconcile, save.
type Messages struct {
	store     editor.Store
	publisher eventbus.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewMessages creates a new message service. publisher may be nil.
func NewMessages(store editor.Store, publisher eventbus.EventPublisher, m *metrics.Metrics, logger *slog.Logger) *Messages {
	return &Messages{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// MessageFormResponse is everything a schema-driven form renderer needs.
type MessageFormResponse struct {
	FormData correlation.MessageForm `json:"form_data"`
	Schema   *models.JSONSchema      `json:"schema"`
	UISchema models.UISchema         `json:"ui_schema"`
}

// ListByKey buckets the group's messages by correlation key.
func (s *Messages) ListByKey(ctx context.Context, groupID string) ([]correlation.MessageBucket, error) {
	session, err := s.open(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return correlation.GroupMessagesByKey(session.Current()), nil
}

// GetForm returns the form for an existing message.
func (s *Messages) GetForm(ctx context.Context, groupID, messageID string) (*MessageFormResponse, error) {
	if strings.TrimSpace(messageID) == "" {
		return nil, ErrMessageIDRequired
	}

	session, err := s.open(ctx, groupID)
	if err != nil {
		return nil, err
	}

	group := session.Current()
	if !group.HasMessage(messageID) {
		return nil, &ServiceError{Op: "get_form", Code: "message_not_found", Message: "message " + messageID + " not found", Err: ErrMessageNotFound}
	}

	return &MessageFormResponse{
		FormData: correlation.ToForm(group, messageID),
		Schema:   correlation.MessageFormSchema(),
		UISchema: correlation.MessageFormUISchema(),
	}, nil
}

// SubmitForm applies form data for messageID and saves the group. The
// message is created when the group does not have it yet. The form's
// messageId and processGroupIdentifier default to the path values and must
// match them when given.
func (s *Messages) SubmitForm(ctx context.Context, groupID, messageID string, form correlation.MessageForm) (*models.ProcessGroup, error) {
	if strings.TrimSpace(messageID) == "" {
		return nil, ErrMessageIDRequired
	}

	if form.MessageID == "" {
		form.MessageID = messageID
	}

	if form.ProcessGroupIdentifier == "" {
		form.ProcessGroupIdentifier = groupID
	}

	if form.MessageID != messageID || form.ProcessGroupIdentifier != groupID {
		return nil, NewValidationError("submit_form", "identifier_mismatch", "form identifiers do not match the path", ErrIdentifierMismatch)
	}

	session, err := s.open(ctx, groupID)
	if err != nil {
		return nil, err
	}

	err = session.ApplyForm(form)
	if err != nil {
		return nil, err
	}

	saved, err := session.Save(ctx)
	if err != nil {
		return nil, err
	}

	propIDs := make([]string, 0, len(form.CorrelationProperties))
	for _, prop := range correlation.PropertiesForMessage(models.Message{ID: messageID}, saved.CorrelationProperties) {
		propIDs = append(propIDs, prop.ID)
	}

	publish(ctx, s.publisher, s.metrics, s.logger, groupID, events.NewMessageCorrelationsSet(groupID, messageID, propIDs))

	return saved, nil
}

// Delete removes a message and its retrieval expressions, then saves.
func (s *Messages) Delete(ctx context.Context, groupID, messageID string) (*models.ProcessGroup, error) {
	session, err := s.open(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !session.Current().HasMessage(messageID) {
		return nil, &ServiceError{Op: "delete_message", Code: "message_not_found", Message: "message " + messageID + " not found", Err: ErrMessageNotFound}
	}

	session.DeleteMessage(messageID)

	saved, err := session.Save(ctx)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.metrics, s.logger, groupID, events.NewMessageDeleted(groupID, messageID))

	return saved, nil
}

func (s *Messages) open(ctx context.Context, groupID string) (*editor.Session, error) {
	session, err := editor.Open(ctx, s.store, groupID, editor.WithLogger(s.logger), editor.WithMetrics(s.metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to open process group %s: %w", groupID, err)
	}

	return session, nil
}
