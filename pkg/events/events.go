// Package events defines the process-group lifecycle events published by the
// console after successful saves.
package events

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every console event.
const Topic = "operion.console.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ProcessGroupCreatedEvent    EventType = "process_group.created"
	ProcessGroupUpdatedEvent    EventType = "process_group.updated"
	MessageDeletedEvent         EventType = "process_group.message_deleted"
	MessageCorrelationsSetEvent EventType = "process_group.message_correlations_set"
)

var (
	ErrProcessGroupIDRequired = errors.New("process_group_id is required")
	ErrMessageIDRequired      = errors.New("message_id is required")
)

type BaseEvent struct {
	ID             string         `json:"id"`
	Type           EventType      `json:"type"`
	Timestamp      time.Time      `json:"timestamp"`
	ProcessGroupID string         `json:"process_group_id"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

func newBaseEvent(eventType EventType, processGroupID string) BaseEvent {
	return BaseEvent{
		ID:             uuid.New().String(),
		Type:           eventType,
		Timestamp:      time.Now().UTC(),
		ProcessGroupID: processGroupID,
	}
}

func (b BaseEvent) validate() error {
	if b.ProcessGroupID == "" {
		return ErrProcessGroupIDRequired
	}

	return nil
}

// ProcessGroupCreated is published once a new group has been stored.
type ProcessGroupCreated struct {
	BaseEvent

	DisplayName string `json:"display_name"`
}

func NewProcessGroupCreated(processGroupID, displayName string) *ProcessGroupCreated {
	return &ProcessGroupCreated{
		BaseEvent:   newBaseEvent(ProcessGroupCreatedEvent, processGroupID),
		DisplayName: displayName,
	}
}

func (e ProcessGroupCreated) GetType() EventType {
	return ProcessGroupCreatedEvent
}

func (e ProcessGroupCreated) Validate() error {
	return e.validate()
}

// ProcessGroupUpdated is published after any successful full-document save.
type ProcessGroupUpdated struct {
	BaseEvent

	MessageCount         int `json:"message_count"`
	CorrelationKeyCount  int `json:"correlation_key_count"`
	CorrelationPropCount int `json:"correlation_property_count"`
}

func NewProcessGroupUpdated(processGroupID string, messages, keys, props int) *ProcessGroupUpdated {
	return &ProcessGroupUpdated{
		BaseEvent:            newBaseEvent(ProcessGroupUpdatedEvent, processGroupID),
		MessageCount:         messages,
		CorrelationKeyCount:  keys,
		CorrelationPropCount: props,
	}
}

func (e ProcessGroupUpdated) GetType() EventType {
	return ProcessGroupUpdatedEvent
}

func (e ProcessGroupUpdated) Validate() error {
	return e.validate()
}

// MessageDeleted is published after a message and its retrieval expressions
// were removed and saved.
type MessageDeleted struct {
	BaseEvent

	MessageID string `json:"message_id"`
}

func NewMessageDeleted(processGroupID, messageID string) *MessageDeleted {
	return &MessageDeleted{
		BaseEvent: newBaseEvent(MessageDeletedEvent, processGroupID),
		MessageID: messageID,
	}
}

func (e MessageDeleted) GetType() EventType {
	return MessageDeletedEvent
}

func (e MessageDeleted) Validate() error {
	if err := e.validate(); err != nil {
		return err
	}

	if e.MessageID == "" {
		return ErrMessageIDRequired
	}

	return nil
}

// MessageCorrelationsSet is published after a message form was saved.
type MessageCorrelationsSet struct {
	BaseEvent

	MessageID             string   `json:"message_id"`
	CorrelationProperties []string `json:"correlation_properties"`
}

func NewMessageCorrelationsSet(processGroupID, messageID string, propertyIDs []string) *MessageCorrelationsSet {
	if propertyIDs == nil {
		propertyIDs = []string{}
	}

	return &MessageCorrelationsSet{
		BaseEvent:             newBaseEvent(MessageCorrelationsSetEvent, processGroupID),
		MessageID:             messageID,
		CorrelationProperties: propertyIDs,
	}
}

func (e MessageCorrelationsSet) GetType() EventType {
	return MessageCorrelationsSetEvent
}

func (e MessageCorrelationsSet) Validate() error {
	if err := e.validate(); err != nil {
		return err
	}

	if e.MessageID == "" {
		return ErrMessageIDRequired
	}

	return nil
}

// New returns an empty event value for eventType, ready to be unmarshalled
// into. It returns nil for unknown types.
func New(eventType EventType) any {
	switch eventType {
	case ProcessGroupCreatedEvent:
		return &ProcessGroupCreated{}
	case ProcessGroupUpdatedEvent:
		return &ProcessGroupUpdated{}
	case MessageDeletedEvent:
		return &MessageDeleted{}
	case MessageCorrelationsSetEvent:
		return &MessageCorrelationsSet{}
	default:
		return nil
	}
}

// Types lists every console event type.
func Types() []EventType {
	return []EventType{
		ProcessGroupCreatedEvent,
		ProcessGroupUpdatedEvent,
		MessageDeletedEvent,
		MessageCorrelationsSetEvent,
	}
}
