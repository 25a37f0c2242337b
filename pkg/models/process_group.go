// Package models defines the process-group aggregate edited by the console.
package models

import (
	"encoding/json"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"
)

var identifierSegment = regexp.MustCompile(`^[a-z0-9][0-9a-z-]*[a-z0-9]$`)

// ProcessGroup is the aggregate root persisted by the workflow backend. It is
// loaded as one document, edited in memory and saved wholesale.
type ProcessGroup struct {
	ID                    string                       `json:"id"                               validate:"required"`
	DisplayName           string                       `json:"display_name"                     validate:"required"`
	Description           string                       `json:"description,omitempty"`
	Messages              map[string]MessageDefinition `json:"messages,omitempty"`
	CorrelationKeys       []CorrelationKey             `json:"correlation_keys,omitempty"`
	CorrelationProperties []CorrelationProperty        `json:"correlation_properties,omitempty"`
	UpdatedAt             *time.Time                   `json:"updated_at,omitempty"`
}

// MessageDefinition is the backend's per-message configuration. The console
// never interprets it beyond carrying it through edits.
type MessageDefinition struct {
	Location string          `json:"location,omitempty"`
	Schema   json.RawMessage `json:"schema,omitempty"`
}

// Message is the editor-facing handle for an entry of ProcessGroup.Messages.
type Message struct {
	ID string `json:"id"`
}

// CorrelationKey names a set of correlation properties. A message belongs to
// the key when the properties referencing it are exactly this set.
type CorrelationKey struct {
	ID                    string   `json:"id"                     validate:"required"`
	CorrelationProperties []string `json:"correlation_properties"`
}

// CorrelationProperty extracts one value from the messages it has a
// retrieval expression for.
type CorrelationProperty struct {
	ID                   string                `json:"id"                    validate:"required"`
	RetrievalExpressions []RetrievalExpression `json:"retrieval_expressions"`
}

// RetrievalExpression ties a correlation property to a message.
type RetrievalExpression struct {
	MessageRef string `json:"message_ref"`
	Formal     string `json:"formal"`
}

// MessageList returns the group's messages ordered by id.
func (pg *ProcessGroup) MessageList() []Message {
	ids := slices.Sorted(maps.Keys(pg.Messages))

	messages := make([]Message, 0, len(ids))
	for _, id := range ids {
		messages = append(messages, Message{ID: id})
	}

	return messages
}

// HasMessage reports whether id is a key of Messages.
func (pg *ProcessGroup) HasMessage(id string) bool {
	_, ok := pg.Messages[id]

	return ok
}

// Clone returns a deep copy of the group. Edits on the copy never reach the
// original.
func (pg *ProcessGroup) Clone() *ProcessGroup {
	if pg == nil {
		return nil
	}

	clone := *pg

	if pg.Messages != nil {
		clone.Messages = make(map[string]MessageDefinition, len(pg.Messages))
		for id, def := range pg.Messages {
			def.Schema = slices.Clone(def.Schema)
			clone.Messages[id] = def
		}
	}

	if pg.CorrelationKeys != nil {
		clone.CorrelationKeys = make([]CorrelationKey, len(pg.CorrelationKeys))
		for i, key := range pg.CorrelationKeys {
			key.CorrelationProperties = slices.Clone(key.CorrelationProperties)
			clone.CorrelationKeys[i] = key
		}
	}

	clone.CorrelationProperties = CloneCorrelationProperties(pg.CorrelationProperties)

	if pg.UpdatedAt != nil {
		updatedAt := *pg.UpdatedAt
		clone.UpdatedAt = &updatedAt
	}

	return &clone
}

// CloneCorrelationProperties deep copies a property list.
func CloneCorrelationProperties(props []CorrelationProperty) []CorrelationProperty {
	if props == nil {
		return nil
	}

	clone := make([]CorrelationProperty, len(props))
	for i, prop := range props {
		prop.RetrievalExpressions = slices.Clone(prop.RetrievalExpressions)
		clone[i] = prop
	}

	return clone
}

// ValidIdentifier reports whether id is a valid process-group identifier.
// Nested groups use "/" between segments and every segment is checked.
func ValidIdentifier(id string) bool {
	if id == "" {
		return false
	}

	for _, segment := range strings.Split(id, "/") {
		if !identifierSegment.MatchString(segment) {
			return false
		}
	}

	return true
}

// Slugify derives an identifier from a display name: lowercase, runs of
// anything outside [a-z0-9] collapsed to a single hyphen, trimmed.
func Slugify(displayName string) string {
	var b strings.Builder

	pendingHyphen := false

	for _, r := range strings.ToLower(displayName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}

			pendingHyphen = false

			b.WriteRune(r)

			continue
		}

		pendingHyphen = true
	}

	return b.String()
}
