// Package correlation keeps a process group's messages and correlation
// properties consistent while messages are added, edited and deleted.
//
// Every function here is a pure transformation: inputs are never mutated and
// updated groups are returned as new values.
package correlation

import (
	"slices"

	"github.com/dukex/operion-console/pkg/models"
)

// FormCorrelationProperty is one row of the message form: a property id and
// the expression extracting it from the edited message.
type FormCorrelationProperty struct {
	ID                  string `json:"id"                  validate:"required"`
	RetrievalExpression string `json:"retrievalExpression" validate:"required"`
}

// MessageBucket is the list of messages shown under one correlation key.
// KeyID is empty for the uncorrelated bucket.
type MessageBucket struct {
	KeyID                 string           `json:"key_id"`
	CorrelationProperties []string         `json:"correlation_properties"`
	Messages              []models.Message `json:"messages"`
}

// UncorrelatedBucketName is how the bucket without a key is labelled.
const UncorrelatedBucketName = "uncorrelated"

// PropertiesForMessage returns, in list order, the properties having at least
// one retrieval expression for message.
func PropertiesForMessage(message models.Message, props []models.CorrelationProperty) []models.CorrelationProperty {
	properties := make([]models.CorrelationProperty, 0)

	for _, prop := range props {
		if references(prop, message.ID) {
			properties = append(properties, prop)
		}
	}

	return properties
}

// MessagesForKey returns the messages whose sorted property-id list equals the
// key's sorted property-id list. A nil key selects the messages no property
// references. Input order is preserved.
func MessagesForKey(key *models.CorrelationKey, messages []models.Message, props []models.CorrelationProperty) []models.Message {
	var keyPropIDs []string
	if key != nil {
		keyPropIDs = slices.Sorted(slices.Values(key.CorrelationProperties))
	}

	result := make([]models.Message, 0)

	for _, msg := range messages {
		propIDs := propertyIDs(PropertiesForMessage(msg, props))
		slices.Sort(propIDs)

		if key == nil {
			if len(propIDs) == 0 {
				result = append(result, msg)
			}

			continue
		}

		if slices.Equal(propIDs, keyPropIDs) {
			result = append(result, msg)
		}
	}

	return result
}

// GroupMessagesByKey buckets the group's messages by correlation key. The
// uncorrelated bucket comes first, then one bucket per key in group order.
func GroupMessagesByKey(group *models.ProcessGroup) []MessageBucket {
	messages := group.MessageList()

	buckets := make([]MessageBucket, 0, len(group.CorrelationKeys)+1)
	buckets = append(buckets, MessageBucket{
		CorrelationProperties: []string{},
		Messages:              MessagesForKey(nil, messages, group.CorrelationProperties),
	})

	for i := range group.CorrelationKeys {
		key := group.CorrelationKeys[i]
		buckets = append(buckets, MessageBucket{
			KeyID:                 key.ID,
			CorrelationProperties: slices.Clone(key.CorrelationProperties),
			Messages:              MessagesForKey(&key, messages, group.CorrelationProperties),
		})
	}

	return buckets
}

// DeleteMessage removes message from the group along with every retrieval
// expression referencing it. Properties left without expressions stay.
func DeleteMessage(message models.Message, group *models.ProcessGroup) *models.ProcessGroup {
	updated := group.Clone()

	delete(updated.Messages, message.ID)

	for i := range updated.CorrelationProperties {
		prop := &updated.CorrelationProperties[i]
		prop.RetrievalExpressions = slices.DeleteFunc(prop.RetrievalExpressions, func(expr models.RetrievalExpression) bool {
			return expr.MessageRef == message.ID
		})

		if prop.RetrievalExpressions == nil {
			prop.RetrievalExpressions = []models.RetrievalExpression{}
		}
	}

	return updated
}

// UpsertMessageCorrelations reconciles the group's properties against the
// desired correlation state of one message.
//
// Each form row adds {messageID, expression} to the property with that id,
// creating the property when the group has none, and skipping expressions
// already present. Afterwards every property that referenced the message
// before the edit but is missing from the form is removed from the group.
func UpsertMessageCorrelations(messageID string, group *models.ProcessGroup, formProps []FormCorrelationProperty) *models.ProcessGroup {
	updated := group.Clone()

	previous := propertyIDs(PropertiesForMessage(models.Message{ID: messageID}, group.CorrelationProperties))

	for _, formProp := range formProps {
		idx := slices.IndexFunc(updated.CorrelationProperties, func(prop models.CorrelationProperty) bool {
			return prop.ID == formProp.ID
		})
		if idx < 0 {
			updated.CorrelationProperties = append(updated.CorrelationProperties, models.CorrelationProperty{
				ID:                   formProp.ID,
				RetrievalExpressions: []models.RetrievalExpression{},
			})
			idx = len(updated.CorrelationProperties) - 1
		}

		expr := models.RetrievalExpression{MessageRef: messageID, Formal: formProp.RetrievalExpression}

		prop := &updated.CorrelationProperties[idx]
		if !slices.Contains(prop.RetrievalExpressions, expr) {
			prop.RetrievalExpressions = append(prop.RetrievalExpressions, expr)
		}
	}

	kept := make(map[string]struct{}, len(formProps))
	for _, formProp := range formProps {
		kept[formProp.ID] = struct{}{}
	}

	removed := make(map[string]struct{})

	for _, id := range previous {
		if _, ok := kept[id]; !ok {
			removed[id] = struct{}{}
		}
	}

	if len(removed) > 0 {
		updated.CorrelationProperties = slices.DeleteFunc(updated.CorrelationProperties, func(prop models.CorrelationProperty) bool {
			_, ok := removed[prop.ID]

			return ok
		})
	}

	return updated
}

func references(prop models.CorrelationProperty, messageID string) bool {
	return slices.ContainsFunc(prop.RetrievalExpressions, func(expr models.RetrievalExpression) bool {
		return expr.MessageRef == messageID
	})
}

func propertyIDs(props []models.CorrelationProperty) []string {
	ids := make([]string, 0, len(props))
	for _, prop := range props {
		ids = append(ids, prop.ID)
	}

	return ids
}
