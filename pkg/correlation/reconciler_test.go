package correlation

import (
	"testing"

	"github.com/dukex/operion-console/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioGroup is a group with message m1 correlated by the "amount"
// property, which is the only member of the "byAmount" key.
func scenarioGroup() *models.ProcessGroup {
	return &models.ProcessGroup{
		ID:          "payments",
		DisplayName: "Payments",
		Messages: map[string]models.MessageDefinition{
			"m1": {},
		},
		CorrelationKeys: []models.CorrelationKey{
			{ID: "byAmount", CorrelationProperties: []string{"amount"}},
		},
		CorrelationProperties: []models.CorrelationProperty{
			{
				ID: "amount",
				RetrievalExpressions: []models.RetrievalExpression{
					{MessageRef: "m1", Formal: "$.amount"},
				},
			},
		},
	}
}

func messageIDs(messages []models.Message) []string {
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}

	return ids
}

func TestPropertiesForMessage(t *testing.T) {
	props := []models.CorrelationProperty{
		{ID: "a", RetrievalExpressions: []models.RetrievalExpression{{MessageRef: "m1", Formal: "x"}, {MessageRef: "m1", Formal: "y"}}},
		{ID: "b", RetrievalExpressions: []models.RetrievalExpression{{MessageRef: "m2", Formal: "x"}}},
		{ID: "c", RetrievalExpressions: []models.RetrievalExpression{}},
		{ID: "d", RetrievalExpressions: []models.RetrievalExpression{{MessageRef: "m2", Formal: "x"}, {MessageRef: "m1", Formal: "z"}}},
	}

	tests := []struct {
		name     string
		message  string
		props    []models.CorrelationProperty
		expected []string
	}{
		{name: "matches once per property", message: "m1", props: props, expected: []string{"a", "d"}},
		{name: "other message", message: "m2", props: props, expected: []string{"b", "d"}},
		{name: "unreferenced message", message: "m3", props: props, expected: []string{}},
		{name: "empty property list", message: "m1", props: nil, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PropertiesForMessage(models.Message{ID: tt.message}, tt.props)
			assert.Equal(t, tt.expected, propertyIDs(result))
		})
	}
}

func TestMessagesForKey_ScenarioA(t *testing.T) {
	group := scenarioGroup()
	key := group.CorrelationKeys[0]

	assert.Equal(t, []string{"m1"}, messageIDs(MessagesForKey(&key, group.MessageList(), group.CorrelationProperties)))
	assert.Empty(t, MessagesForKey(nil, group.MessageList(), group.CorrelationProperties))
}

func TestMessagesForKey_ScenarioB(t *testing.T) {
	group := scenarioGroup()
	group.Messages["m2"] = models.MessageDefinition{}

	assert.Equal(t, []string{"m2"}, messageIDs(MessagesForKey(nil, group.MessageList(), group.CorrelationProperties)))
}

func TestMessagesForKey_ExactSetMembership(t *testing.T) {
	props := []models.CorrelationProperty{
		{ID: "order_id", RetrievalExpressions: []models.RetrievalExpression{
			{MessageRef: "both", Formal: "$.order"},
			{MessageRef: "order-only", Formal: "$.order"},
		}},
		{ID: "customer_id", RetrievalExpressions: []models.RetrievalExpression{
			{MessageRef: "both", Formal: "$.customer"},
		}},
	}
	messages := []models.Message{{ID: "order-only"}, {ID: "both"}, {ID: "none"}}

	tests := []struct {
		name     string
		key      *models.CorrelationKey
		expected []string
	}{
		{
			name:     "key order does not matter",
			key:      &models.CorrelationKey{ID: "k", CorrelationProperties: []string{"order_id", "customer_id"}},
			expected: []string{"both"},
		},
		{
			name:     "subset key does not match superset message",
			key:      &models.CorrelationKey{ID: "k", CorrelationProperties: []string{"order_id"}},
			expected: []string{"order-only"},
		},
		{
			name:     "key with unknown property",
			key:      &models.CorrelationKey{ID: "k", CorrelationProperties: []string{"missing"}},
			expected: []string{},
		},
		{
			name:     "uncorrelated bucket",
			key:      nil,
			expected: []string{"none"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, messageIDs(MessagesForKey(tt.key, messages, props)))
		})
	}
}

func TestMessagesForKey_DoesNotReorderKey(t *testing.T) {
	key := &models.CorrelationKey{ID: "k", CorrelationProperties: []string{"z", "a"}}

	MessagesForKey(key, []models.Message{{ID: "m"}}, nil)

	assert.Equal(t, []string{"z", "a"}, key.CorrelationProperties)
}

func TestMessagesForKey_PreservesInputOrder(t *testing.T) {
	messages := []models.Message{{ID: "c"}, {ID: "a"}, {ID: "b"}}

	assert.Equal(t, []string{"c", "a", "b"}, messageIDs(MessagesForKey(nil, messages, nil)))
}

func TestMessagesForKey_InertDanglingReference(t *testing.T) {
	props := []models.CorrelationProperty{
		{ID: "p", RetrievalExpressions: []models.RetrievalExpression{{MessageRef: "ghost", Formal: "$.x"}}},
	}

	key := &models.CorrelationKey{ID: "k", CorrelationProperties: []string{"p"}}
	assert.Empty(t, MessagesForKey(key, []models.Message{{ID: "real"}}, props))
	assert.Equal(t, []string{"real"}, messageIDs(MessagesForKey(nil, []models.Message{{ID: "real"}}, props)))
}

func TestGroupMessagesByKey(t *testing.T) {
	group := scenarioGroup()
	group.Messages["m2"] = models.MessageDefinition{}
	group.CorrelationKeys = append(group.CorrelationKeys, models.CorrelationKey{ID: "empty", CorrelationProperties: []string{"nothing"}})

	buckets := GroupMessagesByKey(group)
	require.Len(t, buckets, 3)

	assert.Equal(t, "", buckets[0].KeyID)
	assert.Equal(t, []string{"m2"}, messageIDs(buckets[0].Messages))

	assert.Equal(t, "byAmount", buckets[1].KeyID)
	assert.Equal(t, []string{"amount"}, buckets[1].CorrelationProperties)
	assert.Equal(t, []string{"m1"}, messageIDs(buckets[1].Messages))

	assert.Equal(t, "empty", buckets[2].KeyID)
	assert.Empty(t, buckets[2].Messages)
}

func TestDeleteMessage_ScenarioC(t *testing.T) {
	group := scenarioGroup()

	updated := DeleteMessage(models.Message{ID: "m1"}, group)

	assert.NotContains(t, updated.Messages, "m1")
	require.Len(t, updated.CorrelationProperties, 1)
	assert.Equal(t, "amount", updated.CorrelationProperties[0].ID)
	assert.Empty(t, updated.CorrelationProperties[0].RetrievalExpressions)
	assert.NotNil(t, updated.CorrelationProperties[0].RetrievalExpressions)
}

func TestDeleteMessage_DoesNotMutateInput(t *testing.T) {
	group := scenarioGroup()
	before := group.Clone()

	DeleteMessage(models.Message{ID: "m1"}, group)

	assert.Equal(t, before, group)
}

func TestDeleteMessage_Idempotent(t *testing.T) {
	group := scenarioGroup()
	group.Messages["m2"] = models.MessageDefinition{}
	group.CorrelationProperties[0].RetrievalExpressions = append(
		group.CorrelationProperties[0].RetrievalExpressions,
		models.RetrievalExpression{MessageRef: "m2", Formal: "$.total"},
	)

	once := DeleteMessage(models.Message{ID: "m1"}, group)
	twice := DeleteMessage(models.Message{ID: "m1"}, once)

	assert.Equal(t, once, twice)
	assert.Equal(t, []models.RetrievalExpression{{MessageRef: "m2", Formal: "$.total"}}, twice.CorrelationProperties[0].RetrievalExpressions)
}

func TestDeleteMessage_NeverDropsProperties(t *testing.T) {
	group := scenarioGroup()
	group.CorrelationProperties = append(group.CorrelationProperties,
		models.CorrelationProperty{ID: "unused", RetrievalExpressions: []models.RetrievalExpression{}},
	)

	updated := DeleteMessage(models.Message{ID: "m1"}, group)

	assert.Equal(t, []string{"amount", "unused"}, propertyIDs(updated.CorrelationProperties))
}

func TestDeleteMessage_UnreferencedMessage(t *testing.T) {
	group := scenarioGroup()
	group.Messages["lonely"] = models.MessageDefinition{}

	updated := DeleteMessage(models.Message{ID: "lonely"}, group)

	assert.NotContains(t, updated.Messages, "lonely")
	assert.Equal(t, group.CorrelationProperties, updated.CorrelationProperties)
}

func TestUpsertMessageCorrelations_ScenarioD(t *testing.T) {
	group := scenarioGroup()

	updated := UpsertMessageCorrelations("m1", group, []FormCorrelationProperty{})

	assert.Empty(t, updated.CorrelationProperties)
	assert.Len(t, group.CorrelationProperties, 1, "input must not be mutated")
}

func TestUpsertMessageCorrelations_AddsNewProperty(t *testing.T) {
	group := scenarioGroup()

	updated := UpsertMessageCorrelations("m1", group, []FormCorrelationProperty{
		{ID: "amount", RetrievalExpression: "$.amount"},
		{ID: "currency", RetrievalExpression: "$.currency"},
	})

	require.Len(t, updated.CorrelationProperties, 2)
	assert.Equal(t, "currency", updated.CorrelationProperties[1].ID)
	assert.Equal(t,
		[]models.RetrievalExpression{{MessageRef: "m1", Formal: "$.currency"}},
		updated.CorrelationProperties[1].RetrievalExpressions,
	)
	assert.Len(t, updated.CorrelationProperties[0].RetrievalExpressions, 1)
}

func TestUpsertMessageCorrelations_Idempotent(t *testing.T) {
	group := scenarioGroup()
	form := []FormCorrelationProperty{
		{ID: "amount", RetrievalExpression: "$.amount"},
		{ID: "amount", RetrievalExpression: "$.amount"},
	}

	once := UpsertMessageCorrelations("m1", group, form)
	twice := UpsertMessageCorrelations("m1", once, form)

	assert.Equal(t, once, twice)
	assert.Len(t, twice.CorrelationProperties[0].RetrievalExpressions, 1)
}

func TestUpsertMessageCorrelations_ReusesSharedProperty(t *testing.T) {
	group := scenarioGroup()
	group.Messages["m2"] = models.MessageDefinition{}

	updated := UpsertMessageCorrelations("m2", group, []FormCorrelationProperty{
		{ID: "amount", RetrievalExpression: "$.total"},
	})

	require.Len(t, updated.CorrelationProperties, 1)
	assert.Equal(t, []models.RetrievalExpression{
		{MessageRef: "m1", Formal: "$.amount"},
		{MessageRef: "m2", Formal: "$.total"},
	}, updated.CorrelationProperties[0].RetrievalExpressions)
}

func TestUpsertMessageCorrelations_LeavesOtherMessagesProperties(t *testing.T) {
	group := scenarioGroup()
	group.Messages["m2"] = models.MessageDefinition{}
	group.CorrelationProperties = append(group.CorrelationProperties, models.CorrelationProperty{
		ID:                   "customer",
		RetrievalExpressions: []models.RetrievalExpression{{MessageRef: "m2", Formal: "$.customer"}},
	})

	updated := UpsertMessageCorrelations("m1", group, []FormCorrelationProperty{})

	assert.Equal(t, []string{"customer"}, propertyIDs(updated.CorrelationProperties))
}

func TestUpsertMessageCorrelations_RemovesSharedPropertyEntirely(t *testing.T) {
	group := scenarioGroup()
	group.Messages["m2"] = models.MessageDefinition{}
	group.CorrelationProperties[0].RetrievalExpressions = append(
		group.CorrelationProperties[0].RetrievalExpressions,
		models.RetrievalExpression{MessageRef: "m2", Formal: "$.total"},
	)

	updated := UpsertMessageCorrelations("m1", group, nil)

	assert.Empty(t, updated.CorrelationProperties)
}
