package services

import (
	"errors"
	"log/slog"
	"slices"
	"testing"

	"github.com/dukex/operion-console/pkg/correlation"
	"github.com/dukex/operion-console/pkg/editor"
	"github.com/dukex/operion-console/pkg/events"
	"github.com/dukex/operion-console/pkg/gateway"
	"github.com/dukex/operion-console/pkg/mocks"
	"github.com/dukex/operion-console/pkg/models"
	"github.com/dukex/operion-console/pkg/persistence/file"
	"github.com/dukex/operion-console/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var _ editor.Store = (*ProcessGroups)(nil)

// newLocalMessages wires Messages over ProcessGroups over file persistence,
// seeded with the test group.
func newLocalMessages(t *testing.T) (*Messages, *ProcessGroups, *mocks.MockEventBus) {
	t.Helper()

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	groups := NewProcessGroups(file.NewPersistence(t.TempDir()), bus, nil, slog.Default())

	_, err := groups.Create(t.Context(), testutil.CreateTestProcessGroup())
	require.NoError(t, err)

	return NewMessages(groups, bus, nil, slog.Default()), groups, bus
}

func TestMessages_ListByKey(t *testing.T) {
	service, _, _ := newLocalMessages(t)

	buckets, err := service.ListByKey(t.Context(), "orders")
	require.NoError(t, err)
	require.Len(t, buckets, 3)

	assert.Equal(t, "", buckets[0].KeyID)
	assert.Equal(t, []models.Message{{ID: "audit"}}, buckets[0].Messages)
	assert.Equal(t, "byOrder", buckets[1].KeyID)
	assert.Equal(t, []models.Message{{ID: "order-shipped"}}, buckets[1].Messages)
	assert.Equal(t, "byOrderAndCustomer", buckets[2].KeyID)
	assert.Equal(t, []models.Message{{ID: "order-placed"}}, buckets[2].Messages)
}

func TestMessages_GetForm(t *testing.T) {
	service, _, _ := newLocalMessages(t)

	resp, err := service.GetForm(t.Context(), "orders", "order-placed")
	require.NoError(t, err)

	assert.Equal(t, "orders", resp.FormData.ProcessGroupIdentifier)
	assert.Equal(t, []correlation.FormCorrelationProperty{
		{ID: "order_id", RetrievalExpression: "order.id"},
		{ID: "customer_id", RetrievalExpression: "customer.id"},
	}, resp.FormData.CorrelationProperties)
	assert.NotNil(t, resp.Schema)
	assert.NotNil(t, resp.UISchema)

	_, err = service.GetForm(t.Context(), "orders", "nope")
	assert.ErrorIs(t, err, ErrMessageNotFound)

	_, err = service.GetForm(t.Context(), "missing", "order-placed")
	assert.True(t, IsNotFoundError(err))
}

func TestMessages_SubmitForm(t *testing.T) {
	service, groups, bus := newLocalMessages(t)

	saved, err := service.SubmitForm(t.Context(), "orders", "order-shipped", correlation.MessageForm{
		CorrelationProperties: []correlation.FormCorrelationProperty{
			{ID: "order_id", RetrievalExpression: "shipment.order_id"},
			{ID: "customer_id", RetrievalExpression: "shipment.customer"},
		},
	})
	require.NoError(t, err)

	stored, err := groups.Get(t.Context(), "orders")
	require.NoError(t, err)
	assert.Equal(t, saved.CorrelationProperties, stored.CorrelationProperties)

	key := stored.CorrelationKeys[1]
	assert.Equal(t,
		[]models.Message{{ID: "order-placed"}, {ID: "order-shipped"}},
		correlation.MessagesForKey(&key, stored.MessageList(), stored.CorrelationProperties),
	)

	bus.AssertCalled(t, "Publish", mock.Anything, "orders", mock.MatchedBy(func(e *events.MessageCorrelationsSet) bool {
		return e.MessageID == "order-shipped" && slices.Equal([]string{"order_id", "customer_id"}, e.CorrelationProperties)
	}))
	bus.AssertCalled(t, "Publish", mock.Anything, "orders", mock.AnythingOfType("*events.ProcessGroupUpdated"))
}

func TestMessages_SubmitForm_NewMessage(t *testing.T) {
	service, groups, _ := newLocalMessages(t)

	_, err := service.SubmitForm(t.Context(), "orders", "order-cancelled", correlation.MessageForm{
		CorrelationProperties: []correlation.FormCorrelationProperty{{ID: "order_id", RetrievalExpression: "cancel.id"}},
	})
	require.NoError(t, err)

	stored, err := groups.Get(t.Context(), "orders")
	require.NoError(t, err)
	assert.True(t, stored.HasMessage("order-cancelled"))
}

func TestMessages_SubmitForm_Rejected(t *testing.T) {
	tests := []struct {
		name      string
		messageID string
		form      correlation.MessageForm
		want      error
	}{
		{"message id mismatch", "order-placed", correlation.MessageForm{MessageID: "other"}, ErrIdentifierMismatch},
		{"group mismatch", "order-placed", correlation.MessageForm{ProcessGroupIdentifier: "billing"}, ErrIdentifierMismatch},
		{"blank path message", " ", correlation.MessageForm{}, ErrMessageIDRequired},
		{
			"row without expression",
			"order-placed",
			correlation.MessageForm{CorrelationProperties: []correlation.FormCorrelationProperty{{ID: "order_id"}}},
			correlation.ErrInvalidForm,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, groups, _ := newLocalMessages(t)
			before, err := groups.Get(t.Context(), "orders")
			require.NoError(t, err)

			_, err = service.SubmitForm(t.Context(), "orders", tt.messageID, tt.form)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidationError(err))

			after, err := groups.Get(t.Context(), "orders")
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestMessages_Delete(t *testing.T) {
	service, groups, bus := newLocalMessages(t)

	saved, err := service.Delete(t.Context(), "orders", "order-placed")
	require.NoError(t, err)
	assert.False(t, saved.HasMessage("order-placed"))

	stored, err := groups.Get(t.Context(), "orders")
	require.NoError(t, err)
	assert.False(t, stored.HasMessage("order-placed"))
	assert.Len(t, stored.CorrelationProperties, 2)

	bus.AssertCalled(t, "Publish", mock.Anything, "orders", mock.MatchedBy(func(e *events.MessageDeleted) bool {
		return e.MessageID == "order-placed"
	}))

	_, err = service.Delete(t.Context(), "orders", "order-placed")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestMessages_SaveFailureFromGateway(t *testing.T) {
	store := &mocks.MockStore{}
	store.On("Get", mock.Anything, "orders").Return(testutil.CreateTestProcessGroup(), nil)
	store.On("Put", mock.Anything, "orders", mock.Anything).Return(nil, &gateway.Error{StatusCode: 409, Type: "conflict"})

	bus := &mocks.MockEventBus{}
	service := NewMessages(store, bus, nil, slog.Default())

	_, err := service.Delete(t.Context(), "orders", "audit")
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestMessages_StoreUnavailable(t *testing.T) {
	store := &mocks.MockStore{}
	store.On("Get", mock.Anything, "orders").Return(nil, errors.New("dial tcp: refused"))

	_, err := NewMessages(store, nil, nil, slog.Default()).ListByKey(t.Context(), "orders")
	require.Error(t, err)
	assert.False(t, IsNotFoundError(err))
}
