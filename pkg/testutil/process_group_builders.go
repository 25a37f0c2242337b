// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/dukex/operion-console/pkg/models"
)

// CreateTestProcessGroup builds an order-handling group that can be
// overridden:
//
//   - order-placed carries order_id and customer_id
//   - order-shipped carries order_id
//   - audit carries nothing
//
// Keys byOrder{order_id} and byOrderAndCustomer{customer_id, order_id}.
func CreateTestProcessGroup(overrides ...func(*models.ProcessGroup)) *models.ProcessGroup {
	group := &models.ProcessGroup{
		ID:          "orders",
		DisplayName: "Orders",
		Description: "Order handling",
		Messages: map[string]models.MessageDefinition{
			"order-placed":  {},
			"order-shipped": {},
			"audit":         {},
		},
		CorrelationKeys: []models.CorrelationKey{
			{ID: "byOrder", CorrelationProperties: []string{"order_id"}},
			{ID: "byOrderAndCustomer", CorrelationProperties: []string{"customer_id", "order_id"}},
		},
		CorrelationProperties: []models.CorrelationProperty{
			{ID: "order_id", RetrievalExpressions: []models.RetrievalExpression{
				{MessageRef: "order-placed", Formal: "order.id"},
				{MessageRef: "order-shipped", Formal: "shipment.order_id"},
			}},
			{ID: "customer_id", RetrievalExpressions: []models.RetrievalExpression{
				{MessageRef: "order-placed", Formal: "customer.id"},
			}},
		},
	}

	for _, override := range overrides {
		override(group)
	}

	return group
}

// WithID sets the group identifier.
func WithID(id string) func(*models.ProcessGroup) {
	return func(g *models.ProcessGroup) {
		g.ID = id
	}
}

// WithDisplayName sets the display name.
func WithDisplayName(name string) func(*models.ProcessGroup) {
	return func(g *models.ProcessGroup) {
		g.DisplayName = name
	}
}

// WithMessage adds an empty message definition.
func WithMessage(id string) func(*models.ProcessGroup) {
	return func(g *models.ProcessGroup) {
		if g.Messages == nil {
			g.Messages = make(map[string]models.MessageDefinition)
		}

		g.Messages[id] = models.MessageDefinition{}
	}
}

// WithoutCorrelation strips keys and properties.
func WithoutCorrelation() func(*models.ProcessGroup) {
	return func(g *models.ProcessGroup) {
		g.CorrelationKeys = []models.CorrelationKey{}
		g.CorrelationProperties = []models.CorrelationProperty{}
	}
}
