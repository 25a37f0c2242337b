package correlation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/operion-console/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidForm is returned when submitted form data does not conform to the
// message form schema.
var ErrInvalidForm = errors.New("invalid message form")

// MessageForm is the form data exchanged with the schema-driven editor for a
// single message.
type MessageForm struct {
	ProcessGroupIdentifier string                    `json:"processGroupIdentifier"`
	MessageID              string                    `json:"messageId"`
	CorrelationProperties  []FormCorrelationProperty `json:"correlation_properties"`
}

// FormValidationError lists every schema violation of a submitted form.
type FormValidationError struct {
	Violations []string
}

func (e *FormValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidForm, strings.Join(e.Violations, "; "))
}

func (e *FormValidationError) Is(target error) bool {
	return target == ErrInvalidForm
}

// ToForm flattens the correlation state of one message into form rows, one
// per retrieval expression referencing the message.
func ToForm(group *models.ProcessGroup, messageID string) MessageForm {
	rows := make([]FormCorrelationProperty, 0)

	for _, prop := range group.CorrelationProperties {
		for _, expr := range prop.RetrievalExpressions {
			if expr.MessageRef == messageID {
				rows = append(rows, FormCorrelationProperty{
					ID:                  prop.ID,
					RetrievalExpression: expr.Formal,
				})
			}
		}
	}

	return MessageForm{
		ProcessGroupIdentifier: group.ID,
		MessageID:              messageID,
		CorrelationProperties:  rows,
	}
}

// FromForm applies a submitted form to the group. A message id unknown to
// the group is added with an empty definition.
func FromForm(form MessageForm, group *models.ProcessGroup) *models.ProcessGroup {
	updated := UpsertMessageCorrelations(form.MessageID, group, form.CorrelationProperties)

	if !updated.HasMessage(form.MessageID) {
		if updated.Messages == nil {
			updated.Messages = make(map[string]models.MessageDefinition)
		}

		updated.Messages[form.MessageID] = models.MessageDefinition{}
	}

	return updated
}

// ValidateForm checks the form data against MessageFormSchema.
func ValidateForm(form MessageForm) error {
	if form.CorrelationProperties == nil {
		form.CorrelationProperties = []FormCorrelationProperty{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(MessageFormSchema()),
		gojsonschema.NewGoLoader(form),
	)
	if err != nil {
		return fmt.Errorf("failed to validate message form: %w", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}

	return &FormValidationError{Violations: violations}
}

// MessageFormSchema is the JSON Schema of MessageForm as rendered by the
// console's form editor.
func MessageFormSchema() *models.JSONSchema {
	minLength := 1

	return &models.JSONSchema{
		Type:     "object",
		Required: []string{"processGroupIdentifier", "messageId"},
		Properties: map[string]*models.Property{
			"processGroupIdentifier": {
				Type:        "string",
				Title:       "Location",
				Default:     "/",
				Description: "Only process models within this path will have access to this message.",
			},
			"messageId": {
				Type:        "string",
				Title:       "Message Name",
				Description: "The message name should contain no spaces or special characters",
				MinLength:   &minLength,
				Pattern:     `^[^\s]+$`,
			},
			"correlation_properties": {
				Type:  "array",
				Title: "Correlation Properties",
				Items: &models.Property{
					Type:     "object",
					Required: []string{"id", "retrievalExpression"},
					Properties: map[string]*models.Property{
						"id": {
							Type:      "string",
							Title:     "Property Name",
							MinLength: &minLength,
						},
						"retrievalExpression": {
							Type:        "string",
							Title:       "Retrieval Expression",
							Description: "This is how to extract the property from the body of the message",
							MinLength:   &minLength,
						},
					},
				},
			},
			"schema": {
				Type:        "string",
				Title:       "Json Schema",
				Default:     "{}",
				Description: "The payload must conform to this schema if defined.",
			},
		},
	}
}

// MessageFormUISchema is the layout hint passed to the form renderer.
func MessageFormUISchema() models.UISchema {
	return models.UISchema{
		"schema": map[string]any{
			"ui:widget": "textarea",
			"ui:rows":   5,
		},
		"ui:layout": []any{
			map[string]any{
				"processGroupIdentifier": map[string]any{"sm": 2, "md": 4, "lg": 8},
				"messageId":              map[string]any{"sm": 2, "md": 4, "lg": 8},
				"schema":                 map[string]any{"sm": 4, "md": 4, "lg": 8},
				"correlation_properties": map[string]any{
					"sm":                  4,
					"md":                  4,
					"lg":                  8,
					"id":                  map[string]any{"sm": 2, "md": 4, "lg": 8},
					"retrievalExpression": map[string]any{"sm": 2, "md": 4, "lg": 8},
				},
			},
		},
	}
}
