// Package web provides HTTP request and response types for the console API.
package web

import (
	"github.com/dukex/operion-console/pkg/models"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreateProcessGroupRequest represents the request body for creating a process group.
// When ID is empty it is derived from DisplayName. ParentID nests the group.
type CreateProcessGroupRequest struct {
	ID                    string                              `json:"id"                     validate:"omitempty,process_group_id"`
	ParentID              string                              `json:"parent_id"              validate:"omitempty,process_group_id"`
	DisplayName           string                              `json:"display_name"           validate:"required"`
	Description           string                              `json:"description"`
	Messages              map[string]models.MessageDefinition `json:"messages"`
	CorrelationKeys       []models.CorrelationKey             `json:"correlation_keys"`
	CorrelationProperties []models.CorrelationProperty        `json:"correlation_properties"`
}

// ReplaceProcessGroupRequest is the full document sent on PUT. The id comes
// from the path.
type ReplaceProcessGroupRequest struct {
	DisplayName           string                              `json:"display_name"           validate:"required"`
	Description           string                              `json:"description"`
	Messages              map[string]models.MessageDefinition `json:"messages"`
	CorrelationKeys       []models.CorrelationKey             `json:"correlation_keys"       validate:"dive"`
	CorrelationProperties []models.CorrelationProperty        `json:"correlation_properties" validate:"dive"`
}

// MessageBucketsResponse lists a group's messages under each correlation key.
type MessageBucketsResponse struct {
	ProcessGroupID string           `json:"process_group_id"`
	Buckets        []BucketResponse `json:"buckets"`
}

type BucketResponse struct {
	Name                  string           `json:"name"`
	KeyID                 string           `json:"key_id,omitempty"`
	CorrelationProperties []string         `json:"correlation_properties"`
	Messages              []models.Message `json:"messages"`
}

// ToProcessGroup builds the group to create, joining parent and id.
func (r CreateProcessGroupRequest) ToProcessGroup() *models.ProcessGroup {
	id := r.ID
	if id == "" {
		id = models.Slugify(r.DisplayName)
	}

	if r.ParentID != "" && id != "" {
		id = r.ParentID + "/" + id
	}

	return &models.ProcessGroup{
		ID:                    id,
		DisplayName:           r.DisplayName,
		Description:           r.Description,
		Messages:              r.Messages,
		CorrelationKeys:       r.CorrelationKeys,
		CorrelationProperties: r.CorrelationProperties,
	}
}

func (r ReplaceProcessGroupRequest) ToProcessGroup(id string) *models.ProcessGroup {
	return &models.ProcessGroup{
		ID:                    id,
		DisplayName:           r.DisplayName,
		Description:           r.Description,
		Messages:              r.Messages,
		CorrelationKeys:       r.CorrelationKeys,
		CorrelationProperties: r.CorrelationProperties,
	}
}

// NewValidator returns a validator knowing the process_group_id tag.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	_ = validate.RegisterValidation("process_group_id", func(fl validator.FieldLevel) bool {
		return models.ValidIdentifier(fl.Field().String())
	})

	return validate
}
