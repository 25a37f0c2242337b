// Package web provides the console's HTTP handlers for process groups and
// message correlation editing.
package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/operion-console/pkg/correlation"
	"github.com/dukex/operion-console/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// HealthChecker reports the health of whatever stores process groups.
type HealthChecker func(ctx context.Context) (string, bool)

type APIHandlers struct {
	store     services.Store
	catalog   *services.ProcessGroups
	messages  *services.Messages
	validator *validator.Validate
	health    HealthChecker
}

// NewAPIHandlers wires the handlers. catalog is nil when process groups
// live on a remote backend, which disables listing.
func NewAPIHandlers(
	store services.Store,
	catalog *services.ProcessGroups,
	messages *services.Messages,
	validator *validator.Validate,
	health HealthChecker,
) *APIHandlers {
	return &APIHandlers{
		store:     store,
		catalog:   catalog,
		messages:  messages,
		validator: validator,
		health:    health,
	}
}

// Register mounts every console route on router.
func (h *APIHandlers) Register(router fiber.Router) {
	pg := router.Group("/process-groups")
	pg.Get("/", h.ListProcessGroups)
	pg.Post("/", h.CreateProcessGroup)
	pg.Get("/:id", h.GetProcessGroup)
	pg.Put("/:id", h.ReplaceProcessGroup)
	pg.Get("/:id/messages", h.ListMessages)
	pg.Get("/:id/messages/:messageId/form", h.GetMessageForm)
	pg.Put("/:id/messages/:messageId/form", h.SubmitMessageForm)
	pg.Delete("/:id/messages/:messageId", h.DeleteMessage)
}

// processGroupID decodes the path form of a nested identifier.
func processGroupID(c fiber.Ctx) string {
	raw := c.Params("id")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}

	return strings.ReplaceAll(raw, ":", "/")
}

func messageID(c fiber.Ctx) string {
	raw := c.Params("messageId")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		return unescaped
	}

	return raw
}

func (h *APIHandlers) ListProcessGroups(c fiber.Ctx) error {
	if h.catalog == nil {
		return notImplemented(c, "listing is only available with local persistence")
	}

	req, err := parseListProcessGroupsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.catalog.List(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"process_groups": result.ProcessGroups,
		"total_count":    result.TotalCount,
		"has_next_page":  result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
		"sorting": fiber.Map{
			"sort_by":    req.SortBy,
			"sort_order": req.SortOrder,
		},
	})
}

func parseListProcessGroupsRequest(c fiber.Ctx) (*services.ListProcessGroupsRequest, error) {
	req := &services.ListProcessGroupsRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	if topStr := c.Query("top_level_only"); topStr != "" {
		top, err := strconv.ParseBool(topStr)
		if err != nil {
			return nil, err
		}

		req.TopLevelOnly = top
	}

	req.ParentID = strings.ReplaceAll(c.Query("parent_id"), ":", "/")
	req.SortBy = c.Query("sort_by")
	req.SortOrder = c.Query("sort_order")

	return req, nil
}

func (h *APIHandlers) CreateProcessGroup(c fiber.Ctx) error {
	var req CreateProcessGroupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	group := req.ToProcessGroup()
	if err := services.PrepareProcessGroup("create", group); err != nil {
		return handleServiceError(c, err)
	}

	created, err := h.store.Create(c.Context(), group)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetProcessGroup(c fiber.Ctx) error {
	group, err := h.store.Get(c.Context(), processGroupID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(group)
}

// ReplaceProcessGroup saves the whole document. Last writer wins.
func (h *APIHandlers) ReplaceProcessGroup(c fiber.Ctx) error {
	id := processGroupID(c)

	var req ReplaceProcessGroupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	group := req.ToProcessGroup(id)
	if err := services.PrepareProcessGroup("put", group); err != nil {
		return handleServiceError(c, err)
	}

	saved, err := h.store.Put(c.Context(), id, group)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(saved)
}

func (h *APIHandlers) ListMessages(c fiber.Ctx) error {
	id := processGroupID(c)

	buckets, err := h.messages.ListByKey(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	resp := MessageBucketsResponse{ProcessGroupID: id, Buckets: make([]BucketResponse, 0, len(buckets))}

	for _, b := range buckets {
		name := b.KeyID
		if name == "" {
			name = correlation.UncorrelatedBucketName
		}

		resp.Buckets = append(resp.Buckets, BucketResponse{
			Name:                  name,
			KeyID:                 b.KeyID,
			CorrelationProperties: b.CorrelationProperties,
			Messages:              b.Messages,
		})
	}

	return c.JSON(resp)
}

func (h *APIHandlers) GetMessageForm(c fiber.Ctx) error {
	form, err := h.messages.GetForm(c.Context(), processGroupID(c), messageID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(form)
}

// SubmitMessageForm takes the form data exactly as the renderer produced it
// and responds with the saved document.
func (h *APIHandlers) SubmitMessageForm(c fiber.Ctx) error {
	var form correlation.MessageForm
	if err := c.Bind().JSON(&form); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	saved, err := h.messages.SubmitForm(c.Context(), processGroupID(c), messageID(c), form)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(saved)
}

func (h *APIHandlers) DeleteMessage(c fiber.Ctx) error {
	saved, err := h.messages.Delete(c.Context(), processGroupID(c), messageID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(saved)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	storeCheck, ok := h.health(c.Context())

	status := "unhealthy"
	message := "Operion Console API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "Operion Console API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"store": storeCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
