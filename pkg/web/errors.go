package web

import (
	"errors"

	"github.com/dukex/operion-console/pkg/gateway"
	"github.com/dukex/operion-console/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notImplemented(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(501).
		WithInstance(c.Path()).
		WithType("not_implemented").
		WithDetail(detail)

	return c.Status(fiber.StatusNotImplemented).JSON(problem)
}

// handleServiceError maps service, reconciler and backend errors to problems.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.Is(err, services.ErrMessageNotFound):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("message_not_found").
			WithDetail("message not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case services.IsNotFoundError(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("process_group_not_found").
			WithDetail("process group not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case isBackendError(err):
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("backend_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}

func isBackendError(err error) bool {
	var gwErr *gateway.Error

	return errors.As(err, &gwErr) || errors.Is(err, gateway.ErrEmptyResponse)
}
