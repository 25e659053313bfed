package server

import (
	"socialsphere/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondError answers with the status that matches err's code.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

// parseBody decodes the JSON body into req. On failure it writes a 400 and
// returns false; the handler should then return nil.
func parseBody(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	return true, nil
}
