package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return newValidationError("Cuerpo de la petición inválido")
	}
	return nil
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, newValidationError("Identificador inválido")
	}
	return id, nil
}
